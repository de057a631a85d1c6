package profile

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidWallet   = errors.New("wallet address is malformed")
	ErrWalletTaken     = errors.New("wallet address is linked to another account")
)
