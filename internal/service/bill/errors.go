package bill

import "errors"

var (
	ErrBillNotFound        = errors.New("bill not found")
	ErrAlreadyPaid         = errors.New("bill is already paid")
	ErrInsufficientBalance = errors.New("token balance is insufficient")
	ErrInvalidAmount       = errors.New("amount must be positive")
)
