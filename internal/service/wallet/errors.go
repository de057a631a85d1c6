package wallet

import "errors"

var (
	ErrFaucetCooldown    = errors.New("faucet already claimed, try again later")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrPurchaseNotFound  = errors.New("purchase order not found")
	ErrPurchaseSettled   = errors.New("purchase order is already settled")
	ErrPaymentIncomplete = errors.New("payment was not completed")
)
