package donation

import "errors"

var (
	ErrCampaignNotFound    = errors.New("campaign not found")
	ErrCampaignNotActive   = errors.New("campaign is not accepting donations")
	ErrDonorNotFound       = errors.New("donor profile not found")
	ErrRecipientNoWallet   = errors.New("campaign patient has no linked wallet")
	ErrInsufficientBalance = errors.New("token balance is insufficient")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidTarget       = errors.New("target amount must be positive")
)
