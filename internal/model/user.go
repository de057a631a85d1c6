// Package model holds the persisted domain types shared by the storage and
// service layers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated account. Login is email/password; the wallet
// address lives on the profile.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Profile is the patient-facing identity attached to a user.
type Profile struct {
	UserID        uuid.UUID
	FullName      string
	WalletAddress string
	// BDAGBalance is the testnet token balance in whole tokens.
	BDAGBalance int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasWallet reports whether the profile has linked a wallet address.
func (p *Profile) HasWallet() bool { return p.WalletAddress != "" }
