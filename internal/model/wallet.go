package model

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TxFaucetClaim TransactionType = "faucet_claim"
	TxBillPayment TransactionType = "bill_payment"
	TxDonation    TransactionType = "donation"
	TxPurchase    TransactionType = "purchase"
	TxTransfer    TransactionType = "transfer"
)

type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxConfirmed TransactionStatus = "confirmed"
	TxFailed    TransactionStatus = "failed"
)

// WalletTransaction is one movement of BDAG tokens attributed to a user.
// Amount is signed: credits positive, debits negative.
type WalletTransaction struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	TransactionType  TransactionType
	Amount           int64
	RecipientAddress string
	TransactionHash  string
	Status           TransactionStatus
	CreatedAt        time.Time
}

type PurchaseStatus string

const (
	PurchasePending PurchaseStatus = "pending"
	PurchasePaid    PurchaseStatus = "paid"
	PurchaseFailed  PurchaseStatus = "failed"
)

// PurchaseOrder tracks a card-payment token purchase through the hosted
// gateway. Authority is the gateway's handle between request and verify.
type PurchaseOrder struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Amount     int64
	Authority  string
	RefID      int64
	Status     PurchaseStatus
	CreatedAt  time.Time
	VerifiedAt *time.Time
}
