package model

import (
	"time"

	"github.com/google/uuid"
)

type BillStatus string

const (
	BillPending BillStatus = "pending"
	BillPaid    BillStatus = "paid"
)

// MedicalBill is payable from the patient's token balance. Paying records
// the transaction hash and flips status to paid.
type MedicalBill struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	HospitalID      *uuid.UUID
	Amount          int64
	Category        string
	Description     string
	Status          BillStatus
	TransactionHash string
	PaidAt          *time.Time
	CreatedAt       time.Time
}
