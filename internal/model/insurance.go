package model

import (
	"time"

	"github.com/google/uuid"
)

type PolicyStatus string

const (
	PolicyActive    PolicyStatus = "active"
	PolicyExpired   PolicyStatus = "expired"
	PolicyCancelled PolicyStatus = "cancelled"
)

type ClaimStatus string

const (
	ClaimPending    ClaimStatus = "pending"
	ClaimProcessing ClaimStatus = "processing"
	ClaimApproved   ClaimStatus = "approved"
	ClaimRejected   ClaimStatus = "rejected"
)

// InsurancePolicy is a coverage contract held by a patient. CoverageDetails
// maps a coverage area to its human-readable terms.
type InsurancePolicy struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	PolicyNumber    string
	Provider        string
	PlanType        string
	CoverageAmount  int64
	PremiumAmount   int64
	StartDate       time.Time
	EndDate         time.Time
	Status          PolicyStatus
	CoverageDetails map[string]string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// InsuranceClaim is a reimbursement request filed against a policy.
type InsuranceClaim struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	PolicyID    uuid.UUID
	HospitalID  *uuid.UUID
	ClaimNumber string
	ClaimType   string
	Amount      int64
	Description string
	Status      ClaimStatus
	SubmittedAt time.Time
	ProcessedAt *time.Time
	CreatedAt   time.Time
}
