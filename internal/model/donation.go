package model

import (
	"time"

	"github.com/google/uuid"
)

type CampaignStatus string

const (
	CampaignPendingVerification CampaignStatus = "pending_verification"
	CampaignActive              CampaignStatus = "active"
	CampaignCompleted           CampaignStatus = "completed"
	CampaignClosed              CampaignStatus = "closed"
)

type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

// DonationCampaign is a verified fundraiser tied to a hospital. RaisedAmount
// is maintained by the donation worker, not written directly by handlers.
type DonationCampaign struct {
	ID              uuid.UUID
	PatientID       uuid.UUID
	HospitalID      uuid.UUID
	Title           string
	Description     string
	IllnessCategory string
	PatientStory    string
	PatientAge      int
	TargetAmount    int64
	RaisedAmount    int64
	UrgencyLevel    UrgencyLevel
	Status          CampaignStatus
	VerifiedBy      *uuid.UUID
	VerifiedAt      *time.Time
	StartDate       *time.Time
	EndDate         *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationConfirmed DonationStatus = "confirmed"
	DonationFailed    DonationStatus = "failed"
)

// Donation is a single wallet-to-wallet contribution to a campaign.
// DonorID is nil for anonymous or unregistered donors.
type Donation struct {
	ID                     uuid.UUID
	CampaignID             uuid.UUID
	DonorID                *uuid.UUID
	DonorWalletAddress     string
	RecipientWalletAddress string
	Amount                 int64
	Message                string
	IsAnonymous            bool
	TransactionHash        string
	Status                 DonationStatus
	ConfirmedAt            *time.Time
	CreatedAt              time.Time
}
