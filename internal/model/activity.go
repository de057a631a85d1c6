package model

import (
	"time"

	"github.com/google/uuid"
)

type ActivityType string

const (
	ActivityShare       ActivityType = "share"
	ActivityRevoke      ActivityType = "revoke"
	ActivityDeny        ActivityType = "deny"
	ActivityAppointment ActivityType = "appointment"
	ActivityPayment     ActivityType = "payment"
	ActivityDonation    ActivityType = "donation"
	ActivityFaucet      ActivityType = "faucet"
	ActivityRecord      ActivityType = "record"
)

// ActivityLog is an append-only audit row. Metadata is free-form JSON.
type ActivityLog struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	ActivityType ActivityType
	Title        string
	Description  string
	Metadata     map[string]any
	CreatedAt    time.Time
}
