package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	NotifyAccessRequested NotificationKind = "access_requested"
	NotifyGrantPending    NotificationKind = "grant_pending"
	NotifyGrantApproved   NotificationKind = "grant_approved"
	NotifyGrantDenied     NotificationKind = "grant_denied"
	NotifyGrantRevoked    NotificationKind = "grant_revoked"
	NotifyAppointment     NotificationKind = "appointment"
	NotifyBill            NotificationKind = "bill"
	NotifyDonation        NotificationKind = "donation"
	NotifyWallet          NotificationKind = "wallet"
)

// Notification is a per-user inbox row written by the event workers.
// Clients poll the list endpoint and mark rows read.
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Kind      NotificationKind
	Title     string
	Body      string
	Read      bool
	CreatedAt time.Time
}
