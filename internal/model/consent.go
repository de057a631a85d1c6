package model

import (
	"time"

	"github.com/google/uuid"
)

// ResourceType scopes what a request or grant covers.
type ResourceType string

const (
	ResourceMedicalRecords ResourceType = "medical_records"
	ResourceMedicalBills   ResourceType = "medical_bills"
	ResourceAppointments   ResourceType = "appointments"
	ResourceAll            ResourceType = "all"
)

// ValidResourceType reports whether t is one of the known scopes.
func ValidResourceType(t ResourceType) bool {
	switch t {
	case ResourceMedicalRecords, ResourceMedicalBills, ResourceAppointments, ResourceAll:
		return true
	}
	return false
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestDenied   RequestStatus = "denied"
)

// AccessRequest is a provider-initiated ask for access to a patient's data.
// Approving one creates an AccessGrant; the request row itself never carries
// access rights.
type AccessRequest struct {
	ID                     uuid.UUID
	PatientID              uuid.UUID
	RequesterWalletAddress string
	RequesterName          string
	ResourceType           ResourceType
	Reason                 string
	Status                 RequestStatus
	RespondedAt            *time.Time
	ExpiresAt              time.Time
	CreatedAt              time.Time
}

// Answerable reports whether the request can still be approved or denied.
func (r *AccessRequest) Answerable(now time.Time) bool {
	return r.Status == RequestPending && now.Before(r.ExpiresAt)
}

// GrantStatus is the single source of truth for a grant's lifecycle.
// Expiry is computed against ExpiresAt, never stored as a status.
type GrantStatus string

const (
	GrantPending GrantStatus = "pending"
	GrantActive  GrantStatus = "active"
	GrantDenied  GrantStatus = "denied"
	GrantRevoked GrantStatus = "revoked"
)

// AccessGrant is a patient-approved right to read a slice of their data.
// Pending grants come from QR scans and hold no rights until approved.
type AccessGrant struct {
	ID                     uuid.UUID
	PatientID              uuid.UUID
	RecipientWalletAddress string
	RecipientName          string
	ResourceType           ResourceType
	// ResourceIDs narrows the grant to specific rows; empty means all rows
	// of ResourceType.
	ResourceIDs []uuid.UUID
	// SharedEncryptionKey is a placeholder key identifier, not key material.
	SharedEncryptionKey string
	// Signature is the patient's wallet signature; empty while pending.
	Signature      string
	Status         GrantStatus
	RevokedAt      *time.Time
	ExpiresAt      time.Time
	AccessCount    int
	LastAccessedAt *time.Time
	CreatedAt      time.Time
}

// Expired reports whether the grant's advisory expiry has lapsed.
func (g *AccessGrant) Expired(now time.Time) bool {
	return now.After(g.ExpiresAt)
}

// Usable reports whether the grant currently authorizes resource access:
// active, signed, and unexpired.
func (g *AccessGrant) Usable(now time.Time) bool {
	return g.Status == GrantActive && g.Signature != "" && now.Before(g.ExpiresAt)
}
