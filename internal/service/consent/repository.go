package consent

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
)

// Repository interfaces are declared here, on the consumer side; the
// postgres package satisfies them and tests swap in in-memory fakes.

type RequestRepo interface {
	Create(ctx context.Context, req model.AccessRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (model.AccessRequest, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]model.AccessRequest, error)
	ListByRequester(ctx context.Context, walletAddress string) ([]model.AccessRequest, error)
	SetStatus(ctx context.Context, id uuid.UUID, status model.RequestStatus, respondedAt time.Time) error
	ApproveMatchingPending(ctx context.Context, patientID uuid.UUID, requesterWallet string, respondedAt time.Time) error
}

type GrantRepo interface {
	Create(ctx context.Context, g model.AccessGrant) error
	GetByID(ctx context.Context, id uuid.UUID) (model.AccessGrant, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]model.AccessGrant, error)
	ListByRecipient(ctx context.Context, walletAddress string) ([]model.AccessGrant, error)
	Activate(ctx context.Context, id uuid.UUID, signature, encryptionKey string, expiresAt time.Time) error
	Deny(ctx context.Context, id uuid.UUID) error
	Revoke(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	TouchAccess(ctx context.Context, id uuid.UUID, at time.Time) error
}

type ProfileRepo interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (model.Profile, error)
	GetByWallet(ctx context.Context, walletAddress string) (model.Profile, error)
}

type RecordRepo interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.MedicalRecord, error)
	ListByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]model.MedicalRecord, error)
}

type BillRepo interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.MedicalBill, error)
	ListByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]model.MedicalBill, error)
}

type AppointmentRepo interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Appointment, error)
}

type ActivityRepo interface {
	Insert(ctx context.Context, a model.ActivityLog) error
}

// Publisher is the slice of the events hub the service needs.
type Publisher interface {
	Publish(subject string, payloadID uuid.UUID)
}
