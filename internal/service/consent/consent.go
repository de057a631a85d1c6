// Package consent implements the access-request / access-grant handshake:
// providers ask for a patient's data (directly or by scanning a QR code),
// patients answer with a wallet signature, and approved grants gate what the
// provider can read until revoked or expired.
package consent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/events"
	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/storage/postgres"
	"github.com/medvault/medvault_backend/pkg/qr"
	"github.com/medvault/medvault_backend/pkg/util/codes"
	"github.com/medvault/medvault_backend/pkg/wallet"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type SubmitRequestInput struct {
	PatientWallet   string
	RequesterWallet string
	RequesterName   string
	ResourceType    model.ResourceType
	Reason          string
}

type IssueQRInput struct {
	PatientID uuid.UUID
	RecordIDs []uuid.UUID
	ImageSize int
}

// IssuedQR carries both the raw payload (for clients that render their own
// code) and the server-rendered PNG.
type IssuedQR struct {
	Payload string
	PNG     []byte
}

type ScanGrantInput struct {
	Payload         string
	RequesterWallet string
	RequesterName   string
}

// SharedResources is what an active grant releases to its recipient.
type SharedResources struct {
	Grant        model.AccessGrant
	Records      []model.MedicalRecord
	Bills        []model.MedicalBill
	Appointments []model.Appointment
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	SubmitRequest(ctx context.Context, in SubmitRequestInput) (*model.AccessRequest, error)
	ListRequestsForPatient(ctx context.Context, patientID uuid.UUID) ([]model.AccessRequest, error)
	ListRequestsForRequester(ctx context.Context, requesterWallet string) ([]model.AccessRequest, error)

	IssueQR(ctx context.Context, in IssueQRInput) (*IssuedQR, error)
	ScanGrant(ctx context.Context, in ScanGrantInput) (*model.AccessGrant, error)

	ApproveRequest(ctx context.Context, patientID, requestID uuid.UUID, signature string) (*model.AccessGrant, error)
	ApproveGrant(ctx context.Context, patientID, grantID uuid.UUID, signature string) (*model.AccessGrant, error)
	DenyRequest(ctx context.Context, patientID, requestID uuid.UUID) error
	DenyGrant(ctx context.Context, patientID, grantID uuid.UUID) error
	Revoke(ctx context.Context, patientID, grantID uuid.UUID) error

	ListGrantsForPatient(ctx context.Context, patientID uuid.UUID) ([]model.AccessGrant, error)
	ListGrantsForRecipient(ctx context.Context, recipientWallet string) ([]model.AccessGrant, error)
	SharedResources(ctx context.Context, recipientWallet string, grantID uuid.UUID) (*SharedResources, error)
}

// Config bounds the lifetimes of the three consent artifacts.
type Config struct {
	RequestTTL time.Duration
	GrantTTL   time.Duration
	QRTTL      time.Duration
}

func (c Config) withDefaults() Config {
	if c.RequestTTL <= 0 {
		c.RequestTTL = 7 * 24 * time.Hour
	}
	if c.GrantTTL <= 0 {
		c.GrantTTL = 7 * 24 * time.Hour
	}
	if c.QRTTL <= 0 {
		c.QRTTL = qr.DefaultTTL
	}
	return c
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type consentService struct {
	cfg Config

	requests     RequestRepo
	grants       GrantRepo
	profiles     ProfileRepo
	records      RecordRepo
	bills        BillRepo
	appointments AppointmentRepo
	activity     ActivityRepo

	verifier wallet.Verifier
	pub      Publisher

	now func() time.Time
}

type Deps struct {
	Requests     RequestRepo
	Grants       GrantRepo
	Profiles     ProfileRepo
	Records      RecordRepo
	Bills        BillRepo
	Appointments AppointmentRepo
	Activity     ActivityRepo
	Verifier     wallet.Verifier
	Publisher    Publisher
}

func New(cfg Config, d Deps) Service {
	return &consentService{
		cfg:          cfg.withDefaults(),
		requests:     d.Requests,
		grants:       d.Grants,
		profiles:     d.Profiles,
		records:      d.Records,
		bills:        d.Bills,
		appointments: d.Appointments,
		activity:     d.Activity,
		verifier:     d.Verifier,
		pub:          d.Publisher,
		now:          time.Now,
	}
}

func (s *consentService) SubmitRequest(ctx context.Context, in SubmitRequestInput) (*model.AccessRequest, error) {
	if !model.ValidResourceType(in.ResourceType) {
		return nil, ErrInvalidResource
	}

	patient, err := s.profiles.GetByWallet(ctx, in.PatientWallet)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("resolve patient: %w", err)
	}

	now := s.now()
	req := model.AccessRequest{
		ID:                     uuid.New(),
		PatientID:              patient.UserID,
		RequesterWalletAddress: in.RequesterWallet,
		RequesterName:          in.RequesterName,
		ResourceType:           in.ResourceType,
		Reason:                 in.Reason,
		Status:                 model.RequestPending,
		ExpiresAt:              now.Add(s.cfg.RequestTTL),
		CreatedAt:              now,
	}

	// Duplicate pending requests from the same requester are allowed; the
	// patient answers whichever they see first.
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create access request: %w", err)
	}

	s.pub.Publish(events.AccessRequestCreated(patient.UserID), req.ID)
	return &req, nil
}

func (s *consentService) ListRequestsForPatient(ctx context.Context, patientID uuid.UUID) ([]model.AccessRequest, error) {
	return s.requests.ListByPatient(ctx, patientID)
}

func (s *consentService) ListRequestsForRequester(ctx context.Context, requesterWallet string) ([]model.AccessRequest, error) {
	return s.requests.ListByRequester(ctx, requesterWallet)
}

func (s *consentService) IssueQR(ctx context.Context, in IssueQRInput) (*IssuedQR, error) {
	if len(in.RecordIDs) == 0 {
		return nil, ErrNoRecords
	}

	profile, err := s.profiles.GetByUserID(ctx, in.PatientID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}

	// Every listed record must belong to the issuing patient.
	owned, err := s.records.ListByIDs(ctx, in.PatientID, in.RecordIDs)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	if len(owned) != len(dedupe(in.RecordIDs)) {
		return nil, ErrRecordNotOwned
	}

	key, err := codes.GenerateEncryptionKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	payload := qr.New(in.PatientID, in.RecordIDs, profile.WalletAddress, key, s.now(), s.cfg.QRTTL)
	data, err := qr.Encode(payload)
	if err != nil {
		return nil, err
	}
	png, err := qr.RenderPNG(data, in.ImageSize)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}

	return &IssuedQR{Payload: data, PNG: png}, nil
}

func (s *consentService) ScanGrant(ctx context.Context, in ScanGrantInput) (*model.AccessGrant, error) {
	now := s.now()

	payload, err := qr.Decode(in.Payload, now)
	if err != nil {
		return nil, err // qr.ErrPayloadInvalid / qr.ErrPayloadExpired pass through
	}

	if _, err := s.profiles.GetByUserID(ctx, payload.PatientID); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	g := model.AccessGrant{
		ID:                     uuid.New(),
		PatientID:              payload.PatientID,
		RecipientWalletAddress: in.RequesterWallet,
		RecipientName:          in.RequesterName,
		ResourceType:           model.ResourceMedicalRecords,
		ResourceIDs:            payload.RecordIDs,
		SharedEncryptionKey:    payload.EncryptionKey,
		Signature:              "", // empty until the patient approves
		Status:                 model.GrantPending,
		ExpiresAt:              now.Add(s.cfg.QRTTL),
		CreatedAt:              now,
	}

	if err := s.grants.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create pending grant: %w", err)
	}

	s.pub.Publish(events.GrantPending(g.PatientID), g.ID)
	return &g, nil
}

func (s *consentService) ApproveRequest(ctx context.Context, patientID, requestID uuid.UUID, signature string) (*model.AccessGrant, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if req.PatientID != patientID {
		return nil, ErrRequestNotFound
	}

	now := s.now()
	if req.Status != model.RequestPending {
		return nil, ErrNotPending
	}
	if !req.Answerable(now) {
		return nil, ErrRequestExpired
	}

	if err := s.checkSignature(ctx, patientID, wallet.AccessApprovalMessage(requestID, now), signature); err != nil {
		return nil, err
	}

	if err := s.requests.SetStatus(ctx, requestID, model.RequestApproved, now); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrNotPending
		}
		return nil, err
	}

	key, err := codes.GenerateEncryptionKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	g := model.AccessGrant{
		ID:                     uuid.New(),
		PatientID:              patientID,
		RecipientWalletAddress: req.RequesterWalletAddress,
		RecipientName:          req.RequesterName,
		ResourceType:           req.ResourceType,
		ResourceIDs:            nil, // request scope is by type, not rows
		SharedEncryptionKey:    key,
		Signature:              signature,
		Status:                 model.GrantActive,
		ExpiresAt:              now.Add(s.cfg.GrantTTL),
		CreatedAt:              now,
	}
	if err := s.grants.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create grant: %w", err)
	}

	s.logActivity(ctx, patientID, model.ActivityShare, "Shared medical data",
		fmt.Sprintf("Approved access request from %s", requesterLabel(req.RequesterName, req.RequesterWalletAddress)),
		map[string]any{"request_id": requestID.String(), "grant_id": g.ID.String()})

	s.pub.Publish(events.GrantApproved(patientID), g.ID)
	return &g, nil
}

func (s *consentService) ApproveGrant(ctx context.Context, patientID, grantID uuid.UUID, signature string) (*model.AccessGrant, error) {
	g, err := s.grants.GetByID(ctx, grantID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrGrantNotFound
		}
		return nil, err
	}
	if g.PatientID != patientID {
		return nil, ErrGrantNotFound
	}
	if g.Status != model.GrantPending {
		return nil, ErrNotPending
	}

	now := s.now()
	if err := s.checkSignature(ctx, patientID, wallet.GrantApprovalMessage(grantID, now), signature); err != nil {
		return nil, err
	}

	// Fresh key on activation; the scan-time key was only a placeholder the
	// requester already saw.
	key, err := codes.GenerateEncryptionKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	expiresAt := now.Add(s.cfg.GrantTTL)
	if err := s.grants.Activate(ctx, grantID, signature, key, expiresAt); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrNotPending
		}
		return nil, err
	}

	// Keep the other entry point consistent: a direct request from the same
	// requester is now answered too.
	if err := s.requests.ApproveMatchingPending(ctx, patientID, g.RecipientWalletAddress, now); err != nil {
		return nil, fmt.Errorf("approve matching requests: %w", err)
	}

	g.Status = model.GrantActive
	g.Signature = signature
	g.SharedEncryptionKey = key
	g.ExpiresAt = expiresAt

	s.logActivity(ctx, patientID, model.ActivityShare, "Shared medical records",
		fmt.Sprintf("Approved QR access for %s", requesterLabel(g.RecipientName, g.RecipientWalletAddress)),
		map[string]any{"grant_id": grantID.String()})

	s.pub.Publish(events.GrantApproved(patientID), grantID)
	return &g, nil
}

func (s *consentService) DenyRequest(ctx context.Context, patientID, requestID uuid.UUID) error {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrRequestNotFound
		}
		return err
	}
	if req.PatientID != patientID {
		return ErrRequestNotFound
	}
	if req.Status != model.RequestPending {
		return ErrNotPending
	}

	now := s.now()
	if err := s.requests.SetStatus(ctx, requestID, model.RequestDenied, now); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrNotPending
		}
		return err
	}

	s.logActivity(ctx, patientID, model.ActivityDeny, "Denied access request",
		fmt.Sprintf("Denied access request from %s", requesterLabel(req.RequesterName, req.RequesterWalletAddress)),
		map[string]any{"request_id": requestID.String()})

	s.pub.Publish(events.GrantDenied(patientID), requestID)
	return nil
}

func (s *consentService) DenyGrant(ctx context.Context, patientID, grantID uuid.UUID) error {
	g, err := s.grants.GetByID(ctx, grantID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrGrantNotFound
		}
		return err
	}
	if g.PatientID != patientID {
		return ErrGrantNotFound
	}
	if g.Status != model.GrantPending {
		return ErrNotPending
	}

	// The row stays, status denied: audit trail over tidiness.
	if err := s.grants.Deny(ctx, grantID); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrNotPending
		}
		return err
	}

	s.logActivity(ctx, patientID, model.ActivityDeny, "Denied QR access",
		fmt.Sprintf("Denied QR access for %s", requesterLabel(g.RecipientName, g.RecipientWalletAddress)),
		map[string]any{"grant_id": grantID.String()})

	s.pub.Publish(events.GrantDenied(patientID), grantID)
	return nil
}

func (s *consentService) Revoke(ctx context.Context, patientID, grantID uuid.UUID) error {
	g, err := s.grants.GetByID(ctx, grantID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrGrantNotFound
		}
		return err
	}
	if g.PatientID != patientID {
		return ErrGrantNotFound
	}

	switch g.Status {
	case model.GrantActive:
		// proceed
	case model.GrantRevoked:
		// Idempotent: the first revocation's timestamp stands.
		return nil
	default:
		return ErrNotActive
	}

	changed, err := s.grants.Revoke(ctx, grantID, s.now())
	if err != nil {
		return err
	}
	if !changed {
		// Lost a race with another revoke; same outcome.
		return nil
	}

	s.logActivity(ctx, patientID, model.ActivityRevoke, "Revoked access",
		fmt.Sprintf("Revoked access for %s", requesterLabel(g.RecipientName, g.RecipientWalletAddress)),
		map[string]any{"grant_id": grantID.String()})

	s.pub.Publish(events.GrantRevoked(patientID), grantID)
	return nil
}

func (s *consentService) ListGrantsForPatient(ctx context.Context, patientID uuid.UUID) ([]model.AccessGrant, error) {
	return s.grants.ListByPatient(ctx, patientID)
}

func (s *consentService) ListGrantsForRecipient(ctx context.Context, recipientWallet string) ([]model.AccessGrant, error) {
	return s.grants.ListByRecipient(ctx, recipientWallet)
}

func (s *consentService) SharedResources(ctx context.Context, recipientWallet string, grantID uuid.UUID) (*SharedResources, error) {
	g, err := s.grants.GetByID(ctx, grantID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrGrantNotFound
		}
		return nil, err
	}
	if !equalWallet(g.RecipientWalletAddress, recipientWallet) {
		return nil, ErrGrantNotFound
	}

	now := s.now()
	if !g.Usable(now) {
		return nil, ErrAccessDenied
	}

	out := &SharedResources{Grant: g}

	switch g.ResourceType {
	case model.ResourceMedicalRecords:
		out.Records, err = s.fetchRecords(ctx, g)
	case model.ResourceMedicalBills:
		out.Bills, err = s.fetchBills(ctx, g)
	case model.ResourceAppointments:
		out.Appointments, err = s.appointments.ListByUser(ctx, g.PatientID)
	case model.ResourceAll:
		if out.Records, err = s.fetchRecords(ctx, g); err == nil {
			if out.Bills, err = s.fetchBills(ctx, g); err == nil {
				out.Appointments, err = s.appointments.ListByUser(ctx, g.PatientID)
			}
		}
	default:
		return nil, ErrInvalidResource
	}
	if err != nil {
		return nil, fmt.Errorf("fetch resources: %w", err)
	}

	if err := s.grants.TouchAccess(ctx, grantID, now); err != nil {
		return nil, fmt.Errorf("touch access: %w", err)
	}
	out.Grant.AccessCount++
	out.Grant.LastAccessedAt = &now

	return out, nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func (s *consentService) fetchRecords(ctx context.Context, g model.AccessGrant) ([]model.MedicalRecord, error) {
	if len(g.ResourceIDs) == 0 {
		return s.records.ListByUser(ctx, g.PatientID)
	}
	return s.records.ListByIDs(ctx, g.PatientID, g.ResourceIDs)
}

func (s *consentService) fetchBills(ctx context.Context, g model.AccessGrant) ([]model.MedicalBill, error) {
	if len(g.ResourceIDs) == 0 {
		return s.bills.ListByUser(ctx, g.PatientID)
	}
	return s.bills.ListByIDs(ctx, g.PatientID, g.ResourceIDs)
}

func (s *consentService) checkSignature(ctx context.Context, patientID uuid.UUID, message, signature string) error {
	if signature == "" {
		return ErrSignatureRejected
	}
	profile, err := s.profiles.GetByUserID(ctx, patientID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrPatientNotFound
		}
		return err
	}
	if err := s.verifier.VerifySignature(profile.WalletAddress, message, signature); err != nil {
		return ErrSignatureRejected
	}
	return nil
}

func (s *consentService) logActivity(ctx context.Context, userID uuid.UUID, typ model.ActivityType, title, description string, metadata map[string]any) {
	// Success-path audit only; a failed insert never fails the operation.
	_ = s.activity.Insert(ctx, model.ActivityLog{
		ID:           uuid.New(),
		UserID:       userID,
		ActivityType: typ,
		Title:        title,
		Description:  description,
		Metadata:     metadata,
		CreatedAt:    s.now(),
	})
}

func requesterLabel(name, walletAddress string) string {
	if name != "" {
		return name
	}
	return walletAddress
}

func equalWallet(a, b string) bool {
	return strings.EqualFold(a, b)
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
