package consent

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/storage/postgres"
	"github.com/medvault/medvault_backend/pkg/qr"
	"github.com/medvault/medvault_backend/pkg/wallet"
)

// ---------------------------------------------------------------------------
// in-memory fakes
// ---------------------------------------------------------------------------

type fakeRequests struct {
	rows map[uuid.UUID]model.AccessRequest
}

func newFakeRequests() *fakeRequests {
	return &fakeRequests{rows: map[uuid.UUID]model.AccessRequest{}}
}

func (f *fakeRequests) Create(_ context.Context, req model.AccessRequest) error {
	f.rows[req.ID] = req
	return nil
}

func (f *fakeRequests) GetByID(_ context.Context, id uuid.UUID) (model.AccessRequest, error) {
	r, ok := f.rows[id]
	if !ok {
		return model.AccessRequest{}, postgres.ErrNotFound
	}
	return r, nil
}

func (f *fakeRequests) ListByPatient(_ context.Context, patientID uuid.UUID) ([]model.AccessRequest, error) {
	out := []model.AccessRequest{}
	for _, r := range f.rows {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequests) ListByRequester(_ context.Context, walletAddress string) ([]model.AccessRequest, error) {
	out := []model.AccessRequest{}
	for _, r := range f.rows {
		if r.RequesterWalletAddress == walletAddress {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequests) SetStatus(_ context.Context, id uuid.UUID, status model.RequestStatus, respondedAt time.Time) error {
	r, ok := f.rows[id]
	if !ok || r.Status != model.RequestPending {
		return postgres.ErrNotFound
	}
	r.Status = status
	r.RespondedAt = &respondedAt
	f.rows[id] = r
	return nil
}

func (f *fakeRequests) ApproveMatchingPending(_ context.Context, patientID uuid.UUID, requesterWallet string, respondedAt time.Time) error {
	for id, r := range f.rows {
		if r.PatientID == patientID && r.RequesterWalletAddress == requesterWallet && r.Status == model.RequestPending {
			r.Status = model.RequestApproved
			r.RespondedAt = &respondedAt
			f.rows[id] = r
		}
	}
	return nil
}

type fakeGrants struct {
	rows map[uuid.UUID]model.AccessGrant
}

func newFakeGrants() *fakeGrants {
	return &fakeGrants{rows: map[uuid.UUID]model.AccessGrant{}}
}

func (f *fakeGrants) Create(_ context.Context, g model.AccessGrant) error {
	f.rows[g.ID] = g
	return nil
}

func (f *fakeGrants) GetByID(_ context.Context, id uuid.UUID) (model.AccessGrant, error) {
	g, ok := f.rows[id]
	if !ok {
		return model.AccessGrant{}, postgres.ErrNotFound
	}
	return g, nil
}

func (f *fakeGrants) ListByPatient(_ context.Context, patientID uuid.UUID) ([]model.AccessGrant, error) {
	out := []model.AccessGrant{}
	for _, g := range f.rows {
		if g.PatientID == patientID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGrants) ListByRecipient(_ context.Context, walletAddress string) ([]model.AccessGrant, error) {
	out := []model.AccessGrant{}
	for _, g := range f.rows {
		if g.RecipientWalletAddress == walletAddress {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGrants) Activate(_ context.Context, id uuid.UUID, signature, encryptionKey string, expiresAt time.Time) error {
	g, ok := f.rows[id]
	if !ok || g.Status != model.GrantPending {
		return postgres.ErrNotFound
	}
	g.Status = model.GrantActive
	g.Signature = signature
	g.SharedEncryptionKey = encryptionKey
	g.ExpiresAt = expiresAt
	f.rows[id] = g
	return nil
}

func (f *fakeGrants) Deny(_ context.Context, id uuid.UUID) error {
	g, ok := f.rows[id]
	if !ok || g.Status != model.GrantPending {
		return postgres.ErrNotFound
	}
	g.Status = model.GrantDenied
	f.rows[id] = g
	return nil
}

func (f *fakeGrants) Revoke(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	g, ok := f.rows[id]
	if !ok || g.Status != model.GrantActive {
		return false, nil
	}
	g.Status = model.GrantRevoked
	g.RevokedAt = &at
	f.rows[id] = g
	return true, nil
}

func (f *fakeGrants) TouchAccess(_ context.Context, id uuid.UUID, at time.Time) error {
	g, ok := f.rows[id]
	if !ok {
		return postgres.ErrNotFound
	}
	g.AccessCount++
	g.LastAccessedAt = &at
	f.rows[id] = g
	return nil
}

type fakeProfiles struct {
	rows map[uuid.UUID]model.Profile
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{rows: map[uuid.UUID]model.Profile{}}
}

func (f *fakeProfiles) GetByUserID(_ context.Context, userID uuid.UUID) (model.Profile, error) {
	p, ok := f.rows[userID]
	if !ok {
		return model.Profile{}, postgres.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfiles) GetByWallet(_ context.Context, walletAddress string) (model.Profile, error) {
	for _, p := range f.rows {
		if p.WalletAddress == walletAddress {
			return p, nil
		}
	}
	return model.Profile{}, postgres.ErrNotFound
}

type fakeRecords struct {
	rows map[uuid.UUID]model.MedicalRecord
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{rows: map[uuid.UUID]model.MedicalRecord{}}
}

func (f *fakeRecords) ListByUser(_ context.Context, userID uuid.UUID) ([]model.MedicalRecord, error) {
	out := []model.MedicalRecord{}
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecords) ListByIDs(_ context.Context, userID uuid.UUID, ids []uuid.UUID) ([]model.MedicalRecord, error) {
	out := []model.MedicalRecord{}
	for _, id := range ids {
		if r, ok := f.rows[id]; ok && r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeBills struct{}

func (fakeBills) ListByUser(_ context.Context, _ uuid.UUID) ([]model.MedicalBill, error) {
	return []model.MedicalBill{}, nil
}

func (fakeBills) ListByIDs(_ context.Context, _ uuid.UUID, _ []uuid.UUID) ([]model.MedicalBill, error) {
	return []model.MedicalBill{}, nil
}

type fakeAppointments struct{}

func (fakeAppointments) ListByUser(_ context.Context, _ uuid.UUID) ([]model.Appointment, error) {
	return []model.Appointment{}, nil
}

type fakeActivity struct {
	rows []model.ActivityLog
}

func (f *fakeActivity) Insert(_ context.Context, a model.ActivityLog) error {
	f.rows = append(f.rows, a)
	return nil
}

type fakePublisher struct {
	published []string
}

func (f *fakePublisher) Publish(subject string, _ uuid.UUID) {
	f.published = append(f.published, subject)
}

// ---------------------------------------------------------------------------
// fixture
// ---------------------------------------------------------------------------

type fixture struct {
	svc      *consentService
	requests *fakeRequests
	grants   *fakeGrants
	profiles *fakeProfiles
	records  *fakeRecords
	activity *fakeActivity
	pub      *fakePublisher

	patientID     uuid.UUID
	patientWallet string
	signer        *wallet.LocalSigner
	now           time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		requests: newFakeRequests(),
		grants:   newFakeGrants(),
		profiles: newFakeProfiles(),
		records:  newFakeRecords(),
		activity: &fakeActivity{},
		pub:      &fakePublisher{},
		now:      time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
	}

	f.patientID = uuid.New()
	f.patientWallet = wallet.DeriveAddress("patient")
	signer, err := wallet.NewLocalSigner(f.patientWallet)
	require.NoError(t, err)
	f.signer = signer

	f.profiles.rows[f.patientID] = model.Profile{
		UserID:        f.patientID,
		FullName:      "Pat Example",
		WalletAddress: f.patientWallet,
	}

	svc := New(Config{}, Deps{
		Requests:     f.requests,
		Grants:       f.grants,
		Profiles:     f.profiles,
		Records:      f.records,
		Bills:        fakeBills{},
		Appointments: fakeAppointments{},
		Activity:     f.activity,
		Verifier:     wallet.NewFormatVerifier(),
		Publisher:    f.pub,
	}).(*consentService)
	svc.now = func() time.Time { return f.now }
	f.svc = svc

	return f
}

func (f *fixture) sign(t *testing.T, message string) string {
	t.Helper()
	sig, err := f.signer.Sign(message)
	require.NoError(t, err)
	return sig
}

func (f *fixture) addRecord(title string) model.MedicalRecord {
	rec := model.MedicalRecord{
		ID:         uuid.New(),
		UserID:     f.patientID,
		RecordType: model.RecordTypeLabResult,
		Title:      title,
		CreatedAt:  f.now,
	}
	f.records.rows[rec.ID] = rec
	return rec
}

func (f *fixture) submitRequest(t *testing.T, resourceType model.ResourceType) *model.AccessRequest {
	t.Helper()
	req, err := f.svc.SubmitRequest(context.Background(), SubmitRequestInput{
		PatientWallet:   f.patientWallet,
		RequesterWallet: wallet.DeriveAddress("dr-house"),
		RequesterName:   "Dr. House",
		ResourceType:    resourceType,
		Reason:          "follow-up",
	})
	require.NoError(t, err)
	return req
}

// ---------------------------------------------------------------------------
// tests
// ---------------------------------------------------------------------------

func TestSubmitRequestUnknownWallet(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SubmitRequest(context.Background(), SubmitRequestInput{
		PatientWallet:   wallet.DeriveAddress("nobody"),
		RequesterWallet: wallet.DeriveAddress("dr-house"),
		ResourceType:    model.ResourceMedicalRecords,
	})
	assert.ErrorIs(t, err, ErrPatientNotFound)
	assert.Empty(t, f.requests.rows)
}

func TestSubmitRequestAllowsDuplicates(t *testing.T) {
	f := newFixture(t)

	r1 := f.submitRequest(t, model.ResourceMedicalRecords)
	r2 := f.submitRequest(t, model.ResourceMedicalRecords)

	assert.NotEqual(t, r1.ID, r2.ID)
	assert.Len(t, f.requests.rows, 2)
	assert.Equal(t, f.now.Add(7*24*time.Hour), r1.ExpiresAt)
}

func TestApproveRequestCreatesActiveGrant(t *testing.T) {
	f := newFixture(t)
	req := f.submitRequest(t, model.ResourceMedicalRecords)

	sig := f.sign(t, wallet.AccessApprovalMessage(req.ID, f.now))
	g, err := f.svc.ApproveRequest(context.Background(), f.patientID, req.ID, sig)
	require.NoError(t, err)

	// exactly one grant, active, signed, scoped like the request
	assert.Len(t, f.grants.rows, 1)
	assert.Equal(t, model.GrantActive, g.Status)
	assert.Equal(t, sig, g.Signature)
	assert.Equal(t, req.ResourceType, g.ResourceType)
	assert.Empty(t, g.ResourceIDs)
	assert.NotEmpty(t, g.SharedEncryptionKey)
	assert.Equal(t, f.now.Add(7*24*time.Hour), g.ExpiresAt)

	stored, err := f.requests.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, stored.Status)
	require.NotNil(t, stored.RespondedAt)

	// an activity entry of type share is appended
	require.Len(t, f.activity.rows, 1)
	assert.Equal(t, model.ActivityShare, f.activity.rows[0].ActivityType)
}

func TestApproveRequestEmptySignature(t *testing.T) {
	f := newFixture(t)
	req := f.submitRequest(t, model.ResourceMedicalRecords)

	_, err := f.svc.ApproveRequest(context.Background(), f.patientID, req.ID, "")
	assert.ErrorIs(t, err, ErrSignatureRejected)

	// no state change anywhere
	stored, gerr := f.requests.GetByID(context.Background(), req.ID)
	require.NoError(t, gerr)
	assert.Equal(t, model.RequestPending, stored.Status)
	assert.Nil(t, stored.RespondedAt)
	assert.Empty(t, f.grants.rows)
	assert.Empty(t, f.activity.rows)
}

func TestApproveRequestMalformedSignature(t *testing.T) {
	f := newFixture(t)
	req := f.submitRequest(t, model.ResourceMedicalRecords)

	_, err := f.svc.ApproveRequest(context.Background(), f.patientID, req.ID, "0xnot-a-signature")
	assert.ErrorIs(t, err, ErrSignatureRejected)
	assert.Empty(t, f.grants.rows)
}

func TestApproveRequestExpired(t *testing.T) {
	f := newFixture(t)
	req := f.submitRequest(t, model.ResourceMedicalRecords)

	f.now = f.now.Add(7*24*time.Hour + time.Minute)
	sig := f.sign(t, wallet.AccessApprovalMessage(req.ID, f.now))
	_, err := f.svc.ApproveRequest(context.Background(), f.patientID, req.ID, sig)
	assert.ErrorIs(t, err, ErrRequestExpired)
	assert.Empty(t, f.grants.rows)
}

func TestApproveRequestWrongPatient(t *testing.T) {
	f := newFixture(t)
	req := f.submitRequest(t, model.ResourceMedicalRecords)

	sig := f.sign(t, wallet.AccessApprovalMessage(req.ID, f.now))
	_, err := f.svc.ApproveRequest(context.Background(), uuid.New(), req.ID, sig)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestDenyRequestCreatesNoGrant(t *testing.T) {
	f := newFixture(t)
	req := f.submitRequest(t, model.ResourceMedicalBills)

	require.NoError(t, f.svc.DenyRequest(context.Background(), f.patientID, req.ID))

	stored, err := f.requests.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestDenied, stored.Status)
	assert.Empty(t, f.grants.rows)

	// denying twice is rejected
	assert.ErrorIs(t, f.svc.DenyRequest(context.Background(), f.patientID, req.ID), ErrNotPending)
}

func TestQRScanApproveFlow(t *testing.T) {
	f := newFixture(t)
	rec1 := f.addRecord("blood panel")
	rec2 := f.addRecord("x-ray")

	issued, err := f.svc.IssueQR(context.Background(), IssueQRInput{
		PatientID: f.patientID,
		RecordIDs: []uuid.UUID{rec1.ID, rec2.ID},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, issued.PNG)

	requesterWallet := wallet.DeriveAddress("clinic")
	g, err := f.svc.ScanGrant(context.Background(), ScanGrantInput{
		Payload:         issued.Payload,
		RequesterWallet: requesterWallet,
		RequesterName:   "City Clinic",
	})
	require.NoError(t, err)
	assert.Equal(t, model.GrantPending, g.Status)
	assert.Empty(t, g.Signature)
	assert.ElementsMatch(t, []uuid.UUID{rec1.ID, rec2.ID}, g.ResourceIDs)

	scanKey := g.SharedEncryptionKey

	sig := f.sign(t, wallet.GrantApprovalMessage(g.ID, f.now))
	approved, err := f.svc.ApproveGrant(context.Background(), f.patientID, g.ID, sig)
	require.NoError(t, err)
	assert.Equal(t, model.GrantActive, approved.Status)
	assert.Equal(t, sig, approved.Signature)
	assert.NotEqual(t, scanKey, approved.SharedEncryptionKey, "key must be reissued on approval")

	// the recipient can now fetch exactly the shared records
	shared, err := f.svc.SharedResources(context.Background(), requesterWallet, g.ID)
	require.NoError(t, err)
	assert.Len(t, shared.Records, 2)
	assert.Equal(t, 1, shared.Grant.AccessCount)
}

func TestIssueQRRejectsForeignRecords(t *testing.T) {
	f := newFixture(t)
	rec := f.addRecord("mine")

	foreign := model.MedicalRecord{ID: uuid.New(), UserID: uuid.New(), Title: "not mine"}
	f.records.rows[foreign.ID] = foreign

	_, err := f.svc.IssueQR(context.Background(), IssueQRInput{
		PatientID: f.patientID,
		RecordIDs: []uuid.UUID{rec.ID, foreign.ID},
	})
	assert.ErrorIs(t, err, ErrRecordNotOwned)
}

func TestScanGrantExpiredPayload(t *testing.T) {
	f := newFixture(t)
	rec := f.addRecord("scan me later")

	issued, err := f.svc.IssueQR(context.Background(), IssueQRInput{
		PatientID: f.patientID,
		RecordIDs: []uuid.UUID{rec.ID},
	})
	require.NoError(t, err)

	// one millisecond past the 24h window
	f.now = f.now.Add(24*time.Hour + time.Millisecond)
	_, err = f.svc.ScanGrant(context.Background(), ScanGrantInput{
		Payload:         issued.Payload,
		RequesterWallet: wallet.DeriveAddress("clinic"),
	})
	assert.ErrorIs(t, err, qr.ErrPayloadExpired)
	assert.Empty(t, f.grants.rows)
}

func TestScanGrantGarbagePayload(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ScanGrant(context.Background(), ScanGrantInput{
		Payload:         `{"type":"gift_card"}`,
		RequesterWallet: wallet.DeriveAddress("clinic"),
	})
	assert.ErrorIs(t, err, qr.ErrPayloadInvalid)
}

func TestDenyGrantKeepsRow(t *testing.T) {
	f := newFixture(t)
	rec := f.addRecord("nope")

	issued, err := f.svc.IssueQR(context.Background(), IssueQRInput{
		PatientID: f.patientID,
		RecordIDs: []uuid.UUID{rec.ID},
	})
	require.NoError(t, err)

	g, err := f.svc.ScanGrant(context.Background(), ScanGrantInput{
		Payload:         issued.Payload,
		RequesterWallet: wallet.DeriveAddress("clinic"),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DenyGrant(context.Background(), f.patientID, g.ID))

	stored, err := f.grants.GetByID(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GrantDenied, stored.Status)

	// denied grants release nothing
	_, err = f.svc.SharedResources(context.Background(), stored.RecipientWalletAddress, g.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestRevokeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	req := f.submitRequest(t, model.ResourceMedicalRecords)

	sig := f.sign(t, wallet.AccessApprovalMessage(req.ID, f.now))
	g, err := f.svc.ApproveRequest(context.Background(), f.patientID, req.ID, sig)
	require.NoError(t, err)

	require.NoError(t, f.svc.Revoke(context.Background(), f.patientID, g.ID))

	first, err := f.grants.GetByID(context.Background(), g.ID)
	require.NoError(t, err)
	require.NotNil(t, first.RevokedAt)
	firstRevokedAt := *first.RevokedAt

	// second revoke at a later time must not move revoked_at
	f.now = f.now.Add(2 * time.Hour)
	require.NoError(t, f.svc.Revoke(context.Background(), f.patientID, g.ID))

	second, err := f.grants.GetByID(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GrantRevoked, second.Status)
	require.NotNil(t, second.RevokedAt)
	assert.Equal(t, firstRevokedAt, *second.RevokedAt)
}

func TestRevokePendingGrantRejected(t *testing.T) {
	f := newFixture(t)
	rec := f.addRecord("pending")

	issued, err := f.svc.IssueQR(context.Background(), IssueQRInput{
		PatientID: f.patientID,
		RecordIDs: []uuid.UUID{rec.ID},
	})
	require.NoError(t, err)

	g, err := f.svc.ScanGrant(context.Background(), ScanGrantInput{
		Payload:         issued.Payload,
		RequesterWallet: wallet.DeriveAddress("clinic"),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Revoke(context.Background(), f.patientID, g.ID), ErrNotActive)
}

func TestSharedResourcesGateConditions(t *testing.T) {
	f := newFixture(t)
	f.addRecord("shared")

	req := f.submitRequest(t, model.ResourceMedicalRecords)
	sig := f.sign(t, wallet.AccessApprovalMessage(req.ID, f.now))
	g, err := f.svc.ApproveRequest(context.Background(), f.patientID, req.ID, sig)
	require.NoError(t, err)

	recipient := g.RecipientWalletAddress

	// active and signed: allowed, counters move
	shared, err := f.svc.SharedResources(context.Background(), recipient, g.ID)
	require.NoError(t, err)
	assert.Len(t, shared.Records, 1)
	assert.Equal(t, 1, shared.Grant.AccessCount)

	// someone else's wallet: not found, no hint the grant exists
	_, err = f.svc.SharedResources(context.Background(), wallet.DeriveAddress("stranger"), g.ID)
	assert.ErrorIs(t, err, ErrGrantNotFound)

	// expired: rejected
	f.now = g.ExpiresAt.Add(time.Second)
	_, err = f.svc.SharedResources(context.Background(), recipient, g.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	// revoked: rejected even before expiry
	f.now = g.CreatedAt.Add(time.Hour)
	require.NoError(t, f.svc.Revoke(context.Background(), f.patientID, g.ID))
	_, err = f.svc.SharedResources(context.Background(), recipient, g.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestSharedResourcesUnsignedGrantRejected(t *testing.T) {
	f := newFixture(t)

	// an active row with an empty signature should never be released;
	// belt and braces against bad writes
	g := model.AccessGrant{
		ID:                     uuid.New(),
		PatientID:              f.patientID,
		RecipientWalletAddress: wallet.DeriveAddress("clinic"),
		ResourceType:           model.ResourceMedicalRecords,
		SharedEncryptionKey:    "key",
		Status:                 model.GrantActive,
		ExpiresAt:              f.now.Add(time.Hour),
		CreatedAt:              f.now,
	}
	require.NoError(t, f.grants.Create(context.Background(), g))

	_, err := f.svc.SharedResources(context.Background(), g.RecipientWalletAddress, g.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestApproveGrantAnswersMatchingRequest(t *testing.T) {
	f := newFixture(t)
	rec := f.addRecord("both paths")

	requesterWallet := wallet.DeriveAddress("dr-house")

	// a direct request and a QR scan from the same requester
	req, err := f.svc.SubmitRequest(context.Background(), SubmitRequestInput{
		PatientWallet:   f.patientWallet,
		RequesterWallet: requesterWallet,
		ResourceType:    model.ResourceMedicalRecords,
	})
	require.NoError(t, err)

	issued, err := f.svc.IssueQR(context.Background(), IssueQRInput{
		PatientID: f.patientID,
		RecordIDs: []uuid.UUID{rec.ID},
	})
	require.NoError(t, err)

	g, err := f.svc.ScanGrant(context.Background(), ScanGrantInput{
		Payload:         issued.Payload,
		RequesterWallet: requesterWallet,
	})
	require.NoError(t, err)

	sig := f.sign(t, wallet.GrantApprovalMessage(g.ID, f.now))
	_, err = f.svc.ApproveGrant(context.Background(), f.patientID, g.ID, sig)
	require.NoError(t, err)

	stored, err := f.requests.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, stored.Status)
}
