package donation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/storage/postgres"
	"github.com/medvault/medvault_backend/pkg/wallet"
)

type fakeCampaigns struct {
	rows map[uuid.UUID]model.DonationCampaign
}

func (f *fakeCampaigns) Create(_ context.Context, c model.DonationCampaign) error {
	f.rows[c.ID] = c
	return nil
}

func (f *fakeCampaigns) GetByID(_ context.Context, id uuid.UUID) (model.DonationCampaign, error) {
	c, ok := f.rows[id]
	if !ok {
		return model.DonationCampaign{}, postgres.ErrNotFound
	}
	return c, nil
}

func (f *fakeCampaigns) List(_ context.Context, status model.CampaignStatus) ([]model.DonationCampaign, error) {
	out := []model.DonationCampaign{}
	for _, c := range f.rows {
		if status == "" || c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCampaigns) Verify(_ context.Context, id, verifiedBy uuid.UUID, at time.Time) error {
	c, ok := f.rows[id]
	if !ok || c.Status != model.CampaignPendingVerification {
		return postgres.ErrNotFound
	}
	c.Status = model.CampaignActive
	c.VerifiedBy = &verifiedBy
	c.VerifiedAt = &at
	c.StartDate = &at
	f.rows[id] = c
	return nil
}

type fakeDonations struct {
	rows map[uuid.UUID]model.Donation
}

func (f *fakeDonations) Create(_ context.Context, d model.Donation) error {
	f.rows[d.ID] = d
	return nil
}

func (f *fakeDonations) ListByCampaign(_ context.Context, campaignID uuid.UUID) ([]model.Donation, error) {
	out := []model.Donation{}
	for _, d := range f.rows {
		if d.CampaignID == campaignID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDonations) ListByDonor(_ context.Context, donorID uuid.UUID) ([]model.Donation, error) {
	out := []model.Donation{}
	for _, d := range f.rows {
		if d.DonorID != nil && *d.DonorID == donorID {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeProfiles struct {
	rows map[uuid.UUID]model.Profile
}

func (f *fakeProfiles) GetByUserID(_ context.Context, userID uuid.UUID) (model.Profile, error) {
	p, ok := f.rows[userID]
	if !ok {
		return model.Profile{}, postgres.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfiles) AdjustBalance(_ context.Context, userID uuid.UUID, delta int64) (int64, error) {
	p, ok := f.rows[userID]
	if !ok {
		return 0, postgres.ErrNotFound
	}
	if p.BDAGBalance+delta < 0 {
		return 0, postgres.ErrInsufficientBalance
	}
	p.BDAGBalance += delta
	f.rows[userID] = p
	return p.BDAGBalance, nil
}

type fakeTransactions struct{ rows []model.WalletTransaction }

func (f *fakeTransactions) CreateTransaction(_ context.Context, t model.WalletTransaction) error {
	f.rows = append(f.rows, t)
	return nil
}

type fakeActivity struct{ rows []model.ActivityLog }

func (f *fakeActivity) Insert(_ context.Context, a model.ActivityLog) error {
	f.rows = append(f.rows, a)
	return nil
}

type fakePublisher struct{ published []string }

func (f *fakePublisher) Publish(subject string, _ uuid.UUID) {
	f.published = append(f.published, subject)
}

type fixture struct {
	svc       Service
	campaigns *fakeCampaigns
	profiles  *fakeProfiles
	pub       *fakePublisher
	patientID uuid.UUID
	donorID   uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		campaigns: &fakeCampaigns{rows: map[uuid.UUID]model.DonationCampaign{}},
		pub:       &fakePublisher{},
		patientID: uuid.New(),
		donorID:   uuid.New(),
	}
	f.profiles = &fakeProfiles{rows: map[uuid.UUID]model.Profile{
		f.patientID: {UserID: f.patientID, WalletAddress: wallet.DeriveAddress("patient")},
		f.donorID:   {UserID: f.donorID, WalletAddress: wallet.DeriveAddress("donor"), BDAGBalance: 100},
	}}
	f.svc = New(Deps{
		Campaigns:    f.campaigns,
		Donations:    &fakeDonations{rows: map[uuid.UUID]model.Donation{}},
		Profiles:     f.profiles,
		Transactions: &fakeTransactions{},
		Activity:     &fakeActivity{},
		Publisher:    f.pub,
	})
	return f
}

func (f *fixture) activeCampaign(t *testing.T) *model.DonationCampaign {
	t.Helper()
	c, err := f.svc.CreateCampaign(context.Background(), CreateCampaignInput{
		PatientID:       f.patientID,
		HospitalID:      uuid.New(),
		Title:           "Heart surgery for Sam",
		IllnessCategory: "cardiology",
		TargetAmount:    1000,
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.VerifyCampaign(context.Background(), c.ID, uuid.New()))
	return c
}

func TestCampaignLifecycle(t *testing.T) {
	f := newFixture()

	c, err := f.svc.CreateCampaign(context.Background(), CreateCampaignInput{
		PatientID:    f.patientID,
		HospitalID:   uuid.New(),
		Title:        "Campaign",
		TargetAmount: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, model.CampaignPendingVerification, c.Status)
	assert.Equal(t, model.UrgencyMedium, c.UrgencyLevel)

	// not donatable until verified
	_, err = f.svc.Donate(context.Background(), DonateInput{CampaignID: c.ID, DonorID: f.donorID, Amount: 10})
	assert.ErrorIs(t, err, ErrCampaignNotActive)

	require.NoError(t, f.svc.VerifyCampaign(context.Background(), c.ID, uuid.New()))
	got, err := f.svc.GetCampaign(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignActive, got.Status)
	require.NotNil(t, got.VerifiedAt)

	// re-verifying an already active campaign is rejected
	assert.ErrorIs(t, f.svc.VerifyCampaign(context.Background(), c.ID, uuid.New()), ErrCampaignNotFound)
}

func TestDonate(t *testing.T) {
	f := newFixture()
	c := f.activeCampaign(t)

	d, err := f.svc.Donate(context.Background(), DonateInput{
		CampaignID: c.ID,
		DonorID:    f.donorID,
		Amount:     60,
		Message:    "get well soon",
	})
	require.NoError(t, err)
	assert.Equal(t, model.DonationPending, d.Status)
	assert.NotEmpty(t, d.TransactionHash)
	assert.Equal(t, int64(40), f.profiles.rows[f.donorID].BDAGBalance)

	// settlement is the worker's job, not the handler's
	got, err := f.svc.GetCampaign(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.RaisedAmount)
	assert.Len(t, f.pub.published, 1)
}

func TestDonateInsufficientBalance(t *testing.T) {
	f := newFixture()
	c := f.activeCampaign(t)

	_, err := f.svc.Donate(context.Background(), DonateInput{CampaignID: c.ID, DonorID: f.donorID, Amount: 500})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(100), f.profiles.rows[f.donorID].BDAGBalance)
}

func TestDonateRequiresRecipientWallet(t *testing.T) {
	f := newFixture()

	// patient never linked a wallet
	p := f.profiles.rows[f.patientID]
	p.WalletAddress = ""
	f.profiles.rows[f.patientID] = p

	c := f.activeCampaign(t)
	_, err := f.svc.Donate(context.Background(), DonateInput{CampaignID: c.ID, DonorID: f.donorID, Amount: 10})
	assert.ErrorIs(t, err, ErrRecipientNoWallet)
}

func TestCreateCampaignValidation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateCampaign(context.Background(), CreateCampaignInput{
		PatientID:    f.patientID,
		TargetAmount: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidTarget)
}
