// Package donation runs verified fundraising campaigns and wallet-to-wallet
// contributions. Donations settle asynchronously: the service debits the
// donor and records a pending row; the worker confirms it, credits the
// patient, and maintains the campaign's raised amount.
package donation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/events"
	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/storage/postgres"
	"github.com/medvault/medvault_backend/pkg/util/codes"
)

type CampaignRepo interface {
	Create(ctx context.Context, c model.DonationCampaign) error
	GetByID(ctx context.Context, id uuid.UUID) (model.DonationCampaign, error)
	List(ctx context.Context, status model.CampaignStatus) ([]model.DonationCampaign, error)
	Verify(ctx context.Context, id, verifiedBy uuid.UUID, at time.Time) error
}

type DonationRepo interface {
	Create(ctx context.Context, d model.Donation) error
	ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]model.Donation, error)
	ListByDonor(ctx context.Context, donorID uuid.UUID) ([]model.Donation, error)
}

type ProfileRepo interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (model.Profile, error)
	AdjustBalance(ctx context.Context, userID uuid.UUID, delta int64) (int64, error)
}

type TransactionRepo interface {
	CreateTransaction(ctx context.Context, t model.WalletTransaction) error
}

type ActivityRepo interface {
	Insert(ctx context.Context, a model.ActivityLog) error
}

type Publisher interface {
	Publish(subject string, payloadID uuid.UUID)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateCampaignInput struct {
	PatientID       uuid.UUID
	HospitalID      uuid.UUID
	Title           string
	Description     string
	IllnessCategory string
	PatientStory    string
	PatientAge      int
	TargetAmount    int64
	UrgencyLevel    model.UrgencyLevel
	EndDate         *time.Time
}

type DonateInput struct {
	CampaignID  uuid.UUID
	DonorID     uuid.UUID
	Amount      int64
	Message     string
	IsAnonymous bool
}

type Service interface {
	CreateCampaign(ctx context.Context, in CreateCampaignInput) (*model.DonationCampaign, error)
	ListCampaigns(ctx context.Context, status model.CampaignStatus) ([]model.DonationCampaign, error)
	GetCampaign(ctx context.Context, id uuid.UUID) (*model.DonationCampaign, error)
	VerifyCampaign(ctx context.Context, campaignID, verifiedBy uuid.UUID) error

	Donate(ctx context.Context, in DonateInput) (*model.Donation, error)
	CampaignDonations(ctx context.Context, campaignID uuid.UUID) ([]model.Donation, error)
	DonorHistory(ctx context.Context, donorID uuid.UUID) ([]model.Donation, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type donationService struct {
	campaigns    CampaignRepo
	donations    DonationRepo
	profiles     ProfileRepo
	transactions TransactionRepo
	activity     ActivityRepo
	pub          Publisher

	now func() time.Time
}

type Deps struct {
	Campaigns    CampaignRepo
	Donations    DonationRepo
	Profiles     ProfileRepo
	Transactions TransactionRepo
	Activity     ActivityRepo
	Publisher    Publisher
}

func New(d Deps) Service {
	return &donationService{
		campaigns:    d.Campaigns,
		donations:    d.Donations,
		profiles:     d.Profiles,
		transactions: d.Transactions,
		activity:     d.Activity,
		pub:          d.Publisher,
		now:          time.Now,
	}
}

func (s *donationService) CreateCampaign(ctx context.Context, in CreateCampaignInput) (*model.DonationCampaign, error) {
	if in.TargetAmount <= 0 {
		return nil, ErrInvalidTarget
	}

	urgency := in.UrgencyLevel
	if urgency == "" {
		urgency = model.UrgencyMedium
	}

	now := s.now()
	c := model.DonationCampaign{
		ID:              uuid.New(),
		PatientID:       in.PatientID,
		HospitalID:      in.HospitalID,
		Title:           in.Title,
		Description:     in.Description,
		IllnessCategory: in.IllnessCategory,
		PatientStory:    in.PatientStory,
		PatientAge:      in.PatientAge,
		TargetAmount:    in.TargetAmount,
		UrgencyLevel:    urgency,
		Status:          model.CampaignPendingVerification,
		EndDate:         in.EndDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.campaigns.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	return &c, nil
}

func (s *donationService) ListCampaigns(ctx context.Context, status model.CampaignStatus) ([]model.DonationCampaign, error) {
	return s.campaigns.List(ctx, status)
}

func (s *donationService) GetCampaign(ctx context.Context, id uuid.UUID) (*model.DonationCampaign, error) {
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *donationService) VerifyCampaign(ctx context.Context, campaignID, verifiedBy uuid.UUID) error {
	if err := s.campaigns.Verify(ctx, campaignID, verifiedBy, s.now()); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrCampaignNotFound
		}
		return err
	}
	return nil
}

func (s *donationService) Donate(ctx context.Context, in DonateInput) (*model.Donation, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	c, err := s.GetCampaign(ctx, in.CampaignID)
	if err != nil {
		return nil, err
	}
	if c.Status != model.CampaignActive {
		return nil, ErrCampaignNotActive
	}

	donor, err := s.profiles.GetByUserID(ctx, in.DonorID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrDonorNotFound
		}
		return nil, fmt.Errorf("load donor: %w", err)
	}

	patient, err := s.profiles.GetByUserID(ctx, c.PatientID)
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}
	if !patient.HasWallet() {
		return nil, ErrRecipientNoWallet
	}

	if _, err := s.profiles.AdjustBalance(ctx, in.DonorID, -in.Amount); err != nil {
		if errors.Is(err, postgres.ErrInsufficientBalance) {
			return nil, ErrInsufficientBalance
		}
		return nil, fmt.Errorf("debit donor: %w", err)
	}

	now := s.now()
	hash, err := codes.GenerateSecureToken(32)
	if err != nil {
		_, _ = s.profiles.AdjustBalance(ctx, in.DonorID, in.Amount)
		return nil, err
	}

	donorID := in.DonorID
	d := model.Donation{
		ID:                     uuid.New(),
		CampaignID:             in.CampaignID,
		DonorID:                &donorID,
		DonorWalletAddress:     donor.WalletAddress,
		RecipientWalletAddress: patient.WalletAddress,
		Amount:                 in.Amount,
		Message:                in.Message,
		IsAnonymous:            in.IsAnonymous,
		TransactionHash:        "0x" + hash,
		Status:                 model.DonationPending,
		CreatedAt:              now,
	}
	if err := s.donations.Create(ctx, d); err != nil {
		_, _ = s.profiles.AdjustBalance(ctx, in.DonorID, in.Amount)
		return nil, fmt.Errorf("create donation: %w", err)
	}

	_ = s.transactions.CreateTransaction(ctx, model.WalletTransaction{
		ID:               uuid.New(),
		UserID:           in.DonorID,
		TransactionType:  model.TxDonation,
		Amount:           -in.Amount,
		RecipientAddress: patient.WalletAddress,
		TransactionHash:  d.TransactionHash,
		Status:           model.TxConfirmed,
		CreatedAt:        now,
	})

	_ = s.activity.Insert(ctx, model.ActivityLog{
		ID:           uuid.New(),
		UserID:       in.DonorID,
		ActivityType: model.ActivityDonation,
		Title:        "Donated to campaign",
		Description:  c.Title,
		Metadata:     map[string]any{"campaign_id": c.ID.String(), "amount": in.Amount},
		CreatedAt:    now,
	})

	s.pub.Publish(events.DonationCreated(in.CampaignID), d.ID)
	return &d, nil
}

func (s *donationService) CampaignDonations(ctx context.Context, campaignID uuid.UUID) ([]model.Donation, error) {
	return s.donations.ListByCampaign(ctx, campaignID)
}

func (s *donationService) DonorHistory(ctx context.Context, donorID uuid.UUID) ([]model.Donation, error) {
	return s.donations.ListByDonor(ctx, donorID)
}
