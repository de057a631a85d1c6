// Package profile manages the patient identity attached to an account,
// including the one-time wallet link that the consent flows depend on.
package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/storage/postgres"
	"github.com/medvault/medvault_backend/pkg/wallet"
)

type Repo interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (model.Profile, error)
	GetByWallet(ctx context.Context, walletAddress string) (model.Profile, error)
	Update(ctx context.Context, p model.Profile) error
}

type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	UpdateName(ctx context.Context, userID uuid.UUID, fullName string) (*model.Profile, error)
	LinkWallet(ctx context.Context, userID uuid.UUID, walletAddress string) (*model.Profile, error)
}

type profileService struct {
	profiles Repo
	now      func() time.Time
}

func New(profiles Repo) Service {
	return &profileService{profiles: profiles, now: time.Now}
}

func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *profileService) UpdateName(ctx context.Context, userID uuid.UUID, fullName string) (*model.Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	p.FullName = fullName
	p.UpdatedAt = s.now()
	if err := s.profiles.Update(ctx, *p); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}

// LinkWallet attaches a wallet address to the profile. Addresses are unique
// across accounts: consent lookups resolve patients by wallet.
func (s *profileService) LinkWallet(ctx context.Context, userID uuid.UUID, walletAddress string) (*model.Profile, error) {
	if !wallet.IsValidAddress(walletAddress) {
		return nil, ErrInvalidWallet
	}

	if existing, err := s.profiles.GetByWallet(ctx, walletAddress); err == nil {
		if existing.UserID == userID {
			return &existing, nil
		}
		return nil, ErrWalletTaken
	} else if !errors.Is(err, postgres.ErrNotFound) {
		return nil, fmt.Errorf("check wallet: %w", err)
	}

	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	p.WalletAddress = walletAddress
	p.UpdatedAt = s.now()
	if err := s.profiles.Update(ctx, *p); err != nil {
		return nil, fmt.Errorf("link wallet: %w", err)
	}
	return p, nil
}
