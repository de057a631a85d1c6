// Package emergency manages the always-available card: blood type, allergies,
// and contacts, reachable by QR code without authentication.
package emergency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/storage/postgres"
	"github.com/medvault/medvault_backend/pkg/qr"
	"github.com/medvault/medvault_backend/pkg/util/codes"
)

type Repo interface {
	Upsert(ctx context.Context, c model.EmergencyCard) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (model.EmergencyCard, error)
	GetByCode(ctx context.Context, code string) (model.EmergencyCard, error)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type UpsertInput struct {
	UserID            uuid.UUID
	BloodType         string
	Allergies         []string
	MedicalConditions []string
	Contacts          []model.EmergencyContact
}

// CardView bundles the stored card with its rendered QR image.
type CardView struct {
	Card model.EmergencyCard
	PNG  []byte
}

type Service interface {
	Upsert(ctx context.Context, in UpsertInput) (*CardView, error)
	Get(ctx context.Context, userID uuid.UUID) (*CardView, error)
	// Lookup is the unauthenticated path used by first responders.
	Lookup(ctx context.Context, code string) (*model.EmergencyCard, error)
}

// Config controls how the public lookup URL is built.
type Config struct {
	// BaseURL prefixes the code in the rendered QR, e.g.
	// https://app.example.com/emergency/. Empty means the bare code.
	BaseURL string
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type emergencyService struct {
	cfg   Config
	cards Repo
	now   func() time.Time
}

func New(cfg Config, cards Repo) Service {
	return &emergencyService{cfg: cfg, cards: cards, now: time.Now}
}

func (s *emergencyService) Upsert(ctx context.Context, in UpsertInput) (*CardView, error) {
	now := s.now()

	card := model.EmergencyCard{
		ID:                uuid.New(),
		UserID:            in.UserID,
		BloodType:         in.BloodType,
		Allergies:         in.Allergies,
		MedicalConditions: in.MedicalConditions,
		Contacts:          in.Contacts,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	// The code survives edits so printed cards keep working.
	if existing, err := s.cards.GetByUserID(ctx, in.UserID); err == nil {
		card.ID = existing.ID
		card.QRCode = existing.QRCode
		card.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, postgres.ErrNotFound) {
		return nil, fmt.Errorf("load card: %w", err)
	}

	if card.QRCode == "" {
		code, err := codes.GenerateEmergencyCode()
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}
		card.QRCode = code
	}

	if err := s.cards.Upsert(ctx, card); err != nil {
		return nil, fmt.Errorf("save card: %w", err)
	}
	return s.render(card)
}

func (s *emergencyService) Get(ctx context.Context, userID uuid.UUID) (*CardView, error) {
	card, err := s.cards.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return s.render(card)
}

func (s *emergencyService) Lookup(ctx context.Context, code string) (*model.EmergencyCard, error) {
	if code == "" {
		return nil, ErrInvalidCode
	}
	card, err := s.cards.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return &card, nil
}

func (s *emergencyService) render(card model.EmergencyCard) (*CardView, error) {
	png, err := qr.RenderPNG(s.cfg.BaseURL+card.QRCode, 0)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	return &CardView{Card: card, PNG: png}, nil
}
