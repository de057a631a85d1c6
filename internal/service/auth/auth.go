// Package auth handles account registration, email/password login, and the
// access/refresh token pair. Sessions live in Redis; deleting the session row
// is how logout invalidates outstanding refresh tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/storage/postgres"
	pasetotoken "github.com/medvault/medvault_backend/pkg/paseto"
	"github.com/medvault/medvault_backend/pkg/util/password"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthResult struct {
	User   model.User
	Tokens TokenPair
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, pass string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
}

type Config struct {
	SessionTTL time.Duration
	Hasher     *password.Params
}

func (c Config) withDefaults() Config {
	if c.SessionTTL <= 0 {
		c.SessionTTL = 30 * 24 * time.Hour
	}
	if c.Hasher == nil {
		c.Hasher = password.DefaultParams()
	}
	return c
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type authService struct {
	cfg Config

	users    UserRepo
	profiles ProfileRepo
	sessions SessionStore
	tokens   *pasetotoken.Manager

	now func() time.Time
}

type Deps struct {
	Users    UserRepo
	Profiles ProfileRepo
	Sessions SessionStore
	Tokens   *pasetotoken.Manager
}

func New(cfg Config, d Deps) Service {
	return &authService{
		cfg:      cfg.withDefaults(),
		users:    d.Users,
		profiles: d.Profiles,
		sessions: d.Sessions,
		tokens:   d.Tokens,
		now:      time.Now,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, postgres.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := password.HashWithParams(in.Password, s.cfg.Hasher)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	u := model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Every user gets a profile row immediately; the wallet gets linked later.
	if err := s.profiles.Create(ctx, model.Profile{
		UserID:    u.ID,
		FullName:  in.FullName,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	tokens, err := s.openSession(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Tokens: *tokens}, nil
}

func (s *authService) Login(ctx context.Context, email, pass string) (*AuthResult, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := password.Verify(pass, u.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.openSession(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Tokens: *tokens}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !claims.IsRefresh() || claims.SessionID == nil {
		return nil, ErrInvalidToken
	}

	userID, err := s.sessions.UserID(ctx, *claims.SessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if userID != claims.UserID {
		return nil, ErrInvalidToken
	}

	// Rotate: the old session dies with this call.
	if err := s.sessions.Delete(ctx, *claims.SessionID); err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}
	return s.openSession(ctx, userID)
}

func (s *authService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessions.Delete(ctx, sessionID)
}

func (s *authService) openSession(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	sessionID := uuid.New()
	if err := s.sessions.Save(ctx, sessionID, userID, s.cfg.SessionTTL); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	access, err := s.tokens.IssueAccess(userID, &sessionID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefresh(userID, &sessionID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
