// Package insurance exposes a patient's coverage: policies and the claims
// filed against them. Rows originate from the insurer side, so this API is
// read-only.
package insurance

import (
	"context"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
)

type Repo interface {
	ListPoliciesByUser(ctx context.Context, userID uuid.UUID) ([]model.InsurancePolicy, error)
	ListClaimsByUser(ctx context.Context, userID uuid.UUID) ([]model.InsuranceClaim, error)
}

type Service interface {
	ListPolicies(ctx context.Context, userID uuid.UUID) ([]model.InsurancePolicy, error)
	ListClaims(ctx context.Context, userID uuid.UUID) ([]model.InsuranceClaim, error)
}

type insuranceService struct {
	coverage Repo
}

func New(coverage Repo) Service {
	return &insuranceService{coverage: coverage}
}

func (s *insuranceService) ListPolicies(ctx context.Context, userID uuid.UUID) ([]model.InsurancePolicy, error) {
	return s.coverage.ListPoliciesByUser(ctx, userID)
}

func (s *insuranceService) ListClaims(ctx context.Context, userID uuid.UUID) ([]model.InsuranceClaim, error) {
	return s.coverage.ListClaimsByUser(ctx, userID)
}
