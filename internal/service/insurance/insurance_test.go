package insurance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvault/medvault_backend/internal/model"
)

type fakeCoverage struct {
	policies []model.InsurancePolicy
	claims   []model.InsuranceClaim
}

func (f *fakeCoverage) ListPoliciesByUser(_ context.Context, userID uuid.UUID) ([]model.InsurancePolicy, error) {
	out := make([]model.InsurancePolicy, 0)
	for _, p := range f.policies {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCoverage) ListClaimsByUser(_ context.Context, userID uuid.UUID) ([]model.InsuranceClaim, error) {
	out := make([]model.InsuranceClaim, 0)
	for _, c := range f.claims {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func TestListPoliciesScopedToUser(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	coverage := &fakeCoverage{
		policies: []model.InsurancePolicy{
			{ID: uuid.New(), UserID: userID, PolicyNumber: "BDAG-A1", Status: model.PolicyActive, StartDate: now, EndDate: now.AddDate(1, 0, 0)},
			{ID: uuid.New(), UserID: uuid.New(), PolicyNumber: "BDAG-B2", Status: model.PolicyActive, StartDate: now, EndDate: now.AddDate(1, 0, 0)},
		},
	}

	svc := New(coverage)
	got, err := svc.ListPolicies(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "BDAG-A1", got[0].PolicyNumber)
}

func TestListClaimsScopedToUser(t *testing.T) {
	userID := uuid.New()
	policyID := uuid.New()
	coverage := &fakeCoverage{
		claims: []model.InsuranceClaim{
			{ID: uuid.New(), UserID: userID, PolicyID: policyID, ClaimNumber: "CLM-1", Status: model.ClaimPending, SubmittedAt: time.Now()},
			{ID: uuid.New(), UserID: uuid.New(), PolicyID: policyID, ClaimNumber: "CLM-2", Status: model.ClaimApproved, SubmittedAt: time.Now()},
		},
	}

	svc := New(coverage)
	got, err := svc.ListClaims(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "CLM-1", got[0].ClaimNumber)
	assert.Equal(t, model.ClaimPending, got[0].Status)
}
