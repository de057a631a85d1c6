// Package activity exposes the append-only audit trail to its owner.
package activity

import (
	"context"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
)

type Repo interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.ActivityLog, error)
}

type Service interface {
	List(ctx context.Context, userID uuid.UUID, limit int) ([]model.ActivityLog, error)
}

type activityService struct {
	logs Repo
}

func New(logs Repo) Service {
	return &activityService{logs: logs}
}

func (s *activityService) List(ctx context.Context, userID uuid.UUID, limit int) ([]model.ActivityLog, error) {
	return s.logs.ListByUser(ctx, userID, limit)
}
