// Package notification exposes the per-user inbox written by the event
// workers. Clients poll the list and mark rows read.
package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/storage/postgres"
)

var ErrNotificationNotFound = errors.New("notification not found")

type Repo interface {
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

type Service interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

type notificationService struct {
	inbox Repo
}

func New(inbox Repo) Service {
	return &notificationService{inbox: inbox}
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]model.Notification, error) {
	return s.inbox.ListByUser(ctx, userID, unreadOnly, limit)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.inbox.MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.inbox.MarkAllRead(ctx, userID)
}
