package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/storage/postgres"
)

type fakeInbox struct {
	rows map[uuid.UUID]*model.Notification
}

func newFakeInbox() *fakeInbox {
	return &fakeInbox{rows: make(map[uuid.UUID]*model.Notification)}
}

func (f *fakeInbox) add(userID uuid.UUID, read bool) uuid.UUID {
	id := uuid.New()
	f.rows[id] = &model.Notification{
		ID: id, UserID: userID, Kind: model.NotifyBill,
		Title: "Bill paid", Read: read, CreatedAt: time.Now(),
	}
	return id
}

func (f *fakeInbox) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]model.Notification, error) {
	out := make([]model.Notification, 0)
	for _, n := range f.rows {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, *n)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeInbox) MarkRead(_ context.Context, userID, id uuid.UUID) error {
	n, ok := f.rows[id]
	if !ok || n.UserID != userID {
		return postgres.ErrNotFound
	}
	n.Read = true
	return nil
}

func (f *fakeInbox) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	for _, n := range f.rows {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func TestListUnreadOnly(t *testing.T) {
	inbox := newFakeInbox()
	userID := uuid.New()
	inbox.add(userID, false)
	inbox.add(userID, true)
	inbox.add(uuid.New(), false)

	svc := New(inbox)

	all, err := svc.List(context.Background(), userID, false, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	unread, err := svc.List(context.Background(), userID, true, 0)
	require.NoError(t, err)
	assert.Len(t, unread, 1)
}

func TestMarkRead(t *testing.T) {
	inbox := newFakeInbox()
	userID := uuid.New()
	id := inbox.add(userID, false)

	svc := New(inbox)

	require.NoError(t, svc.MarkRead(context.Background(), userID, id))
	assert.True(t, inbox.rows[id].Read)

	// another user's row is invisible
	err := svc.MarkRead(context.Background(), uuid.New(), id)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	err = svc.MarkRead(context.Background(), userID, uuid.New())
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestMarkAllRead(t *testing.T) {
	inbox := newFakeInbox()
	userID := uuid.New()
	inbox.add(userID, false)
	inbox.add(userID, false)
	otherID := inbox.add(uuid.New(), false)

	svc := New(inbox)
	require.NoError(t, svc.MarkAllRead(context.Background(), userID))

	unread, err := svc.List(context.Background(), userID, true, 0)
	require.NoError(t, err)
	assert.Empty(t, unread)
	assert.False(t, inbox.rows[otherID].Read)
}
