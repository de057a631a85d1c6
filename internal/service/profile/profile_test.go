package profile

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/storage/postgres"
	"github.com/medvault/medvault_backend/pkg/wallet"
)

type fakeRepo struct {
	rows map[uuid.UUID]model.Profile
}

func (f *fakeRepo) GetByUserID(_ context.Context, userID uuid.UUID) (model.Profile, error) {
	p, ok := f.rows[userID]
	if !ok {
		return model.Profile{}, postgres.ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) GetByWallet(_ context.Context, walletAddress string) (model.Profile, error) {
	for _, p := range f.rows {
		if p.WalletAddress == walletAddress {
			return p, nil
		}
	}
	return model.Profile{}, postgres.ErrNotFound
}

func (f *fakeRepo) Update(_ context.Context, p model.Profile) error {
	if _, ok := f.rows[p.UserID]; !ok {
		return postgres.ErrNotFound
	}
	f.rows[p.UserID] = p
	return nil
}

func TestLinkWallet(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepo{rows: map[uuid.UUID]model.Profile{
		userID: {UserID: userID, FullName: "Pat"},
	}}
	svc := New(repo)

	addr := wallet.DeriveAddress("pat")
	p, err := svc.LinkWallet(context.Background(), userID, addr)
	require.NoError(t, err)
	assert.Equal(t, addr, p.WalletAddress)

	// linking the same address again is a no-op
	p, err = svc.LinkWallet(context.Background(), userID, addr)
	require.NoError(t, err)
	assert.Equal(t, addr, p.WalletAddress)
}

func TestLinkWalletRejectsMalformed(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepo{rows: map[uuid.UUID]model.Profile{userID: {UserID: userID}}}
	svc := New(repo)

	_, err := svc.LinkWallet(context.Background(), userID, "not-an-address")
	assert.ErrorIs(t, err, ErrInvalidWallet)
}

func TestLinkWalletTaken(t *testing.T) {
	addr := wallet.DeriveAddress("shared")
	a, b := uuid.New(), uuid.New()
	repo := &fakeRepo{rows: map[uuid.UUID]model.Profile{
		a: {UserID: a, WalletAddress: addr},
		b: {UserID: b},
	}}
	svc := New(repo)

	_, err := svc.LinkWallet(context.Background(), b, addr)
	assert.ErrorIs(t, err, ErrWalletTaken)
}

func TestUpdateName(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepo{rows: map[uuid.UUID]model.Profile{userID: {UserID: userID, FullName: "Old"}}}
	svc := New(repo)

	p, err := svc.UpdateName(context.Background(), userID, "New Name")
	require.NoError(t, err)
	assert.Equal(t, "New Name", p.FullName)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
