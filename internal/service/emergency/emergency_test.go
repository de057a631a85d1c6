package emergency

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/storage/postgres"
)

type fakeRepo struct {
	rows map[uuid.UUID]model.EmergencyCard
}

func (f *fakeRepo) Upsert(_ context.Context, c model.EmergencyCard) error {
	f.rows[c.UserID] = c
	return nil
}

func (f *fakeRepo) GetByUserID(_ context.Context, userID uuid.UUID) (model.EmergencyCard, error) {
	c, ok := f.rows[userID]
	if !ok {
		return model.EmergencyCard{}, postgres.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) GetByCode(_ context.Context, code string) (model.EmergencyCard, error) {
	for _, c := range f.rows {
		if c.QRCode == code {
			return c, nil
		}
	}
	return model.EmergencyCard{}, postgres.ErrNotFound
}

func TestUpsertKeepsCode(t *testing.T) {
	repo := &fakeRepo{rows: map[uuid.UUID]model.EmergencyCard{}}
	svc := New(Config{BaseURL: "https://app.example/emergency/"}, repo)
	userID := uuid.New()

	first, err := svc.Upsert(context.Background(), UpsertInput{
		UserID:    userID,
		BloodType: "O-",
		Allergies: []string{"penicillin"},
		Contacts:  []model.EmergencyContact{{Name: "Alex", Relation: "sibling", Phone: "+1555"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.Card.QRCode)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, first.PNG[:4])

	second, err := svc.Upsert(context.Background(), UpsertInput{
		UserID:    userID,
		BloodType: "O-",
		Allergies: []string{"penicillin", "latex"},
	})
	require.NoError(t, err)
	assert.Equal(t, first.Card.QRCode, second.Card.QRCode, "printed cards must keep working")
	assert.Equal(t, first.Card.ID, second.Card.ID)
}

func TestLookup(t *testing.T) {
	repo := &fakeRepo{rows: map[uuid.UUID]model.EmergencyCard{}}
	svc := New(Config{}, repo)
	userID := uuid.New()

	view, err := svc.Upsert(context.Background(), UpsertInput{UserID: userID, BloodType: "AB+"})
	require.NoError(t, err)

	card, err := svc.Lookup(context.Background(), view.Card.QRCode)
	require.NoError(t, err)
	assert.Equal(t, "AB+", card.BloodType)

	_, err = svc.Lookup(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrCardNotFound)

	_, err = svc.Lookup(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestGetMissing(t *testing.T) {
	repo := &fakeRepo{rows: map[uuid.UUID]model.EmergencyCard{}}
	svc := New(Config{}, repo)

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrCardNotFound)
}
