package record

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/storage/postgres"
)

type fakeRepo struct {
	rows map[uuid.UUID]model.MedicalRecord
}

func (f *fakeRepo) Create(_ context.Context, rec model.MedicalRecord) error {
	f.rows[rec.ID] = rec
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (model.MedicalRecord, error) {
	rec, ok := f.rows[id]
	if !ok {
		return model.MedicalRecord{}, postgres.ErrNotFound
	}
	return rec, nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.MedicalRecord, error) {
	out := []model.MedicalRecord{}
	for _, rec := range f.rows {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	rec, ok := f.rows[id]
	if !ok || rec.UserID != userID {
		return postgres.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeStore struct {
	objects map[string][]byte
}

func (f *fakeStore) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStore) PresignDownload(_ context.Context, key string) (string, error) {
	return "https://store.example/" + key + "?signed", nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

type fakeActivity struct {
	rows []model.ActivityLog
}

func (f *fakeActivity) Insert(_ context.Context, a model.ActivityLog) error {
	f.rows = append(f.rows, a)
	return nil
}

func newTestService() (Service, *fakeRepo, *fakeStore, *fakeActivity) {
	repo := &fakeRepo{rows: map[uuid.UUID]model.MedicalRecord{}}
	store := &fakeStore{objects: map[string][]byte{}}
	activity := &fakeActivity{}
	return New(Deps{Records: repo, Store: store, Activity: activity}), repo, store, activity
}

func TestCreateWithAttachment(t *testing.T) {
	svc, _, store, activity := newTestService()
	userID := uuid.New()

	rec, err := svc.Create(context.Background(), CreateInput{
		UserID:      userID,
		RecordType:  model.RecordTypeImaging,
		Title:       "Chest X-Ray",
		Attachment:  bytes.NewReader([]byte("png-bytes")),
		FileName:    "xray.PNG",
		ContentType: "image/png",
		Size:        9,
	})
	require.NoError(t, err)
	assert.Contains(t, rec.FileKey, "records/"+userID.String()+"/")
	assert.Contains(t, rec.FileKey, ".png", "extension is lowercased")
	assert.Equal(t, []byte("png-bytes"), store.objects[rec.FileKey])

	require.Len(t, activity.rows, 1)
	assert.Equal(t, model.ActivityRecord, activity.rows[0].ActivityType)

	url, err := svc.AttachmentURL(context.Background(), userID, rec.ID)
	require.NoError(t, err)
	assert.Contains(t, url, rec.FileKey)
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{
		UserID:     uuid.New(),
		RecordType: model.RecordType("horoscope"),
		Title:      "Stars",
	})
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestAttachmentURLWithoutFile(t *testing.T) {
	svc, _, _, _ := newTestService()
	userID := uuid.New()

	rec, err := svc.Create(context.Background(), CreateInput{
		UserID:     userID,
		RecordType: model.RecordTypeDiagnosis,
		Title:      "Notes only",
	})
	require.NoError(t, err)

	_, err = svc.AttachmentURL(context.Background(), userID, rec.ID)
	assert.ErrorIs(t, err, ErrNoAttachment)
}

func TestOwnershipEnforced(t *testing.T) {
	svc, _, _, _ := newTestService()
	owner := uuid.New()

	rec, err := svc.Create(context.Background(), CreateInput{
		UserID:     owner,
		RecordType: model.RecordTypeLabResult,
		Title:      "CBC",
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New(), rec.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	err = svc.Delete(context.Background(), uuid.New(), rec.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestDeleteRemovesObject(t *testing.T) {
	svc, repo, store, _ := newTestService()
	userID := uuid.New()

	rec, err := svc.Create(context.Background(), CreateInput{
		UserID:      userID,
		RecordType:  model.RecordTypePrescription,
		Title:       "Rx",
		Attachment:  bytes.NewReader([]byte("pdf")),
		FileName:    "rx.pdf",
		ContentType: "application/pdf",
		Size:        3,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), userID, rec.ID))
	assert.Empty(t, repo.rows)
	assert.Empty(t, store.objects)
}
