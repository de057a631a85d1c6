// Package record manages a patient's medical history entries and their
// attachments. Attachments are private S3 objects; reads go through
// short-lived presigned URLs.
package record

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/storage/postgres"
)

type Repo interface {
	Create(ctx context.Context, rec model.MedicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (model.MedicalRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.MedicalRecord, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// ObjectStore is the slice of the S3 client the service needs.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PresignDownload(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type ActivityRepo interface {
	Insert(ctx context.Context, a model.ActivityLog) error
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateInput struct {
	UserID      uuid.UUID
	HospitalID  *uuid.UUID
	RecordType  model.RecordType
	Title       string
	Description string

	// Attachment is optional. FileName supplies the stored extension.
	Attachment  io.Reader
	FileName    string
	ContentType string
	Size        int64
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (*model.MedicalRecord, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*model.MedicalRecord, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.MedicalRecord, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	AttachmentURL(ctx context.Context, userID, id uuid.UUID) (string, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type recordService struct {
	records  Repo
	store    ObjectStore
	activity ActivityRepo

	now func() time.Time
}

type Deps struct {
	Records  Repo
	Store    ObjectStore
	Activity ActivityRepo
}

func New(d Deps) Service {
	return &recordService{
		records:  d.Records,
		store:    d.Store,
		activity: d.Activity,
		now:      time.Now,
	}
}

func validRecordType(t model.RecordType) bool {
	switch t {
	case model.RecordTypeLabResult, model.RecordTypePrescription, model.RecordTypeImaging,
		model.RecordTypeDiagnosis, model.RecordTypeVaccination, model.RecordTypeOther:
		return true
	}
	return false
}

func (s *recordService) Create(ctx context.Context, in CreateInput) (*model.MedicalRecord, error) {
	if !validRecordType(in.RecordType) {
		return nil, ErrInvalidType
	}

	rec := model.MedicalRecord{
		ID:          uuid.New(),
		UserID:      in.UserID,
		HospitalID:  in.HospitalID,
		RecordType:  in.RecordType,
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   s.now(),
	}

	if in.Attachment != nil {
		key := objectKey(in.UserID, rec.ID, in.FileName)
		if err := s.store.Upload(ctx, key, in.ContentType, in.Attachment, in.Size); err != nil {
			return nil, fmt.Errorf("upload attachment: %w", err)
		}
		rec.FileKey = key
	}

	if err := s.records.Create(ctx, rec); err != nil {
		// Orphaned objects are cheaper than lost rows; clean up on failure.
		if rec.FileKey != "" {
			_ = s.store.Delete(ctx, rec.FileKey)
		}
		return nil, fmt.Errorf("create record: %w", err)
	}

	s.logActivity(ctx, in.UserID, rec)
	return &rec, nil
}

func (s *recordService) Get(ctx context.Context, userID, id uuid.UUID) (*model.MedicalRecord, error) {
	rec, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *recordService) List(ctx context.Context, userID uuid.UUID) ([]model.MedicalRecord, error) {
	return s.records.ListByUser(ctx, userID)
}

func (s *recordService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	rec, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.records.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrRecordNotFound
		}
		return err
	}
	if rec.FileKey != "" {
		// The row is gone either way; a leaked object is not worth failing for.
		_ = s.store.Delete(ctx, rec.FileKey)
	}
	return nil
}

func (s *recordService) AttachmentURL(ctx context.Context, userID, id uuid.UUID) (string, error) {
	rec, err := s.owned(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if rec.FileKey == "" {
		return "", ErrNoAttachment
	}
	return s.store.PresignDownload(ctx, rec.FileKey)
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func (s *recordService) owned(ctx context.Context, userID, id uuid.UUID) (*model.MedicalRecord, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	if rec.UserID != userID {
		return nil, ErrRecordNotFound
	}
	return &rec, nil
}

func (s *recordService) logActivity(ctx context.Context, userID uuid.UUID, rec model.MedicalRecord) {
	_ = s.activity.Insert(ctx, model.ActivityLog{
		ID:           uuid.New(),
		UserID:       userID,
		ActivityType: model.ActivityRecord,
		Title:        "Added medical record",
		Description:  rec.Title,
		Metadata:     map[string]any{"record_id": rec.ID.String(), "record_type": string(rec.RecordType)},
		CreatedAt:    s.now(),
	})
}

func objectKey(userID, recordID uuid.UUID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("records/%s/%s%s", userID, recordID, ext)
}
