package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
)

type RecordsRepo struct {
	db *sql.DB
}

func NewRecordsRepo(db *sql.DB) *RecordsRepo {
	return &RecordsRepo{db: db}
}

func (r *RecordsRepo) Create(ctx context.Context, rec model.MedicalRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medical_records (id, user_id, hospital_id, record_type, title, description, file_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		rec.ID,
		rec.UserID,
		rec.HospitalID,
		string(rec.RecordType),
		rec.Title,
		toNullString(rec.Description),
		toNullString(rec.FileKey),
		rec.CreatedAt,
	)
	return err
}

func (r *RecordsRepo) GetByID(ctx context.Context, id uuid.UUID) (model.MedicalRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, hospital_id, record_type, title, description, file_key, created_at
		FROM medical_records
		WHERE id = $1
	`, id)

	rec, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.MedicalRecord{}, ErrNotFound
		}
		return model.MedicalRecord{}, err
	}
	return rec, nil
}

func (r *RecordsRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.MedicalRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, hospital_id, record_type, title, description, file_key, created_at
		FROM medical_records
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListByIDs returns the user's records whose IDs appear in ids. Rows owned
// by other users are silently excluded.
func (r *RecordsRepo) ListByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]model.MedicalRecord, error) {
	if len(ids) == 0 {
		return []model.MedicalRecord{}, nil
	}
	idsJSON, err := jsonbIn(ids)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, hospital_id, record_type, title, description, file_key, created_at
		FROM medical_records
		WHERE user_id = $1
		  AND id IN (SELECT (value#>>'{}')::uuid FROM jsonb_array_elements($2::jsonb))
		ORDER BY created_at DESC
	`, userID, idsJSON)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (r *RecordsRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM medical_records WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func collectRecords(rows *sql.Rows) ([]model.MedicalRecord, error) {
	out := make([]model.MedicalRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(scan func(...any) error) (model.MedicalRecord, error) {
	var rec model.MedicalRecord
	var hospitalID uuid.NullUUID
	var recordType string
	var description, fileKey sql.NullString

	if err := scan(&rec.ID, &rec.UserID, &hospitalID, &recordType, &rec.Title, &description, &fileKey, &rec.CreatedAt); err != nil {
		return model.MedicalRecord{}, err
	}
	if hospitalID.Valid {
		id := hospitalID.UUID
		rec.HospitalID = &id
	}
	rec.RecordType = model.RecordType(recordType)
	rec.Description = fromNullString(description)
	rec.FileKey = fromNullString(fileKey)
	return rec, nil
}
