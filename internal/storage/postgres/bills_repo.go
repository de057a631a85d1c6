package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
)

type BillsRepo struct {
	db *sql.DB
}

func NewBillsRepo(db *sql.DB) *BillsRepo {
	return &BillsRepo{db: db}
}

func (r *BillsRepo) Create(ctx context.Context, b model.MedicalBill) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medical_bills (id, user_id, hospital_id, amount, category, description, status, transaction_hash, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		b.ID, b.UserID, b.HospitalID, b.Amount,
		toNullString(b.Category), toNullString(b.Description),
		string(b.Status), toNullString(b.TransactionHash),
		toNullTime(b.PaidAt), b.CreatedAt,
	)
	return err
}

func (r *BillsRepo) GetByID(ctx context.Context, id uuid.UUID) (model.MedicalBill, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, hospital_id, amount, category, description, status, transaction_hash, paid_at, created_at
		FROM medical_bills
		WHERE id = $1
	`, id)

	b, err := scanBill(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.MedicalBill{}, ErrNotFound
		}
		return model.MedicalBill{}, err
	}
	return b, nil
}

func (r *BillsRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.MedicalBill, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, hospital_id, amount, category, description, status, transaction_hash, paid_at, created_at
		FROM medical_bills
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBills(rows)
}

// ListByIDs returns the user's bills whose IDs appear in ids.
func (r *BillsRepo) ListByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]model.MedicalBill, error) {
	if len(ids) == 0 {
		return []model.MedicalBill{}, nil
	}
	idsJSON, err := jsonbIn(ids)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, hospital_id, amount, category, description, status, transaction_hash, paid_at, created_at
		FROM medical_bills
		WHERE user_id = $1
		  AND id IN (SELECT (value#>>'{}')::uuid FROM jsonb_array_elements($2::jsonb))
		ORDER BY created_at DESC
	`, userID, idsJSON)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBills(rows)
}

// MarkPaid flips a pending bill to paid in one statement; returns ErrNotFound
// when the bill is missing or already paid.
func (r *BillsRepo) MarkPaid(ctx context.Context, id uuid.UUID, txHash string, paidAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medical_bills
		SET status = 'paid', transaction_hash = $2, paid_at = $3
		WHERE id = $1 AND status = 'pending'
	`, id, txHash, paidAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func collectBills(rows *sql.Rows) ([]model.MedicalBill, error) {
	out := make([]model.MedicalBill, 0)
	for rows.Next() {
		b, err := scanBill(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBill(scan func(...any) error) (model.MedicalBill, error) {
	var b model.MedicalBill
	var hospitalID uuid.NullUUID
	var category, description, txHash sql.NullString
	var status string
	var paidAt sql.NullTime

	if err := scan(&b.ID, &b.UserID, &hospitalID, &b.Amount, &category, &description, &status, &txHash, &paidAt, &b.CreatedAt); err != nil {
		return model.MedicalBill{}, err
	}
	if hospitalID.Valid {
		id := hospitalID.UUID
		b.HospitalID = &id
	}
	b.Category = fromNullString(category)
	b.Description = fromNullString(description)
	b.Status = model.BillStatus(status)
	b.TransactionHash = fromNullString(txHash)
	b.PaidAt = fromNullTime(paidAt)
	return b, nil
}
