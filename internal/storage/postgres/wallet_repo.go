package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
)

type WalletRepo struct {
	db *sql.DB
}

func NewWalletRepo(db *sql.DB) *WalletRepo {
	return &WalletRepo{db: db}
}

func (r *WalletRepo) CreateTransaction(ctx context.Context, t model.WalletTransaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wallet_transactions (id, user_id, transaction_type, amount, recipient_address, transaction_hash, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		t.ID, t.UserID, string(t.TransactionType), t.Amount,
		toNullString(t.RecipientAddress), toNullString(t.TransactionHash),
		string(t.Status), t.CreatedAt,
	)
	return err
}

func (r *WalletRepo) ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]model.WalletTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, transaction_type, amount, recipient_address, transaction_hash, status, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.WalletTransaction, 0)
	for rows.Next() {
		var t model.WalletTransaction
		var txType, status string
		var recipient, hash sql.NullString
		if err := rows.Scan(&t.ID, &t.UserID, &txType, &t.Amount, &recipient, &hash, &status, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.TransactionType = model.TransactionType(txType)
		t.RecipientAddress = fromNullString(recipient)
		t.TransactionHash = fromNullString(hash)
		t.Status = model.TransactionStatus(status)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *WalletRepo) CreatePurchase(ctx context.Context, p model.PurchaseOrder) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO purchase_orders (id, user_id, amount, authority, ref_id, status, created_at, verified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		p.ID, p.UserID, p.Amount, p.Authority, p.RefID,
		string(p.Status), p.CreatedAt, toNullTime(p.VerifiedAt),
	)
	return err
}

func (r *WalletRepo) GetPurchaseByAuthority(ctx context.Context, authority string) (model.PurchaseOrder, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, amount, authority, ref_id, status, created_at, verified_at
		FROM purchase_orders
		WHERE authority = $1
	`, authority)
	return scanPurchase(row.Scan)
}

func (r *WalletRepo) GetPurchaseByID(ctx context.Context, id uuid.UUID) (model.PurchaseOrder, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, amount, authority, ref_id, status, created_at, verified_at
		FROM purchase_orders
		WHERE id = $1
	`, id)
	return scanPurchase(row.Scan)
}

func scanPurchase(scan func(...any) error) (model.PurchaseOrder, error) {
	var p model.PurchaseOrder
	var status string
	var verifiedAt sql.NullTime
	if err := scan(&p.ID, &p.UserID, &p.Amount, &p.Authority, &p.RefID, &status, &p.CreatedAt, &verifiedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PurchaseOrder{}, ErrNotFound
		}
		return model.PurchaseOrder{}, err
	}
	p.Status = model.PurchaseStatus(status)
	p.VerifiedAt = fromNullTime(verifiedAt)
	return p, nil
}

// SettlePurchase records the gateway verdict. Only pending orders move, so a
// replayed callback cannot double-credit.
func (r *WalletRepo) SettlePurchase(ctx context.Context, id uuid.UUID, status model.PurchaseStatus, refID int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE purchase_orders
		SET status = $2, ref_id = $3, verified_at = $4
		WHERE id = $1 AND status = 'pending'
	`, id, string(status), refID, at)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
