package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
)

// ErrInsufficientBalance is returned when a debit would push the token
// balance below zero.
var ErrInsufficientBalance = errors.New("postgres: insufficient balance")

type ProfilesRepo struct {
	db *sql.DB
}

func NewProfilesRepo(db *sql.DB) *ProfilesRepo {
	return &ProfilesRepo{db: db}
}

func (r *ProfilesRepo) Create(ctx context.Context, p model.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, full_name, wallet_address, bdag_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		p.UserID,
		toNullString(p.FullName),
		toNullString(p.WalletAddress),
		p.BDAGBalance,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *ProfilesRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (model.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, full_name, wallet_address, bdag_balance, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`, userID)
	return scanProfile(row)
}

func (r *ProfilesRepo) GetByWallet(ctx context.Context, walletAddress string) (model.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, full_name, wallet_address, bdag_balance, created_at, updated_at
		FROM profiles
		WHERE lower(wallet_address) = lower($1)
	`, walletAddress)
	return scanProfile(row)
}

func (r *ProfilesRepo) Update(ctx context.Context, p model.Profile) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET full_name = $2, wallet_address = $3, updated_at = $4
		WHERE user_id = $1
	`,
		p.UserID,
		toNullString(p.FullName),
		toNullString(p.WalletAddress),
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustBalance atomically applies a signed delta to the token balance.
// Debits that would go negative fail with ErrInsufficientBalance.
func (r *ProfilesRepo) AdjustBalance(ctx context.Context, userID uuid.UUID, delta int64) (int64, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE profiles
		SET bdag_balance = bdag_balance + $2, updated_at = now()
		WHERE user_id = $1 AND bdag_balance + $2 >= 0
		RETURNING bdag_balance
	`, userID, delta)

	var balance int64
	if err := row.Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Distinguish missing profile from insufficient funds.
			if _, gerr := r.GetByUserID(ctx, userID); gerr != nil {
				return 0, gerr
			}
			return 0, ErrInsufficientBalance
		}
		return 0, err
	}
	return balance, nil
}

func scanProfile(row *sql.Row) (model.Profile, error) {
	var p model.Profile
	var fullName, wallet sql.NullString
	if err := row.Scan(&p.UserID, &fullName, &wallet, &p.BDAGBalance, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, err
	}
	p.FullName = fromNullString(fullName)
	p.WalletAddress = fromNullString(wallet)
	return p, nil
}
