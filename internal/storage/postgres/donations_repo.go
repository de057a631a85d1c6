package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
)

type DonationsRepo struct {
	db *sql.DB
}

func NewDonationsRepo(db *sql.DB) *DonationsRepo {
	return &DonationsRepo{db: db}
}

func (r *DonationsRepo) Create(ctx context.Context, d model.Donation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO donations (
			id, campaign_id, donor_id, donor_wallet_address, recipient_wallet_address,
			amount, message, is_anonymous, transaction_hash, status, confirmed_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		d.ID, d.CampaignID, d.DonorID, d.DonorWalletAddress, d.RecipientWalletAddress,
		d.Amount, toNullString(d.Message), d.IsAnonymous, d.TransactionHash,
		string(d.Status), toNullTime(d.ConfirmedAt), d.CreatedAt,
	)
	return err
}

func (r *DonationsRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Donation, error) {
	row := r.db.QueryRowContext(ctx, donationSelect+` WHERE id = $1`, id)
	d, err := scanDonation(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Donation{}, ErrNotFound
		}
		return model.Donation{}, err
	}
	return d, nil
}

func (r *DonationsRepo) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]model.Donation, error) {
	rows, err := r.db.QueryContext(ctx, donationSelect+`
		WHERE campaign_id = $1
		ORDER BY created_at DESC
	`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDonations(rows)
}

func (r *DonationsRepo) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]model.Donation, error) {
	rows, err := r.db.QueryContext(ctx, donationSelect+`
		WHERE donor_id = $1
		ORDER BY created_at DESC
	`, donorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDonations(rows)
}

// Confirm flips a pending donation to confirmed; returns ErrNotFound when
// missing or already settled, making the worker's retry idempotent.
func (r *DonationsRepo) Confirm(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE donations
		SET status = 'confirmed', confirmed_at = $2
		WHERE id = $1 AND status = 'pending'
	`, id, at)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const donationSelect = `
	SELECT id, campaign_id, donor_id, donor_wallet_address, recipient_wallet_address,
	       amount, message, is_anonymous, transaction_hash, status, confirmed_at, created_at
	FROM donations`

func collectDonations(rows *sql.Rows) ([]model.Donation, error) {
	out := make([]model.Donation, 0)
	for rows.Next() {
		d, err := scanDonation(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDonation(scan func(...any) error) (model.Donation, error) {
	var d model.Donation
	var donorID uuid.NullUUID
	var message sql.NullString
	var status string
	var confirmedAt sql.NullTime

	if err := scan(
		&d.ID, &d.CampaignID, &donorID, &d.DonorWalletAddress, &d.RecipientWalletAddress,
		&d.Amount, &message, &d.IsAnonymous, &d.TransactionHash, &status, &confirmedAt, &d.CreatedAt,
	); err != nil {
		return model.Donation{}, err
	}
	if donorID.Valid {
		id := donorID.UUID
		d.DonorID = &id
	}
	d.Message = fromNullString(message)
	d.Status = model.DonationStatus(status)
	d.ConfirmedAt = fromNullTime(confirmedAt)
	return d, nil
}
