package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
)

type CampaignsRepo struct {
	db *sql.DB
}

func NewCampaignsRepo(db *sql.DB) *CampaignsRepo {
	return &CampaignsRepo{db: db}
}

func (r *CampaignsRepo) Create(ctx context.Context, c model.DonationCampaign) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO donation_campaigns (
			id, patient_id, hospital_id, title, description, illness_category,
			patient_story, patient_age, target_amount, raised_amount,
			urgency_level, status, verified_by, verified_at,
			start_date, end_date, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`,
		c.ID, c.PatientID, c.HospitalID, c.Title, c.Description, c.IllnessCategory,
		toNullString(c.PatientStory), c.PatientAge, c.TargetAmount, c.RaisedAmount,
		string(c.UrgencyLevel), string(c.Status), c.VerifiedBy, toNullTime(c.VerifiedAt),
		toNullTime(c.StartDate), toNullTime(c.EndDate), c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *CampaignsRepo) GetByID(ctx context.Context, id uuid.UUID) (model.DonationCampaign, error) {
	row := r.db.QueryRowContext(ctx, campaignSelect+` WHERE id = $1`, id)
	c, err := scanCampaign(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.DonationCampaign{}, ErrNotFound
		}
		return model.DonationCampaign{}, err
	}
	return c, nil
}

// List returns campaigns, optionally filtered by status.
func (r *CampaignsRepo) List(ctx context.Context, status model.CampaignStatus) ([]model.DonationCampaign, error) {
	rows, err := r.db.QueryContext(ctx, campaignSelect+`
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
	`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.DonationCampaign, 0)
	for rows.Next() {
		c, err := scanCampaign(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Verify marks a pending campaign active. Idempotence is not needed here:
// re-verifying an active campaign is a no-op by the status filter.
func (r *CampaignsRepo) Verify(ctx context.Context, id, verifiedBy uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE donation_campaigns
		SET status = 'active', verified_by = $2, verified_at = $3, start_date = $3, updated_at = $3
		WHERE id = $1 AND status = 'pending_verification'
	`, id, verifiedBy, at)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddRaised bumps raised_amount and completes the campaign when the target
// is met. Called by the donation worker, never by handlers.
func (r *CampaignsRepo) AddRaised(ctx context.Context, id uuid.UUID, amount int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE donation_campaigns
		SET raised_amount = raised_amount + $2,
		    status = CASE WHEN raised_amount + $2 >= target_amount THEN 'completed' ELSE status END,
		    updated_at = now()
		WHERE id = $1
	`, id, amount)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const campaignSelect = `
	SELECT id, patient_id, hospital_id, title, description, illness_category,
	       patient_story, patient_age, target_amount, raised_amount,
	       urgency_level, status, verified_by, verified_at,
	       start_date, end_date, created_at, updated_at
	FROM donation_campaigns`

func scanCampaign(scan func(...any) error) (model.DonationCampaign, error) {
	var c model.DonationCampaign
	var patientStory sql.NullString
	var urgency, status string
	var verifiedBy uuid.NullUUID
	var verifiedAt, startDate, endDate sql.NullTime

	if err := scan(
		&c.ID, &c.PatientID, &c.HospitalID, &c.Title, &c.Description, &c.IllnessCategory,
		&patientStory, &c.PatientAge, &c.TargetAmount, &c.RaisedAmount,
		&urgency, &status, &verifiedBy, &verifiedAt,
		&startDate, &endDate, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return model.DonationCampaign{}, err
	}

	c.PatientStory = fromNullString(patientStory)
	c.UrgencyLevel = model.UrgencyLevel(urgency)
	c.Status = model.CampaignStatus(status)
	if verifiedBy.Valid {
		id := verifiedBy.UUID
		c.VerifiedBy = &id
	}
	c.VerifiedAt = fromNullTime(verifiedAt)
	c.StartDate = fromNullTime(startDate)
	c.EndDate = fromNullTime(endDate)
	return c, nil
}
