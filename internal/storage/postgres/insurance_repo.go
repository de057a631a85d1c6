package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
)

type InsuranceRepo struct {
	db *sql.DB
}

func NewInsuranceRepo(db *sql.DB) *InsuranceRepo {
	return &InsuranceRepo{db: db}
}

func (r *InsuranceRepo) CreatePolicy(ctx context.Context, p model.InsurancePolicy) error {
	details, err := jsonbIn(p.CoverageDetails)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO insurance_policies (id, user_id, policy_number, provider, plan_type, coverage_amount, premium_amount, start_date, end_date, status, coverage_details, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		p.ID, p.UserID, p.PolicyNumber, p.Provider, p.PlanType,
		p.CoverageAmount, p.PremiumAmount, p.StartDate, p.EndDate,
		string(p.Status), details, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *InsuranceRepo) ListPoliciesByUser(ctx context.Context, userID uuid.UUID) ([]model.InsurancePolicy, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, policy_number, provider, plan_type, coverage_amount, premium_amount, start_date, end_date, status, coverage_details, created_at, updated_at
		FROM insurance_policies
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.InsurancePolicy, 0)
	for rows.Next() {
		var p model.InsurancePolicy
		var status string
		var details []byte
		if err := rows.Scan(&p.ID, &p.UserID, &p.PolicyNumber, &p.Provider, &p.PlanType,
			&p.CoverageAmount, &p.PremiumAmount, &p.StartDate, &p.EndDate,
			&status, &details, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Status = model.PolicyStatus(status)
		if err := jsonbOut(details, &p.CoverageDetails); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *InsuranceRepo) CreateClaim(ctx context.Context, c model.InsuranceClaim) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO insurance_claims (id, user_id, policy_id, hospital_id, claim_number, claim_type, amount, description, status, submitted_at, processed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		c.ID, c.UserID, c.PolicyID, c.HospitalID, c.ClaimNumber, c.ClaimType,
		c.Amount, toNullString(c.Description), string(c.Status),
		c.SubmittedAt, toNullTime(c.ProcessedAt), c.CreatedAt,
	)
	return err
}

func (r *InsuranceRepo) ListClaimsByUser(ctx context.Context, userID uuid.UUID) ([]model.InsuranceClaim, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, policy_id, hospital_id, claim_number, claim_type, amount, description, status, submitted_at, processed_at, created_at
		FROM insurance_claims
		WHERE user_id = $1
		ORDER BY submitted_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.InsuranceClaim, 0)
	for rows.Next() {
		var c model.InsuranceClaim
		var hospitalID uuid.NullUUID
		var description sql.NullString
		var status string
		var processedAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.UserID, &c.PolicyID, &hospitalID, &c.ClaimNumber,
			&c.ClaimType, &c.Amount, &description, &status,
			&c.SubmittedAt, &processedAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		if hospitalID.Valid {
			id := hospitalID.UUID
			c.HospitalID = &id
		}
		c.Description = fromNullString(description)
		c.Status = model.ClaimStatus(status)
		c.ProcessedAt = fromNullTime(processedAt)
		out = append(out, c)
	}
	return out, rows.Err()
}
