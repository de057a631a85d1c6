package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
)

type AccessRequestsRepo struct {
	db *sql.DB
}

func NewAccessRequestsRepo(db *sql.DB) *AccessRequestsRepo {
	return &AccessRequestsRepo{db: db}
}

func (r *AccessRequestsRepo) Create(ctx context.Context, req model.AccessRequest) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO access_requests (
			id, patient_id, requester_wallet_address, requester_name,
			resource_type, reason, status, responded_at, expires_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		req.ID, req.PatientID, req.RequesterWalletAddress, toNullString(req.RequesterName),
		string(req.ResourceType), toNullString(req.Reason), string(req.Status),
		toNullTime(req.RespondedAt), req.ExpiresAt, req.CreatedAt,
	)
	return err
}

func (r *AccessRequestsRepo) GetByID(ctx context.Context, id uuid.UUID) (model.AccessRequest, error) {
	row := r.db.QueryRowContext(ctx, requestSelect+` WHERE id = $1`, id)
	req, err := scanRequest(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.AccessRequest{}, ErrNotFound
		}
		return model.AccessRequest{}, err
	}
	return req, nil
}

func (r *AccessRequestsRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]model.AccessRequest, error) {
	rows, err := r.db.QueryContext(ctx, requestSelect+`
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *AccessRequestsRepo) ListByRequester(ctx context.Context, walletAddress string) ([]model.AccessRequest, error) {
	rows, err := r.db.QueryContext(ctx, requestSelect+`
		WHERE lower(requester_wallet_address) = lower($1)
		ORDER BY created_at DESC
	`, walletAddress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// SetStatus answers a pending request. Guarding on the current status keeps
// a second answer from overwriting responded_at.
func (r *AccessRequestsRepo) SetStatus(ctx context.Context, id uuid.UUID, status model.RequestStatus, respondedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE access_requests
		SET status = $2, responded_at = $3
		WHERE id = $1 AND status = 'pending'
	`, id, string(status), respondedAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ApproveMatchingPending marks pending requests from this requester to this
// patient approved. Used when a QR grant gets approved so the two entry
// points stay consistent.
func (r *AccessRequestsRepo) ApproveMatchingPending(ctx context.Context, patientID uuid.UUID, requesterWallet string, respondedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE access_requests
		SET status = 'approved', responded_at = $3
		WHERE patient_id = $1
		  AND lower(requester_wallet_address) = lower($2)
		  AND status = 'pending'
	`, patientID, requesterWallet, respondedAt)
	return err
}

const requestSelect = `
	SELECT id, patient_id, requester_wallet_address, requester_name,
	       resource_type, reason, status, responded_at, expires_at, created_at
	FROM access_requests`

func collectRequests(rows *sql.Rows) ([]model.AccessRequest, error) {
	out := make([]model.AccessRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanRequest(scan func(...any) error) (model.AccessRequest, error) {
	var req model.AccessRequest
	var name, reason sql.NullString
	var resourceType, status string
	var respondedAt sql.NullTime

	if err := scan(
		&req.ID, &req.PatientID, &req.RequesterWalletAddress, &name,
		&resourceType, &reason, &status, &respondedAt, &req.ExpiresAt, &req.CreatedAt,
	); err != nil {
		return model.AccessRequest{}, err
	}
	req.RequesterName = fromNullString(name)
	req.ResourceType = model.ResourceType(resourceType)
	req.Reason = fromNullString(reason)
	req.Status = model.RequestStatus(status)
	req.RespondedAt = fromNullTime(respondedAt)
	return req, nil
}

type AccessGrantsRepo struct {
	db *sql.DB
}

func NewAccessGrantsRepo(db *sql.DB) *AccessGrantsRepo {
	return &AccessGrantsRepo{db: db}
}

func (r *AccessGrantsRepo) Create(ctx context.Context, g model.AccessGrant) error {
	resourceIDs, err := jsonbIn(g.ResourceIDs)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO access_grants (
			id, patient_id, recipient_wallet_address, recipient_name,
			resource_type, resource_ids, shared_encryption_key, signature,
			status, revoked_at, expires_at, access_count, last_accessed_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		g.ID, g.PatientID, g.RecipientWalletAddress, toNullString(g.RecipientName),
		string(g.ResourceType), resourceIDs, g.SharedEncryptionKey, toNullString(g.Signature),
		string(g.Status), toNullTime(g.RevokedAt), g.ExpiresAt,
		g.AccessCount, toNullTime(g.LastAccessedAt), g.CreatedAt,
	)
	return err
}

func (r *AccessGrantsRepo) GetByID(ctx context.Context, id uuid.UUID) (model.AccessGrant, error) {
	row := r.db.QueryRowContext(ctx, grantSelect+` WHERE id = $1`, id)
	g, err := scanGrant(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.AccessGrant{}, ErrNotFound
		}
		return model.AccessGrant{}, err
	}
	return g, nil
}

func (r *AccessGrantsRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]model.AccessGrant, error) {
	rows, err := r.db.QueryContext(ctx, grantSelect+`
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectGrants(rows)
}

func (r *AccessGrantsRepo) ListByRecipient(ctx context.Context, walletAddress string) ([]model.AccessGrant, error) {
	rows, err := r.db.QueryContext(ctx, grantSelect+`
		WHERE lower(recipient_wallet_address) = lower($1)
		ORDER BY created_at DESC
	`, walletAddress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectGrants(rows)
}

// Activate flips a pending grant to active with its signature and key.
func (r *AccessGrantsRepo) Activate(ctx context.Context, id uuid.UUID, signature, encryptionKey string, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE access_grants
		SET status = 'active', signature = $2, shared_encryption_key = $3, expires_at = $4
		WHERE id = $1 AND status = 'pending'
	`, id, signature, encryptionKey, expiresAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Deny marks a pending grant denied. The row is kept for audit.
func (r *AccessGrantsRepo) Deny(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE access_grants
		SET status = 'denied'
		WHERE id = $1 AND status = 'pending'
	`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Revoke moves an active grant to revoked. The status guard makes the call
// idempotent: a second revoke matches zero rows and revoked_at is untouched.
func (r *AccessGrantsRepo) Revoke(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE access_grants
		SET status = 'revoked', revoked_at = $2
		WHERE id = $1 AND status = 'active'
	`, id, at)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// TouchAccess bumps the usage counters after a successful resource fetch.
func (r *AccessGrantsRepo) TouchAccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE access_grants
		SET access_count = access_count + 1, last_accessed_at = $2
		WHERE id = $1
	`, id, at)
	return err
}

const grantSelect = `
	SELECT id, patient_id, recipient_wallet_address, recipient_name,
	       resource_type, resource_ids, shared_encryption_key, signature,
	       status, revoked_at, expires_at, access_count, last_accessed_at, created_at
	FROM access_grants`

func collectGrants(rows *sql.Rows) ([]model.AccessGrant, error) {
	out := make([]model.AccessGrant, 0)
	for rows.Next() {
		g, err := scanGrant(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func scanGrant(scan func(...any) error) (model.AccessGrant, error) {
	var g model.AccessGrant
	var name, signature sql.NullString
	var resourceType, status string
	var resourceIDs []byte
	var revokedAt, lastAccessedAt sql.NullTime

	if err := scan(
		&g.ID, &g.PatientID, &g.RecipientWalletAddress, &name,
		&resourceType, &resourceIDs, &g.SharedEncryptionKey, &signature,
		&status, &revokedAt, &g.ExpiresAt, &g.AccessCount, &lastAccessedAt, &g.CreatedAt,
	); err != nil {
		return model.AccessGrant{}, err
	}

	g.RecipientName = fromNullString(name)
	g.ResourceType = model.ResourceType(resourceType)
	if err := jsonbOut(resourceIDs, &g.ResourceIDs); err != nil {
		return model.AccessGrant{}, err
	}
	g.Signature = fromNullString(signature)
	g.Status = model.GrantStatus(status)
	g.RevokedAt = fromNullTime(revokedAt)
	g.LastAccessedAt = fromNullTime(lastAccessedAt)
	return g, nil
}
