package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
)

type ActivityRepo struct {
	db *sql.DB
}

func NewActivityRepo(db *sql.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

func (r *ActivityRepo) Insert(ctx context.Context, a model.ActivityLog) error {
	metadata, err := jsonbIn(a.Metadata)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO activity_logs (id, user_id, activity_type, title, description, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		a.ID, a.UserID, string(a.ActivityType), a.Title,
		toNullString(a.Description), metadata, a.CreatedAt,
	)
	return err
}

func (r *ActivityRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, activity_type, title, description, metadata, created_at
		FROM activity_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ActivityLog, 0)
	for rows.Next() {
		var a model.ActivityLog
		var activityType string
		var description sql.NullString
		var metadata []byte
		if err := rows.Scan(&a.ID, &a.UserID, &activityType, &a.Title, &description, &metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.ActivityType = model.ActivityType(activityType)
		a.Description = fromNullString(description)
		if err := jsonbOut(metadata, &a.Metadata); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
