package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
)

type AppointmentsRepo struct {
	db *sql.DB
}

func NewAppointmentsRepo(db *sql.DB) *AppointmentsRepo {
	return &AppointmentsRepo{db: db}
}

func (r *AppointmentsRepo) Create(ctx context.Context, a model.Appointment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO appointments (id, user_id, hospital_id, appointment_date, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		a.ID, a.UserID, a.HospitalID, a.AppointmentDate,
		toNullString(a.Reason), string(a.Status), a.CreatedAt,
	)
	return err
}

func (r *AppointmentsRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Appointment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, hospital_id, appointment_date, reason, status, created_at
		FROM appointments
		WHERE id = $1
	`, id)

	a, err := scanAppointment(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Appointment{}, ErrNotFound
		}
		return model.Appointment{}, err
	}
	return a, nil
}

func (r *AppointmentsRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Appointment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, hospital_id, appointment_date, reason, status, created_at
		FROM appointments
		WHERE user_id = $1
		ORDER BY appointment_date DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AppointmentsRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments SET status = $2 WHERE id = $1
	`, id, string(status))
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// HasConflict reports whether the user already holds a scheduled appointment
// at the same hospital within an hour of the given time.
func (r *AppointmentsRepo) HasConflict(ctx context.Context, userID, hospitalID uuid.UUID, at time.Time) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE user_id = $1
			  AND hospital_id = $2
			  AND status = 'scheduled'
			  AND appointment_date BETWEEN $3::timestamptz - interval '1 hour'
			                           AND $3::timestamptz + interval '1 hour'
		)
	`, userID, hospitalID, at)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func scanAppointment(scan func(...any) error) (model.Appointment, error) {
	var a model.Appointment
	var reason sql.NullString
	var status string
	if err := scan(&a.ID, &a.UserID, &a.HospitalID, &a.AppointmentDate, &reason, &status, &a.CreatedAt); err != nil {
		return model.Appointment{}, err
	}
	a.Reason = fromNullString(reason)
	a.Status = model.AppointmentStatus(status)
	return a, nil
}
