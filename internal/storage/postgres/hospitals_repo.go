package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
)

type HospitalsRepo struct {
	db *sql.DB
}

func NewHospitalsRepo(db *sql.DB) *HospitalsRepo {
	return &HospitalsRepo{db: db}
}

func (r *HospitalsRepo) Create(ctx context.Context, h model.Hospital) error {
	specialties, err := jsonbIn(h.Specialties)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO hospitals (id, name, city, location, rating, specialties, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		h.ID, h.Name, h.City, h.Location, h.Rating, specialties, h.CreatedAt,
	)
	return err
}

func (r *HospitalsRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Hospital, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, city, location, rating, specialties, created_at
		FROM hospitals
		WHERE id = $1
	`, id)

	h, err := scanHospital(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Hospital{}, ErrNotFound
		}
		return model.Hospital{}, err
	}
	return h, nil
}

// List returns the directory, optionally filtered by city.
func (r *HospitalsRepo) List(ctx context.Context, city string) ([]model.Hospital, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, city, location, rating, specialties, created_at
		FROM hospitals
		WHERE ($1 = '' OR lower(city) = lower($1))
		ORDER BY rating DESC, name ASC
	`, city)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Hospital, 0)
	for rows.Next() {
		h, err := scanHospital(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func scanHospital(scan func(...any) error) (model.Hospital, error) {
	var h model.Hospital
	var specialties []byte
	if err := scan(&h.ID, &h.Name, &h.City, &h.Location, &h.Rating, &specialties, &h.CreatedAt); err != nil {
		return model.Hospital{}, err
	}
	if err := jsonbOut(specialties, &h.Specialties); err != nil {
		return model.Hospital{}, err
	}
	return h, nil
}
