package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
)

type EmergencyRepo struct {
	db *sql.DB
}

func NewEmergencyRepo(db *sql.DB) *EmergencyRepo {
	return &EmergencyRepo{db: db}
}

// Upsert writes the user's emergency card, replacing any previous version.
func (r *EmergencyRepo) Upsert(ctx context.Context, c model.EmergencyCard) error {
	allergies, err := jsonbIn(c.Allergies)
	if err != nil {
		return err
	}
	conditions, err := jsonbIn(c.MedicalConditions)
	if err != nil {
		return err
	}
	contacts, err := jsonbIn(c.Contacts)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO emergency_access (id, user_id, blood_type, allergies, medical_conditions, emergency_contacts, qr_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			blood_type = EXCLUDED.blood_type,
			allergies = EXCLUDED.allergies,
			medical_conditions = EXCLUDED.medical_conditions,
			emergency_contacts = EXCLUDED.emergency_contacts,
			qr_code = EXCLUDED.qr_code,
			updated_at = EXCLUDED.updated_at
	`,
		c.ID, c.UserID, toNullString(c.BloodType), allergies, conditions, contacts,
		toNullString(c.QRCode), c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *EmergencyRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (model.EmergencyCard, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, blood_type, allergies, medical_conditions, emergency_contacts, qr_code, created_at, updated_at
		FROM emergency_access
		WHERE user_id = $1
	`, userID)
	return scanEmergencyCard(row.Scan)
}

// GetByCode looks a card up by its QR code value, the unauthenticated path.
func (r *EmergencyRepo) GetByCode(ctx context.Context, code string) (model.EmergencyCard, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, blood_type, allergies, medical_conditions, emergency_contacts, qr_code, created_at, updated_at
		FROM emergency_access
		WHERE qr_code = $1
	`, code)
	return scanEmergencyCard(row.Scan)
}

func scanEmergencyCard(scan func(...any) error) (model.EmergencyCard, error) {
	var c model.EmergencyCard
	var bloodType, qrCode sql.NullString
	var allergies, conditions, contacts []byte

	if err := scan(&c.ID, &c.UserID, &bloodType, &allergies, &conditions, &contacts, &qrCode, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.EmergencyCard{}, ErrNotFound
		}
		return model.EmergencyCard{}, err
	}

	c.BloodType = fromNullString(bloodType)
	c.QRCode = fromNullString(qrCode)
	if err := jsonbOut(allergies, &c.Allergies); err != nil {
		return model.EmergencyCard{}, err
	}
	if err := jsonbOut(conditions, &c.MedicalConditions); err != nil {
		return model.EmergencyCard{}, err
	}
	if err := jsonbOut(contacts, &c.Contacts); err != nil {
		return model.EmergencyCard{}, err
	}
	return c, nil
}
