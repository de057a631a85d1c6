package model

import (
	"time"

	"github.com/google/uuid"
)

// EmergencyContact is a person to reach when the patient cannot respond.
type EmergencyContact struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
	Phone    string `json:"phone"`
}

// EmergencyCard is the always-available subset of a patient's record,
// reachable through its own QR code without authentication.
type EmergencyCard struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	BloodType         string
	Allergies         []string
	MedicalConditions []string
	Contacts          []EmergencyContact
	QRCode            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
