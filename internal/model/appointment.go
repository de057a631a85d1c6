package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

type Appointment struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	HospitalID      uuid.UUID
	AppointmentDate time.Time
	Reason          string
	Status          AppointmentStatus
	CreatedAt       time.Time
}
