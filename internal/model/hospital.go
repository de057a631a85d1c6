package model

import (
	"time"

	"github.com/google/uuid"
)

// Hospital is a directory entry patients book appointments against.
type Hospital struct {
	ID          uuid.UUID
	Name        string
	City        string
	Location    string
	Rating      float64
	Specialties []string
	CreatedAt   time.Time
}
