package model

import (
	"time"

	"github.com/google/uuid"
)

// RecordType categorizes a medical record.
type RecordType string

const (
	RecordTypeLabResult    RecordType = "lab_result"
	RecordTypePrescription RecordType = "prescription"
	RecordTypeImaging      RecordType = "imaging"
	RecordTypeDiagnosis    RecordType = "diagnosis"
	RecordTypeVaccination  RecordType = "vaccination"
	RecordTypeOther        RecordType = "other"
)

// MedicalRecord is a single entry in a patient's history. FileKey points at
// the S3 object for the attachment, when one exists.
type MedicalRecord struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	HospitalID  *uuid.UUID
	RecordType  RecordType
	Title       string
	Description string
	FileKey     string
	CreatedAt   time.Time
}
