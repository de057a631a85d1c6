// Package qr encodes and decodes the payload embedded in record-sharing QR
// codes, and renders the PNG image a patient shows to a provider.
package qr

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	// PayloadType discriminates our payloads from arbitrary scanned QR codes.
	PayloadType = "medical_records_access"

	// DefaultTTL is how long an issued payload stays scannable.
	DefaultTTL = 24 * time.Hour

	// DefaultImageSize is the rendered PNG edge length in pixels.
	DefaultImageSize = 256
)

var (
	ErrPayloadInvalid = errors.New("qr: payload invalid")
	ErrPayloadExpired = errors.New("qr: payload expired")
)

// Payload is the JSON document carried inside the QR image. Timestamps are
// epoch milliseconds so scanning clients need no date parsing.
type Payload struct {
	Type          string      `json:"type"`
	PatientID     uuid.UUID   `json:"patientId"`
	RecordIDs     []uuid.UUID `json:"recordIds"`
	PatientWallet string      `json:"patientWallet"`
	EncryptionKey string      `json:"encryptionKey"`
	Timestamp     int64       `json:"timestamp"`
	ExpiresIn     int64       `json:"expiresIn"`
}

// New builds a payload issued at the given time with the given TTL.
func New(patientID uuid.UUID, recordIDs []uuid.UUID, patientWallet, encryptionKey string, issuedAt time.Time, ttl time.Duration) Payload {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return Payload{
		Type:          PayloadType,
		PatientID:     patientID,
		RecordIDs:     recordIDs,
		PatientWallet: patientWallet,
		EncryptionKey: encryptionKey,
		Timestamp:     issuedAt.UnixMilli(),
		ExpiresIn:     ttl.Milliseconds(),
	}
}

// ExpiresAt returns the instant after which the payload must be rejected.
func (p Payload) ExpiresAt() time.Time {
	return time.UnixMilli(p.Timestamp + p.ExpiresIn)
}

// Encode serializes the payload to the JSON string embedded in the QR image.
func Encode(p Payload) (string, error) {
	if p.Type != PayloadType {
		return "", ErrPayloadInvalid
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", ErrPayloadInvalid
	}
	return string(b), nil
}

// Decode parses and validates a scanned payload against the given clock.
// Returns ErrPayloadInvalid for structural problems and ErrPayloadExpired
// when the TTL has lapsed.
func Decode(data string, now time.Time) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, ErrPayloadInvalid
	}
	if p.Type != PayloadType {
		return nil, ErrPayloadInvalid
	}
	if p.PatientID == uuid.Nil || len(p.RecordIDs) == 0 {
		return nil, ErrPayloadInvalid
	}
	if p.Timestamp <= 0 || p.ExpiresIn <= 0 {
		return nil, ErrPayloadInvalid
	}
	if now.After(p.ExpiresAt()) {
		return nil, ErrPayloadExpired
	}
	return &p, nil
}

// RenderPNG draws the encoded payload as a PNG. Highest error correction:
// codes get scanned off phone screens in poor lighting.
func RenderPNG(data string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultImageSize
	}
	png, err := qrcode.Encode(data, qrcode.Highest, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}
