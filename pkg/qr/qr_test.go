package qr

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	patient := uuid.New()
	records := []uuid.UUID{uuid.New(), uuid.New()}

	p := New(patient, records, "0xabcdef1234567890abcdef1234567890abcdef12", "a1b2c3", issued, DefaultTTL)
	data, err := Encode(p)
	require.NoError(t, err)

	got, err := Decode(data, issued.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, patient, got.PatientID)
	assert.Equal(t, records, got.RecordIDs)
	assert.Equal(t, issued.UnixMilli(), got.Timestamp)
	assert.Equal(t, DefaultTTL.Milliseconds(), got.ExpiresIn)
}

func TestDecodeExpired(t *testing.T) {
	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	p := New(uuid.New(), []uuid.UUID{uuid.New()}, "", "", issued, DefaultTTL)
	data, err := Encode(p)
	require.NoError(t, err)

	// one millisecond past the TTL
	_, err = Decode(data, issued.Add(DefaultTTL).Add(time.Millisecond))
	assert.ErrorIs(t, err, ErrPayloadExpired)

	// exactly at the boundary is still valid
	_, err = Decode(data, issued.Add(DefaultTTL))
	assert.NoError(t, err)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	now := time.Now()

	_, err := Decode("not json", now)
	assert.ErrorIs(t, err, ErrPayloadInvalid)

	_, err = Decode(`{"type":"something_else"}`, now)
	assert.ErrorIs(t, err, ErrPayloadInvalid)

	// right type but no records
	p := New(uuid.New(), nil, "", "", now, DefaultTTL)
	data, err := Encode(p)
	require.NoError(t, err)
	_, err = Decode(data, now)
	assert.ErrorIs(t, err, ErrPayloadInvalid)
}

func TestRenderPNG(t *testing.T) {
	p := New(uuid.New(), []uuid.UUID{uuid.New()}, "", "key", time.Now(), 0)
	data, err := Encode(p)
	require.NoError(t, err)

	png, err := RenderPNG(data, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
