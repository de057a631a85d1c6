package wallet

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSignerProducesVerifiableSignature(t *testing.T) {
	addr := DeriveAddress("patient-1")
	require.True(t, IsValidAddress(addr))

	s, err := NewLocalSigner(addr)
	require.NoError(t, err)

	msg := AccessApprovalMessage(uuid.New(), time.Now())
	sig, err := s.Sign(msg)
	require.NoError(t, err)

	v := NewFormatVerifier()
	assert.NoError(t, v.VerifySignature(addr, msg, sig))
}

func TestLocalSignerIsDeterministic(t *testing.T) {
	addr := DeriveAddress("patient-2")
	s, err := NewLocalSigner(addr)
	require.NoError(t, err)

	sig1, err := s.Sign("hello")
	require.NoError(t, err)
	sig2, err := s.Sign("hello")
	require.NoError(t, err)
	assert.Equal(t, sig1, sig2)

	sig3, err := s.Sign("other")
	require.NoError(t, err)
	assert.NotEqual(t, sig1, sig3)
}

func TestFormatVerifierRejectsMalformedInput(t *testing.T) {
	v := NewFormatVerifier()
	addr := DeriveAddress("patient-3")
	s, _ := NewLocalSigner(addr)
	sig, _ := s.Sign("msg")

	assert.ErrorIs(t, v.VerifySignature("not-an-address", "msg", sig), ErrInvalidAddress)
	assert.ErrorIs(t, v.VerifySignature(addr, "", sig), ErrInvalidSignature)
	assert.ErrorIs(t, v.VerifySignature(addr, "msg", "0xdeadbeef"), ErrInvalidSignature)
}

func TestNewLocalSignerRejectsBadAddress(t *testing.T) {
	_, err := NewLocalSigner("0x123")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}
