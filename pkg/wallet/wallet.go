// Package wallet abstracts the signing capability used to approve consent
// actions. Signatures come from the patient's wallet on the client side; the
// server only checks shape and records them, so verification here is
// structural rather than cryptographic.
package wallet

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidAddress   = errors.New("wallet: invalid address")
	ErrInvalidSignature = errors.New("wallet: invalid signature")
)

var (
	addressRe   = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	signatureRe = regexp.MustCompile(`^0x[0-9a-fA-F]{130}$`)
)

// Signer produces signatures on behalf of a wallet. Implementations live
// client-side in production; LocalSigner exists for seeding and tests.
type Signer interface {
	Address() string
	Sign(message string) (string, error)
}

// Verifier checks that a signature plausibly came from the given address.
type Verifier interface {
	VerifySignature(address, message, signature string) error
}

// IsValidAddress reports whether s looks like a 20-byte hex wallet address.
func IsValidAddress(s string) bool {
	return addressRe.MatchString(s)
}

// AccessApprovalMessage is the canonical message a patient signs to approve
// a provider-initiated access request.
func AccessApprovalMessage(requestID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("Approve medical records access request %s at %d", requestID, at.UnixMilli())
}

// GrantApprovalMessage is the canonical message a patient signs to approve
// a scanned QR grant.
func GrantApprovalMessage(grantID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("Approve medical records grant %s at %d", grantID, at.UnixMilli())
}
