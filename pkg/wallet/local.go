package wallet

import (
	"crypto/sha256"
	"encoding/hex"
)

// LocalSigner derives deterministic signatures from its address and the
// message. Used by the seeder and by tests; never by production flows.
type LocalSigner struct {
	address string
}

// NewLocalSigner builds a signer for the given address.
func NewLocalSigner(address string) (*LocalSigner, error) {
	if !addressRe.MatchString(address) {
		return nil, ErrInvalidAddress
	}
	return &LocalSigner{address: address}, nil
}

func (s *LocalSigner) Address() string { return s.address }

func (s *LocalSigner) Sign(message string) (string, error) {
	if message == "" {
		return "", ErrInvalidSignature
	}
	// 65 bytes of digest material, hex encoded: matches the r||s||v shape
	// produced by real wallets.
	h1 := sha256.Sum256([]byte(s.address + "\n" + message))
	h2 := sha256.Sum256(h1[:])
	buf := make([]byte, 0, 65)
	buf = append(buf, h1[:]...)
	buf = append(buf, h2[:]...)
	buf = append(buf, 0x1b)
	return "0x" + hex.EncodeToString(buf), nil
}

// DeriveAddress produces a stable pseudo-address from a seed string. Handy
// for the seeder, which needs distinct but reproducible wallets.
func DeriveAddress(seed string) string {
	h := sha256.Sum256([]byte("wallet-address:" + seed))
	return "0x" + hex.EncodeToString(h[:20])
}
