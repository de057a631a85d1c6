package pasetotoken

import (
	"time"

	"github.com/google/uuid"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the verified content of a token.
type Claims struct {
	Issuer    string
	Audience  string
	TokenID   string
	Subject   string
	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time

	Type      TokenType
	UserID    uuid.UUID
	SessionID *uuid.UUID
}

func (c *Claims) IsAccess() bool  { return c.Type == TokenTypeAccess }
func (c *Claims) IsRefresh() bool { return c.Type == TokenTypeRefresh }
