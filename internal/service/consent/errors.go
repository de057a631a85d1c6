package consent

import "errors"

var (
	ErrPatientNotFound   = errors.New("no patient with that wallet address")
	ErrRequestNotFound   = errors.New("access request not found")
	ErrGrantNotFound     = errors.New("access grant not found")
	ErrRequestExpired    = errors.New("access request has expired")
	ErrNotPending        = errors.New("not in a pending state")
	ErrNotActive         = errors.New("grant is not active")
	ErrSignatureRejected = errors.New("wallet signature missing or malformed")
	ErrAccessDenied      = errors.New("grant does not authorize this access")
	ErrInvalidResource   = errors.New("unknown resource type")
	ErrNoRecords         = errors.New("no records selected")
	ErrRecordNotOwned    = errors.New("record does not belong to this patient")
)
