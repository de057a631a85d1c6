package emergency

import "errors"

var (
	ErrCardNotFound = errors.New("emergency card not found")
	ErrInvalidCode  = errors.New("emergency code is invalid")
)
