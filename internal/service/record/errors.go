package record

import "errors"

var (
	ErrRecordNotFound = errors.New("medical record not found")
	ErrInvalidType    = errors.New("unknown record type")
	ErrNoAttachment   = errors.New("record has no attachment")
)
