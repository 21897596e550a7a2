package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("payload validation failed")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrResultFetch        = errors.New("result fetch failed")
	ErrMalformedRange     = errors.New("malformed range")
)
