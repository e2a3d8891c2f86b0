package errors

import "errors"

var (
	ErrConfiguration   = errors.New("invalid race configuration")
	ErrDataUnavailable = errors.New("race data unavailable")
	ErrInvalidLap      = errors.New("lap number out of range")
)
