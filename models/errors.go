package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every layer. Use errors.Is to classify a failure.
var (
	// ErrFormat indicates a header that is foreign, corrupted or of an unknown version.
	ErrFormat = errors.New("format error")

	// ErrCapacity indicates the payload does not fit in the sample buffer.
	ErrCapacity = errors.New("insufficient capacity")

	// ErrTruncatedInput indicates the buffer is shorter than the header or payload demands.
	ErrTruncatedInput = errors.New("truncated input")

	// ErrAuthentication indicates the AEAD tag did not verify. Wrong password and
	// tampered data are reported identically.
	ErrAuthentication = errors.New("invalid password or corrupted data")

	// ErrEncoding indicates text that is not valid UTF-8.
	ErrEncoding = errors.New("invalid message encoding")

	// ErrInvalidArgument indicates a caller supplied an out-of-range parameter.
	ErrInvalidArgument = errors.New("invalid argument")
)

// CapacityError reports how many bits were required and how many were available.
type CapacityError struct {
	Required  int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s: need %d bits, but only %d available", ErrCapacity.Error(), e.Required, e.Available)
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacity
}
