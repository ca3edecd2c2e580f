package mrc

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrLimitsExceeded is returned when a prospective allocation or a
	// declared size exceeds the configured Limits. It is always raised
	// before the corresponding allocation is performed.
	ErrLimitsExceeded = errors.New("mrc: decoding limits exceeded")

	// ErrEndOfVolume signals that every section of the volume has been
	// decoded. It is a completion signal, not a failure.
	ErrEndOfVolume = errors.New("mrc: end of volume")

	// ErrClosed is returned when the decoder has been closed.
	ErrClosed = errors.New("mrc: decoder is closed")
)

// FormatError reports bytes that violate the MRC layout or its declared
// invariants (bad magic, unrecognized machine stamp, an out-of-range field).
// It indicates a corrupt file or a misbehaving encoder.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "mrc: invalid format: " + e.Reason
}

func formatErrorf(format string, args ...any) *FormatError {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

// UnsupportedError reports a well-formed MRC file that declares a feature
// this implementation does not handle, naming the feature so callers can
// distinguish "broken file" from "not implemented".
type UnsupportedError struct {
	Feature string
}

func (e *UnsupportedError) Error() string {
	return "mrc: unsupported feature: " + e.Feature
}
