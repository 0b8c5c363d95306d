package convert

import (
	"context"
	"errors"
)

// CanonicalExt is the extension of the canonical output format.
const CanonicalExt = "vdx"

// Kind classifies converter failures for reporting.
type Kind string

const (
	// KindEngineUnavailable means the external engine required for the
	// format could not be located or started.
	KindEngineUnavailable Kind = "engine-unavailable"
	// KindConversionError means the engine ran but rejected or could not
	// parse the input.
	KindConversionError Kind = "conversion-error"
	// KindTimeout means the engine exceeded its bounded wait.
	KindTimeout Kind = "timeout"
)

// Error is a converter failure carrying a stable kind.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Message }

// KindOf extracts the failure kind from err, if any.
func KindOf(err error) (Kind, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return "", false
}

// Converter turns one source diagram file into canonical VDX bytes.
// Implementations never write into the output directory themselves; the
// caller persists the returned bytes only after a fully successful
// conversion, so a failure leaves no partial output on disk.
type Converter interface {
	Convert(ctx context.Context, sourcePath string) ([]byte, error)
}
