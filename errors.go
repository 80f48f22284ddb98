package codeglyphx

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for malformed arguments, such as a matrix
	// whose side does not map to a symbol version or a short pixel buffer.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCapacityExceeded is returned when a payload does not fit any version
	// in the requested range at the requested error correction level.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrUnsupportedCharacter is returned when text contains characters
	// outside the chosen mode or character set.
	ErrUnsupportedCharacter = errors.New("unsupported character")

	// ErrFormatInfo is returned when neither format information copy is
	// within correction distance of a valid codeword.
	ErrFormatInfo = errors.New("format information unrecoverable")

	// ErrReedSolomon is returned when a codeword block has more errors than
	// its error correction codewords can fix.
	ErrReedSolomon = errors.New("reed-solomon uncorrectable")

	// ErrPayloadMalformed is returned when the corrected bit stream holds an
	// invalid mode, an out of range value or a truncated field.
	ErrPayloadMalformed = errors.New("payload malformed")

	// ErrCancelled is returned when the caller's context ends a decode.
	ErrCancelled = errors.New("decode cancelled")

	// ErrNotFound is returned when no symbol could be located in an image.
	ErrNotFound = errors.New("symbol not found")
)

// Failure identifies the stage a decode attempt stopped at.
type Failure int

const (
	FailureNone Failure = iota
	FailureNotFound
	FailureInvalidSize
	FailureFormatInfo
	FailureReedSolomon
	FailurePayload
	FailureCancelled
)

// String returns the stage name.
func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureNotFound:
		return "not-found"
	case FailureInvalidSize:
		return "invalid-size"
	case FailureFormatInfo:
		return "format-info"
	case FailureReedSolomon:
		return "reed-solomon"
	case FailurePayload:
		return "payload"
	case FailureCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Failure(%d)", int(f))
	}
}

// Rank orders failures by how far decoding progressed. Higher is further.
func (f Failure) Rank() int {
	switch f {
	case FailurePayload:
		return 4
	case FailureReedSolomon:
		return 3
	case FailureFormatInfo:
		return 2
	case FailureInvalidSize:
		return 1
	default:
		return 0
	}
}

// Err returns the sentinel error for the stage, or nil for FailureNone.
func (f Failure) Err() error {
	switch f {
	case FailureNone:
		return nil
	case FailureInvalidSize:
		return ErrInvalidInput
	case FailureFormatInfo:
		return ErrFormatInfo
	case FailureReedSolomon:
		return ErrReedSolomon
	case FailurePayload:
		return ErrPayloadMalformed
	case FailureCancelled:
		return ErrCancelled
	default:
		return ErrNotFound
	}
}

// FailureOf maps an error onto its stage.
func FailureOf(err error) Failure {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrCancelled):
		return FailureCancelled
	case errors.Is(err, ErrPayloadMalformed), errors.Is(err, ErrUnsupportedCharacter):
		return FailurePayload
	case errors.Is(err, ErrReedSolomon):
		return FailureReedSolomon
	case errors.Is(err, ErrFormatInfo):
		return FailureFormatInfo
	case errors.Is(err, ErrInvalidInput):
		return FailureInvalidSize
	default:
		return FailureNotFound
	}
}
