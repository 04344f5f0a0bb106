package codec

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNilModel       = errors.New("model is nil")
	ErrEmptyToken     = errors.New("token is empty")
	ErrCorruptToken   = errors.New("token is corrupt")
	ErrMalformedModel = errors.New("token does not hold a pipeline document")
	ErrInvalidSchema  = errors.New("pipeline document fails schema checks")
	ErrNoToken        = errors.New("link carries no token")
)

// Decode stages, in the order a token passes through them.
const (
	StageText       = "text"
	StageBase64     = "base64"
	StageDecompress = "decompress"
	StageParse      = "parse"
	StageSchema     = "schema"
)

// DecodeError reports which stage rejected a token.
type DecodeError struct {
	Stage string // One of the Stage constants
	Cause error  // Sentinel, possibly wrapping the underlying library error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode token (%s): %v", e.Stage, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *DecodeError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// StageOf returns the stage that rejected a token, or "" when err is not a
// decode error.
func StageOf(err error) string {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Stage
	}
	return ""
}

func decodeError(stage string, sentinel, cause error) *DecodeError {
	if cause == nil {
		return &DecodeError{Stage: stage, Cause: sentinel}
	}
	return &DecodeError{Stage: stage, Cause: fmt.Errorf("%w: %v", sentinel, cause)}
}
