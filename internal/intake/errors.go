package intake

import (
	"errors"
	"fmt"
)

// ValidationKind categorizes why a file was rejected before upload
type ValidationKind string

const (
	// MissingFile indicates no file was provided (empty drop, cancelled picker, missing path)
	MissingFile ValidationKind = "missing_file"

	// WrongExtension indicates the name does not carry the capture extension
	WrongExtension ValidationKind = "wrong_extension"

	// TooLarge indicates the file exceeds the configured size cap
	TooLarge ValidationKind = "too_large"
)

// ValidationError is returned by Validator when a file cannot be submitted.
// Message is already user-facing.
type ValidationError struct {
	Kind    ValidationKind `json:"kind"`
	Name    string         `json:"name,omitempty"`
	Size    int64          `json:"size,omitempty"`
	Limit   int64          `json:"limit,omitempty"`
	Message string         `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("invalid file %q: %s", e.Name, e.Kind)
}

// Is matches another *ValidationError by kind
func (e *ValidationError) Is(target error) bool {
	if ve, ok := target.(*ValidationError); ok {
		return e.Kind == ve.Kind
	}
	return false
}

// Sentinels for errors.Is checks
var (
	ErrMissingFile    = &ValidationError{Kind: MissingFile}
	ErrWrongExtension = &ValidationError{Kind: WrongExtension}
	ErrTooLarge       = &ValidationError{Kind: TooLarge}
)

// KindOf returns the validation kind of err, or "" when err is not a ValidationError
func KindOf(err error) ValidationKind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}
