package model

import (
	"fmt"
	"strings"

	"github.com/Laisky/errors/v2"
)

// ValidationKind tells a missing field apart from a malformed one.
type ValidationKind string

const (
	// ValidationMissing marks a required field that is absent or empty.
	ValidationMissing ValidationKind = "missing"
	// ValidationInvalid marks a present field whose value is malformed.
	ValidationInvalid ValidationKind = "invalid"
)

// ValidationError reports the first rule a tool or health update violated.
type ValidationError struct {
	Field   string
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CodeForeignKeyViolation is the Postgres error code for a row that references a missing parent.
const CodeForeignKeyViolation = "23503"

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// StoreError wraps a failure reported by the persistence backend.
type StoreError struct {
	// Op names the store operation, e.g. "insert tool".
	Op string
	// Code, Details and Hint carry the backend's structured error when it has one.
	Code    string
	Details string
	Hint    string
	Err     error
}

func (e *StoreError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	if e.Code != "" {
		fmt.Fprintf(&sb, " (code %s)", e.Code)
	}
	return sb.String()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Message is the backend's message without the operation prefix.
func (e *StoreError) Message() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Err.Error()
}

// newStoreError wraps err unless it already is a StoreError or ErrNotFound.
func newStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
