package contract

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Error kinds surfaced by the data access layer. Match them with errors.Is.
var (
	ErrNetworkFailure  = errors.New("network failure")  // transport or connection problem
	ErrInvalidResponse = errors.New("invalid response") // non-success status or malformed body
	ErrNotFound        = errors.New("contact not found")
	ErrValidation      = errors.New("validation failure") // raised before any request is sent
)

// ValidationError lists the fields that failed client-side checks.
type ValidationError struct {
	Fields map[string]string // field name -> reason
}

// Error implements the error interface with fields in a stable order.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// add records a failure for a field, keeping the first reason.
func (e *ValidationError) add(field, reason string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = reason
	}
}

// orNil returns nil when no field failed.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
