package entity

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors shared by services and handlers. Services wrap them with
// context; handlers map them to status codes with errors.Is.
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidCode      = errors.New("invalid or expired code")
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrMethodNotAllowed = errors.New("operation not allowed")
	ErrUnavailable      = errors.New("service unavailable")
)

// ValidationError carries field level detail and matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add keeps the first message reported for a field.
func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
