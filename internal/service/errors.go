package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"solarflow/internal/access"
	"solarflow/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("resource already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Shared with the access gate so errors.Is matches either name
	ErrForbidden       = access.ErrForbidden
	ErrUnauthenticated = access.ErrUnauthenticated

	ErrInsufficientStock = repository.ErrInsufficientStock
)

// ValidationError carries per-field messages keyed by JSON field name
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// translate maps store errors onto service sentinels and wraps the rest
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// passthrough keeps sentinel and validation errors produced inside a
// transaction callback intact while wrapping store failures
func passthrough(err error, op string) error {
	var verr *ValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &verr),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrInsufficientStock):
		return err
	default:
		return translate(err, op)
	}
}
