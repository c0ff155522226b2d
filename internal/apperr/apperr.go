package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrUpstream         = errors.New("upstream unavailable")
	ErrUnauthenticated  = errors.New("authentication required")
)

// Code is the stable machine-readable name of an error class.
type Code string

const (
	CodePermissionDenied Code = "permission_denied"
	CodeNotFound         Code = "not_found"
	CodeValidation       Code = "validation_failed"
	CodeUpstream         Code = "upstream_unavailable"
	CodeUnauthenticated  Code = "unauthenticated"
	CodeInternal         Code = "internal"
	CodeRateLimited      Code = "rate_limited"
)

// ValidationError carries field level problems of a rejected input.
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
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid returns a validation error for a single field.
func Invalid(field, reason string) error {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

// Forbidden wraps ErrPermissionDenied with the refused action.
func Forbidden(action string) error {
	return fmt.Errorf("%w: %s", ErrPermissionDenied, action)
}

// NotFound wraps ErrNotFound with the missing entity.
func NotFound(entity string, id any) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, entity, id)
}

// Upstream wraps ErrUpstream around the failure of an external provider.
func Upstream(provider string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUpstream, provider, err)
}

// CodeOf classifies err.
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPermissionDenied):
		return CodePermissionDenied
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrUpstream):
		return CodeUpstream
	case errors.Is(err, ErrUnauthenticated):
		return CodeUnauthenticated
	default:
		return CodeInternal
	}
}

// StatusCode maps err to the HTTP status returned to the caller.
func StatusCode(err error) int {
	switch CodeOf(err) {
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUpstream:
		return http.StatusServiceUnavailable
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Fields returns the field level messages of a validation error, if any.
func Fields(err error) map[string]string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}
