// Package models contains the entity building blocks and the domain errors
// shared by the repository layer.
package models

import (
	"errors"
	"fmt"
	"maps"
	"net/http"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Common error types for repository failures
var (
	// ErrUnsupportedOperation is wrapped by every operation MongoDB cannot serve.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrQueriesUnsupported is returned by raw query execution.
	ErrQueriesUnsupported error = unsupportedError("Queries aren't supported by MongoDB.")

	// ErrQueryBuilderUnsupported is returned when a query builder is requested.
	ErrQueryBuilderUnsupported error = unsupportedError("Query Builder is not supported by MongoDB.")

	ErrEntityNotFound    = errors.New("entity not found")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrInvalidID         = errors.New("invalid ID format")
	ErrInvalidIndex      = errors.New("invalid index specification")
	ErrEmptyBulk         = errors.New("bulk operation has no operations")
	ErrEmptyUpdate       = errors.New("update document is empty")
	ErrBulkExecuted      = errors.New("bulk operation already executed")
	ErrInvalidCollection = errors.New("invalid collection name")

	// System errors
	ErrDatabaseError = errors.New("database error")
	ErrTimeout       = errors.New("operation timed out")
)

// unsupportedError carries a fixed message and matches ErrUnsupportedOperation.
type unsupportedError string

func (e unsupportedError) Error() string {
	return string(e)
}

func (e unsupportedError) Is(target error) bool {
	return target == ErrUnsupportedOperation
}

// DomainError represents an error that occurs in the application domain.
type DomainError struct {
	// Original is the underlying error
	Original error

	// Message is a human-readable error message
	Message string

	// Code is the HTTP status code a caller serving HTTP should map this to
	Code int

	// Domain is the area of the application where the error occurred
	Domain string

	// Details contains additional context for the error
	Details map[string]any
}

// Error returns the error message
func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Original == nil {
		return "unknown error"
	}
	return e.Original.Error()
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Original
}

// NewDomainError creates a new DomainError
func NewDomainError(err error, message string, code int, domain string) *DomainError {
	if message == "" && err != nil {
		message = err.Error()
	}

	return &DomainError{
		Original: err,
		Message:  message,
		Code:     code,
		Domain:   domain,
		Details:  make(map[string]any),
	}
}

// WithDetails adds details to the error
func (e *DomainError) WithDetails(details map[string]any) *DomainError {
	maps.Copy(e.Details, details)
	return e
}

// AddDetail adds a single detail to the error
func (e *DomainError) AddDetail(key string, value any) *DomainError {
	e.Details[key] = value
	return e
}

// NewRepositoryError wraps a driver failure raised while running op on collection.
// Sentinel causes are preserved for errors.Is, and driver errors are mapped
// onto the matching sentinel.
func NewRepositoryError(err error, collection, op string) *DomainError {
	cause := classify(err)
	de := NewDomainError(cause, fmt.Sprintf("%s %s: %v", collection, op, err), MapErrorToHTTPStatus(cause), "repository")
	de.Details["collection"] = collection
	de.Details["operation"] = op
	return de
}

// NewValidationError creates a validation-related domain error
func NewValidationError(err error, message string) *DomainError {
	return NewDomainError(err, message, http.StatusUnprocessableEntity, "validation")
}

// NewInternalError creates an internal server error
func NewInternalError(err error, message string) *DomainError {
	if message == "" {
		message = "An internal server error occurred"
	}
	return NewDomainError(err, message, http.StatusInternalServerError, "system")
}

// classify joins driver errors with the sentinel they correspond to.
func classify(err error) error {
	switch {
	case err == nil:
		return ErrDatabaseError
	case errors.Is(err, mongo.ErrNoDocuments):
		return errors.Join(ErrEntityNotFound, err)
	case mongo.IsDuplicateKeyError(err):
		return errors.Join(ErrDuplicateKey, err)
	case mongo.IsTimeout(err):
		return errors.Join(ErrTimeout, err)
	case errors.Is(err, ErrUnsupportedOperation),
		errors.Is(err, ErrEntityNotFound),
		errors.Is(err, ErrEmptyBulk),
		errors.Is(err, ErrEmptyUpdate),
		errors.Is(err, ErrBulkExecuted),
		errors.Is(err, ErrInvalidIndex),
		errors.Is(err, ErrInvalidID):
		return err
	default:
		return errors.Join(ErrDatabaseError, err)
	}
}

// MapErrorToHTTPStatus maps repository errors to HTTP status codes
func MapErrorToHTTPStatus(err error) int {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}

	switch {
	case errors.Is(err, ErrEntityNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidIndex),
		errors.Is(err, ErrEmptyBulk),
		errors.Is(err, ErrEmptyUpdate),
		errors.Is(err, ErrBulkExecuted),
		errors.Is(err, ErrInvalidCollection):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnsupportedOperation):
		return http.StatusNotImplemented
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
