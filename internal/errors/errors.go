package errors

import (
	"errors"
	"fmt"
)

// Domain error types for the batch validation application
var (
	ErrBatchNotFound        = errors.New("batch not found")
	ErrBatchAlreadyArchived = errors.New("batch already archived")
	ErrEmptyBatch           = errors.New("batch contains no transactions")
	ErrDuplicateAccount     = errors.New("duplicate account id in batch")
	ErrArchiveDisabled      = errors.New("decision archive is disabled")
	ErrUnknownCountry       = errors.New("country code not present in reference table")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ReferenceDataError reports reference data that failed its load-time
// invariants (malformed rows, overlapping card ranges).
type ReferenceDataError struct {
	Source  string
	Message string
}

func (e *ReferenceDataError) Error() string {
	return fmt.Sprintf("invalid reference data in '%s': %s", e.Source, e.Message)
}

func NewReferenceDataError(source, message string) error {
	return &ReferenceDataError{
		Source:  source,
		Message: message,
	}
}

type ArchiveError struct {
	Operation string
	Cause     error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive error during '%s': %v", e.Operation, e.Cause)
}

func (e *ArchiveError) Unwrap() error {
	return e.Cause
}

func NewArchiveError(operation string, cause error) error {
	return &ArchiveError{
		Operation: operation,
		Cause:     cause,
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrBatchNotFound)
}

func IsArchiveDisabled(err error) bool {
	return errors.Is(err, ErrArchiveDisabled)
}

func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

func IsReferenceDataError(err error) bool {
	var refErr *ReferenceDataError
	return errors.As(err, &refErr)
}
