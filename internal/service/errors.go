package service

import (
	"errors"
	"fmt"

	"github.com/privatinsolvenz/lead-dashboard/internal/repository"
)

// Common service errors
var (
	// ErrNotFound is returned when a lead or one of its documents does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when a lead with the same task id already exists
	ErrConflict = errors.New("resource conflict")

	// ErrInvalidPhase is returned for a phase outside the workflow
	ErrInvalidPhase = errors.New("invalid phase")

	// ErrExternalSync is returned when pushing a lead to ClickUp fails
	ErrExternalSync = errors.New("external sync failed")

	// ErrDatabaseUnavailable is returned when the record store cannot be reached
	ErrDatabaseUnavailable = errors.New("database unavailable")

	// ErrNotConfigured is returned when an integration lacks its configuration
	ErrNotConfigured = errors.New("integration not configured")
)

// translateRepoError maps repository sentinels to service sentinels so
// handlers only need to know about this package
func translateRepoError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	case errors.Is(err, repository.ErrUnavailable):
		return fmt.Errorf("%s: %w: %v", op, ErrDatabaseUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
