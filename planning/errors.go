/*
errors.go - Centralized error types for the planning engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The HTTP layer maps these onto status codes without inspecting strings.

ERROR CATEGORIES:
  1. Not-found errors   - Referenced work item or resource does not exist
  2. Validation errors  - Malformed input (negative hours, inverted dates)
  3. Storage errors     - Propagated as-is from the Store; never retried here

USAGE:
  if planning.IsNotFound(err) {
      // 404
  }
*/
package planning

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrWorkItemNotFound is returned when an operation requires a work item
	// that does not exist.
	ErrWorkItemNotFound = errors.New("work item not found")

	// ErrResourceNotFound is returned when a referenced resource does not
	// exist in a context that requires it. Note that NetAvailability does
	// NOT return this: an unknown resource scores as having no availability.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrSkillNotFound is returned when a referenced skill does not exist.
	ErrSkillNotFound = errors.New("skill not found")

	// ErrInvalidHours is returned when a committed total-hours figure is
	// negative. Zero is valid and clears the pair's allocations.
	ErrInvalidHours = errors.New("total hours must not be negative")

	// ErrInvalidDateRange is returned when a work item's end date precedes
	// its start date.
	ErrInvalidDateRange = errors.New("end date precedes start date")

	// ErrInvalidField is returned when a required field is missing or malformed.
	ErrInvalidField = errors.New("invalid field")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// WorkItemNotFoundError identifies the missing work item.
type WorkItemNotFoundError struct {
	ID WorkItemID
}

func (e *WorkItemNotFoundError) Error() string {
	return fmt.Sprintf("work item %d not found", e.ID)
}

func (e *WorkItemNotFoundError) Unwrap() error { return ErrWorkItemNotFound }

// ResourceNotFoundError identifies the missing resource.
type ResourceNotFoundError struct {
	ID ResourceID
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("resource %d not found", e.ID)
}

func (e *ResourceNotFoundError) Unwrap() error { return ErrResourceNotFound }

// InvalidHoursError carries the rejected hours value.
type InvalidHoursError struct {
	Hours decimal.Decimal
}

func (e *InvalidHoursError) Error() string {
	return fmt.Sprintf("invalid total hours %v: %v", e.Hours, ErrInvalidHours)
}

func (e *InvalidHoursError) Unwrap() error { return ErrInvalidHours }

// InvalidDateRangeError carries the rejected range.
type InvalidDateRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidDateRangeError) Error() string {
	return fmt.Sprintf("invalid date range [%s, %s]: %v",
		e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"), ErrInvalidDateRange)
}

func (e *InvalidDateRangeError) Unwrap() error { return ErrInvalidDateRange }

// FieldError reports a single malformed field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return ErrInvalidField }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkItemNotFound) ||
		errors.Is(err, ErrResourceNotFound) ||
		errors.Is(err, ErrSkillNotFound)
}

// IsClientError returns true if the error is due to invalid client input
// and should map to a client-correctable response rather than a retry.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidHours) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrInvalidField)
}
