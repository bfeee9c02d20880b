package domain

import (
	"errors"
	"strings"
)

// Sentinel errors shared by repositories and services.
var (
	// ErrNotFound covers both a missing entity and an entity whose event the caller has no role on.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller has a role on the event but it is below the one required.
	ErrForbidden          = errors.New("insufficient permissions")
	ErrUnauthorized       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found with this email address")
	ErrDuplicateEmail     = errors.New("user already exists with this email")
)

// RuleError is a business-rule violation. The message is safe to show to the caller.
type RuleError struct {
	Message string
}

func (e *RuleError) Error() string { return e.Message }

func newRule(msg string) *RuleError { return &RuleError{Message: msg} }

// Business rules. Compare with errors.Is; classify with errors.As(err, **RuleError).
var (
	ErrTableNumberTaken     = newRule("table number already exists in this version")
	ErrSeatTaken            = newRule("seat number is already taken at this table")
	ErrTableFull            = newRule("table is at full capacity")
	ErrSeatBeyondCapacity   = newRule("total seats cannot be below an assigned seat number")
	ErrGuestAlreadyAssigned = newRule("guest is already assigned to a table in this version")
	ErrGuestNotInEvent      = newRule("guest does not belong to this event")
	ErrTableHasAssignments  = newRule("cannot delete table with assigned guests; remove guest assignments first")
	ErrVersionActive        = newRule("cannot delete active version; activate another version first")
	ErrVersionHasTables     = newRule("cannot delete version with existing tables; delete tables first")
	ErrVersionNotInEvent    = newRule("version does not belong to this event")
	ErrCannotDeactivate     = newRule("cannot deactivate a version directly; activate another version instead")
	ErrGroupHasGuests       = newRule("cannot delete group with assigned guests; remove guests from group first")
	ErrGroupNotInEvent      = newRule("group does not belong to this event")
	ErrPrimaryGuestInvalid  = newRule("primary guest must be another guest of the same event")
	ErrAlreadyCollaborator  = newRule("user is already a collaborator on this event")
	ErrOwnerAsCollaborator  = newRule("event owner cannot be added as a collaborator")
	ErrNoFieldsToUpdate     = newRule("no fields to update")
)

// ValidationError carries one message per rejected field, formatted "field: message".
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// NewValidationError returns nil when fields is empty so callers can write
// `if err := NewValidationError(errs...); err != nil`.
func NewValidationError(fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
