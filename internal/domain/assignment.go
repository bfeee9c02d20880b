package domain

import (
	"context"
	"time"
)

// Assignment binds one guest to one table (optionally one numbered seat) within a version.
//
// The store guarantees, atomically with the insert:
//   - a guest holds at most one assignment per version;
//   - a seat number is used at most once per table;
//   - a table never holds more assignments than its total seats;
//   - the guest belongs to the table's event.
//
// swagger:model Assignment
type Assignment struct {
	ID             string           `json:"id"`
	VersionID      string           `json:"version_id"`
	GuestID        string           `json:"guest_id"`
	TableID        string           `json:"table_id"`
	SeatNumber     *int             `json:"seat_number,omitempty"`
	IsAttending    bool             `json:"is_attending"`
	AssignedAt     time.Time        `json:"assigned_at"`
	AssignedBy     string           `json:"assigned_by"`
	AssignedByName string           `json:"assigned_by_name,omitempty"`
	Guest          *AssignmentGuest `json:"guest,omitempty"`
}

// AssignmentGuest is the guest summary embedded in assignment listings.
type AssignmentGuest struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LastName  *string   `json:"last_name,omitempty"`
	Email     *string   `json:"email,omitempty"`
	GuestType GuestType `json:"guest_type"`
}

// NewAssignment returns an attending assignment stamped with the caller and time.
func NewAssignment(tableID, guestID string, seatNumber *int, assignedBy string, at time.Time) *Assignment {
	return &Assignment{
		TableID:     tableID,
		GuestID:     guestID,
		SeatNumber:  seatNumber,
		IsAttending: true,
		AssignedAt:  at,
		AssignedBy:  assignedBy,
	}
}

// AssignmentRepository is the seating engine's store.
type AssignmentRepository interface {
	// Assign runs the precondition checks and the insert as one transaction with the
	// table row locked. It sets a.ID and a.VersionID. Failures are ErrNotFound (table),
	// ErrGuestNotInEvent, ErrGuestAlreadyAssigned, ErrSeatTaken or ErrTableFull.
	Assign(ctx context.Context, a *Assignment) error
	// GetByID returns the assignment with its guest summary and assigner name.
	GetByID(ctx context.Context, id string) (*Assignment, error)
	ListByTableID(ctx context.Context, tableID string) ([]*Assignment, error)
	// Delete removes the guest's assignment at the table or returns ErrNotFound.
	Delete(ctx context.Context, tableID, guestID string) error
}

// SeatingMetrics observes assignment outcomes. Implementations must be safe for concurrent use.
type SeatingMetrics interface {
	AssignmentAttempt(outcome string)
}
