package domain

import (
	"context"
	"time"
)

// CollaboratorStatus is the lifecycle state of a collaborator row. Rows are never
// hard-deleted; removal flips the status so invite history survives.
type CollaboratorStatus string

const (
	CollaboratorActive  CollaboratorStatus = "active"
	CollaboratorRemoved CollaboratorStatus = "removed"
)

// Collaborator grants a non-owner user a role on an event.
// swagger:model Collaborator
type Collaborator struct {
	ID              string             `json:"id"`
	EventID         string             `json:"event_id"`
	UserID          string             `json:"user_id"`
	UserEmail       string             `json:"user_email"`
	UserDisplayName string             `json:"user_display_name"`
	Role            Role               `json:"role"`
	InvitedBy       string             `json:"invited_by"`
	InvitedByName   string             `json:"invited_by_name,omitempty"`
	InvitedAt       time.Time          `json:"invited_at"`
	AcceptedAt      *time.Time         `json:"accepted_at,omitempty"`
	Status          CollaboratorStatus `json:"status"`
}

// Collaboration is one of the caller's active memberships with a summary of the event.
// swagger:model Collaboration
type Collaboration struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	Role          Role      `json:"role"`
	InvitedAt     time.Time `json:"invited_at"`
	InvitedByName string    `json:"invited_by_name,omitempty"`
	EventName     string    `json:"event_name"`
	EventDate     time.Time `json:"event_date"`
	EventLocation *string   `json:"event_location,omitempty"`
	OwnerName     string    `json:"owner_name"`
}

// CollaboratorRepository defines the interface for collaborator storage.
type CollaboratorRepository interface {
	// GetActive returns the active row for (eventID, userID) or ErrNotFound.
	GetActive(ctx context.Context, eventID, userID string) (*Collaborator, error)
	GetByID(ctx context.Context, id string) (*Collaborator, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Collaborator, error)
	ListByUserID(ctx context.Context, userID string) ([]*Collaboration, error)
	// InviteOrReactivate atomically inserts a new active row or reactivates a removed one
	// with the new role. An existing active row yields ErrAlreadyCollaborator.
	InviteOrReactivate(ctx context.Context, eventID, userID string, role Role, invitedBy string) (*Collaborator, error)
	UpdateRole(ctx context.Context, id string, role Role) error
	Remove(ctx context.Context, id string) error
}

// CollaboratorService defines the business logic for event collaborators.
type CollaboratorService interface {
	Invite(ctx context.Context, eventID, callerID, email string, role Role) (*Collaborator, error)
	ListByEvent(ctx context.Context, eventID, callerID string) ([]*Collaborator, error)
	ListMine(ctx context.Context, callerID string) ([]*Collaboration, error)
	Get(ctx context.Context, collaboratorID, callerID string) (*Collaborator, error)
	UpdateRole(ctx context.Context, collaboratorID, callerID string, role Role) (*Collaborator, error)
	Remove(ctx context.Context, collaboratorID, callerID string) error
}
