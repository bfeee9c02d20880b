package domain

import (
	"context"
	"time"
)

type SeatingPreference string

const (
	PreferenceNone     SeatingPreference = "no_preference"
	PreferenceTogether SeatingPreference = "together"
	PreferenceSeparate SeatingPreference = "separate"
	PreferenceVIP      SeatingPreference = "vip"
)

func (p SeatingPreference) Valid() bool {
	switch p {
	case PreferenceNone, PreferenceTogether, PreferenceSeparate, PreferenceVIP:
		return true
	}
	return false
}

type GroupPriority string

const (
	PriorityLow    GroupPriority = "low"
	PriorityMedium GroupPriority = "medium"
	PriorityHigh   GroupPriority = "high"
)

func (p GroupPriority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

const defaultGroupColor = "blue"

// Group clusters guests that share a seating preference.
// swagger:model Group
type Group struct {
	ID                string            `json:"id"`
	EventID           string            `json:"event_id"`
	Name              string            `json:"name"`
	Color             string            `json:"color"`
	SeatingPreference SeatingPreference `json:"seating_preference"`
	PreferAdjacent    bool              `json:"prefer_adjacent"`
	Priority          GroupPriority     `json:"priority"`
	Notes             *string           `json:"notes,omitempty"`
	GuestCount        int               `json:"guest_count"`
	CreatedAt         time.Time         `json:"created_at"`
}

// NewGroup returns a Group with default color, preference and priority.
func NewGroup(eventID, name string, createdAt time.Time) *Group {
	return &Group{
		EventID:           eventID,
		Name:              name,
		Color:             defaultGroupColor,
		SeatingPreference: PreferenceNone,
		Priority:          PriorityMedium,
		CreatedAt:         createdAt,
	}
}

type GroupUpdate struct {
	Name              Optional[string]            `json:"name"`
	Color             Optional[string]            `json:"color"`
	SeatingPreference Optional[SeatingPreference] `json:"seating_preference"`
	PreferAdjacent    Optional[bool]              `json:"prefer_adjacent"`
	Priority          Optional[GroupPriority]     `json:"priority"`
	Notes             Optional[string]            `json:"notes"`
}

func (u GroupUpdate) IsEmpty() bool {
	return !u.Name.Set && !u.Color.Set && !u.SeatingPreference.Set && !u.PreferAdjacent.Set && !u.Priority.Set && !u.Notes.Set
}

func (u GroupUpdate) Validate() []string {
	var errs []string
	errs = rejectNull(errs, "name", u.Name)
	errs = rejectNull(errs, "color", u.Color)
	errs = rejectNull(errs, "seating_preference", u.SeatingPreference)
	errs = rejectNull(errs, "prefer_adjacent", u.PreferAdjacent)
	errs = rejectNull(errs, "priority", u.Priority)
	if u.Name.HasValue() && (u.Name.Value == "" || len(u.Name.Value) > 100) {
		errs = append(errs, "name: must be 1-100 characters")
	}
	if u.SeatingPreference.HasValue() && !u.SeatingPreference.Value.Valid() {
		errs = append(errs, "seating_preference: must be one of no_preference, together, separate, vip")
	}
	if u.Priority.HasValue() && !u.Priority.Value.Valid() {
		errs = append(errs, "priority: must be one of low, medium, high")
	}
	return errs
}

func (u GroupUpdate) Apply(g *Group) {
	applyValue(u.Name, &g.Name)
	applyValue(u.Color, &g.Color)
	applyValue(u.SeatingPreference, &g.SeatingPreference)
	applyValue(u.PreferAdjacent, &g.PreferAdjacent)
	applyValue(u.Priority, &g.Priority)
	applyNullable(u.Notes, &g.Notes)
}

// GroupRepository defines the interface for group storage.
// Delete returns ErrGroupHasGuests while any guest still points at the group.
type GroupRepository interface {
	Create(ctx context.Context, group *Group) error
	GetByID(ctx context.Context, id string) (*Group, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Group, error)
	Update(ctx context.Context, group *Group) error
	Delete(ctx context.Context, id string) error
}

type GroupService interface {
	Create(ctx context.Context, callerID string, group *Group) error
	ListByEvent(ctx context.Context, eventID, callerID string) ([]*Group, error)
	Get(ctx context.Context, groupID, callerID string) (*Group, error)
	Update(ctx context.Context, groupID, callerID string, upd GroupUpdate) (*Group, error)
	Delete(ctx context.Context, groupID, callerID string) error
	ListGuests(ctx context.Context, groupID, callerID string) ([]*Guest, error)
}
