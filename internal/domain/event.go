package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventPlanning  EventStatus = "planning"
	EventActive    EventStatus = "active"
	EventCompleted EventStatus = "completed"
	EventArchived  EventStatus = "archived"
)

// Valid reports whether s is a known status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventPlanning, EventActive, EventCompleted, EventArchived:
		return true
	}
	return false
}

// Event is a planned occasion that owns every guest, group, version and table under it.
// swagger:model Event
type Event struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Date        time.Time   `json:"date"`
	Location    *string     `json:"location,omitempty"`
	Status      EventStatus `json:"status"`
	OwnerUserID string      `json:"owner_user_id"`
	OwnerName   string      `json:"owner_name,omitempty"`
	UserRole    Role        `json:"user_role,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewEvent returns a new Event in the planning state. ID is typically set by the repository on create.
func NewEvent(name string, date time.Time, location *string, ownerUserID string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Name:        name,
		Date:        date,
		Location:    location,
		Status:      EventPlanning,
		OwnerUserID: ownerUserID,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// EventUpdate is a partial update of an event. OwnerUserID is immutable and has no field here.
type EventUpdate struct {
	Name     Optional[string]      `json:"name"`
	Date     Optional[time.Time]   `json:"date"`
	Location Optional[string]      `json:"location"`
	Status   Optional[EventStatus] `json:"status"`
}

// IsEmpty reports whether no field is present.
func (u EventUpdate) IsEmpty() bool {
	return !u.Name.Set && !u.Date.Set && !u.Location.Set && !u.Status.Set
}

// Validate returns field messages for present values that break constraints.
func (u EventUpdate) Validate() []string {
	var errs []string
	errs = rejectNull(errs, "name", u.Name)
	errs = rejectNull(errs, "date", u.Date)
	errs = rejectNull(errs, "status", u.Status)
	if u.Name.HasValue() && (u.Name.Value == "" || len(u.Name.Value) > 200) {
		errs = append(errs, "name: must be 1-200 characters")
	}
	if u.Location.HasValue() && len(u.Location.Value) > 500 {
		errs = append(errs, "location: must be at most 500 characters")
	}
	if u.Status.HasValue() && !u.Status.Value.Valid() {
		errs = append(errs, "status: must be one of planning, active, completed, archived")
	}
	return errs
}

// Apply merges the present fields into e.
func (u EventUpdate) Apply(e *Event) {
	applyValue(u.Name, &e.Name)
	applyValue(u.Date, &e.Date)
	applyNullable(u.Location, &e.Location)
	applyValue(u.Status, &e.Status)
}

// EventStats summarises an event for dashboards.
// swagger:model EventStats
type EventStats struct {
	EventID            string `json:"event_id"`
	TotalGuests        int    `json:"total_guests"`
	ConfirmedGuests    int    `json:"confirmed_guests"`
	VersionsCount      int    `json:"versions_count"`
	CollaboratorsCount int    `json:"collaborators_count"`
	ActiveVersionID    string `json:"active_version_id,omitempty"`
	ActiveTables       int    `json:"active_tables"`
	SeatedGuests       int    `json:"seated_guests"`
}

// EventRepository defines the interface for event storage.
// Delete removes every dependent row through the store's cascades.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListForUser(ctx context.Context, userID string) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, id string) (*EventStats, error)
}

// EventService defines the business logic for events.
type EventService interface {
	Create(ctx context.Context, event *Event) error
	ListForUser(ctx context.Context, userID string) ([]*Event, error)
	Get(ctx context.Context, eventID, userID string) (*Event, error)
	Update(ctx context.Context, eventID, userID string, upd EventUpdate) (*Event, error)
	Delete(ctx context.Context, eventID, userID string) error
	Stats(ctx context.Context, eventID, userID string) (*EventStats, error)
}
