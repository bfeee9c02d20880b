package domain

import (
	"context"
	"time"
)

// Capacity bounds for a table.
const (
	MinTableSeats = 1
	MaxTableSeats = 50
)

type TableShape string

const (
	ShapeCircle    TableShape = "Circle"
	ShapeRectangle TableShape = "Rectangle"
	ShapeSquare    TableShape = "Square"
	ShapeOval      TableShape = "Oval"
)

func (s TableShape) Valid() bool {
	switch s {
	case ShapeCircle, ShapeRectangle, ShapeSquare, ShapeOval:
		return true
	}
	return false
}

// Position places a table on the hall plan. All coordinates are non-negative.
type Position struct {
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

// Validate returns field messages prefixed with field.
func (p Position) Validate(field string) []string {
	var errs []string
	if p.X < 0 {
		errs = append(errs, field+".x: must be non-negative")
	}
	if p.Y < 0 {
		errs = append(errs, field+".y: must be non-negative")
	}
	if p.Width != nil && *p.Width < 0 {
		errs = append(errs, field+".width: must be non-negative")
	}
	if p.Height != nil && *p.Height < 0 {
		errs = append(errs, field+".height: must be non-negative")
	}
	return errs
}

// Table is a seating unit inside a version. EventID is denormalised from the version.
// swagger:model Table
type Table struct {
	ID             string     `json:"id"`
	VersionID      string     `json:"version_id"`
	EventID        string     `json:"event_id"`
	Name           string     `json:"name"`
	Number         int        `json:"number"`
	TotalSeats     int        `json:"total_seats"`
	Shape          TableShape `json:"shape"`
	Section        *string    `json:"section,omitempty"`
	Position       Position   `json:"position"`
	Color          *string    `json:"color,omitempty"`
	AdjacentTables []string   `json:"adjacent_tables"`
	IsReserved     bool       `json:"is_reserved"`
	Notes          *string    `json:"notes,omitempty"`
	AssignedGuests int        `json:"assigned_guests"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NewTable returns a Circle table with an empty adjacency list.
func NewTable(versionID, eventID, name string, number, totalSeats int, pos Position, createdAt time.Time) *Table {
	return &Table{
		VersionID:      versionID,
		EventID:        eventID,
		Name:           name,
		Number:         number,
		TotalSeats:     totalSeats,
		Shape:          ShapeCircle,
		Position:       pos,
		AdjacentTables: []string{},
		CreatedAt:      createdAt,
	}
}

type TableUpdate struct {
	Name           Optional[string]     `json:"name"`
	Number         Optional[int]        `json:"number"`
	TotalSeats     Optional[int]        `json:"total_seats"`
	Shape          Optional[TableShape] `json:"shape"`
	Section        Optional[string]     `json:"section"`
	Position       Optional[Position]   `json:"position"`
	Color          Optional[string]     `json:"color"`
	AdjacentTables Optional[[]string]   `json:"adjacent_tables"`
	IsReserved     Optional[bool]       `json:"is_reserved"`
	Notes          Optional[string]     `json:"notes"`
}

func (u TableUpdate) IsEmpty() bool {
	return !(u.Name.Set || u.Number.Set || u.TotalSeats.Set || u.Shape.Set || u.Section.Set ||
		u.Position.Set || u.Color.Set || u.AdjacentTables.Set || u.IsReserved.Set || u.Notes.Set)
}

func (u TableUpdate) Validate() []string {
	var errs []string
	errs = rejectNull(errs, "name", u.Name)
	errs = rejectNull(errs, "number", u.Number)
	errs = rejectNull(errs, "total_seats", u.TotalSeats)
	errs = rejectNull(errs, "shape", u.Shape)
	errs = rejectNull(errs, "position", u.Position)
	errs = rejectNull(errs, "is_reserved", u.IsReserved)
	if u.Name.HasValue() && (u.Name.Value == "" || len(u.Name.Value) > 100) {
		errs = append(errs, "name: must be 1-100 characters")
	}
	if u.Number.HasValue() && u.Number.Value < 1 {
		errs = append(errs, "number: must be a positive integer")
	}
	if u.TotalSeats.HasValue() && (u.TotalSeats.Value < MinTableSeats || u.TotalSeats.Value > MaxTableSeats) {
		errs = append(errs, "total_seats: must be between 1 and 50")
	}
	if u.Shape.HasValue() && !u.Shape.Value.Valid() {
		errs = append(errs, "shape: must be one of Circle, Rectangle, Square, Oval")
	}
	if u.Position.HasValue() {
		errs = append(errs, u.Position.Value.Validate("position")...)
	}
	return errs
}

func (u TableUpdate) Apply(t *Table) {
	applyValue(u.Name, &t.Name)
	applyValue(u.Number, &t.Number)
	applyValue(u.TotalSeats, &t.TotalSeats)
	applyValue(u.Shape, &t.Shape)
	applyNullable(u.Section, &t.Section)
	applyValue(u.Position, &t.Position)
	applyNullable(u.Color, &t.Color)
	if u.AdjacentTables.Set {
		t.AdjacentTables = []string{}
		if !u.AdjacentTables.Null && u.AdjacentTables.Value != nil {
			t.AdjacentTables = u.AdjacentTables.Value
		}
	}
	applyValue(u.IsReserved, &t.IsReserved)
	applyNullable(u.Notes, &t.Notes)
}

// TableRepository defines the interface for table storage.
type TableRepository interface {
	// Create fails with ErrTableNumberTaken when the number is used in the version.
	Create(ctx context.Context, t *Table) error
	GetByID(ctx context.Context, id string) (*Table, error)
	ListByVersionID(ctx context.Context, versionID string) ([]*Table, error)
	// Update fails with ErrTableNumberTaken, or ErrTableFull when total_seats would
	// drop below the current assignment count.
	Update(ctx context.Context, t *Table) error
	// Delete fails with ErrTableHasAssignments.
	Delete(ctx context.Context, id string) error
}

// SeatingService manages tables and the guest assignments on them.
type SeatingService interface {
	CreateTable(ctx context.Context, callerID string, t *Table) error
	ListTables(ctx context.Context, versionID, callerID string) ([]*Table, error)
	GetTable(ctx context.Context, tableID, callerID string) (*Table, error)
	UpdateTable(ctx context.Context, tableID, callerID string, upd TableUpdate) (*Table, error)
	DeleteTable(ctx context.Context, tableID, callerID string) error
	ListAssignments(ctx context.Context, tableID, callerID string) ([]*Assignment, error)
	Assign(ctx context.Context, tableID, guestID, callerID string, seatNumber *int) (*Assignment, error)
	Unassign(ctx context.Context, tableID, guestID, callerID string) error
}
