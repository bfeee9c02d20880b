package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Version is one candidate seating layout of an event. At most one version per
// event is active at any time; version numbers are max+1 and never reused.
// swagger:model Version
type Version struct {
	ID             string          `json:"id"`
	EventID        string          `json:"event_id"`
	VersionNumber  int             `json:"version_number"`
	Name           string          `json:"name"`
	Description    *string         `json:"description,omitempty"`
	IsActive       bool            `json:"is_active"`
	HallDimensions json.RawMessage `json:"hall_dimensions,omitempty" swaggertype:"object"`
	CreatedByUser  string          `json:"created_by_user"`
	CreatedByName  string          `json:"created_by_name,omitempty"`
	TableCount     int             `json:"table_count"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewVersion returns an inactive version. VersionNumber is assigned by the repository.
func NewVersion(eventID, name string, description *string, hall json.RawMessage, createdBy string, now time.Time) *Version {
	return &Version{
		EventID:        eventID,
		Name:           name,
		Description:    description,
		HallDimensions: hall,
		CreatedByUser:  createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// copySuffix is appended to the source name when a duplicate is not given one.
const copySuffix = " (Copy)"

// DuplicateName returns the name for a copy of v.
func (v *Version) DuplicateName(requested *string) string {
	if requested != nil && *requested != "" {
		return *requested
	}
	return v.Name + copySuffix
}

// VersionUpdate is a partial update of a version. IsActive=true is routed through
// activation; IsActive=false is rejected with ErrCannotDeactivate.
type VersionUpdate struct {
	Name           Optional[string]          `json:"name"`
	Description    Optional[string]          `json:"description"`
	HallDimensions Optional[json.RawMessage] `json:"hall_dimensions" swaggertype:"object"`
	IsActive       Optional[bool]            `json:"is_active"`
}

func (u VersionUpdate) IsEmpty() bool {
	return !u.Name.Set && !u.Description.Set && !u.HallDimensions.Set && !u.IsActive.Set
}

func (u VersionUpdate) Validate() []string {
	var errs []string
	errs = rejectNull(errs, "name", u.Name)
	errs = rejectNull(errs, "is_active", u.IsActive)
	if u.Name.HasValue() && (u.Name.Value == "" || len(u.Name.Value) > 100) {
		errs = append(errs, "name: must be 1-100 characters")
	}
	if u.HallDimensions.HasValue() && !isJSONObject(u.HallDimensions.Value) {
		errs = append(errs, "hall_dimensions: must be an object")
	}
	return errs
}

// Apply merges the metadata fields into v. Activation is not applied here.
func (u VersionUpdate) Apply(v *Version) {
	applyValue(u.Name, &v.Name)
	applyNullable(u.Description, &v.Description)
	if u.HallDimensions.Set {
		v.HallDimensions = nil
		if !u.HallDimensions.Null {
			v.HallDimensions = u.HallDimensions.Value
		}
	}
}

// HasMetadata reports whether any field other than IsActive is present.
func (u VersionUpdate) HasMetadata() bool {
	return u.Name.Set || u.Description.Set || u.HallDimensions.Set
}

func isJSONObject(raw json.RawMessage) bool {
	var m map[string]any
	return json.Unmarshal(raw, &m) == nil && m != nil
}

// VersionRepository defines the interface for version storage. Create, Activate,
// Duplicate and Delete each run in one transaction.
type VersionRepository interface {
	// Create assigns VersionNumber = max+1 for the event and stores v inactive.
	Create(ctx context.Context, v *Version) error
	GetByID(ctx context.Context, id string) (*Version, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Version, error)
	Update(ctx context.Context, v *Version) error
	// Activate deactivates every sibling and activates id in the same transaction.
	Activate(ctx context.Context, id string) error
	// Duplicate copies the version metadata and its tables (not assignments) and returns the new ID.
	Duplicate(ctx context.Context, sourceID, name, createdBy string) (string, error)
	// Delete fails with ErrVersionActive or ErrVersionHasTables.
	Delete(ctx context.Context, id string) error
}

type VersionService interface {
	Create(ctx context.Context, callerID string, v *Version) error
	ListByEvent(ctx context.Context, eventID, callerID string) ([]*Version, error)
	Get(ctx context.Context, versionID, callerID string) (*Version, error)
	Update(ctx context.Context, versionID, callerID string, upd VersionUpdate) (*Version, error)
	Activate(ctx context.Context, versionID, callerID string) (*Version, error)
	Duplicate(ctx context.Context, versionID, callerID string, name *string) (*Version, error)
	Delete(ctx context.Context, versionID, callerID string) error
}
