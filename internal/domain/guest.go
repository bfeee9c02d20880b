package domain

import (
	"context"
	"time"
)

// GuestType distinguishes invited guests from the people they bring.
type GuestType string

const (
	GuestPrimary   GuestType = "primary"
	GuestCompanion GuestType = "companion"
	GuestChild     GuestType = "child"
)

func (t GuestType) Valid() bool {
	return t == GuestPrimary || t == GuestCompanion || t == GuestChild
}

// RSVPStatus is a guest's response to the invitation.
type RSVPStatus string

const (
	RSVPPending   RSVPStatus = "pending"
	RSVPConfirmed RSVPStatus = "confirmed"
	RSVPDeclined  RSVPStatus = "declined"
	RSVPMaybe     RSVPStatus = "maybe"
)

func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPPending, RSVPConfirmed, RSVPDeclined, RSVPMaybe:
		return true
	}
	return false
}

// Guest belongs to one event. PrimaryGuestID links a companion or child to the guest
// who brought them; CurrentGroup links the guest to a group. Both must stay inside the event.
// swagger:model Guest
type Guest struct {
	ID                  string     `json:"id"`
	EventID             string     `json:"event_id"`
	Name                string     `json:"name"`
	LastName            *string    `json:"last_name,omitempty"`
	Email               *string    `json:"email,omitempty"`
	Phone               *string    `json:"phone,omitempty"`
	GuestType           GuestType  `json:"guest_type"`
	PrimaryGuestID      *string    `json:"primary_guest_id,omitempty"`
	PrimaryGuestName    string     `json:"primary_guest_name,omitempty"`
	DietaryRestrictions []string   `json:"dietary_restrictions"`
	Allergies           *string    `json:"allergies,omitempty"`
	CurrentGroup        *string    `json:"current_group,omitempty"`
	Side                *string    `json:"side,omitempty"`
	RSVPStatus          RSVPStatus `json:"rsvp_status"`
	AddedByUser         string     `json:"added_by_user"`
	AddedByName         string     `json:"added_by_name,omitempty"`
	Approved            bool       `json:"approved"`
	Notes               *string    `json:"notes,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// NewGuest returns a pending, unapproved primary guest.
func NewGuest(eventID, name, addedBy string, createdAt time.Time) *Guest {
	return &Guest{
		EventID:             eventID,
		Name:                name,
		GuestType:           GuestPrimary,
		DietaryRestrictions: []string{},
		RSVPStatus:          RSVPPending,
		AddedByUser:         addedBy,
		CreatedAt:           createdAt,
		UpdatedAt:           createdAt,
	}
}

type GuestUpdate struct {
	Name                Optional[string]     `json:"name"`
	LastName            Optional[string]     `json:"last_name"`
	Email               Optional[string]     `json:"email"`
	Phone               Optional[string]     `json:"phone"`
	GuestType           Optional[GuestType]  `json:"guest_type"`
	PrimaryGuestID      Optional[string]     `json:"primary_guest_id"`
	DietaryRestrictions Optional[[]string]   `json:"dietary_restrictions"`
	Allergies           Optional[string]     `json:"allergies"`
	CurrentGroup        Optional[string]     `json:"current_group"`
	Side                Optional[string]     `json:"side"`
	RSVPStatus          Optional[RSVPStatus] `json:"rsvp_status"`
	Approved            Optional[bool]       `json:"approved"`
	Notes               Optional[string]     `json:"notes"`
}

func (u GuestUpdate) IsEmpty() bool {
	return !(u.Name.Set || u.LastName.Set || u.Email.Set || u.Phone.Set || u.GuestType.Set ||
		u.PrimaryGuestID.Set || u.DietaryRestrictions.Set || u.Allergies.Set || u.CurrentGroup.Set ||
		u.Side.Set || u.RSVPStatus.Set || u.Approved.Set || u.Notes.Set)
}

// Validate checks enums and lengths. Reference checks (primary guest, group) need the
// store and happen in the service.
func (u GuestUpdate) Validate() []string {
	var errs []string
	errs = rejectNull(errs, "name", u.Name)
	errs = rejectNull(errs, "guest_type", u.GuestType)
	errs = rejectNull(errs, "rsvp_status", u.RSVPStatus)
	errs = rejectNull(errs, "approved", u.Approved)
	if u.Name.HasValue() && (u.Name.Value == "" || len(u.Name.Value) > 100) {
		errs = append(errs, "name: must be 1-100 characters")
	}
	if u.LastName.HasValue() && len(u.LastName.Value) > 100 {
		errs = append(errs, "last_name: must be at most 100 characters")
	}
	if u.Phone.HasValue() && len(u.Phone.Value) > 20 {
		errs = append(errs, "phone: must be at most 20 characters")
	}
	if u.Allergies.HasValue() && len(u.Allergies.Value) > 500 {
		errs = append(errs, "allergies: must be at most 500 characters")
	}
	if u.Side.HasValue() && len(u.Side.Value) > 50 {
		errs = append(errs, "side: must be at most 50 characters")
	}
	if u.GuestType.HasValue() && !u.GuestType.Value.Valid() {
		errs = append(errs, "guest_type: must be one of primary, companion, child")
	}
	if u.RSVPStatus.HasValue() && !u.RSVPStatus.Value.Valid() {
		errs = append(errs, "rsvp_status: must be one of pending, confirmed, declined, maybe")
	}
	return errs
}

func (u GuestUpdate) Apply(g *Guest) {
	applyValue(u.Name, &g.Name)
	applyNullable(u.LastName, &g.LastName)
	applyNullable(u.Email, &g.Email)
	applyNullable(u.Phone, &g.Phone)
	applyValue(u.GuestType, &g.GuestType)
	applyNullable(u.PrimaryGuestID, &g.PrimaryGuestID)
	if u.DietaryRestrictions.Set {
		g.DietaryRestrictions = []string{}
		if !u.DietaryRestrictions.Null && u.DietaryRestrictions.Value != nil {
			g.DietaryRestrictions = u.DietaryRestrictions.Value
		}
	}
	applyNullable(u.Allergies, &g.Allergies)
	applyNullable(u.CurrentGroup, &g.CurrentGroup)
	applyNullable(u.Side, &g.Side)
	applyValue(u.RSVPStatus, &g.RSVPStatus)
	applyValue(u.Approved, &g.Approved)
	applyNullable(u.Notes, &g.Notes)
}

// GuestRepository defines the interface for guest storage.
// Delete clears primary_guest_id on companions that pointed at the removed guest.
type GuestRepository interface {
	Create(ctx context.Context, guest *Guest) error
	GetByID(ctx context.Context, id string) (*Guest, error)
	ListByEventID(ctx context.Context, eventID string, params PaginationParams) ([]*Guest, int, error)
	ListByGroupID(ctx context.Context, groupID string) ([]*Guest, error)
	Update(ctx context.Context, guest *Guest) error
	Delete(ctx context.Context, id string) error
}

type GuestService interface {
	Create(ctx context.Context, callerID string, guest *Guest) error
	ListByEvent(ctx context.Context, eventID, callerID string, params PaginationParams) ([]*Guest, int, error)
	Get(ctx context.Context, guestID, callerID string) (*Guest, error)
	Update(ctx context.Context, guestID, callerID string, upd GuestUpdate) (*Guest, error)
	Delete(ctx context.Context, guestID, callerID string) error
}
