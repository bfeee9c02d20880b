package domain

import "context"

// Role is a caller's effective role on an event.
type Role string

const (
	RoleNone   Role = "none"
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

// Minimum role per action family. Editors may create and update but not delete.
const (
	MinRoleView               = RoleViewer
	MinRoleEdit               = RoleEditor
	MinRoleDelete             = RoleAdmin
	MinRoleManageCollaborator = RoleAdmin
	MinRoleEventSettings      = RoleAdmin
	MinRoleDeleteEvent        = RoleOwner
)

func (r Role) rank() int {
	switch r {
	case RoleOwner:
		return 4
	case RoleAdmin:
		return 3
	case RoleEditor:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r grants every right of min. RoleNone grants nothing,
// not even against a RoleNone requirement.
func (r Role) AtLeast(min Role) bool {
	return r.rank() > 0 && r.rank() >= min.rank()
}

// IsCollaboratorRole reports whether r may be stored on a collaborator row.
func (r Role) IsCollaboratorRole() bool {
	return r == RoleAdmin || r == RoleEditor || r == RoleViewer
}

// ResolveRole decides a user's role on an event. The owner is never a
// collaborator row, so ownership always wins and cannot be demoted through one.
func ResolveRole(ownerUserID, userID string, collab *Collaborator) Role {
	if userID == "" {
		return RoleNone
	}
	if userID == ownerUserID {
		return RoleOwner
	}
	if collab == nil || collab.UserID != userID || collab.Status != CollaboratorActive || !collab.Role.IsCollaboratorRole() {
		return RoleNone
	}
	return collab.Role
}

// Access is the resolved relationship between a caller and an event.
type Access struct {
	EventID     string
	OwnerUserID string
	UserID      string
	Role        Role
	Event       *Event
}

// IsOwner reports whether the caller owns the event.
func (a *Access) IsOwner() bool { return a.Role == RoleOwner }

// AccessResolver computes roles against the event store and enforces the minimum role of an action.
type AccessResolver interface {
	// Resolve returns ErrNotFound when the event does not exist or the caller has no role on it.
	Resolve(ctx context.Context, eventID, userID string) (*Access, error)
	// Require is Resolve followed by ErrForbidden when the role is below min.
	Require(ctx context.Context, eventID, userID string, min Role) (*Access, error)
}
