package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"seatplanner/internal/domain"
)

const testTimeout = 5 * time.Second

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID    map[string]*domain.Event
	nextID  int
	err     error // if set, Create returns this error
	stats   *domain.EventStats
	deleted []string
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ListForUser(ctx context.Context, userID string) ([]*domain.Event, error) {
	out := make([]*domain.Event, 0)
	for _, e := range f.byID {
		if e.OwnerUserID == userID {
			cp := *e
			cp.UserRole = domain.RoleOwner
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeEventRepo) Stats(ctx context.Context, id string) (*domain.EventStats, error) {
	if f.stats != nil {
		return f.stats, nil
	}
	return &domain.EventStats{EventID: id}, nil
}

// fakeCollaboratorRepo keeps rows keyed by ID, including removed ones.
type fakeCollaboratorRepo struct {
	byID   map[string]*domain.Collaborator
	nextID int
}

func newFakeCollaboratorRepo() *fakeCollaboratorRepo {
	return &fakeCollaboratorRepo{byID: make(map[string]*domain.Collaborator), nextID: 1}
}

func (f *fakeCollaboratorRepo) find(eventID, userID string) *domain.Collaborator {
	for _, c := range f.byID {
		if c.EventID == eventID && c.UserID == userID {
			return c
		}
	}
	return nil
}

func (f *fakeCollaboratorRepo) GetActive(ctx context.Context, eventID, userID string) (*domain.Collaborator, error) {
	c := f.find(eventID, userID)
	if c == nil || c.Status != domain.CollaboratorActive {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCollaboratorRepo) GetByID(ctx context.Context, id string) (*domain.Collaborator, error) {
	c, ok := f.byID[id]
	if !ok || c.Status != domain.CollaboratorActive {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCollaboratorRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Collaborator, error) {
	out := make([]*domain.Collaborator, 0)
	for _, c := range f.byID {
		if c.EventID == eventID && c.Status == domain.CollaboratorActive {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCollaboratorRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Collaboration, error) {
	out := make([]*domain.Collaboration, 0)
	for _, c := range f.byID {
		if c.UserID == userID && c.Status == domain.CollaboratorActive {
			out = append(out, &domain.Collaboration{ID: c.ID, EventID: c.EventID, Role: c.Role, InvitedAt: c.InvitedAt})
		}
	}
	return out, nil
}

func (f *fakeCollaboratorRepo) InviteOrReactivate(ctx context.Context, eventID, userID string, role domain.Role, invitedBy string) (*domain.Collaborator, error) {
	now := time.Now()
	c := f.find(eventID, userID)
	switch {
	case c == nil:
		c = &domain.Collaborator{ID: fmt.Sprintf("co-%d", f.nextID), EventID: eventID, UserID: userID}
		f.nextID++
		f.byID[c.ID] = c
	case c.Status == domain.CollaboratorActive:
		return nil, domain.ErrAlreadyCollaborator
	}
	c.Role = role
	c.Status = domain.CollaboratorActive
	c.InvitedBy = invitedBy
	c.InvitedAt = now
	c.AcceptedAt = &now
	cp := *c
	return &cp, nil
}

func (f *fakeCollaboratorRepo) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	c, ok := f.byID[id]
	if !ok || c.Status != domain.CollaboratorActive {
		return domain.ErrNotFound
	}
	c.Role = role
	return nil
}

func (f *fakeCollaboratorRepo) Remove(ctx context.Context, id string) error {
	c, ok := f.byID[id]
	if !ok || c.Status != domain.CollaboratorActive {
		return domain.ErrNotFound
	}
	c.Status = domain.CollaboratorRemoved
	c.AcceptedAt = nil
	return nil
}

// fakeUserRepo is an in-memory UserRepository keyed by ID.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	nextID    int
	touched   []string
	touchErr  error
	lookupErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User), nextID: 1}
}

func (f *fakeUserRepo) add(id, email, name string) *domain.User {
	u := &domain.User{ID: id, Email: email, DisplayName: name, IsActive: true}
	f.byID[id] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = fmt.Sprintf("us-%d", f.nextID)
	f.nextID++
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.touched = append(f.touched, id)
	return nil
}

type fakeGuestRepo struct {
	byID   map[string]*domain.Guest
	nextID int
}

func newFakeGuestRepo() *fakeGuestRepo {
	return &fakeGuestRepo{byID: make(map[string]*domain.Guest), nextID: 1}
}

func (f *fakeGuestRepo) Create(ctx context.Context, g *domain.Guest) error {
	g.ID = fmt.Sprintf("gu-%d", f.nextID)
	f.nextID++
	cp := *g
	f.byID[g.ID] = &cp
	return nil
}

func (f *fakeGuestRepo) GetByID(ctx context.Context, id string) (*domain.Guest, error) {
	if g, ok := f.byID[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeGuestRepo) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Guest, int, error) {
	all := make([]*domain.Guest, 0)
	for _, g := range f.byID {
		if g.EventID == eventID {
			cp := *g
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	start := min(params.Offset(), total)
	end := total
	if params.Limit() > 0 {
		end = min(start+params.Limit(), total)
	}
	return all[start:end], total, nil
}

func (f *fakeGuestRepo) ListByGroupID(ctx context.Context, groupID string) ([]*domain.Guest, error) {
	out := make([]*domain.Guest, 0)
	for _, g := range f.byID {
		if g.CurrentGroup != nil && *g.CurrentGroup == groupID {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeGuestRepo) Update(ctx context.Context, g *domain.Guest) error {
	if _, ok := f.byID[g.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *g
	f.byID[g.ID] = &cp
	return nil
}

func (f *fakeGuestRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	for _, g := range f.byID {
		if g.PrimaryGuestID != nil && *g.PrimaryGuestID == id {
			g.PrimaryGuestID = nil
		}
	}
	return nil
}

type fakeGroupRepo struct {
	byID   map[string]*domain.Group
	guests *fakeGuestRepo
	nextID int
}

func newFakeGroupRepo(guests *fakeGuestRepo) *fakeGroupRepo {
	return &fakeGroupRepo{byID: make(map[string]*domain.Group), guests: guests, nextID: 1}
}

func (f *fakeGroupRepo) Create(ctx context.Context, g *domain.Group) error {
	g.ID = fmt.Sprintf("gr-%d", f.nextID)
	f.nextID++
	cp := *g
	f.byID[g.ID] = &cp
	return nil
}

func (f *fakeGroupRepo) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	if g, ok := f.byID[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeGroupRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Group, error) {
	out := make([]*domain.Group, 0)
	for _, g := range f.byID {
		if g.EventID == eventID {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeGroupRepo) Update(ctx context.Context, g *domain.Group) error {
	if _, ok := f.byID[g.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *g
	f.byID[g.ID] = &cp
	return nil
}

func (f *fakeGroupRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	if f.guests != nil {
		members, _ := f.guests.ListByGroupID(ctx, id)
		if len(members) > 0 {
			return domain.ErrGroupHasGuests
		}
	}
	delete(f.byID, id)
	return nil
}

type fakeVersionRepo struct {
	byID   map[string]*domain.Version
	tables *fakeTableRepo
	nextID int
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{byID: make(map[string]*domain.Version), nextID: 1}
}

func (f *fakeVersionRepo) nextNumber(eventID string) int {
	n := 0
	for _, v := range f.byID {
		if v.EventID == eventID && v.VersionNumber > n {
			n = v.VersionNumber
		}
	}
	return n + 1
}

func (f *fakeVersionRepo) Create(ctx context.Context, v *domain.Version) error {
	v.ID = fmt.Sprintf("ve-%d", f.nextID)
	f.nextID++
	v.VersionNumber = f.nextNumber(v.EventID)
	v.IsActive = false
	cp := *v
	f.byID[v.ID] = &cp
	return nil
}

func (f *fakeVersionRepo) GetByID(ctx context.Context, id string) (*domain.Version, error) {
	if v, ok := f.byID[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeVersionRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Version, error) {
	out := make([]*domain.Version, 0)
	for _, v := range f.byID {
		if v.EventID == eventID {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	return out, nil
}

func (f *fakeVersionRepo) Update(ctx context.Context, v *domain.Version) error {
	stored, ok := f.byID[v.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Name = v.Name
	stored.Description = v.Description
	stored.HallDimensions = v.HallDimensions
	stored.UpdatedAt = v.UpdatedAt
	return nil
}

func (f *fakeVersionRepo) Activate(ctx context.Context, id string) error {
	target, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	for _, v := range f.byID {
		if v.EventID == target.EventID {
			v.IsActive = v.ID == id
		}
	}
	return nil
}

func (f *fakeVersionRepo) Duplicate(ctx context.Context, sourceID, name, createdBy string) (string, error) {
	src, ok := f.byID[sourceID]
	if !ok {
		return "", domain.ErrNotFound
	}
	v := &domain.Version{
		EventID:        src.EventID,
		Name:           name,
		Description:    src.Description,
		HallDimensions: src.HallDimensions,
		CreatedByUser:  createdBy,
	}
	if err := f.Create(ctx, v); err != nil {
		return "", err
	}
	if f.tables != nil {
		for _, t := range f.tables.forVersion(sourceID) {
			cp := *t
			cp.VersionID = v.ID
			cp.AssignedGuests = 0
			_ = f.tables.Create(ctx, &cp)
		}
	}
	return v.ID, nil
}

func (f *fakeVersionRepo) Delete(ctx context.Context, id string) error {
	v, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if v.IsActive {
		return domain.ErrVersionActive
	}
	if f.tables != nil && len(f.tables.forVersion(id)) > 0 {
		return domain.ErrVersionHasTables
	}
	delete(f.byID, id)
	return nil
}

type fakeTableRepo struct {
	byID        map[string]*domain.Table
	assignments *fakeAssignmentRepo
	nextID      int
}

func newFakeTableRepo() *fakeTableRepo {
	return &fakeTableRepo{byID: make(map[string]*domain.Table), nextID: 1}
}

func (f *fakeTableRepo) forVersion(versionID string) []*domain.Table {
	out := make([]*domain.Table, 0)
	for _, t := range f.byID {
		if t.VersionID == versionID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (f *fakeTableRepo) numberTaken(t *domain.Table) bool {
	for _, other := range f.byID {
		if other.ID != t.ID && other.VersionID == t.VersionID && other.Number == t.Number {
			return true
		}
	}
	return false
}

func (f *fakeTableRepo) assigned(tableID string) int {
	if f.assignments == nil {
		return 0
	}
	return len(f.assignments.forTable(tableID))
}

func (f *fakeTableRepo) Create(ctx context.Context, t *domain.Table) error {
	if f.numberTaken(t) {
		return domain.ErrTableNumberTaken
	}
	t.ID = fmt.Sprintf("ta-%d", f.nextID)
	f.nextID++
	cp := *t
	f.byID[t.ID] = &cp
	return nil
}

func (f *fakeTableRepo) GetByID(ctx context.Context, id string) (*domain.Table, error) {
	if t, ok := f.byID[id]; ok {
		cp := *t
		cp.AssignedGuests = f.assigned(id)
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTableRepo) ListByVersionID(ctx context.Context, versionID string) ([]*domain.Table, error) {
	out := make([]*domain.Table, 0)
	for _, t := range f.forVersion(versionID) {
		cp := *t
		cp.AssignedGuests = f.assigned(t.ID)
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeTableRepo) Update(ctx context.Context, t *domain.Table) error {
	if _, ok := f.byID[t.ID]; !ok {
		return domain.ErrNotFound
	}
	if t.TotalSeats < f.assigned(t.ID) {
		return domain.ErrTableFull
	}
	if f.assignments != nil {
		for _, a := range f.assignments.forTable(t.ID) {
			if a.SeatNumber != nil && *a.SeatNumber > t.TotalSeats {
				return domain.ErrSeatBeyondCapacity
			}
		}
	}
	if f.numberTaken(t) {
		return domain.ErrTableNumberTaken
	}
	cp := *t
	f.byID[t.ID] = &cp
	return nil
}

func (f *fakeTableRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	if f.assigned(id) > 0 {
		return domain.ErrTableHasAssignments
	}
	delete(f.byID, id)
	return nil
}

// fakeAssignmentRepo applies the same precondition order as the postgres Assign.
type fakeAssignmentRepo struct {
	byID   map[string]*domain.Assignment
	tables *fakeTableRepo
	guests *fakeGuestRepo
	users  *fakeUserRepo
	nextID int
	err    error
}

func newFakeAssignmentRepo(tables *fakeTableRepo, guests *fakeGuestRepo) *fakeAssignmentRepo {
	f := &fakeAssignmentRepo{byID: make(map[string]*domain.Assignment), tables: tables, guests: guests, nextID: 1}
	tables.assignments = f
	return f
}

func (f *fakeAssignmentRepo) forTable(tableID string) []*domain.Assignment {
	out := make([]*domain.Assignment, 0)
	for _, a := range f.byID {
		if a.TableID == tableID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeAssignmentRepo) Assign(ctx context.Context, a *domain.Assignment) error {
	if f.err != nil {
		return f.err
	}
	t, ok := f.tables.byID[a.TableID]
	if !ok {
		return domain.ErrNotFound
	}
	g, ok := f.guests.byID[a.GuestID]
	if !ok || g.EventID != t.EventID {
		return domain.ErrGuestNotInEvent
	}
	seated := f.forTable(t.ID)
	for _, other := range f.byID {
		if other.VersionID == t.VersionID && other.GuestID == a.GuestID {
			return domain.ErrGuestAlreadyAssigned
		}
	}
	if a.SeatNumber != nil {
		for _, other := range seated {
			if other.SeatNumber != nil && *other.SeatNumber == *a.SeatNumber {
				return domain.ErrSeatTaken
			}
		}
	}
	if len(seated) >= t.TotalSeats {
		return domain.ErrTableFull
	}
	a.ID = fmt.Sprintf("as-%d", f.nextID)
	f.nextID++
	a.VersionID = t.VersionID
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

// view copies a and joins in the guest summary and assigner name like the store does.
func (f *fakeAssignmentRepo) view(a *domain.Assignment) *domain.Assignment {
	cp := *a
	if g, ok := f.guests.byID[a.GuestID]; ok {
		cp.Guest = &domain.AssignmentGuest{ID: g.ID, Name: g.Name, LastName: g.LastName, Email: g.Email, GuestType: g.GuestType}
	}
	if f.users != nil {
		if u, ok := f.users.byID[a.AssignedBy]; ok {
			cp.AssignedByName = u.DisplayName
		}
	}
	return &cp
}

func (f *fakeAssignmentRepo) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	if a, ok := f.byID[id]; ok {
		return f.view(a), nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAssignmentRepo) ListByTableID(ctx context.Context, tableID string) ([]*domain.Assignment, error) {
	out := make([]*domain.Assignment, 0)
	for _, a := range f.forTable(tableID) {
		out = append(out, f.view(a))
	}
	return out, nil
}

func (f *fakeAssignmentRepo) Delete(ctx context.Context, tableID, guestID string) error {
	for id, a := range f.byID {
		if a.TableID == tableID && a.GuestID == guestID {
			delete(f.byID, id)
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeEmailService struct {
	welcomes    []*domain.WelcomeEmailData
	invitations []*domain.CollaboratorInvitationEmailData
	err         error
}

func (f *fakeEmailService) SendWelcome(ctx context.Context, data *domain.WelcomeEmailData) error {
	f.welcomes = append(f.welcomes, data)
	return f.err
}

func (f *fakeEmailService) SendCollaboratorInvitation(ctx context.Context, data *domain.CollaboratorInvitationEmailData) error {
	f.invitations = append(f.invitations, data)
	return f.err
}

type fakeMetrics struct {
	outcomes []string
}

func (f *fakeMetrics) AssignmentAttempt(outcome string) {
	f.outcomes = append(f.outcomes, outcome)
}

// world wires every fake around one event owned by "owner" with an admin,
// an editor and a viewer collaborator. "stranger" has no role.
type world struct {
	events        *fakeEventRepo
	collaborators *fakeCollaboratorRepo
	users         *fakeUserRepo
	guests        *fakeGuestRepo
	groups        *fakeGroupRepo
	versions      *fakeVersionRepo
	tables        *fakeTableRepo
	assignments   *fakeAssignmentRepo
	access        domain.AccessResolver
	eventID       string
}

func newWorld() *world {
	w := &world{
		events:        newFakeEventRepo(),
		collaborators: newFakeCollaboratorRepo(),
		users:         newFakeUserRepo(),
		guests:        newFakeGuestRepo(),
		versions:      newFakeVersionRepo(),
		tables:        newFakeTableRepo(),
	}
	w.groups = newFakeGroupRepo(w.guests)
	w.assignments = newFakeAssignmentRepo(w.tables, w.guests)
	w.assignments.users = w.users
	w.versions.tables = w.tables
	w.access = NewAccessResolver(w.events, w.collaborators)

	for _, u := range []string{"owner", "admin", "editor", "viewer", "stranger"} {
		w.users.add(u, u+"@example.com", u)
	}
	ev := domain.NewEvent("Gala", time.Now().Add(24*time.Hour), nil, "owner", time.Now(), time.Now())
	_ = w.events.Create(context.Background(), ev)
	w.eventID = ev.ID
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleEditor, domain.RoleViewer} {
		_, _ = w.collaborators.InviteOrReactivate(context.Background(), ev.ID, string(role), role, "owner")
	}
	return w
}

func (w *world) addGuest(eventID, name string) *domain.Guest {
	g := domain.NewGuest(eventID, name, "owner", time.Now())
	_ = w.guests.Create(context.Background(), g)
	return g
}

func (w *world) addVersion(eventID, name string) *domain.Version {
	v := domain.NewVersion(eventID, name, nil, nil, "owner", time.Now())
	_ = w.versions.Create(context.Background(), v)
	return v
}

func (w *world) addTable(v *domain.Version, number, seats int) *domain.Table {
	t := domain.NewTable(v.ID, v.EventID, fmt.Sprintf("Table %d", number), number, seats, domain.Position{}, time.Now())
	_ = w.tables.Create(context.Background(), t)
	return t
}
