package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"seatplanner/internal/delivery/http/helpers"
	"seatplanner/internal/delivery/http/middleware"
	"seatplanner/internal/domain"
)

const (
	testUserID  = "user-1"
	testEventID = "11111111-1111-4111-8111-111111111111"
	testOtherID = "22222222-2222-4222-8222-222222222222"
	malformedID = "not-a-uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// envelope mirrors helpers.APIResponse with Data left raw for per-test decoding.
type envelope struct {
	Success bool                 `json:"success"`
	Data    json.RawMessage      `json:"data"`
	Message string               `json:"message"`
	Errors  []helpers.FieldError `json:"errors"`
}

// serve registers h under pattern on a fresh mux and runs one request through it.
// A non-empty userID is attached as the authenticated principal.
func serve(t *testing.T, pattern string, h http.HandlerFunc, method, target, body, userID string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if userID != "" {
		req = req.WithContext(middleware.SetPrincipal(req.Context(), &domain.Principal{UserID: userID}))
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return rr, env
}

func decodeData(t *testing.T, env envelope, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func fieldNames(errs []helpers.FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

type fakeAuthService struct {
	result    *domain.AuthResult
	user      *domain.User
	err       error
	lastInput domain.RegisterInput
	lastEmail string
	lastID    string
}

func (f *fakeAuthService) Register(ctx context.Context, in domain.RegisterInput) (*domain.AuthResult, error) {
	f.lastInput = in
	return f.result, f.err
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	f.lastEmail = email
	return f.result, f.err
}

func (f *fakeAuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	f.lastID = userID
	return f.user, f.err
}

type fakeEventService struct {
	event      *domain.Event
	events     []*domain.Event
	stats      *domain.EventStats
	err        error
	lastCreate *domain.Event
	lastID     string
	lastCaller string
	lastUpdate domain.EventUpdate
}

func (f *fakeEventService) Create(ctx context.Context, event *domain.Event) error {
	f.lastCreate = event
	if f.err == nil {
		event.ID = testEventID
	}
	return f.err
}

func (f *fakeEventService) ListForUser(ctx context.Context, userID string) ([]*domain.Event, error) {
	f.lastCaller = userID
	return f.events, f.err
}

func (f *fakeEventService) Get(ctx context.Context, id, userID string) (*domain.Event, error) {
	f.lastID, f.lastCaller = id, userID
	return f.event, f.err
}

func (f *fakeEventService) Update(ctx context.Context, id, userID string, upd domain.EventUpdate) (*domain.Event, error) {
	f.lastID, f.lastCaller, f.lastUpdate = id, userID, upd
	return f.event, f.err
}

func (f *fakeEventService) Delete(ctx context.Context, id, userID string) error {
	f.lastID, f.lastCaller = id, userID
	return f.err
}

func (f *fakeEventService) Stats(ctx context.Context, id, userID string) (*domain.EventStats, error) {
	f.lastID = id
	return f.stats, f.err
}

type fakeCollaboratorService struct {
	collab     *domain.Collaborator
	mine       []*domain.Collaboration
	err        error
	lastEmail  string
	lastRole   domain.Role
	lastID     string
	lastCaller string
}

func (f *fakeCollaboratorService) Invite(ctx context.Context, eventID, callerID, email string, role domain.Role) (*domain.Collaborator, error) {
	f.lastID, f.lastCaller, f.lastEmail, f.lastRole = eventID, callerID, email, role
	return f.collab, f.err
}

func (f *fakeCollaboratorService) ListByEvent(ctx context.Context, eventID, callerID string) ([]*domain.Collaborator, error) {
	f.lastID = eventID
	if f.collab == nil {
		return nil, f.err
	}
	return []*domain.Collaborator{f.collab}, f.err
}

func (f *fakeCollaboratorService) ListMine(ctx context.Context, callerID string) ([]*domain.Collaboration, error) {
	f.lastCaller = callerID
	return f.mine, f.err
}

func (f *fakeCollaboratorService) Get(ctx context.Context, id, callerID string) (*domain.Collaborator, error) {
	f.lastID = id
	return f.collab, f.err
}

func (f *fakeCollaboratorService) UpdateRole(ctx context.Context, id, callerID string, role domain.Role) (*domain.Collaborator, error) {
	f.lastID, f.lastRole = id, role
	return f.collab, f.err
}

func (f *fakeCollaboratorService) Remove(ctx context.Context, id, callerID string) error {
	f.lastID, f.lastCaller = id, callerID
	return f.err
}

type fakeGuestService struct {
	guest      *domain.Guest
	guests     []*domain.Guest
	total      int
	err        error
	lastCreate *domain.Guest
	lastParams domain.PaginationParams
	lastUpdate domain.GuestUpdate
	lastID     string
}

func (f *fakeGuestService) Create(ctx context.Context, callerID string, guest *domain.Guest) error {
	f.lastCreate = guest
	return f.err
}

func (f *fakeGuestService) ListByEvent(ctx context.Context, eventID, callerID string, params domain.PaginationParams) ([]*domain.Guest, int, error) {
	f.lastID, f.lastParams = eventID, params
	return f.guests, f.total, f.err
}

func (f *fakeGuestService) Get(ctx context.Context, id, callerID string) (*domain.Guest, error) {
	f.lastID = id
	return f.guest, f.err
}

func (f *fakeGuestService) Update(ctx context.Context, id, callerID string, upd domain.GuestUpdate) (*domain.Guest, error) {
	f.lastID, f.lastUpdate = id, upd
	return f.guest, f.err
}

func (f *fakeGuestService) Delete(ctx context.Context, id, callerID string) error {
	f.lastID = id
	return f.err
}

type fakeGroupService struct {
	group      *domain.Group
	guests     []*domain.Guest
	err        error
	lastCreate *domain.Group
	lastUpdate domain.GroupUpdate
	lastID     string
}

func (f *fakeGroupService) Create(ctx context.Context, callerID string, group *domain.Group) error {
	f.lastCreate = group
	return f.err
}

func (f *fakeGroupService) ListByEvent(ctx context.Context, eventID, callerID string) ([]*domain.Group, error) {
	f.lastID = eventID
	if f.group == nil {
		return nil, f.err
	}
	return []*domain.Group{f.group}, f.err
}

func (f *fakeGroupService) Get(ctx context.Context, id, callerID string) (*domain.Group, error) {
	f.lastID = id
	return f.group, f.err
}

func (f *fakeGroupService) Update(ctx context.Context, id, callerID string, upd domain.GroupUpdate) (*domain.Group, error) {
	f.lastID, f.lastUpdate = id, upd
	return f.group, f.err
}

func (f *fakeGroupService) Delete(ctx context.Context, id, callerID string) error {
	f.lastID = id
	return f.err
}

func (f *fakeGroupService) ListGuests(ctx context.Context, id, callerID string) ([]*domain.Guest, error) {
	f.lastID = id
	return f.guests, f.err
}

type fakeVersionService struct {
	version       *domain.Version
	err           error
	lastCreate    *domain.Version
	lastUpdate    domain.VersionUpdate
	lastID        string
	lastDupName   *string
	duplicateCall bool
}

func (f *fakeVersionService) Create(ctx context.Context, callerID string, v *domain.Version) error {
	f.lastCreate = v
	return f.err
}

func (f *fakeVersionService) ListByEvent(ctx context.Context, eventID, callerID string) ([]*domain.Version, error) {
	f.lastID = eventID
	return nil, f.err
}

func (f *fakeVersionService) Get(ctx context.Context, id, callerID string) (*domain.Version, error) {
	f.lastID = id
	return f.version, f.err
}

func (f *fakeVersionService) Update(ctx context.Context, id, callerID string, upd domain.VersionUpdate) (*domain.Version, error) {
	f.lastID, f.lastUpdate = id, upd
	return f.version, f.err
}

func (f *fakeVersionService) Activate(ctx context.Context, id, callerID string) (*domain.Version, error) {
	f.lastID = id
	return f.version, f.err
}

func (f *fakeVersionService) Duplicate(ctx context.Context, id, callerID string, name *string) (*domain.Version, error) {
	f.lastID, f.lastDupName, f.duplicateCall = id, name, true
	return f.version, f.err
}

func (f *fakeVersionService) Delete(ctx context.Context, id, callerID string) error {
	f.lastID = id
	return f.err
}

type fakeSeatingService struct {
	table       *domain.Table
	assignment  *domain.Assignment
	err         error
	lastCreate  *domain.Table
	lastUpdate  domain.TableUpdate
	lastTableID string
	lastGuestID string
	lastSeat    *int
}

func (f *fakeSeatingService) CreateTable(ctx context.Context, callerID string, t *domain.Table) error {
	f.lastCreate = t
	return f.err
}

func (f *fakeSeatingService) ListTables(ctx context.Context, versionID, callerID string) ([]*domain.Table, error) {
	return nil, f.err
}

func (f *fakeSeatingService) GetTable(ctx context.Context, id, callerID string) (*domain.Table, error) {
	f.lastTableID = id
	return f.table, f.err
}

func (f *fakeSeatingService) UpdateTable(ctx context.Context, id, callerID string, upd domain.TableUpdate) (*domain.Table, error) {
	f.lastTableID, f.lastUpdate = id, upd
	return f.table, f.err
}

func (f *fakeSeatingService) DeleteTable(ctx context.Context, id, callerID string) error {
	f.lastTableID = id
	return f.err
}

func (f *fakeSeatingService) ListAssignments(ctx context.Context, tableID, callerID string) ([]*domain.Assignment, error) {
	f.lastTableID = tableID
	if f.assignment == nil {
		return nil, f.err
	}
	return []*domain.Assignment{f.assignment}, f.err
}

func (f *fakeSeatingService) Assign(ctx context.Context, tableID, guestID, callerID string, seat *int) (*domain.Assignment, error) {
	f.lastTableID, f.lastGuestID, f.lastSeat = tableID, guestID, seat
	return f.assignment, f.err
}

func (f *fakeSeatingService) Unassign(ctx context.Context, tableID, guestID, callerID string) error {
	f.lastTableID, f.lastGuestID = tableID, guestID
	return f.err
}
