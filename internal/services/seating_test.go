package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seatplanner/internal/domain"
)

func intPtr(n int) *int { return &n }

func newSeatingServiceForTest(w *world, m *fakeMetrics) domain.SeatingService {
	var metrics domain.SeatingMetrics
	if m != nil {
		metrics = m
	}
	return NewSeatingService(w.tables, w.assignments, w.versions, w.access, metrics, testTimeout)
}

func TestSeatingService_CreateTable(t *testing.T) {
	w := newWorld()
	svc := newSeatingServiceForTest(w, nil)
	ctx := context.Background()
	v := w.addVersion(w.eventID, "Plan")

	tbl := &domain.Table{VersionID: v.ID, Name: "Head", Number: 1, TotalSeats: 10}
	require.NoError(t, svc.CreateTable(ctx, "editor", tbl))
	assert.Equal(t, w.eventID, tbl.EventID)
	assert.Equal(t, domain.ShapeCircle, tbl.Shape)
	assert.Equal(t, []string{}, tbl.AdjacentTables)

	dup := &domain.Table{VersionID: v.ID, Name: "Again", Number: 1, TotalSeats: 4}
	require.ErrorIs(t, svc.CreateTable(ctx, "editor", dup), domain.ErrTableNumberTaken)

	require.ErrorIs(t, svc.CreateTable(ctx, "viewer", &domain.Table{VersionID: v.ID, Number: 2, TotalSeats: 4}), domain.ErrForbidden)
	require.ErrorIs(t, svc.CreateTable(ctx, "editor", &domain.Table{VersionID: "ve-missing", Number: 2, TotalSeats: 4}), domain.ErrNotFound)

	list, err := svc.ListTables(ctx, v.ID, "viewer")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Head", list[0].Name)
}

func TestSeatingService_UpdateTable(t *testing.T) {
	w := newWorld()
	svc := newSeatingServiceForTest(w, nil)
	ctx := context.Background()
	v := w.addVersion(w.eventID, "Plan")
	t1 := w.addTable(v, 1, 4)
	t2 := w.addTable(v, 2, 4)
	for _, name := range []string{"A", "B", "C"} {
		g := w.addGuest(w.eventID, name)
		_, err := svc.Assign(ctx, t1.ID, g.ID, "editor", nil)
		require.NoError(t, err)
	}

	got, err := svc.UpdateTable(ctx, t1.ID, "editor", domain.TableUpdate{
		Name:  domain.Some("Family"),
		Shape: domain.Some(domain.ShapeOval),
	})
	require.NoError(t, err)
	assert.Equal(t, "Family", got.Name)
	assert.Equal(t, domain.ShapeOval, got.Shape)

	_, err = svc.UpdateTable(ctx, t1.ID, "editor", domain.TableUpdate{TotalSeats: domain.Some(2)})
	require.ErrorIs(t, err, domain.ErrTableFull)

	_, err = svc.UpdateTable(ctx, t2.ID, "editor", domain.TableUpdate{Number: domain.Some(1)})
	require.ErrorIs(t, err, domain.ErrTableNumberTaken)

	g := w.addGuest(w.eventID, "D")
	_, err = svc.Assign(ctx, t2.ID, g.ID, "editor", intPtr(4))
	require.NoError(t, err)
	_, err = svc.UpdateTable(ctx, t2.ID, "editor", domain.TableUpdate{TotalSeats: domain.Some(3)})
	require.ErrorIs(t, err, domain.ErrSeatBeyondCapacity)

	_, err = svc.UpdateTable(ctx, t2.ID, "editor", domain.TableUpdate{TotalSeats: domain.Some(51)})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.UpdateTable(ctx, t2.ID, "editor", domain.TableUpdate{})
	require.ErrorIs(t, err, domain.ErrNoFieldsToUpdate)
}

func TestSeatingService_DeleteTable(t *testing.T) {
	w := newWorld()
	svc := newSeatingServiceForTest(w, nil)
	ctx := context.Background()
	v := w.addVersion(w.eventID, "Plan")
	tbl := w.addTable(v, 1, 4)
	g := w.addGuest(w.eventID, "Ana")
	_, err := svc.Assign(ctx, tbl.ID, g.ID, "editor", nil)
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteTable(ctx, tbl.ID, "editor"), domain.ErrForbidden)
	require.ErrorIs(t, svc.DeleteTable(ctx, tbl.ID, "admin"), domain.ErrTableHasAssignments)

	require.NoError(t, svc.Unassign(ctx, tbl.ID, g.ID, "editor"))
	require.NoError(t, svc.DeleteTable(ctx, tbl.ID, "admin"))
	_, err = svc.GetTable(ctx, tbl.ID, "admin")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSeatingService_Assign(t *testing.T) {
	w := newWorld()
	metrics := &fakeMetrics{}
	svc := newSeatingServiceForTest(w, metrics)
	ctx := context.Background()

	now := w.events.byID[w.eventID].CreatedAt
	other := domain.NewEvent("Other", now, nil, "owner", now, now)
	require.NoError(t, w.events.Create(ctx, other))
	outsider := w.addGuest(other.ID, "Outsider")

	v := w.addVersion(w.eventID, "Plan")
	small := w.addTable(v, 1, 2)
	big := w.addTable(v, 2, 8)
	ana := w.addGuest(w.eventID, "Ana")
	bo := w.addGuest(w.eventID, "Bo")
	cy := w.addGuest(w.eventID, "Cy")
	di := w.addGuest(w.eventID, "Di")

	a, err := svc.Assign(ctx, small.ID, ana.ID, "editor", intPtr(1))
	require.NoError(t, err)
	assert.Equal(t, v.ID, a.VersionID)
	assert.Equal(t, "editor", a.AssignedBy)
	assert.True(t, a.IsAttending)
	assert.Equal(t, "editor", a.AssignedByName)
	require.NotNil(t, a.Guest)
	assert.Equal(t, "Ana", a.Guest.Name)
	assert.Equal(t, ana.ID, a.Guest.ID)

	tests := []struct {
		name    string
		table   string
		guest   string
		caller  string
		seat    *int
		wantErr error
		outcome string
	}{
		{"seat taken", small.ID, bo.ID, "editor", intPtr(1), domain.ErrSeatTaken, OutcomeSeatTaken},
		{"already assigned in version", big.ID, ana.ID, "editor", nil, domain.ErrGuestAlreadyAssigned, OutcomeAlreadyAssigned},
		{"guest from another event", small.ID, outsider.ID, "editor", nil, domain.ErrGuestNotInEvent, OutcomeWrongEvent},
		{"unknown guest", small.ID, "gu-missing", "editor", nil, domain.ErrGuestNotInEvent, OutcomeWrongEvent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics.outcomes = nil
			_, err := svc.Assign(ctx, tt.table, tt.guest, tt.caller, tt.seat)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, []string{tt.outcome}, metrics.outcomes)
		})
	}

	_, err = svc.Assign(ctx, small.ID, bo.ID, "editor", nil)
	require.NoError(t, err)

	metrics.outcomes = nil
	_, err = svc.Assign(ctx, small.ID, cy.ID, "editor", nil)
	require.ErrorIs(t, err, domain.ErrTableFull)
	assert.Equal(t, []string{OutcomeTableFull}, metrics.outcomes)

	metrics.outcomes = nil
	_, err = svc.Assign(ctx, big.ID, di.ID, "editor", intPtr(9))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"seat_number: must be between 1 and 8"}, verr.Fields)
	assert.Empty(t, metrics.outcomes)

	_, err = svc.Assign(ctx, big.ID, di.ID, "viewer", nil)
	require.ErrorIs(t, err, domain.ErrForbidden)

	list, err := svc.ListAssignments(ctx, small.ID, "viewer")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSeatingService_Assign_SameGuestInAnotherVersion(t *testing.T) {
	w := newWorld()
	svc := newSeatingServiceForTest(w, nil)
	ctx := context.Background()
	v1 := w.addVersion(w.eventID, "A")
	v2 := w.addVersion(w.eventID, "B")
	t1 := w.addTable(v1, 1, 4)
	t2 := w.addTable(v2, 1, 4)
	g := w.addGuest(w.eventID, "Ana")

	_, err := svc.Assign(ctx, t1.ID, g.ID, "editor", intPtr(1))
	require.NoError(t, err)
	_, err = svc.Assign(ctx, t2.ID, g.ID, "editor", intPtr(1))
	require.NoError(t, err)
}

func TestSeatingService_Unassign(t *testing.T) {
	w := newWorld()
	svc := newSeatingServiceForTest(w, nil)
	ctx := context.Background()
	v := w.addVersion(w.eventID, "Plan")
	tbl := w.addTable(v, 1, 4)
	g := w.addGuest(w.eventID, "Ana")

	require.ErrorIs(t, svc.Unassign(ctx, tbl.ID, g.ID, "editor"), domain.ErrNotFound)
	_, err := svc.Assign(ctx, tbl.ID, g.ID, "editor", nil)
	require.NoError(t, err)
	require.ErrorIs(t, svc.Unassign(ctx, tbl.ID, g.ID, "viewer"), domain.ErrForbidden)
	require.NoError(t, svc.Unassign(ctx, tbl.ID, g.ID, "editor"))
}

func TestAssignmentOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeAssigned},
		{domain.ErrSeatTaken, OutcomeSeatTaken},
		{domain.ErrTableFull, OutcomeTableFull},
		{domain.ErrGuestAlreadyAssigned, OutcomeAlreadyAssigned},
		{domain.ErrGuestNotInEvent, OutcomeWrongEvent},
		{domain.ErrNotFound, OutcomeNotFound},
		{errors.New("connection reset"), OutcomeError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, assignmentOutcome(tt.err))
	}
}
