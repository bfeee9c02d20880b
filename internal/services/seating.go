package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seatplanner/internal/domain"
)

// Assignment outcomes reported to SeatingMetrics.
const (
	OutcomeAssigned        = "assigned"
	OutcomeSeatTaken       = "seat_taken"
	OutcomeTableFull       = "table_full"
	OutcomeAlreadyAssigned = "already_assigned"
	OutcomeWrongEvent      = "guest_not_in_event"
	OutcomeNotFound        = "not_found"
	OutcomeError           = "error"
)

type seatingService struct {
	tableRepo      domain.TableRepository
	assignmentRepo domain.AssignmentRepository
	versionRepo    domain.VersionRepository
	access         domain.AccessResolver
	metrics        domain.SeatingMetrics
	contextTimeout time.Duration
}

// NewSeatingService wires table and assignment use cases. metrics may be nil.
func NewSeatingService(
	tableRepo domain.TableRepository,
	assignmentRepo domain.AssignmentRepository,
	versionRepo domain.VersionRepository,
	access domain.AccessResolver,
	metrics domain.SeatingMetrics,
	timeout time.Duration,
) domain.SeatingService {
	return &seatingService{
		tableRepo:      tableRepo,
		assignmentRepo: assignmentRepo,
		versionRepo:    versionRepo,
		access:         access,
		metrics:        metrics,
		contextTimeout: timeout,
	}
}

func (s *seatingService) CreateTable(ctx context.Context, callerID string, t *domain.Table) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	version, err := s.versionRepo.GetByID(ctx, t.VersionID)
	if err != nil {
		return err
	}
	if _, err := s.access.Require(ctx, version.EventID, callerID, domain.MinRoleEdit); err != nil {
		return err
	}
	t.EventID = version.EventID
	t.CreatedAt = time.Now()
	if t.Shape == "" {
		t.Shape = domain.ShapeCircle
	}
	if t.AdjacentTables == nil {
		t.AdjacentTables = []string{}
	}
	if err := s.tableRepo.Create(ctx, t); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

func (s *seatingService) ListTables(ctx context.Context, versionID, callerID string) ([]*domain.Table, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	version, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.Require(ctx, version.EventID, callerID, domain.MinRoleView); err != nil {
		return nil, err
	}
	tables, err := s.tableRepo.ListByVersionID(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

func (s *seatingService) loadTable(ctx context.Context, tableID, callerID string, min domain.Role) (*domain.Table, error) {
	t, err := s.tableRepo.GetByID(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.Require(ctx, t.EventID, callerID, min); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *seatingService) GetTable(ctx context.Context, tableID, callerID string) (*domain.Table, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.loadTable(ctx, tableID, callerID, domain.MinRoleView)
}

func (s *seatingService) UpdateTable(ctx context.Context, tableID, callerID string, upd domain.TableUpdate) (*domain.Table, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	t, err := s.loadTable(ctx, tableID, callerID, domain.MinRoleEdit)
	if err != nil {
		return nil, err
	}
	if upd.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}
	if err := domain.NewValidationError(upd.Validate()...); err != nil {
		return nil, err
	}
	upd.Apply(t)
	if err := s.tableRepo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update table: %w", err)
	}
	return t, nil
}

func (s *seatingService) DeleteTable(ctx context.Context, tableID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	t, err := s.loadTable(ctx, tableID, callerID, domain.MinRoleDelete)
	if err != nil {
		return err
	}
	if err := s.tableRepo.Delete(ctx, t.ID); err != nil {
		return fmt.Errorf("delete table: %w", err)
	}
	return nil
}

func (s *seatingService) ListAssignments(ctx context.Context, tableID, callerID string) ([]*domain.Assignment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	t, err := s.loadTable(ctx, tableID, callerID, domain.MinRoleView)
	if err != nil {
		return nil, err
	}
	list, err := s.assignmentRepo.ListByTableID(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return list, nil
}

// Assign seats a guest at the table. The capacity, seat and one-table-per-version
// checks run in the store under the table lock.
func (s *seatingService) Assign(ctx context.Context, tableID, guestID, callerID string, seatNumber *int) (*domain.Assignment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	t, err := s.loadTable(ctx, tableID, callerID, domain.MinRoleEdit)
	if err != nil {
		return nil, err
	}
	if seatNumber != nil && (*seatNumber < 1 || *seatNumber > t.TotalSeats) {
		return nil, domain.NewValidationError(fmt.Sprintf("seat_number: must be between 1 and %d", t.TotalSeats))
	}

	a := domain.NewAssignment(t.ID, guestID, seatNumber, callerID, time.Now())
	err = s.assignmentRepo.Assign(ctx, a)
	s.observe(err)
	if err != nil {
		return nil, fmt.Errorf("assign guest: %w", err)
	}
	saved, err := s.assignmentRepo.GetByID(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return saved, nil
}

func (s *seatingService) observe(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.AssignmentAttempt(assignmentOutcome(err))
}

func assignmentOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeAssigned
	case errors.Is(err, domain.ErrSeatTaken):
		return OutcomeSeatTaken
	case errors.Is(err, domain.ErrTableFull):
		return OutcomeTableFull
	case errors.Is(err, domain.ErrGuestAlreadyAssigned):
		return OutcomeAlreadyAssigned
	case errors.Is(err, domain.ErrGuestNotInEvent):
		return OutcomeWrongEvent
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	default:
		return OutcomeError
	}
}

func (s *seatingService) Unassign(ctx context.Context, tableID, guestID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	t, err := s.loadTable(ctx, tableID, callerID, domain.MinRoleEdit)
	if err != nil {
		return err
	}
	if err := s.assignmentRepo.Delete(ctx, t.ID, guestID); err != nil {
		return fmt.Errorf("unassign guest: %w", err)
	}
	return nil
}
