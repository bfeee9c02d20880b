package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"seatplanner/internal/domain"
)

type assignmentRepository struct {
	DB *sql.DB
}

func NewAssignmentRepository(db *sql.DB) domain.AssignmentRepository {
	return &assignmentRepository{DB: db}
}

const (
	constraintVersionGuest = "table_assignments_version_guest_key"
	constraintTableSeat    = "table_assignments_table_seat_key"
)

// Assign inserts a after checking, under the table row lock, that the guest is in the
// table's event, unseated in the version, the seat is free and the table has room.
// The unique constraints catch a race on the guest from a different table.
func (r *assignmentRepository) Assign(ctx context.Context, a *domain.Assignment) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var versionID, tableEventID string
	var totalSeats int
	err = tx.QueryRowContext(ctx,
		`SELECT version_id, event_id, total_seats FROM tables WHERE id = $1 FOR UPDATE`, a.TableID,
	).Scan(&versionID, &tableEventID, &totalSeats)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	var guestEventID string
	err = tx.QueryRowContext(ctx, `SELECT event_id FROM guests WHERE id = $1`, a.GuestID).Scan(&guestEventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrGuestNotInEvent
		}
		return err
	}
	if guestEventID != tableEventID {
		return domain.ErrGuestNotInEvent
	}

	var assigned bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM table_assignments WHERE version_id = $1 AND guest_id = $2)`,
		versionID, a.GuestID,
	).Scan(&assigned)
	if err != nil {
		return err
	}
	if assigned {
		return domain.ErrGuestAlreadyAssigned
	}

	if a.SeatNumber != nil {
		var taken bool
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM table_assignments WHERE table_id = $1 AND seat_number = $2)`,
			a.TableID, *a.SeatNumber,
		).Scan(&taken)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrSeatTaken
		}
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM table_assignments WHERE table_id = $1`, a.TableID).Scan(&count); err != nil {
		return err
	}
	if count >= totalSeats {
		return domain.ErrTableFull
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO table_assignments (version_id, guest_id, table_id, seat_number, is_attending, assigned_at, assigned_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, versionID, a.GuestID, a.TableID, a.SeatNumber, a.IsAttending, a.AssignedAt, a.AssignedBy).Scan(&a.ID)
	if err != nil {
		if c, ok := uniqueViolation(err); ok {
			switch c {
			case constraintVersionGuest:
				return domain.ErrGuestAlreadyAssigned
			case constraintTableSeat:
				return domain.ErrSeatTaken
			}
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	a.VersionID = versionID
	return nil
}

const assignmentViewColumns = `
	SELECT a.id, a.version_id, a.guest_id, a.table_id, a.seat_number, a.is_attending, a.assigned_at,
		a.assigned_by, u.display_name, g.name, g.last_name, g.email, g.guest_type
	FROM table_assignments a
	JOIN guests g ON g.id = a.guest_id
	LEFT JOIN users u ON u.id = a.assigned_by`

// scanAssignment reads one row selected with assignmentViewColumns.
func scanAssignment(row interface{ Scan(...any) error }) (*domain.Assignment, error) {
	a := &domain.Assignment{Guest: &domain.AssignmentGuest{}}
	var seat sql.NullInt64
	var assignedBy, assignedByName, lastName, email sql.NullString
	if err := row.Scan(&a.ID, &a.VersionID, &a.GuestID, &a.TableID, &seat, &a.IsAttending, &a.AssignedAt,
		&assignedBy, &assignedByName, &a.Guest.Name, &lastName, &email, &a.Guest.GuestType); err != nil {
		return nil, err
	}
	if seat.Valid {
		n := int(seat.Int64)
		a.SeatNumber = &n
	}
	a.AssignedBy = assignedBy.String
	a.AssignedByName = assignedByName.String
	a.Guest.ID = a.GuestID
	a.Guest.LastName = stringPtr(lastName)
	a.Guest.Email = stringPtr(email)
	return a, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	a, err := scanAssignment(r.DB.QueryRowContext(ctx, assignmentViewColumns+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *assignmentRepository) ListByTableID(ctx context.Context, tableID string) ([]*domain.Assignment, error) {
	query := assignmentViewColumns + `
		WHERE a.table_id = $1
		ORDER BY a.seat_number NULLS LAST, a.assigned_at
	`
	rows, err := r.DB.QueryContext(ctx, query, tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	assignments := make([]*domain.Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *assignmentRepository) Delete(ctx context.Context, tableID, guestID string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM table_assignments WHERE table_id = $1 AND guest_id = $2`, tableID, guestID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
