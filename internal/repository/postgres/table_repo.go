package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"seatplanner/internal/domain"
)

type tableRepository struct {
	DB *sql.DB
}

func NewTableRepository(db *sql.DB) domain.TableRepository {
	return &tableRepository{DB: db}
}

const (
	constraintTableNumber = "tables_version_number_key"

	tableSelect = `
	SELECT t.id, t.version_id, t.event_id, t.name, t.number, t.total_seats, t.shape, t.section, t.position, t.color,
		t.adjacent_tables, t.is_reserved, t.notes,
		(SELECT COUNT(*) FROM table_assignments a WHERE a.table_id = t.id), t.created_at
	FROM tables t
`
)

func (r *tableRepository) Create(ctx context.Context, t *domain.Table) error {
	position, err := json.Marshal(t.Position)
	if err != nil {
		return fmt.Errorf("encode position: %w", err)
	}
	query := `
		INSERT INTO tables (version_id, event_id, name, number, total_seats, shape, section, position, color,
			adjacent_tables, is_reserved, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	err = r.DB.QueryRowContext(ctx, query,
		t.VersionID, t.EventID, t.Name, t.Number, t.TotalSeats, t.Shape, t.Section, string(position), t.Color,
		pq.Array(nonNilStrings(t.AdjacentTables)), t.IsReserved, t.Notes, t.CreatedAt,
	).Scan(&t.ID)
	if c, ok := uniqueViolation(err); ok && c == constraintTableNumber {
		return domain.ErrTableNumberTaken
	}
	if foreignKeyViolation(err) {
		return domain.ErrNotFound
	}
	return err
}

func (r *tableRepository) GetByID(ctx context.Context, id string) (*domain.Table, error) {
	t, err := scanTable(r.DB.QueryRowContext(ctx, tableSelect+` WHERE t.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return t, err
}

func (r *tableRepository) ListByVersionID(ctx context.Context, versionID string) ([]*domain.Table, error) {
	rows, err := r.DB.QueryContext(ctx, tableSelect+` WHERE t.version_id = $1 ORDER BY t.number`, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tables := make([]*domain.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// Update locks the table so its capacity cannot shrink below a concurrent assignment.
func (r *tableRepository) Update(ctx context.Context, t *domain.Table) error {
	position, err := json.Marshal(t.Position)
	if err != nil {
		return fmt.Errorf("encode position: %w", err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	assigned, err := lockTableAndCount(ctx, tx, t.ID)
	if err != nil {
		return err
	}
	if t.TotalSeats < assigned {
		return domain.ErrTableFull
	}
	var highestSeat int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seat_number), 0) FROM table_assignments WHERE table_id = $1`, t.ID,
	).Scan(&highestSeat)
	if err != nil {
		return err
	}
	if t.TotalSeats < highestSeat {
		return domain.ErrSeatBeyondCapacity
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE tables
		SET name = $1, number = $2, total_seats = $3, shape = $4, section = $5, position = $6, color = $7,
			adjacent_tables = $8, is_reserved = $9, notes = $10
		WHERE id = $11
	`, t.Name, t.Number, t.TotalSeats, t.Shape, t.Section, string(position), t.Color,
		pq.Array(nonNilStrings(t.AdjacentTables)), t.IsReserved, t.Notes, t.ID)
	if err != nil {
		if c, ok := uniqueViolation(err); ok && c == constraintTableNumber {
			return domain.ErrTableNumberTaken
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	t.AssignedGuests = assigned
	return nil
}

// Delete refuses while any guest is assigned to the table.
func (r *tableRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	assigned, err := lockTableAndCount(ctx, tx, id)
	if err != nil {
		return err
	}
	if assigned > 0 {
		return domain.ErrTableHasAssignments
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tables WHERE id = $1`, id); err != nil {
		if foreignKeyViolation(err) {
			return domain.ErrTableHasAssignments
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// lockTableAndCount takes the table row lock shared with Assign and returns the
// number of assignments on it.
func lockTableAndCount(ctx context.Context, tx *sql.Tx, tableID string) (int, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM tables WHERE id = $1 FOR UPDATE`, tableID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	var n int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM table_assignments WHERE table_id = $1`, tableID).Scan(&n)
	return n, err
}

func scanTable(row rowScanner) (*domain.Table, error) {
	t := &domain.Table{}
	var section, color, notes sql.NullString
	var position []byte
	err := row.Scan(&t.ID, &t.VersionID, &t.EventID, &t.Name, &t.Number, &t.TotalSeats, &t.Shape, &section,
		&position, &color, pq.Array(&t.AdjacentTables), &t.IsReserved, &notes, &t.AssignedGuests, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(position) > 0 {
		if err := json.Unmarshal(position, &t.Position); err != nil {
			return nil, fmt.Errorf("decode position: %w", err)
		}
	}
	t.Section = stringPtr(section)
	t.Color = stringPtr(color)
	t.Notes = stringPtr(notes)
	t.AdjacentTables = nonNilStrings(t.AdjacentTables)
	return t, nil
}
