package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"seatplanner/internal/domain"
)

type groupRepository struct {
	DB *sql.DB
}

func NewGroupRepository(db *sql.DB) domain.GroupRepository {
	return &groupRepository{DB: db}
}

const groupSelect = `
	SELECT gr.id, gr.event_id, gr.name, gr.color, gr.seating_preference, gr.prefer_adjacent, gr.priority, gr.notes,
		(SELECT COUNT(*) FROM guests g WHERE g.current_group = gr.id), gr.created_at
	FROM groups gr
`

func (r *groupRepository) Create(ctx context.Context, g *domain.Group) error {
	query := `
		INSERT INTO groups (event_id, name, color, seating_preference, prefer_adjacent, priority, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		g.EventID, g.Name, g.Color, g.SeatingPreference, g.PreferAdjacent, g.Priority, g.Notes, g.CreatedAt,
	).Scan(&g.ID)
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	g, err := scanGroup(r.DB.QueryRowContext(ctx, groupSelect+` WHERE gr.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return g, err
}

func (r *groupRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Group, error) {
	rows, err := r.DB.QueryContext(ctx, groupSelect+` WHERE gr.event_id = $1 ORDER BY gr.created_at, gr.id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	groups := make([]*domain.Group, 0)
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *groupRepository) Update(ctx context.Context, g *domain.Group) error {
	query := `
		UPDATE groups
		SET name = $1, color = $2, seating_preference = $3, prefer_adjacent = $4, priority = $5, notes = $6
		WHERE id = $7
	`
	result, err := r.DB.ExecContext(ctx, query, g.Name, g.Color, g.SeatingPreference, g.PreferAdjacent, g.Priority, g.Notes, g.ID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete refuses while any guest is still in the group. The row lock blocks a
// concurrent guest update from moving someone into the group mid-check.
func (r *groupRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var lockedID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM groups WHERE id = $1 FOR UPDATE`, id).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	var members int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM guests WHERE current_group = $1`, id).Scan(&members); err != nil {
		return err
	}
	if members > 0 {
		return domain.ErrGroupHasGuests
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id); err != nil {
		if foreignKeyViolation(err) {
			return domain.ErrGroupHasGuests
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func scanGroup(row rowScanner) (*domain.Group, error) {
	g := &domain.Group{}
	var notes sql.NullString
	err := row.Scan(&g.ID, &g.EventID, &g.Name, &g.Color, &g.SeatingPreference, &g.PreferAdjacent, &g.Priority,
		&notes, &g.GuestCount, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	g.Notes = stringPtr(notes)
	return g, nil
}
