package postgres

import (
	"context"
	"database/sql"
	"errors"

	"seatplanner/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, date, location, status, owner_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Name, e.Date, e.Location, e.Status, e.OwnerUserID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT e.id, e.name, e.date, e.location, e.status, e.owner_user_id, u.display_name, e.created_at, e.updated_at
		FROM events e
		JOIN users u ON u.id = e.owner_user_id
		WHERE e.id = $1
	`
	e := &domain.Event{}
	var location sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Name, &e.Date, &location, &e.Status, &e.OwnerUserID, &e.OwnerName, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	e.Location = stringPtr(location)
	return e, nil
}

// ListForUser returns the events the user owns or actively collaborates on, with their role.
func (r *eventRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Event, error) {
	query := `
		SELECT e.id, e.name, e.date, e.location, e.status, e.owner_user_id, u.display_name, e.created_at, e.updated_at,
			CASE WHEN e.owner_user_id = $1 THEN 'owner' ELSE c.role END
		FROM events e
		JOIN users u ON u.id = e.owner_user_id
		LEFT JOIN event_collaborators c ON c.event_id = e.id AND c.user_id = $1 AND c.status = 'active'
		WHERE e.owner_user_id = $1 OR c.id IS NOT NULL
		ORDER BY e.date ASC, e.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{}
		var location sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &e.Date, &location, &e.Status, &e.OwnerUserID, &e.OwnerName,
			&e.CreatedAt, &e.UpdatedAt, &e.UserRole); err != nil {
			return nil, err
		}
		e.Location = stringPtr(location)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET name = $1, date = $2, location = $3, status = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := r.DB.ExecContext(ctx, query, e.Name, e.Date, e.Location, e.Status, e.UpdatedAt, e.ID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the event; collaborators, guests, groups, versions, tables and
// assignments go with it through the foreign key cascades.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Stats(ctx context.Context, id string) (*domain.EventStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM guests WHERE event_id = $1),
			(SELECT COUNT(*) FROM guests WHERE event_id = $1 AND rsvp_status = 'confirmed'),
			(SELECT COUNT(*) FROM versions WHERE event_id = $1),
			(SELECT COUNT(*) FROM event_collaborators WHERE event_id = $1 AND status = 'active'),
			v.id,
			(SELECT COUNT(*) FROM tables t WHERE t.version_id = v.id),
			(SELECT COUNT(*) FROM table_assignments a WHERE a.version_id = v.id)
		FROM (SELECT 1) AS one
		LEFT JOIN versions v ON v.event_id = $1 AND v.is_active
	`
	s := &domain.EventStats{EventID: id}
	var activeVersion sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&s.TotalGuests, &s.ConfirmedGuests, &s.VersionsCount, &s.CollaboratorsCount,
		&activeVersion, &s.ActiveTables, &s.SeatedGuests,
	)
	if err != nil {
		return nil, err
	}
	s.ActiveVersionID = activeVersion.String
	return s, nil
}
