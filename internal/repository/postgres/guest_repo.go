package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"seatplanner/internal/domain"
)

type guestRepository struct {
	DB *sql.DB
}

func NewGuestRepository(db *sql.DB) domain.GuestRepository {
	return &guestRepository{DB: db}
}

const guestSelect = `
	SELECT g.id, g.event_id, g.name, g.last_name, g.email, g.phone, g.guest_type, g.primary_guest_id, pg.name,
		g.dietary_restrictions, g.allergies, g.current_group, g.side, g.rsvp_status, g.added_by_user, au.display_name,
		g.approved, g.notes, g.created_at, g.updated_at
	FROM guests g
	LEFT JOIN guests pg ON pg.id = g.primary_guest_id
	LEFT JOIN users au ON au.id = g.added_by_user
`

func (r *guestRepository) Create(ctx context.Context, g *domain.Guest) error {
	query := `
		INSERT INTO guests (event_id, name, last_name, email, phone, guest_type, primary_guest_id, dietary_restrictions,
			allergies, current_group, side, rsvp_status, added_by_user, approved, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		g.EventID, g.Name, g.LastName, g.Email, g.Phone, g.GuestType, g.PrimaryGuestID,
		pq.Array(nonNilStrings(g.DietaryRestrictions)), g.Allergies, g.CurrentGroup, g.Side, g.RSVPStatus,
		g.AddedByUser, g.Approved, g.Notes, g.CreatedAt, g.UpdatedAt,
	).Scan(&g.ID)
	if foreignKeyViolation(err) {
		return domain.ErrNotFound
	}
	return err
}

func (r *guestRepository) GetByID(ctx context.Context, id string) (*domain.Guest, error) {
	g, err := scanGuest(r.DB.QueryRowContext(ctx, guestSelect+` WHERE g.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return g, err
}

// ListByEventID returns one page of guests and the total count for the event.
// A zero page size returns every guest.
func (r *guestRepository) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Guest, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM guests WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := guestSelect + `
		WHERE g.event_id = $1
		ORDER BY g.created_at DESC, g.id
		LIMIT NULLIF($2::int, 0) OFFSET $3
	`
	guests, err := r.list(ctx, query, eventID, params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, err
	}
	return guests, total, nil
}

func (r *guestRepository) ListByGroupID(ctx context.Context, groupID string) ([]*domain.Guest, error) {
	return r.list(ctx, guestSelect+` WHERE g.current_group = $1 ORDER BY g.name, g.id`, groupID)
}

func (r *guestRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Guest, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	guests := make([]*domain.Guest, 0)
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, g)
	}
	return guests, rows.Err()
}

func (r *guestRepository) Update(ctx context.Context, g *domain.Guest) error {
	query := `
		UPDATE guests
		SET name = $1, last_name = $2, email = $3, phone = $4, guest_type = $5, primary_guest_id = $6,
			dietary_restrictions = $7, allergies = $8, current_group = $9, side = $10, rsvp_status = $11,
			approved = $12, notes = $13, updated_at = $14
		WHERE id = $15
	`
	result, err := r.DB.ExecContext(ctx, query,
		g.Name, g.LastName, g.Email, g.Phone, g.GuestType, g.PrimaryGuestID,
		pq.Array(nonNilStrings(g.DietaryRestrictions)), g.Allergies, g.CurrentGroup, g.Side, g.RSVPStatus,
		g.Approved, g.Notes, g.UpdatedAt, g.ID,
	)
	if err != nil {
		if foreignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the guest and its assignments. Companions that pointed at the guest
// keep existing with primary_guest_id cleared.
func (r *guestRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM guests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanGuest(row rowScanner) (*domain.Guest, error) {
	g := &domain.Guest{}
	var lastName, email, phone, primaryID, primaryName, allergies, group, side, addedBy, addedByName, notes sql.NullString
	err := row.Scan(&g.ID, &g.EventID, &g.Name, &lastName, &email, &phone, &g.GuestType, &primaryID, &primaryName,
		pq.Array(&g.DietaryRestrictions), &allergies, &group, &side, &g.RSVPStatus, &addedBy, &addedByName,
		&g.Approved, &notes, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	g.LastName = stringPtr(lastName)
	g.Email = stringPtr(email)
	g.Phone = stringPtr(phone)
	g.PrimaryGuestID = stringPtr(primaryID)
	g.PrimaryGuestName = primaryName.String
	g.DietaryRestrictions = nonNilStrings(g.DietaryRestrictions)
	g.Allergies = stringPtr(allergies)
	g.CurrentGroup = stringPtr(group)
	g.Side = stringPtr(side)
	g.AddedByUser = addedBy.String
	g.AddedByName = addedByName.String
	g.Notes = stringPtr(notes)
	return g, nil
}
