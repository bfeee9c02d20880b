package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"seatplanner/internal/domain"
)

type collaboratorRepository struct {
	DB *sql.DB
}

func NewCollaboratorRepository(db *sql.DB) domain.CollaboratorRepository {
	return &collaboratorRepository{
		DB: db,
	}
}

const collaboratorSelect = `
	SELECT c.id, c.event_id, c.user_id, u.email, u.display_name, c.role, c.invited_by, inv.display_name,
		c.invited_at, c.accepted_at, c.status
	FROM event_collaborators c
	JOIN users u ON u.id = c.user_id
	LEFT JOIN users inv ON inv.id = c.invited_by
`

func (r *collaboratorRepository) GetActive(ctx context.Context, eventID, userID string) (*domain.Collaborator, error) {
	query := collaboratorSelect + ` WHERE c.event_id = $1 AND c.user_id = $2 AND c.status = 'active'`
	c, err := scanCollaborator(r.DB.QueryRowContext(ctx, query, eventID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return c, err
}

// GetByID only sees active rows; a removed collaborator is not found.
func (r *collaboratorRepository) GetByID(ctx context.Context, id string) (*domain.Collaborator, error) {
	query := collaboratorSelect + ` WHERE c.id = $1 AND c.status = 'active'`
	c, err := scanCollaborator(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return c, err
}

func (r *collaboratorRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Collaborator, error) {
	query := collaboratorSelect + ` WHERE c.event_id = $1 AND c.status = 'active' ORDER BY c.invited_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	collaborators := make([]*domain.Collaborator, 0)
	for rows.Next() {
		c, err := scanCollaborator(rows)
		if err != nil {
			return nil, err
		}
		collaborators = append(collaborators, c)
	}
	return collaborators, rows.Err()
}

func (r *collaboratorRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Collaboration, error) {
	query := `
		SELECT c.id, c.event_id, c.role, c.invited_at, inv.display_name, e.name, e.date, e.location, o.display_name
		FROM event_collaborators c
		JOIN events e ON e.id = c.event_id
		JOIN users o ON o.id = e.owner_user_id
		LEFT JOIN users inv ON inv.id = c.invited_by
		WHERE c.user_id = $1 AND c.status = 'active'
		ORDER BY e.date ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]*domain.Collaboration, 0)
	for rows.Next() {
		c := &domain.Collaboration{}
		var inviter, location sql.NullString
		if err := rows.Scan(&c.ID, &c.EventID, &c.Role, &c.InvitedAt, &inviter, &c.EventName, &c.EventDate,
			&location, &c.OwnerName); err != nil {
			return nil, err
		}
		c.InvitedByName = inviter.String
		c.EventLocation = stringPtr(location)
		list = append(list, c)
	}
	return list, rows.Err()
}

// InviteOrReactivate locks any existing (event, user) row so two concurrent invites
// cannot both succeed. A removed row is brought back with the new role and inviter.
func (r *collaboratorRepository) InviteOrReactivate(ctx context.Context, eventID, userID string, role domain.Role, invitedBy string) (*domain.Collaborator, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id string
	var status domain.CollaboratorStatus
	err = tx.QueryRowContext(ctx, `
		SELECT id, status FROM event_collaborators
		WHERE event_id = $1 AND user_id = $2
		FOR UPDATE
	`, eventID, userID).Scan(&id, &status)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = tx.QueryRowContext(ctx, `
			INSERT INTO event_collaborators (event_id, user_id, role, invited_by, invited_at, accepted_at, status)
			VALUES ($1, $2, $3, $4, NOW(), NOW(), 'active')
			RETURNING id
		`, eventID, userID, role, invitedBy).Scan(&id)
		if _, ok := uniqueViolation(err); ok {
			return nil, domain.ErrAlreadyCollaborator
		}
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case status == domain.CollaboratorActive:
		return nil, domain.ErrAlreadyCollaborator
	default:
		_, err = tx.ExecContext(ctx, `
			UPDATE event_collaborators
			SET role = $1, status = 'active', invited_by = $2, invited_at = NOW(), accepted_at = NOW()
			WHERE id = $3
		`, role, invitedBy, id)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *collaboratorRepository) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	query := `UPDATE event_collaborators SET role = $1 WHERE id = $2 AND status = 'active'`
	result, err := r.DB.ExecContext(ctx, query, role, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Remove soft-deletes the row so it can be reactivated by a later invite.
func (r *collaboratorRepository) Remove(ctx context.Context, id string) error {
	query := `UPDATE event_collaborators SET status = 'removed', accepted_at = NULL WHERE id = $1 AND status = 'active'`
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

func scanCollaborator(row rowScanner) (*domain.Collaborator, error) {
	c := &domain.Collaborator{}
	var invitedBy, inviterName sql.NullString
	var acceptedAt sql.NullTime
	err := row.Scan(&c.ID, &c.EventID, &c.UserID, &c.UserEmail, &c.UserDisplayName, &c.Role,
		&invitedBy, &inviterName, &c.InvitedAt, &acceptedAt, &c.Status)
	if err != nil {
		return nil, err
	}
	c.InvitedBy = invitedBy.String
	c.InvitedByName = inviterName.String
	if acceptedAt.Valid {
		c.AcceptedAt = &acceptedAt.Time
	}
	return c, nil
}
