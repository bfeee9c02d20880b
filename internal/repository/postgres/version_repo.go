package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"seatplanner/internal/domain"
)

type versionRepository struct {
	DB *sql.DB
}

func NewVersionRepository(db *sql.DB) domain.VersionRepository {
	return &versionRepository{DB: db}
}

const versionSelect = `
	SELECT v.id, v.event_id, v.version_number, v.name, v.description, v.is_active, v.hall_dimensions,
		v.created_by_user, u.display_name, (SELECT COUNT(*) FROM tables t WHERE t.version_id = v.id),
		v.created_at, v.updated_at
	FROM versions v
	LEFT JOIN users u ON u.id = v.created_by_user
`

// lockEvent serialises version numbering and activation per event.
func lockEvent(ctx context.Context, tx *sql.Tx, eventID string) error {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func nextVersionNumber(ctx context.Context, tx *sql.Tx, eventID string) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version_number), 0) + 1 FROM versions WHERE event_id = $1`, eventID).Scan(&n)
	return n, err
}

const insertVersion = `
	INSERT INTO versions (event_id, version_number, name, description, is_active, hall_dimensions, created_by_user, created_at, updated_at)
	VALUES ($1, $2, $3, $4, FALSE, $5, $6, $7, $8)
	RETURNING id
`

// Create stores v as the event's next, inactive version.
func (r *versionRepository) Create(ctx context.Context, v *domain.Version) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockEvent(ctx, tx, v.EventID); err != nil {
		return err
	}
	number, err := nextVersionNumber(ctx, tx, v.EventID)
	if err != nil {
		return err
	}
	err = tx.QueryRowContext(ctx, insertVersion,
		v.EventID, number, v.Name, v.Description, jsonArg(v.HallDimensions), v.CreatedByUser, v.CreatedAt, v.UpdatedAt,
	).Scan(&v.ID)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	v.VersionNumber = number
	v.IsActive = false
	return nil
}

func (r *versionRepository) GetByID(ctx context.Context, id string) (*domain.Version, error) {
	v, err := scanVersion(r.DB.QueryRowContext(ctx, versionSelect+` WHERE v.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return v, err
}

func (r *versionRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Version, error) {
	rows, err := r.DB.QueryContext(ctx, versionSelect+` WHERE v.event_id = $1 ORDER BY v.version_number DESC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	versions := make([]*domain.Version, 0)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (r *versionRepository) Update(ctx context.Context, v *domain.Version) error {
	query := `UPDATE versions SET name = $1, description = $2, hall_dimensions = $3, updated_at = $4 WHERE id = $5`
	result, err := r.DB.ExecContext(ctx, query, v.Name, v.Description, jsonArg(v.HallDimensions), v.UpdatedAt, v.ID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Activate makes id the only active version of its event. Readers never observe
// zero or two active versions because both updates commit together.
func (r *versionRepository) Activate(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var eventID string
	err = tx.QueryRowContext(ctx, `SELECT event_id FROM versions WHERE id = $1`, id).Scan(&eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if err := lockEvent(ctx, tx, eventID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE versions SET is_active = FALSE, updated_at = NOW() WHERE event_id = $1 AND is_active AND id <> $2`,
		eventID, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE versions SET is_active = TRUE, updated_at = NOW() WHERE id = $1`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Duplicate creates the event's next version from sourceID and copies its tables.
// Assignments stay with the source.
func (r *versionRepository) Duplicate(ctx context.Context, sourceID, name, createdBy string) (string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var eventID string
	var description sql.NullString
	var hall []byte
	err = tx.QueryRowContext(ctx,
		`SELECT event_id, description, hall_dimensions FROM versions WHERE id = $1`, sourceID,
	).Scan(&eventID, &description, &hall)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	if err := lockEvent(ctx, tx, eventID); err != nil {
		return "", err
	}
	number, err := nextVersionNumber(ctx, tx, eventID)
	if err != nil {
		return "", err
	}

	var newID string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO versions (event_id, version_number, name, description, is_active, hall_dimensions, created_by_user, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, $5, $6, NOW(), NOW())
		RETURNING id
	`, eventID, number, name, stringPtr(description), jsonArg(hall), createdBy).Scan(&newID)
	if err != nil {
		return "", err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tables (version_id, event_id, name, number, total_seats, shape, section, position, color,
			adjacent_tables, is_reserved, notes, created_at)
		SELECT $1, event_id, name, number, total_seats, shape, section, position, color,
			adjacent_tables, is_reserved, notes, NOW()
		FROM tables
		WHERE version_id = $2
	`, newID, sourceID)
	if err != nil {
		return "", fmt.Errorf("copy tables: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}
	return newID, nil
}

// Delete refuses the active version and any version that still holds tables.
func (r *versionRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var active bool
	err = tx.QueryRowContext(ctx, `SELECT is_active FROM versions WHERE id = $1 FOR UPDATE`, id).Scan(&active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if active {
		return domain.ErrVersionActive
	}

	var hasTables bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tables WHERE version_id = $1)`, id).Scan(&hasTables); err != nil {
		return err
	}
	if hasTables {
		return domain.ErrVersionHasTables
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM versions WHERE id = $1`, id); err != nil {
		if foreignKeyViolation(err) {
			return domain.ErrVersionHasTables
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func scanVersion(row rowScanner) (*domain.Version, error) {
	v := &domain.Version{}
	var description, createdBy, createdByName sql.NullString
	var hall []byte
	err := row.Scan(&v.ID, &v.EventID, &v.VersionNumber, &v.Name, &description, &v.IsActive, &hall,
		&createdBy, &createdByName, &v.TableCount, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.Description = stringPtr(description)
	if len(hall) > 0 {
		v.HallDimensions = hall
	}
	v.CreatedByUser = createdBy.String
	v.CreatedByName = createdByName.String
	return v, nil
}
