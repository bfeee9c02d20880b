package database

import (
	"context"
	"fmt"
)

// RunMigrations applies the schema. Every statement is idempotent, so it is safe to
// run on each start.
func (db *DB) RunMigrations(ctx context.Context) error {
	db.logger.Info("running database migrations")

	migrations := []string{
		createExtensions,
		createUsersTable,
		createEventsTable,
		createCollaboratorsTable,
		createGroupsTable,
		createGuestsTable,
		createVersionsTable,
		createTablesTable,
		createAssignmentsTable,
		createIndexes,
	}

	for i, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	db.logger.Info("database migrations completed", "steps", len(migrations))
	return nil
}

const createExtensions = `CREATE EXTENSION IF NOT EXISTS pgcrypto;`

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email VARCHAR(255) NOT NULL UNIQUE,
    password_hash VARCHAR(255) NOT NULL,
    salt VARCHAR(64) NOT NULL,
    display_name VARCHAR(100) NOT NULL,
    phone VARCHAR(20),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    last_login_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(200) NOT NULL,
    date TIMESTAMPTZ NOT NULL,
    location VARCHAR(500),
    status VARCHAR(20) NOT NULL DEFAULT 'planning'
        CHECK (status IN ('planning', 'active', 'completed', 'archived')),
    owner_user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createCollaboratorsTable = `
CREATE TABLE IF NOT EXISTS event_collaborators (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    role VARCHAR(20) NOT NULL CHECK (role IN ('admin', 'editor', 'viewer')),
    invited_by UUID REFERENCES users(id) ON DELETE SET NULL,
    invited_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    accepted_at TIMESTAMPTZ,
    status VARCHAR(20) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'removed')),
    CONSTRAINT event_collaborators_event_user_key UNIQUE (event_id, user_id)
);`

const createGroupsTable = `
CREATE TABLE IF NOT EXISTS groups (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    name VARCHAR(100) NOT NULL,
    color VARCHAR(50) NOT NULL DEFAULT 'blue',
    seating_preference VARCHAR(20) NOT NULL DEFAULT 'no_preference'
        CHECK (seating_preference IN ('no_preference', 'together', 'separate', 'vip')),
    prefer_adjacent BOOLEAN NOT NULL DEFAULT FALSE,
    priority VARCHAR(10) NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high')),
    notes TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// current_group uses the default NO ACTION so an event cascade (which removes guests
// and groups in one statement) passes, while a direct group delete is refused.
const createGuestsTable = `
CREATE TABLE IF NOT EXISTS guests (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100),
    email VARCHAR(255),
    phone VARCHAR(20),
    guest_type VARCHAR(20) NOT NULL DEFAULT 'primary' CHECK (guest_type IN ('primary', 'companion', 'child')),
    primary_guest_id UUID REFERENCES guests(id) ON DELETE SET NULL,
    dietary_restrictions TEXT[] NOT NULL DEFAULT '{}',
    allergies VARCHAR(500),
    current_group UUID CONSTRAINT guests_current_group_fkey REFERENCES groups(id),
    side VARCHAR(50),
    rsvp_status VARCHAR(20) NOT NULL DEFAULT 'pending'
        CHECK (rsvp_status IN ('pending', 'confirmed', 'declined', 'maybe')),
    added_by_user UUID REFERENCES users(id) ON DELETE SET NULL,
    approved BOOLEAN NOT NULL DEFAULT FALSE,
    notes TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createVersionsTable = `
CREATE TABLE IF NOT EXISTS versions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    version_number INTEGER NOT NULL,
    name VARCHAR(100) NOT NULL,
    description TEXT,
    is_active BOOLEAN NOT NULL DEFAULT FALSE,
    hall_dimensions JSONB,
    created_by_user UUID REFERENCES users(id) ON DELETE SET NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT versions_event_number_key UNIQUE (event_id, version_number)
);
CREATE UNIQUE INDEX IF NOT EXISTS versions_one_active_per_event ON versions (event_id) WHERE is_active;`

const createTablesTable = `
CREATE TABLE IF NOT EXISTS tables (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    version_id UUID NOT NULL REFERENCES versions(id),
    event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    name VARCHAR(100) NOT NULL,
    number INTEGER NOT NULL CHECK (number > 0),
    total_seats INTEGER NOT NULL CHECK (total_seats BETWEEN 1 AND 50),
    shape VARCHAR(20) NOT NULL DEFAULT 'Circle' CHECK (shape IN ('Circle', 'Rectangle', 'Square', 'Oval')),
    section VARCHAR(100),
    position JSONB NOT NULL,
    color VARCHAR(50),
    adjacent_tables TEXT[] NOT NULL DEFAULT '{}',
    is_reserved BOOLEAN NOT NULL DEFAULT FALSE,
    notes TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT tables_version_number_key UNIQUE (version_id, number)
);`

// Assignments carry no event_id. Deleting an event removes them through
// events -> guests (CASCADE) -> table_assignments.guest_id (CASCADE); version_id and
// table_id stay NO ACTION so the same statement can drop versions and tables.
const createAssignmentsTable = `
CREATE TABLE IF NOT EXISTS table_assignments (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    version_id UUID NOT NULL REFERENCES versions(id),
    guest_id UUID NOT NULL REFERENCES guests(id) ON DELETE CASCADE,
    table_id UUID NOT NULL REFERENCES tables(id),
    seat_number INTEGER CHECK (seat_number > 0),
    is_attending BOOLEAN NOT NULL DEFAULT TRUE,
    assigned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    assigned_by UUID REFERENCES users(id) ON DELETE SET NULL,
    CONSTRAINT table_assignments_version_guest_key UNIQUE (version_id, guest_id),
    CONSTRAINT table_assignments_table_seat_key UNIQUE (table_id, seat_number)
);`

const createIndexes = `
CREATE INDEX IF NOT EXISTS idx_collaborators_user ON event_collaborators (user_id) WHERE status = 'active';
CREATE INDEX IF NOT EXISTS idx_guests_event ON guests (event_id);
CREATE INDEX IF NOT EXISTS idx_guests_group ON guests (current_group);
CREATE INDEX IF NOT EXISTS idx_groups_event ON groups (event_id);
CREATE INDEX IF NOT EXISTS idx_versions_event ON versions (event_id);
CREATE INDEX IF NOT EXISTS idx_tables_version ON tables (version_id);
CREATE INDEX IF NOT EXISTS idx_assignments_table ON table_assignments (table_id);`
