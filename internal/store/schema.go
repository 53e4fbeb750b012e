package store

import "context"

// schema is applied at startup; every statement is idempotent so restarts are safe.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS proctors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		department TEXT NOT NULL DEFAULT 'General',
		password_hash TEXT NOT NULL,
		must_reset_password BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		register_no TEXT NOT NULL UNIQUE,
		department TEXT NOT NULL DEFAULT 'General',
		year TEXT NOT NULL DEFAULT '1st',
		password_hash TEXT NOT NULL,
		proctor_id TEXT REFERENCES proctors(id) ON DELETE SET NULL,
		must_reset_password BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS proctor_students (
		proctor_id TEXT NOT NULL REFERENCES proctors(id) ON DELETE CASCADE,
		student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		PRIMARY KEY (proctor_id, student_id)
	)`,
	`CREATE TABLE IF NOT EXISTS admins (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS hackathon_submissions (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		proctor_id TEXT REFERENCES proctors(id),
		title TEXT NOT NULL,
		organizer TEXT NOT NULL DEFAULT '',
		start_date TIMESTAMPTZ,
		end_date TIMESTAMPTZ,
		status TEXT NOT NULL DEFAULT 'pending',
		poster_path TEXT NOT NULL DEFAULT '',
		certificate_path TEXT NOT NULL DEFAULT '',
		remarks TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS upcoming_hackathons (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		poster_path TEXT NOT NULL DEFAULT '',
		registration_deadline TIMESTAMPTZ,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		hackathon_title TEXT NOT NULL DEFAULT '',
		leader_id TEXT REFERENCES students(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS team_members (
		team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		PRIMARY KEY (team_id, student_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_student ON hackathon_submissions(student_id)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_proctor ON hackathon_submissions(proctor_id)`,
	`CREATE INDEX IF NOT EXISTS idx_students_proctor ON students(proctor_id)`,
}

// Migrate creates the portal tables if they do not exist yet.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.Client.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
