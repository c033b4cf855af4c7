package sqlite

import (
	"context"
	"fmt"
)

// migration is one forward-only schema step. Steps are applied in version
// order, each inside its own transaction, and recorded in
// schema_migrations so a restart never re-runs them.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "create core tables",
		stmts: []string{
			`CREATE TABLE users (
				id                TEXT PRIMARY KEY,
				name              TEXT NOT NULL DEFAULT '',
				email             TEXT NOT NULL DEFAULT '',
				profile_pic       TEXT NOT NULL DEFAULT '',
				major             TEXT NOT NULL DEFAULT '',
				year              TEXT NOT NULL DEFAULT '',
				gpa               TEXT NOT NULL DEFAULT '',
				advisor           TEXT NOT NULL DEFAULT '',
				enrollment_status TEXT NOT NULL DEFAULT '',
				level             TEXT NOT NULL DEFAULT '',
				program           TEXT NOT NULL DEFAULT '',
				college           TEXT NOT NULL DEFAULT '',
				created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE modules (
				id   INTEGER PRIMARY KEY,
				name TEXT NOT NULL
			)`,
			`CREATE TABLE module_items (
				id        INTEGER PRIMARY KEY,
				module_id INTEGER NOT NULL REFERENCES modules(id),
				name      TEXT NOT NULL
			)`,
			`CREATE INDEX idx_module_items_module_id ON module_items(module_id)`,
			`CREATE TABLE user_selections (
				user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				module_item_id INTEGER NOT NULL REFERENCES module_items(id)
			)`,
			`CREATE INDEX idx_user_selections_user_id ON user_selections(user_id)`,
			`CREATE TABLE todo_tasks (
				id         TEXT PRIMARY KEY,
				user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				name       TEXT NOT NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_todo_tasks_user_id ON todo_tasks(user_id)`,
			`CREATE TABLE projects (
				id          TEXT PRIMARY KEY,
				user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				title       TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				start_time  TEXT NOT NULL DEFAULT '',
				end_time    TEXT NOT NULL DEFAULT '',
				tech_stack  TEXT NOT NULL DEFAULT '',
				created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_projects_user_id ON projects(user_id)`,
		},
	},
	{
		version: 2,
		name:    "seed module catalog",
		stmts: []string{
			`INSERT INTO modules (id, name) VALUES
				(1, 'Getting Started'),
				(2, 'Developer Tools'),
				(3, 'Programming Foundations'),
				(4, 'Career Readiness')`,
			`INSERT INTO module_items (id, module_id, name) VALUES
				(1,  1, 'Set up your student email'),
				(2,  1, 'Meet your academic advisor'),
				(3,  1, 'Complete orientation'),
				(4,  1, 'Review the student handbook'),
				(5,  1, 'Register for classes'),
				(6,  2, 'Install a code editor'),
				(7,  2, 'Learn Git basics'),
				(8,  2, 'Create a GitHub account'),
				(9,  2, 'Push your first repository'),
				(10, 2, 'Get comfortable with the command line'),
				(11, 2, 'Write a README'),
				(12, 3, 'Variables and types'),
				(13, 3, 'Control flow'),
				(14, 3, 'Functions'),
				(15, 3, 'Data structures'),
				(16, 3, 'Debugging'),
				(17, 3, 'Unit testing'),
				(18, 4, 'Build a resume'),
				(19, 4, 'Set up a LinkedIn profile'),
				(20, 4, 'Attend a career fair'),
				(21, 4, 'Practice interviewing'),
				(22, 4, 'Apply for an internship')`,
		},
	},
}

// migrate brings the schema up to the latest version.
func (db *DB) migrate(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	current, err := db.schemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := db.apply(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}

	return nil
}

// schemaVersion returns the highest applied migration, 0 for a fresh database.
func (db *DB) schemaVersion(ctx context.Context) (int, error) {
	var version int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`,
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

func (db *DB) apply(ctx context.Context, m migration) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	for _, stmt := range m.stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`,
		m.version, m.name,
	); err != nil {
		return fmt.Errorf("recording version: %w", err)
	}

	return tx.Commit()
}
