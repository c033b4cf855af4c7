// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite. No CGo and no C compiler, so the
// whole portal ships as one static binary next to one database file.
//
// LAYOUT:
// DB owns the *sql.DB pool and the schema. Each table family gets a small
// typed view over the same pool (Users, Modules, Selections, Todos,
// Projects), because TodoDB and ProjectDB both need methods called Create,
// GetByID, List, Update and Delete.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and hands out the per-table repositories.
type DB struct {
	conn *sql.DB
}

// connPragmas are applied by the driver to every connection it opens.
// Running PRAGMA through conn.Exec would only configure whichever pooled
// connection happened to serve that call.
const connPragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// New opens the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/portal.db" → file-based database (persistent)
//   - ":memory:"       → in-memory database (tests; lost on close)
func New(dbPath string) (*DB, error) {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	conn, err := sql.Open("sqlite", dbPath+sep+connPragmas)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	inMemory := strings.HasPrefix(dbPath, ":memory:")
	if inMemory {
		// Every connection to ":memory:" is a separate, empty database.
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers continue while a request writes. The setting is
	// stored in the database file, so one Exec is enough.
	if !inMemory {
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
		}
	}

	db := &DB{conn: conn}

	if err := db.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// newWithConn wraps an already-open pool without migrating it.
// Tests use it to put a sqlmock connection behind the repositories.
func newWithConn(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

func (db *DB) Users() *UserDB           { return &UserDB{conn: db.conn} }
func (db *DB) Modules() *ModuleDB       { return &ModuleDB{conn: db.conn} }
func (db *DB) Selections() *SelectionDB { return &SelectionDB{conn: db.conn} }
func (db *DB) Todos() *TodoDB           { return &TodoDB{conn: db.conn} }
func (db *DB) Projects() *ProjectDB     { return &ProjectDB{conn: db.conn} }

// rowsAffectedOrNotFound turns an UPDATE/DELETE result that touched nothing
// into the given not-found error.
func rowsAffectedOrNotFound(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
