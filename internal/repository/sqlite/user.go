package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/student-portal/internal/apperror"
	"github.com/sakif/student-portal/internal/model"
	"github.com/sakif/student-portal/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the users table.
type UserDB struct {
	conn *sql.DB
}

const userColumns = `id, name, email, profile_pic, major, year, gpa, advisor,
	enrollment_status, level, program, college, created_at, updated_at`

// Create inserts a new user. The caller sets user.ID (the provider subject).
// Returns apperror.ErrConflict if a user with that ID already exists.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := u.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, profile_pic, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.ProfilePic,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.ID)
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.ID, err)
	}

	return nil
}

// GetByID retrieves a user by ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	var usr model.User

	err := u.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`,
		id,
	).Scan(
		&usr.ID,
		&usr.Name,
		&usr.Email,
		&usr.ProfilePic,
		&usr.Major,
		&usr.Year,
		&usr.GPA,
		&usr.Advisor,
		&usr.EnrollmentStatus,
		&usr.Level,
		&usr.Program,
		&usr.College,
		&usr.CreatedAt,
		&usr.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	return &usr, nil
}

// UpdateProfile overwrites every editable profile field of the user.
func (u *UserDB) UpdateProfile(ctx context.Context, id string, p model.Profile) error {
	result, err := u.conn.ExecContext(ctx,
		`UPDATE users
		 SET name = ?, email = ?, major = ?, year = ?, gpa = ?, advisor = ?,
		     enrollment_status = ?, level = ?, program = ?, college = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name,
		p.Email,
		p.Major,
		p.Year,
		p.GPA,
		p.Advisor,
		p.EnrollmentStatus,
		p.Level,
		p.Program,
		p.College,
		time.Now(),
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", id, err)
	}

	return rowsAffectedOrNotFound(result, apperror.NotFound("user", id))
}

// Delete removes the user. Selections, to-dos and projects go with it
// through ON DELETE CASCADE.
func (u *UserDB) Delete(ctx context.Context, id string) error {
	result, err := u.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}

	return rowsAffectedOrNotFound(result, apperror.NotFound("user", id))
}

// isUniqueViolation reports whether err is SQLite's UNIQUE / PRIMARY KEY
// constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlitedriver.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}
