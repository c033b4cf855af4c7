package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/student-portal/internal/apperror"
	"github.com/sakif/student-portal/internal/model"
	"github.com/sakif/student-portal/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` fails the build as soon as *ProjectDB stops
// satisfying repository.ProjectRepository, instead of at the call site.
var _ repository.ProjectRepository = (*ProjectDB)(nil)

// ProjectDB is the projects table. Every query filters on user_id.
type ProjectDB struct {
	conn *sql.DB
}

const projectColumns = `id, user_id, title, description, start_time, end_time,
	tech_stack, created_at, updated_at`

// Create inserts a project for project.UserID.
//
// The project is modified in place: after Create returns, the caller's
// struct carries the generated ID and timestamps.
func (p *ProjectDB) Create(ctx context.Context, project *model.Project) error {
	project.ID = xid.New().String()
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	// ? placeholders only; the driver binds the values.
	_, err := p.conn.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		project.ID,
		project.UserID,
		project.Title,
		project.Description,
		project.StartTime,
		project.EndTime,
		project.TechStack,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating project: %w", err)
	}

	return nil
}

// GetByID returns the project only if userID owns it. A project that
// exists under another owner is reported exactly like a missing one.
func (p *ProjectDB) GetByID(ctx context.Context, userID, id string) (*model.Project, error) {
	row := p.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("project", id)
		}
		return nil, fmt.Errorf("sqlite: getting project %s: %w", id, err)
	}

	return project, nil
}

// List returns the user's projects in insertion order.
func (p *ProjectDB) List(ctx context.Context, userID string) ([]model.Project, error) {
	rows, err := p.conn.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE user_id = ? ORDER BY rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing projects: %w", err)
	}
	// rows holds a pooled connection until closed.
	defer rows.Close()

	projects := make([]model.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning project row: %w", err)
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating projects: %w", err)
	}

	return projects, nil
}

// Update overwrites the five editable fields of an owned project.
func (p *ProjectDB) Update(ctx context.Context, project *model.Project) error {
	project.UpdatedAt = time.Now()

	result, err := p.conn.ExecContext(ctx,
		`UPDATE projects
		 SET title = ?, description = ?, start_time = ?, end_time = ?, tech_stack = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		project.Title,
		project.Description,
		project.StartTime,
		project.EndTime,
		project.TechStack,
		project.UpdatedAt,
		project.ID,
		project.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating project %s: %w", project.ID, err)
	}

	return rowsAffectedOrNotFound(result, apperror.NotFound("project", project.ID))
}

func (p *ProjectDB) Delete(ctx context.Context, userID, id string) error {
	result, err := p.conn.ExecContext(ctx,
		`DELETE FROM projects WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting project %s: %w", id, err)
	}

	return rowsAffectedOrNotFound(result, apperror.NotFound("project", id))
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*model.Project, error) {
	var project model.Project
	err := s.Scan(
		&project.ID,
		&project.UserID,
		&project.Title,
		&project.Description,
		&project.StartTime,
		&project.EndTime,
		&project.TechStack,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &project, nil
}
