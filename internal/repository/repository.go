// Package repository declares the storage interfaces the service layer
// depends on. The sqlite subpackage implements all of them on one *DB.
//
// Every method that touches a user's own records takes the owner ID and
// must filter by it in the query itself, so a record ID belonging to
// somebody else behaves exactly like an ID that does not exist.
package repository

import (
	"context"

	"github.com/sakif/student-portal/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, profile model.Profile) error
	Delete(ctx context.Context, id string) error
}

// ModuleRepository reads the seeded module catalog.
type ModuleRepository interface {
	ListModules(ctx context.Context) ([]model.Module, error)
	ListItems(ctx context.Context) ([]model.ModuleItem, error)
}

type SelectionRepository interface {
	ListSelections(ctx context.Context, userID string) ([]model.UserSelection, error)
	// ReplaceSelections deletes every selection of userID and inserts one
	// row per item ID, as a single unit.
	ReplaceSelections(ctx context.Context, userID string, itemIDs []int64) error
}

type TodoRepository interface {
	Create(ctx context.Context, task *model.TodoTask) error
	GetByID(ctx context.Context, userID, id string) (*model.TodoTask, error)
	List(ctx context.Context, userID string) ([]model.TodoTask, error)
	Update(ctx context.Context, task *model.TodoTask) error
	Delete(ctx context.Context, userID, id string) error
}

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, userID, id string) (*model.Project, error)
	List(ctx context.Context, userID string) ([]model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, userID, id string) error
}
