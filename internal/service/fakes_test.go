package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/sakif/student-portal/internal/apperror"
	"github.com/sakif/student-portal/internal/model"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// In-memory stand-ins for the repository interfaces. They follow the same
// owner-scoping contract as the SQLite implementation: a record that belongs
// to someone else is reported as NotFound.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserRepo struct {
	users     map[string]*model.User
	createErr error
	getErr    error
	creates   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.users[user.ID]; ok {
		return apperror.Conflict("user", user.ID)
	}
	f.creates++
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, id string, p model.Profile) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.Name, u.Email, u.Major, u.Year, u.GPA = p.Name, p.Email, p.Major, p.Year, p.GPA
	u.Advisor, u.EnrollmentStatus, u.Level = p.Advisor, p.EnrollmentStatus, p.Level
	u.Program, u.College = p.Program, p.College
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(f.users, id)
	return nil
}

// fakeCatalog serves a fixed module catalog.
type fakeCatalog struct {
	modules []model.Module
}

// newFakeCatalog builds 4 modules holding items 1..22, named "Item N".
func newFakeCatalog() *fakeCatalog {
	bounds := [][2]int64{{1, 5}, {6, 11}, {12, 17}, {18, 22}}
	c := &fakeCatalog{}
	for i, b := range bounds {
		m := model.Module{ID: int64(i + 1), Name: fmt.Sprintf("Module %d", i+1)}
		for id := b[0]; id <= b[1]; id++ {
			m.Items = append(m.Items, model.ModuleItem{ID: id, ModuleID: m.ID, Name: fmt.Sprintf("Item %d", id)})
		}
		c.modules = append(c.modules, m)
	}
	return c
}

func (c *fakeCatalog) ListModules(context.Context) ([]model.Module, error) {
	return c.modules, nil
}

func (c *fakeCatalog) ListItems(context.Context) ([]model.ModuleItem, error) {
	var items []model.ModuleItem
	for _, m := range c.modules {
		items = append(items, m.Items...)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

type fakeSelectionRepo struct {
	byUser   map[string][]int64
	replaces int
}

func newFakeSelectionRepo() *fakeSelectionRepo {
	return &fakeSelectionRepo{byUser: make(map[string][]int64)}
}

func (f *fakeSelectionRepo) ListSelections(_ context.Context, userID string) ([]model.UserSelection, error) {
	var out []model.UserSelection
	for _, id := range f.byUser[userID] {
		out = append(out, model.UserSelection{UserID: userID, ModuleItemID: id})
	}
	return out, nil
}

func (f *fakeSelectionRepo) ReplaceSelections(_ context.Context, userID string, itemIDs []int64) error {
	f.replaces++
	f.byUser[userID] = append([]int64(nil), itemIDs...)
	return nil
}

type fakeTodoRepo struct {
	tasks  []*model.TodoTask
	nextID int
}

func (f *fakeTodoRepo) Create(_ context.Context, task *model.TodoTask) error {
	f.nextID++
	task.ID = fmt.Sprintf("task-%d", f.nextID)
	stored := *task
	f.tasks = append(f.tasks, &stored)
	return nil
}

func (f *fakeTodoRepo) find(userID, id string) *model.TodoTask {
	for _, t := range f.tasks {
		if t.ID == id && t.UserID == userID {
			return t
		}
	}
	return nil
}

func (f *fakeTodoRepo) GetByID(_ context.Context, userID, id string) (*model.TodoTask, error) {
	t := f.find(userID, id)
	if t == nil {
		return nil, apperror.NotFound("todo task", id)
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTodoRepo) List(_ context.Context, userID string) ([]model.TodoTask, error) {
	out := make([]model.TodoTask, 0)
	for _, t := range f.tasks {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTodoRepo) Update(_ context.Context, task *model.TodoTask) error {
	t := f.find(task.UserID, task.ID)
	if t == nil {
		return apperror.NotFound("todo task", task.ID)
	}
	t.Name = task.Name
	return nil
}

func (f *fakeTodoRepo) Delete(_ context.Context, userID, id string) error {
	for i, t := range f.tasks {
		if t.ID == id && t.UserID == userID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("todo task", id)
}

type fakeProjectRepo struct {
	projects []*model.Project
	nextID   int
}

func (f *fakeProjectRepo) Create(_ context.Context, p *model.Project) error {
	f.nextID++
	p.ID = fmt.Sprintf("project-%d", f.nextID)
	stored := *p
	f.projects = append(f.projects, &stored)
	return nil
}

func (f *fakeProjectRepo) find(userID, id string) *model.Project {
	for _, p := range f.projects {
		if p.ID == id && p.UserID == userID {
			return p
		}
	}
	return nil
}

func (f *fakeProjectRepo) GetByID(_ context.Context, userID, id string) (*model.Project, error) {
	p := f.find(userID, id)
	if p == nil {
		return nil, apperror.NotFound("project", id)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjectRepo) List(_ context.Context, userID string) ([]model.Project, error) {
	out := make([]model.Project, 0)
	for _, p := range f.projects {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProjectRepo) Update(_ context.Context, p *model.Project) error {
	existing := f.find(p.UserID, p.ID)
	if existing == nil {
		return apperror.NotFound("project", p.ID)
	}
	*existing = *p
	return nil
}

func (f *fakeProjectRepo) Delete(_ context.Context, userID, id string) error {
	for i, p := range f.projects {
		if p.ID == id && p.UserID == userID {
			f.projects = append(f.projects[:i], f.projects[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("project", id)
}
