package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/student-portal/internal/model"
	"github.com/sakif/student-portal/internal/repository"
)

var _ repository.ModuleRepository = (*ModuleDB)(nil)

// ModuleDB reads the seeded modules and module_items tables.
type ModuleDB struct {
	conn *sql.DB
}

// ListModules returns every module with its items, both ordered by ID.
func (m *ModuleDB) ListModules(ctx context.Context) ([]model.Module, error) {
	rows, err := m.conn.QueryContext(ctx, `SELECT id, name FROM modules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing modules: %w", err)
	}
	defer rows.Close()

	var modules []model.Module
	index := make(map[int64]int)
	for rows.Next() {
		var mod model.Module
		if err := rows.Scan(&mod.ID, &mod.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning module row: %w", err)
		}
		index[mod.ID] = len(modules)
		modules = append(modules, mod)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating modules: %w", err)
	}

	items, err := m.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if i, ok := index[item.ModuleID]; ok {
			modules[i].Items = append(modules[i].Items, item)
		}
	}

	return modules, nil
}

// ListItems returns the whole item catalog ordered by ID.
func (m *ModuleDB) ListItems(ctx context.Context) ([]model.ModuleItem, error) {
	rows, err := m.conn.QueryContext(ctx,
		`SELECT id, module_id, name FROM module_items ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing module items: %w", err)
	}
	defer rows.Close()

	var items []model.ModuleItem
	for rows.Next() {
		var item model.ModuleItem
		if err := rows.Scan(&item.ID, &item.ModuleID, &item.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning module item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating module items: %w", err)
	}

	return items, nil
}
