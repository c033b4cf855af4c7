package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/student-portal/internal/model"
	"github.com/sakif/student-portal/internal/repository"
)

var _ repository.SelectionRepository = (*SelectionDB)(nil)

// SelectionDB is the user_selections join table.
type SelectionDB struct {
	conn *sql.DB
}

// ListSelections returns the user's checked items in insertion order.
func (s *SelectionDB) ListSelections(ctx context.Context, userID string) ([]model.UserSelection, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT user_id, module_item_id FROM user_selections
		 WHERE user_id = ?
		 ORDER BY rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing selections for %s: %w", userID, err)
	}
	defer rows.Close()

	var selections []model.UserSelection
	for rows.Next() {
		var sel model.UserSelection
		if err := rows.Scan(&sel.UserID, &sel.ModuleItemID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning selection row: %w", err)
		}
		selections = append(selections, sel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating selections: %w", err)
	}

	return selections, nil
}

// ReplaceSelections swaps the user's whole selection set in one transaction,
// so a concurrent reader sees either the old set or the new one, never an
// empty list in between.
func (s *SelectionDB) ReplaceSelections(ctx context.Context, userID string, itemIDs []int64) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning selection transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_selections WHERE user_id = ?`, userID,
	); err != nil {
		return fmt.Errorf("sqlite: clearing selections for %s: %w", userID, err)
	}

	if len(itemIDs) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO user_selections (user_id, module_item_id) VALUES (?, ?)`,
		)
		if err != nil {
			return fmt.Errorf("sqlite: preparing selection insert: %w", err)
		}
		defer stmt.Close()

		for _, id := range itemIDs {
			if _, err := stmt.ExecContext(ctx, userID, id); err != nil {
				return fmt.Errorf("sqlite: inserting selection %d for %s: %w", id, userID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing selections for %s: %w", userID, err)
	}
	return nil
}
