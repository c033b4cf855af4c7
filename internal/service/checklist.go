package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sakif/student-portal/internal/apperror"
	"github.com/sakif/student-portal/internal/model"
	"github.com/sakif/student-portal/internal/repository"
)

// Dashboard is what /userLogin shows a logged-in user: every module with its
// items, and which of those items the user has checked.
type Dashboard struct {
	Modules  []model.Module
	Selected map[int64]bool
}

// ChecklistService owns module item selections and the progress report
// derived from them.
type ChecklistService struct {
	modules    repository.ModuleRepository
	selections repository.SelectionRepository
	logger     *slog.Logger
}

func NewChecklistService(
	modules repository.ModuleRepository,
	selections repository.SelectionRepository,
	logger *slog.Logger,
) *ChecklistService {
	return &ChecklistService{
		modules:    modules,
		selections: selections,
		logger:     logger,
	}
}

// SaveChecklist makes rawIDs the user's complete selection set.
//
// rawIDs come straight from the checkbox form values. Every one of them must
// parse as an integer and name an item in the catalog, otherwise nothing is
// changed. Repeated IDs count once. An empty slice clears the checklist.
func (s *ChecklistService) SaveChecklist(ctx context.Context, userID string, rawIDs []string) error {
	items, err := s.modules.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("service/checklist: loading catalog: %w", err)
	}
	known := make(map[int64]bool, len(items))
	for _, item := range items {
		known[item.ID] = true
	}

	ids := make([]int64, 0, len(rawIDs))
	seen := make(map[int64]bool, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return apperror.ValidationFailed("moduleItemCheckboxInput",
				fmt.Sprintf("module item id %q is not a number", raw))
		}
		if !known[id] {
			return apperror.ValidationFailed("moduleItemCheckboxInput",
				fmt.Sprintf("module item %d does not exist", id))
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	if err := s.selections.ReplaceSelections(ctx, userID, ids); err != nil {
		return fmt.Errorf("service/checklist: saving selections: %w", err)
	}

	s.logger.Info("checklist saved",
		slog.String("userID", userID),
		slog.Int("selected", len(ids)),
	)
	return nil
}

// Progress splits the whole catalog into the names of the items the user has
// checked and the names of the ones they have not, both in item ID order.
func (s *ChecklistService) Progress(ctx context.Context, userID string) (*model.Progress, error) {
	items, err := s.modules.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/checklist: loading catalog: %w", err)
	}
	selected, err := s.selectedSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress := &model.Progress{
		Selected:   make([]string, 0, len(selected)),
		Unselected: make([]string, 0, len(items)),
	}
	for _, item := range items {
		if selected[item.ID] {
			progress.Selected = append(progress.Selected, item.Name)
		} else {
			progress.Unselected = append(progress.Unselected, item.Name)
		}
	}
	return progress, nil
}

func (s *ChecklistService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	modules, err := s.modules.ListModules(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/checklist: loading modules: %w", err)
	}
	selected, err := s.selectedSet(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Modules: modules, Selected: selected}, nil
}

func (s *ChecklistService) selectedSet(ctx context.Context, userID string) (map[int64]bool, error) {
	selections, err := s.selections.ListSelections(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/checklist: loading selections: %w", err)
	}
	set := make(map[int64]bool, len(selections))
	for _, sel := range selections {
		set[sel.ModuleItemID] = true
	}
	return set, nil
}
