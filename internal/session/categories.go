package session

import (
	"context"

	"pictag/internal/errors"
	"pictag/internal/hotkey"
	"pictag/internal/log"
	"pictag/internal/view"
	"pictag/internal/viewer"
	"pictag/pkg/types"
)

// CreateCategory validates and saves a new category, then tries to bind
// it to a free digit key. A failure of that second step does not undo the
// category; it is reported as a partial-failure notice.
func (s *Session) CreateCategory(ctx context.Context, c types.Category) (types.Category, error) {
	if c.ID == "" {
		c.ID = s.newID()
	}
	_, err := s.persist(ctx, mutation{
		op: "create_category",
		apply: func() (func(), error) {
			snap := s.categories.Snapshot()
			if err := s.categories.Add(c); err != nil {
				return nil, err
			}
			return func() { s.categories.Restore(snap) }, nil
		},
		changes: []Change{{Kind: ChangeCategories}},
	})
	if err != nil {
		return types.Category{}, err
	}
	created, _ := s.Category(c.ID)
	log.LogWithFields(log.F("category", created.ID), log.F("name", created.Name)).Info("Created category")

	if _, err := s.AutoAssignHotkey(ctx, created.ID); err != nil {
		partial := errors.NewPartialFailure("category created, but its hotkey could not be saved", err)
		log.LogWithError(partial).Warn("Automatic hotkey assignment failed")
		s.emit(notice(NoticePartialFailure, partial.Error(), partial))
	}
	return created, nil
}

// UpdateCategory saves a changed definition
func (s *Session) UpdateCategory(ctx context.Context, c types.Category) error {
	_, err := s.persist(ctx, mutation{
		op: "update_category",
		apply: func() (func(), error) {
			snap := s.categories.Snapshot()
			if err := s.categories.Update(c); err != nil {
				return nil, err
			}
			return func() { s.categories.Restore(snap) }, nil
		},
		changes: []Change{{Kind: ChangeCategories}, {Kind: ChangeView}},
	})
	return err
}

// SetExclusions replaces the mutual-exclusion set of a category
func (s *Session) SetExclusions(ctx context.Context, id string, exclusive []string) error {
	c, ok := s.Category(id)
	if !ok {
		return errors.NewNotFound(errors.CategoryNotFound, id)
	}
	c.MutuallyExclusiveWith = exclusive
	return s.UpdateCategory(ctx, c)
}

// DeleteCategory removes a category with its assignments and clears the
// action of every hotkey naming it. A category filter on it is reset.
func (s *Session) DeleteCategory(ctx context.Context, id string) error {
	var resetFilter bool
	_, err := s.persist(ctx, mutation{
		op: "delete_category",
		apply: func() (func(), error) {
			catSnap := s.categories.Snapshot()
			hkSnap := s.hotkeys.Snapshot()
			if err := s.categories.Remove(id); err != nil {
				return nil, err
			}
			s.hotkeys.ClearCategory(id)
			return func() {
				s.categories.Restore(catSnap)
				s.hotkeys.Restore(hkSnap)
			}, nil
		},
		after: func() []Change {
			if s.query.Filters.CategoryID == id {
				s.query.Filters.CategoryID = types.CategoryFilterAll
				resetFilter = true
			}
			return nil
		},
		changes: []Change{{Kind: ChangeCategories}, {Kind: ChangeAssignments}, {Kind: ChangeHotkeys}, {Kind: ChangeView}},
	})
	if err == nil {
		log.LogWithFields(log.F("category", id), log.F("filter_reset", resetFilter)).Info("Deleted category")
		if resetFilter {
			s.emit(Change{Kind: ChangeView})
		}
	}
	return err
}

// ToggleCategory toggles a category on path from outside the viewer. It
// reports whether the category is assigned afterwards.
func (s *Session) ToggleCategory(ctx context.Context, path, categoryID string) (bool, error) {
	return s.changeAssignment(ctx, path, categoryID, false, false)
}

// AssignCategory adds a category to path unless it is already there
func (s *Session) AssignCategory(ctx context.Context, path, categoryID string) (bool, error) {
	return s.changeAssignment(ctx, path, categoryID, true, false)
}

// ToggleCategoryInViewer toggles a category on the open image. The view
// keeps showing the image where it was until the next navigation.
func (s *Session) ToggleCategoryInViewer(ctx context.Context, categoryID string) (bool, error) {
	s.mu.Lock()
	path := s.cursor.Path()
	s.mu.Unlock()
	if path == "" {
		return false, ErrViewerClosed
	}
	return s.changeAssignment(ctx, path, categoryID, false, true)
}

func (s *Session) changeAssignment(ctx context.Context, path, categoryID string, addOnly, inViewer bool) (bool, error) {
	var (
		assigned bool
		wasIn    bool
		pre      []types.Image
	)
	op := "toggle_category"
	if addOnly {
		op = "assign_category"
	}

	_, err := s.persist(ctx, mutation{
		op: op,
		apply: func() (func(), error) {
			if _, ok := s.categories.Category(categoryID); !ok {
				return nil, errors.NewNotFound(errors.CategoryNotFound, categoryID)
			}
			if inViewer {
				if s.cursor.Path() != path {
					return nil, ErrViewerClosed
				}
				s.suppression.Begin(s.categories.Assignments())
			}
			if s.cursor.Path() == path && !s.suppression.Active() {
				pre = s.viewLocked()
			}
			wasIn = view.MatchCategory(path, s.categories.Assignments(), s.query.Filters.CategoryID)

			before := s.categories.SnapshotPath(path)
			var (
				changed bool
				err     error
			)
			if addOnly {
				changed, err = s.categories.Assign(path, categoryID)
				assigned = true
			} else {
				assigned, err = s.categories.Toggle(path, categoryID)
				changed = err == nil
			}
			if err != nil || !changed {
				return nil, err
			}
			return func() { s.categories.RestorePath(path, before) }, nil
		},
		after: func() []Change {
			return s.reresolveLocked(path, wasIn, pre)
		},
		changes: []Change{{Kind: ChangeAssignments, Path: path}, {Kind: ChangeView}},
	})
	if err != nil {
		return false, err
	}
	log.LogWithFields(log.F("path", path), log.F("category", categoryID), log.F("assigned", assigned)).Debug("Changed assignment")
	return assigned, nil
}

// reresolveLocked moves the viewer off path when an unsuppressed change
// took it out of the category filter
func (s *Session) reresolveLocked(path string, wasIn bool, pre []types.Image) []Change {
	if s.suppression.Active() || s.cursor.Path() != path || pre == nil {
		return nil
	}
	if view.MatchCategory(path, s.categories.Assignments(), s.query.Filters.CategoryID) == wasIn {
		return nil
	}
	fresh := s.viewLocked()
	if view.Contains(fresh, path) {
		return nil
	}
	idx := view.IndexOf(pre, path)
	if target, ok := viewer.AfterDelete(idx, idx == len(pre)-1, fresh); ok {
		s.openLocked(target)
	} else {
		s.closeViewerLocked()
	}
	return []Change{{Kind: ChangeViewer, Path: s.cursor.Path()}}
}

// AutoAssignHotkey binds the first free digit key to toggling categoryID.
// It returns false without error when every digit is taken.
func (s *Session) AutoAssignHotkey(ctx context.Context, categoryID string) (bool, error) {
	var bound types.HotkeyConfig
	ok, err := s.persist(ctx, mutation{
		op: "auto_assign_hotkey",
		apply: func() (func(), error) {
			if _, exists := s.categories.Category(categoryID); !exists {
				return nil, errors.NewNotFound(errors.CategoryNotFound, categoryID)
			}
			key, free := s.hotkeys.FreeDigitKey()
			if !free {
				return nil, nil
			}
			snap := s.hotkeys.Snapshot()
			h, err := s.hotkeys.Add(types.HotkeyConfig{Key: key, Modifiers: []types.Modifier{}, Action: hotkey.ToggleAction(categoryID)})
			if err != nil {
				return nil, err
			}
			bound = h
			return func() { s.hotkeys.Restore(snap) }, nil
		},
		changes: []Change{{Kind: ChangeHotkeys}},
	})
	if ok {
		log.LogWithFields(log.F("category", categoryID), log.F("key", bound.Key)).Info("Assigned hotkey")
	}
	return ok, err
}
