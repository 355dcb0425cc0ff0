package session

import (
	"context"

	"pictag/internal/errors"
	"pictag/internal/hotkey"
	"pictag/internal/log"
	"pictag/pkg/types"
)

// AddHotkey validates and saves a new binding
func (s *Session) AddHotkey(ctx context.Context, h types.HotkeyConfig) (types.HotkeyConfig, error) {
	var stored types.HotkeyConfig
	_, err := s.persist(ctx, mutation{
		op: "add_hotkey",
		apply: func() (func(), error) {
			snap := s.hotkeys.Snapshot()
			added, err := s.hotkeys.Add(h)
			if err != nil {
				return nil, err
			}
			stored = added
			return func() { s.hotkeys.Restore(snap) }, nil
		},
		changes: []Change{{Kind: ChangeHotkeys}},
	})
	if err != nil {
		return types.HotkeyConfig{}, err
	}
	return stored, nil
}

// UpdateHotkey saves a changed binding
func (s *Session) UpdateHotkey(ctx context.Context, h types.HotkeyConfig) error {
	_, err := s.persist(ctx, mutation{
		op: "update_hotkey",
		apply: func() (func(), error) {
			snap := s.hotkeys.Snapshot()
			if err := s.hotkeys.Update(h); err != nil {
				return nil, err
			}
			return func() { s.hotkeys.Restore(snap) }, nil
		},
		changes: []Change{{Kind: ChangeHotkeys}},
	})
	return err
}

// RemoveHotkey deletes a binding
func (s *Session) RemoveHotkey(ctx context.Context, id string) error {
	_, err := s.persist(ctx, mutation{
		op: "remove_hotkey",
		apply: func() (func(), error) {
			snap := s.hotkeys.Snapshot()
			if err := s.hotkeys.Remove(id); err != nil {
				return nil, err
			}
			return func() { s.hotkeys.Restore(snap) }, nil
		},
		changes: []Change{{Kind: ChangeHotkeys}},
	})
	return err
}

// IsHotkeyDuplicate reports whether the chord is bound by a hotkey other
// than excludeID
func (s *Session) IsHotkeyDuplicate(key string, mods []types.Modifier, excludeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hotkeys.IsDuplicate(key, mods, excludeID)
}

// HandleKey runs the action bound to e. While the viewer is open every
// matched binding counts as handled, even one whose action cannot run.
// With the viewer closed the viewer actions pass the key back to the
// caller.
func (s *Session) HandleKey(ctx context.Context, e hotkey.Event) (bool, error) {
	s.mu.Lock()
	h, found := s.hotkeys.Match(e)
	open := s.cursor.IsOpen()
	s.mu.Unlock()
	if !found {
		return false, nil
	}

	action := hotkey.ParseAction(h.Action)
	logger := log.LogWithFields(log.F("key", hotkey.Describe(h.Key, h.Modifiers)), log.F("action", action.Kind.String()))

	switch action.Kind {
	case hotkey.ActionNextImage:
		if !open {
			return false, nil
		}
		s.Next()
		return true, nil

	case hotkey.ActionPreviousImage:
		if !open {
			return false, nil
		}
		s.Previous()
		return true, nil

	case hotkey.ActionDeleteImageAndNext:
		if !open {
			return false, nil
		}
		return true, s.DeleteCurrentAndAdvance(ctx)

	case hotkey.ActionToggleCategory, hotkey.ActionToggleCategoryNext:
		if !open {
			return false, nil
		}
		if _, ok := s.Category(action.CategoryID); !ok {
			logger.With(log.F("category", action.CategoryID)).Warn("Hotkey names a missing category")
			return true, nil
		}
		if _, err := s.ToggleCategoryInViewer(ctx, action.CategoryID); err != nil {
			if errors.Is(err, ErrViewerClosed) {
				return false, nil
			}
			return true, err
		}
		if action.Kind == hotkey.ActionToggleCategoryNext {
			s.Next()
		}
		return true, nil

	case hotkey.ActionNone:
		logger.Debug("Hotkey has no action")
		return open, nil

	default:
		logger.With(log.F("raw", action.Raw)).Warn("Ignoring unknown hotkey action")
		return open, nil
	}
}
