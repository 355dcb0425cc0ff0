package session

import (
	"context"

	"pictag/internal/errors"
	"pictag/internal/log"
	"pictag/internal/view"
	"pictag/internal/viewer"
)

// OpenViewer opens path when it is part of the current view
func (s *Session) OpenViewer(path string) bool {
	s.mu.Lock()
	if !view.Contains(s.viewLocked(), path) {
		s.mu.Unlock()
		return false
	}
	s.suppression.Clear()
	s.openLocked(path)
	s.mu.Unlock()
	s.emit(Change{Kind: ChangeViewer, Path: path})
	return true
}

// CloseViewer closes the viewer and drops any frozen view
func (s *Session) CloseViewer() {
	s.mu.Lock()
	if !s.cursor.IsOpen() {
		s.mu.Unlock()
		return
	}
	s.closeViewerLocked()
	s.mu.Unlock()
	s.emit(Change{Kind: ChangeViewer}, Change{Kind: ChangeView})
}

// Current returns the open image, or "" when the viewer is closed
func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor.Path()
}

// Suppressed reports whether the view is frozen for the open viewer
func (s *Session) Suppressed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suppression.Active()
}

func (s *Session) openLocked(path string) {
	s.cursor.Open(path)
	s.requests.Begin(path)
}

func (s *Session) closeViewerLocked() {
	s.suppression.Clear()
	s.cursor.Close()
	s.requests.Cancel()
}

// Next moves the viewer forward. It returns the open image and whether
// the cursor moved.
func (s *Session) Next() (string, bool) {
	return s.navigate(viewer.Next)
}

// Previous moves the viewer back
func (s *Session) Previous() (string, bool) {
	return s.navigate(viewer.Previous)
}

// navigate ends suppression and steps through the refreshed view
func (s *Session) navigate(dir viewer.Direction) (string, bool) {
	s.mu.Lock()
	current := s.cursor.Path()
	if current == "" {
		s.mu.Unlock()
		return "", false
	}
	stale := s.viewLocked()
	wasSuppressed := s.suppression.Clear()
	fresh := s.viewLocked()

	target, ok := viewer.Step(stale, fresh, current, dir, wasSuppressed)
	moved := ok && target != current
	if moved {
		s.openLocked(target)
	}
	path := s.cursor.Path()
	s.mu.Unlock()

	var changes []Change
	if wasSuppressed {
		changes = append(changes, Change{Kind: ChangeView})
	}
	if moved {
		changes = append(changes, Change{Kind: ChangeViewer, Path: path})
	}
	s.emit(changes...)

	log.LogWithFields(log.F("direction", dir.String()), log.F("from", current), log.F("to", path)).Debug("Navigated")
	return path, moved
}

// DeleteCurrentAndAdvance moves the open image to the trash and opens the
// image that took its place. Only one delete runs at a time. When the
// view becomes empty the viewer closes with a single no-more-images
// notice.
func (s *Session) DeleteCurrentAndAdvance(ctx context.Context) error {
	if !s.deleting.TryAcquire() {
		return ErrDeleteInFlight
	}
	defer s.deleting.Release()

	s.mu.Lock()
	path := s.cursor.Path()
	if path == "" {
		s.mu.Unlock()
		return ErrViewerClosed
	}
	pre := s.viewLocked()
	deletedIndex := view.IndexOf(pre, path)
	wasLast := deletedIndex == len(pre)-1
	s.mu.Unlock()

	logger := log.LogWithFields(log.F("path", path))
	if err := s.gateway.DeleteImageFile(ctx, path); err != nil {
		logger.With(log.F("error", err.Error())).Error("Failed to delete image")
		s.emit(notice(NoticeError, "could not delete "+path, err))
		return errors.Wrapf(err, "failed to delete %s", path)
	}
	logger.Info("Deleted image")

	var pending []Change
	s.saveMu.Lock()
	defer s.releaseSave(&pending)

	s.mu.Lock()
	if i := s.imageIndexLocked(path); i >= 0 {
		s.images = append(s.images[:i:i], s.images[i+1:]...)
	}
	hadAssignments := len(s.categories.Assignments()[path]) > 0
	s.categories.RemoveImage(path)

	changes := []Change{{Kind: ChangeImages, Path: path}, {Kind: ChangeView}}
	if hadAssignments {
		changes = append(changes, Change{Kind: ChangeAssignments, Path: path})
	}
	if s.cursor.Path() == path {
		if target, ok := viewer.AfterDelete(deletedIndex, wasLast, s.viewLocked()); ok {
			s.openLocked(target)
			changes = append(changes, Change{Kind: ChangeViewer, Path: target})
		} else {
			s.closeViewerLocked()
			changes = append(changes,
				Change{Kind: ChangeViewer},
				notice(NoticeNoMoreImages, "No more images to display", nil),
			)
		}
	}
	doc := s.documentLocked()
	s.mu.Unlock()
	pending = append(pending, changes...)

	if !hadAssignments {
		return nil
	}
	if err := s.gateway.SaveConfig(ctx, s.directory, s.filename, doc); err != nil {
		partial := errors.NewPartialFailure("image deleted, but its categories could not be removed from the store", err)
		log.LogWithError(partial).Warn("Failed to save after delete")
		pending = append(pending, notice(NoticePartialFailure, partial.Error(), partial))
	}
	return nil
}

// LoadCurrentImage fetches the open image as a data URL. It fails with
// ErrStaleResult when the viewer moved on while the load ran.
func (s *Session) LoadCurrentImage(ctx context.Context) (string, string, error) {
	s.mu.Lock()
	path := s.cursor.Path()
	if path == "" {
		s.mu.Unlock()
		return "", "", ErrViewerClosed
	}
	token := s.requests.Begin(path)
	s.mu.Unlock()

	data, err := s.gateway.LoadImageData(ctx, path)
	if !s.requests.Valid(token) {
		log.LogWithFields(log.F("path", path)).Debug("Dropped stale image load")
		return path, "", ErrStaleResult
	}
	if err != nil {
		return path, "", errors.Wrapf(err, "failed to load %s", path)
	}
	return path, data, nil
}
