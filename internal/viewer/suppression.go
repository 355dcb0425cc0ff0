// Package viewer holds the state machines behind the image viewer:
// deferred refiltering, the open-image cursor, navigation, request tokens
// for asynchronous loads and the delete re-entrancy guard.
package viewer

import "pictag/pkg/types"

// Suppression freezes the assignment map the view is computed from while
// categories are edited inside the viewer. The zero value is inactive.
type Suppression struct {
	active     bool
	snapshot   types.AssignmentMap
	generation uint64
}

// Begin snapshots live and activates suppression. When suppression is
// already active the original snapshot is kept.
func (s *Suppression) Begin(live types.AssignmentMap) {
	if s.active {
		return
	}
	s.snapshot = live.Clone()
	s.active = true
}

// Clear deactivates suppression and reports whether it had been active.
// Every call starts a new generation.
func (s *Suppression) Clear() bool {
	was := s.active
	s.active = false
	s.snapshot = nil
	s.generation++
	return was
}

// Active reports whether suppression is on
func (s *Suppression) Active() bool {
	return s.active
}

// Generation identifies the current suppression period; results computed
// under an older generation are stale
func (s *Suppression) Generation() uint64 {
	return s.generation
}

// Assignments returns the map the view must be computed from: the
// snapshot while active, live otherwise
func (s *Suppression) Assignments(live types.AssignmentMap) types.AssignmentMap {
	if s.active {
		return s.snapshot
	}
	return live
}
