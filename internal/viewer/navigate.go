package viewer

import (
	"pictag/internal/view"
	"pictag/pkg/types"
)

// Direction of a navigation step
type Direction int

const (
	Previous Direction = -1
	Next     Direction = 1
)

func (d Direction) String() string {
	if d == Previous {
		return "previous"
	}
	return "next"
}

// Cursor tracks the image open in the viewer by path. The empty path is
// the closed state.
type Cursor struct {
	path string
}

// Open moves the cursor to path
func (c *Cursor) Open(path string) {
	c.path = path
}

// Close returns the cursor to the closed state
func (c *Cursor) Close() {
	c.path = ""
}

// Path returns the open image, or "" when closed
func (c *Cursor) Path() string {
	return c.path
}

// IsOpen reports whether an image is open
func (c *Cursor) IsOpen() bool {
	return c.path != ""
}

// Step picks the image to open when moving dir from current.
//
// stale is the view as it was rendered before suppression was cleared and
// fresh is the view recomputed from live data. When suppression had been
// active the neighbour in the stale order wins if it is still visible;
// otherwise a vanished current image jumps to the first (next) or last
// (previous) element, and a still-visible one clamps its old index into
// range. Without suppression the step is a plain adjacent move that stops
// at either end.
//
// ok is false when no navigation should happen.
func Step(stale, fresh []types.Image, current string, dir Direction, wasSuppressed bool) (target string, ok bool) {
	if len(fresh) == 0 {
		return "", false
	}
	last := len(fresh) - 1

	if !wasSuppressed {
		idx := view.IndexOf(fresh, current)
		if idx < 0 {
			return edge(fresh, dir), true
		}
		next := idx + int(dir)
		if next < 0 || next > last {
			return "", false
		}
		return fresh[next].Path, true
	}

	oldIndex := view.IndexOf(stale, current)
	if oldIndex >= 0 {
		if n := oldIndex + int(dir); n >= 0 && n < len(stale) {
			remembered := stale[n].Path
			if view.Contains(fresh, remembered) {
				return remembered, true
			}
		}
	}
	if !view.Contains(fresh, current) {
		return edge(fresh, dir), true
	}
	idx := oldIndex
	if dir == Previous {
		idx--
	}
	return fresh[clamp(idx, 0, last)].Path, true
}

// AfterDelete picks the image to open once the image at deletedIndex of
// the pre-delete view is gone. ok is false when fresh is empty and the
// viewer should close.
func AfterDelete(deletedIndex int, wasLast bool, fresh []types.Image) (target string, ok bool) {
	if len(fresh) == 0 {
		return "", false
	}
	last := len(fresh) - 1
	if wasLast {
		return fresh[last].Path, true
	}
	return fresh[clamp(deletedIndex, 0, last)].Path, true
}

func edge(v []types.Image, dir Direction) string {
	if dir == Previous {
		return v[len(v)-1].Path
	}
	return v[0].Path
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
