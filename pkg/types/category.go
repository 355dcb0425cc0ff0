package types

import (
	"slices"
	"time"
)

// Category is a user-defined tag that can be assigned to images
type Category struct {
	ID                    string   `json:"id" yaml:"id"`
	Name                  string   `json:"name" yaml:"name"`   // Unique, compared case-insensitively
	Color                 string   `json:"color" yaml:"color"` // Hex colour, e.g. "#ff8800"
	MutuallyExclusiveWith []string `json:"mutuallyExclusiveWith,omitempty" yaml:"mutuallyExclusiveWith,omitempty"`
}

// Excludes reports whether id is in the category's exclusion set
func (c Category) Excludes(id string) bool {
	return slices.Contains(c.MutuallyExclusiveWith, id)
}

// Clone returns a copy that shares no slices with c
func (c Category) Clone() Category {
	c.MutuallyExclusiveWith = slices.Clone(c.MutuallyExclusiveWith)
	return c
}

// CategoryAssignment attaches one category to one image
type CategoryAssignment struct {
	CategoryID string    `json:"category_id" yaml:"category_id"`
	AssignedAt time.Time `json:"assigned_at" yaml:"assigned_at"`
}

// AssignmentMap indexes assignments by image path. A path with no
// assignments has no entry; lists are never empty.
type AssignmentMap map[string][]CategoryAssignment

// Clone deep-copies the map
func (m AssignmentMap) Clone() AssignmentMap {
	out := make(AssignmentMap, len(m))
	for path, list := range m {
		out[path] = slices.Clone(list)
	}
	return out
}

// Has reports whether path carries categoryID
func (m AssignmentMap) Has(path, categoryID string) bool {
	for _, a := range m[path] {
		if a.CategoryID == categoryID {
			return true
		}
	}
	return false
}

// CategoryIDs returns the ids assigned to path in display order
func (m AssignmentMap) CategoryIDs(path string) []string {
	list := m[path]
	ids := make([]string, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.CategoryID)
	}
	return ids
}

// LastAssigned returns the latest assigned_at for path, or the zero time
func (m AssignmentMap) LastAssigned(path string) time.Time {
	var latest time.Time
	for _, a := range m[path] {
		if a.AssignedAt.After(latest) {
			latest = a.AssignedAt
		}
	}
	return latest
}
