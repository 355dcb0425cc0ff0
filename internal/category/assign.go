package category

import (
	"slices"
	"strings"

	"pictag/internal/errors"
	"pictag/pkg/types"
)

// Toggle removes categoryID from path when present; otherwise it adds it
// after dropping every assignment that is mutually exclusive with it.
// It reports whether the category is assigned afterwards.
func (s *Store) Toggle(path, categoryID string) (bool, error) {
	cat, ok := s.Category(categoryID)
	if !ok {
		return false, errors.NewNotFound(errors.CategoryNotFound, categoryID)
	}
	if s.assignments.Has(path, categoryID) {
		kept := slices.DeleteFunc(slices.Clone(s.assignments[path]), func(a types.CategoryAssignment) bool {
			return a.CategoryID == categoryID
		})
		s.setList(path, kept)
		return false, nil
	}
	s.addResolved(path, cat)
	return true, nil
}

// Assign is the add-only variant of Toggle: an existing assignment is left
// untouched. It reports whether anything changed.
func (s *Store) Assign(path, categoryID string) (bool, error) {
	cat, ok := s.Category(categoryID)
	if !ok {
		return false, errors.NewNotFound(errors.CategoryNotFound, categoryID)
	}
	if s.assignments.Has(path, categoryID) {
		return false, nil
	}
	s.addResolved(path, cat)
	return true, nil
}

// addResolved builds the new list for path in one pass and swaps it in.
// Exclusion is checked both ways: ids in cat's own set, and assigned
// categories whose set names cat.
func (s *Store) addResolved(path string, cat types.Category) {
	current := s.assignments[path]
	next := make([]types.CategoryAssignment, 0, len(current)+1)
	for _, a := range current {
		if cat.Excludes(a.CategoryID) {
			continue
		}
		if other, ok := s.Category(a.CategoryID); ok && other.Excludes(cat.ID) {
			continue
		}
		next = append(next, a)
	}
	next = append(next, types.CategoryAssignment{CategoryID: cat.ID, AssignedAt: s.now()})
	s.setList(path, next)
}

// Snapshot is a deep copy of the store used for rollback
type Snapshot struct {
	categories  []types.Category
	assignments types.AssignmentMap
}

// Snapshot copies the whole store
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		categories:  s.Categories(),
		assignments: s.assignments.Clone(),
	}
}

// Restore reinstates a snapshot taken earlier
func (s *Store) Restore(snap Snapshot) {
	s.categories = make([]types.Category, len(snap.categories))
	for i, c := range snap.categories {
		s.categories[i] = c.Clone()
	}
	s.assignments = snap.assignments.Clone()
}

// SnapshotPath copies the assignment list of one path
func (s *Store) SnapshotPath(path string) []types.CategoryAssignment {
	return slices.Clone(s.assignments[path])
}

// RestorePath reinstates a list taken with SnapshotPath
func (s *Store) RestorePath(path string, list []types.CategoryAssignment) {
	s.setList(path, slices.Clone(list))
}

// Load replaces the store's content with data read from persistence.
// Malformed input is repaired rather than rejected: categories without an
// id or with a duplicate id are skipped, exclusion references to unknown
// ids are dropped, and assignments naming unknown categories, repeating a
// category, or left empty are discarded. It returns how many items were
// dropped.
func (s *Store) Load(categories []types.Category, entries []types.ImageCategoryEntry) int {
	dropped := 0
	s.categories = s.categories[:0]
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		if c.ID == "" || seen[c.ID] {
			dropped++
			continue
		}
		seen[c.ID] = true
		c.Name = strings.TrimSpace(c.Name)
		s.categories = append(s.categories, c.Clone())
	}
	for i := range s.categories {
		self := s.categories[i].ID
		s.categories[i].MutuallyExclusiveWith = slices.DeleteFunc(s.categories[i].MutuallyExclusiveWith, func(id string) bool {
			if !seen[id] || id == self {
				dropped++
				return true
			}
			return false
		})
	}

	s.assignments = make(types.AssignmentMap, len(entries))
	for _, entry := range entries {
		if entry.Path == "" {
			dropped += len(entry.Assignments)
			continue
		}
		list := slices.Clone(s.assignments[entry.Path])
		for _, a := range entry.Assignments {
			if !seen[a.CategoryID] || slices.ContainsFunc(list, func(existing types.CategoryAssignment) bool {
				return existing.CategoryID == a.CategoryID
			}) {
				dropped++
				continue
			}
			list = append(list, a)
		}
		s.setList(entry.Path, list)
	}
	return dropped
}
