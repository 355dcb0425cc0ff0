// Package category owns category definitions and the per-image
// assignment map, including mutual-exclusion resolution.
package category

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"pictag/internal/errors"
	"pictag/pkg/types"
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Store holds categories and assignments. It is not safe for concurrent
// use; the session serializes access.
type Store struct {
	categories  []types.Category
	assignments types.AssignmentMap
	now         func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now for assigned_at timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store
func New(opts ...Option) *Store {
	s := &Store{
		assignments: make(types.AssignmentMap),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Categories returns a copy of the category list
func (s *Store) Categories() []types.Category {
	out := make([]types.Category, len(s.categories))
	for i, c := range s.categories {
		out[i] = c.Clone()
	}
	return out
}

// Category looks up a category by id
func (s *Store) Category(id string) (types.Category, bool) {
	for _, c := range s.categories {
		if c.ID == id {
			return c.Clone(), true
		}
	}
	return types.Category{}, false
}

// Assignments returns the live assignment map. Callers must not modify it.
func (s *Store) Assignments() types.AssignmentMap {
	return s.assignments
}

// AssignmentsFor returns a copy of the assignment list for path
func (s *Store) AssignmentsFor(path string) []types.CategoryAssignment {
	return slices.Clone(s.assignments[path])
}

// Has reports whether path carries categoryID
func (s *Store) Has(path, categoryID string) bool {
	return s.assignments.Has(path, categoryID)
}

// Validate checks a category definition against the current set.
// excludeID names the category being edited, if any.
func (s *Store) Validate(c types.Category, excludeID string) error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return errors.NewValidationError("category name cannot be empty", "name")
	}
	for _, existing := range s.categories {
		if existing.ID == excludeID {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(existing.Name), name) {
			return errors.NewValidationError("a category with this name already exists", "name")
		}
	}
	if c.Color != "" && !hexColor.MatchString(c.Color) {
		return errors.NewValidationError("color must be a hex value like #ff8800", "color")
	}
	for _, id := range c.MutuallyExclusiveWith {
		if id == c.ID {
			return errors.NewValidationError("a category cannot exclude itself", "mutuallyExclusiveWith")
		}
		if _, ok := s.Category(id); !ok {
			return errors.NewValidationError("unknown category in exclusion set: "+id, "mutuallyExclusiveWith")
		}
	}
	return nil
}

// Add appends a new category after validation
func (s *Store) Add(c types.Category) error {
	if c.ID == "" {
		return errors.NewValidationError("category id cannot be empty", "id")
	}
	if _, exists := s.Category(c.ID); exists {
		return errors.NewValidationError("a category with this id already exists", "id")
	}
	if err := s.Validate(c, ""); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(c.Name)
	s.categories = append(s.categories, c.Clone())
	return nil
}

// Update replaces the definition of an existing category
func (s *Store) Update(c types.Category) error {
	idx := s.indexOf(c.ID)
	if idx < 0 {
		return errors.NewNotFound(errors.CategoryNotFound, c.ID)
	}
	if err := s.Validate(c, c.ID); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(c.Name)
	s.categories[idx] = c.Clone()
	return nil
}

// Remove deletes a category, every assignment naming it and every
// exclusion-set reference to it
func (s *Store) Remove(id string) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return errors.NewNotFound(errors.CategoryNotFound, id)
	}
	s.categories = slices.Delete(s.categories, idx, idx+1)

	for i := range s.categories {
		s.categories[i].MutuallyExclusiveWith = slices.DeleteFunc(s.categories[i].MutuallyExclusiveWith, func(other string) bool {
			return other == id
		})
	}

	for path, list := range s.assignments {
		kept := slices.DeleteFunc(slices.Clone(list), func(a types.CategoryAssignment) bool {
			return a.CategoryID == id
		})
		s.setList(path, kept)
	}
	return nil
}

// RemoveImage drops every assignment of a deleted image
func (s *Store) RemoveImage(path string) {
	delete(s.assignments, path)
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.categories, func(c types.Category) bool { return c.ID == id })
}

// setList stores list for path, deleting the entry when it is empty
func (s *Store) setList(path string, list []types.CategoryAssignment) {
	if len(list) == 0 {
		delete(s.assignments, path)
		return
	}
	s.assignments[path] = list
}
