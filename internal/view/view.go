// Package view computes the filtered and sorted projection of an image
// collection.
package view

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"pictag/pkg/types"
)

// Query is the user's filter and sort selection
type Query struct {
	Filters types.FilterOptions `json:"filters" yaml:"filters"`
	Sort    types.SortOption    `json:"sort" yaml:"sort"`
}

// DefaultQuery keeps every image, ordered by name
func DefaultQuery() Query {
	return Query{Filters: types.DefaultFilters(), Sort: types.DefaultSort()}
}

// Compute returns the images that pass q.Filters, ordered by q.Sort.
// assignments is the map the category predicate and the lastCategorized
// key read from; it is not always the live one.
//
// Compute never fails: unparseable numeric filters and unknown operators
// disable the filter they belong to. The input slice is not modified.
func Compute(images []types.Image, assignments types.AssignmentMap, q Query) []types.Image {
	out := make([]types.Image, 0, len(images))
	size := newSizeFilter(q.Filters)
	for _, img := range images {
		if !MatchCategory(img.Path, assignments, q.Filters.CategoryID) {
			continue
		}
		if !matchName(img.Path, q.Filters.NamePattern, q.Filters.NameOperator) {
			continue
		}
		if !size.match(img.Size) {
			continue
		}
		out = append(out, img)
	}

	cmp := comparator(q.Sort.Field, assignments)
	if q.Sort.Direction == types.Descending {
		asc := cmp
		cmp = func(a, b types.Image) int { return -asc(a, b) }
	}
	slices.SortStableFunc(out, cmp)
	return out
}

// IndexOf resolves path to its position in view, or -1
func IndexOf(view []types.Image, path string) int {
	return slices.IndexFunc(view, func(img types.Image) bool { return img.Path == path })
}

// Contains reports whether path is part of view
func Contains(view []types.Image, path string) bool {
	return IndexOf(view, path) >= 0
}

// Paths lists the paths of view in order
func Paths(view []types.Image) []string {
	paths := make([]string, len(view))
	for i, img := range view {
		paths[i] = img.Path
	}
	return paths
}

// MatchCategory reports whether path passes the category filter categoryID
func MatchCategory(path string, assignments types.AssignmentMap, categoryID string) bool {
	switch categoryID {
	case types.CategoryFilterAll:
		return true
	case types.CategoryFilterUncategorized:
		return len(assignments[path]) == 0
	default:
		return assignments.Has(path, categoryID)
	}
}

func matchName(path, pattern string, op types.NameOperator) bool {
	if pattern == "" {
		return true
	}
	name := strings.ToLower(types.BaseName(path))
	pattern = strings.ToLower(pattern)
	switch op {
	case types.NameContains:
		return strings.Contains(name, pattern)
	case types.NameStartsWith:
		return strings.HasPrefix(name, pattern)
	case types.NameEndsWith:
		return strings.HasSuffix(name, pattern)
	case types.NameExact:
		return name == pattern
	default:
		return true
	}
}

// sizeFilter holds parsed KB bounds; a disabled filter keeps everything
type sizeFilter struct {
	enabled  bool
	op       types.SizeOperator
	min, max float64
}

func newSizeFilter(f types.FilterOptions) sizeFilter {
	first, ok := parseKB(f.SizeValue)
	if !ok {
		return sizeFilter{}
	}
	switch f.SizeOperator {
	case types.SizeLargerThan, types.SizeLessThan:
		return sizeFilter{enabled: true, op: f.SizeOperator, min: first}
	case types.SizeBetween:
		second, ok := parseKB(f.SizeValue2)
		if !ok {
			return sizeFilter{}
		}
		return sizeFilter{enabled: true, op: types.SizeBetween, min: math.Min(first, second), max: math.Max(first, second)}
	default:
		return sizeFilter{}
	}
}

func (f sizeFilter) match(bytes int64) bool {
	if !f.enabled {
		return true
	}
	kb := float64(bytes) / 1024
	switch f.op {
	case types.SizeLargerThan:
		return kb > f.min
	case types.SizeLessThan:
		return kb < f.min
	default:
		return kb >= f.min && kb <= f.max
	}
}

func parseKB(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
