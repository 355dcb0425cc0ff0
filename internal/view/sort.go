package view

import (
	"cmp"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"pictag/pkg/types"
)

// comparator returns the ascending order for field. Unknown fields fall
// back to name ordering.
func comparator(field types.SortField, assignments types.AssignmentMap) func(a, b types.Image) int {
	switch field {
	case types.SortSize:
		return func(a, b types.Image) int { return cmp.Compare(a.Size, b.Size) }
	case types.SortDateCreated:
		return func(a, b types.Image) int {
			return cmp.Compare(types.UnixMilliOrZero(a.CreatedAt), types.UnixMilliOrZero(b.CreatedAt))
		}
	case types.SortLastCategorized:
		return func(a, b types.Image) int {
			return cmp.Compare(
				types.UnixMilliOrZero(assignments.LastAssigned(a.Path)),
				types.UnixMilliOrZero(assignments.LastAssigned(b.Path)),
			)
		}
	default:
		// A collator keeps per-call buffers, so each comparator gets its own
		col := collate.New(language.Und, collate.IgnoreCase)
		return func(a, b types.Image) int {
			return col.CompareString(types.BaseName(a.Path), types.BaseName(b.Path))
		}
	}
}
