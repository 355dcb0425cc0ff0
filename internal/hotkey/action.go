package hotkey

import (
	"strings"

	"pictag/pkg/types"
)

// ActionKind classifies an action string
type ActionKind int

const (
	// ActionNone is an empty action, e.g. one cleared by a category delete
	ActionNone ActionKind = iota
	ActionUnknown
	ActionNextImage
	ActionPreviousImage
	ActionDeleteImageAndNext
	ActionToggleCategory
	ActionToggleCategoryNext
)

func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionNextImage:
		return "next_image"
	case ActionPreviousImage:
		return "previous_image"
	case ActionDeleteImageAndNext:
		return "delete_image_and_next"
	case ActionToggleCategory:
		return "toggle_category"
	case ActionToggleCategoryNext:
		return "toggle_category_next"
	default:
		return "unknown"
	}
}

// Action is a parsed action string
type Action struct {
	Kind       ActionKind
	CategoryID string
	Raw        string
}

// ParseAction reads the flat prefix grammar. The legacy assign_category_
// prefix is read as a toggle. Anything unrecognised is ActionUnknown.
func ParseAction(s string) Action {
	a := Action{Raw: s}
	switch s {
	case "":
		a.Kind = ActionNone
		return a
	case types.ActionNextImage:
		a.Kind = ActionNextImage
		return a
	case types.ActionPreviousImage:
		a.Kind = ActionPreviousImage
		return a
	case types.ActionDeleteImageAndNext:
		a.Kind = ActionDeleteImageAndNext
		return a
	}

	// toggle_category_next_ shares its start with toggle_category_, so it
	// is tried first
	prefixes := []struct {
		prefix string
		kind   ActionKind
	}{
		{types.ActionToggleCategoryNextPrefix, ActionToggleCategoryNext},
		{types.ActionToggleCategoryPrefix, ActionToggleCategory},
		{types.ActionAssignCategoryPrefix, ActionToggleCategory},
	}
	for _, p := range prefixes {
		id, ok := strings.CutPrefix(s, p.prefix)
		if !ok {
			continue
		}
		if id == "" {
			// a bare prefix names no category
			break
		}
		a.Kind = p.kind
		a.CategoryID = id
		return a
	}
	a.Kind = ActionUnknown
	return a
}

// ToggleAction is the action string toggling categoryID
func ToggleAction(categoryID string) string {
	return types.ActionToggleCategoryPrefix + categoryID
}

// ToggleNextAction is the action string toggling categoryID and advancing
func ToggleNextAction(categoryID string) string {
	return types.ActionToggleCategoryNextPrefix + categoryID
}
