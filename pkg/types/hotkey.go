package types

// Modifier is one modifier key of a chord
type Modifier string

const (
	ModCtrl  Modifier = "Ctrl"
	ModCmd   Modifier = "Cmd"
	ModAlt   Modifier = "Alt"
	ModShift Modifier = "Shift"
)

// Action identifiers understood by the dispatcher
const (
	ActionNextImage                = "next_image"
	ActionPreviousImage            = "previous_image"
	ActionDeleteImageAndNext       = "delete_image_and_next"
	ActionToggleCategoryPrefix     = "toggle_category_"
	ActionToggleCategoryNextPrefix = "toggle_category_next_"
	ActionAssignCategoryPrefix     = "assign_category_"
)

// HotkeyConfig binds a chord to an action. Key is normalized: single
// printable characters are upper-cased, named keys such as "ArrowRight"
// are kept as-is.
type HotkeyConfig struct {
	ID        string     `json:"id" yaml:"id"`
	Key       string     `json:"key" yaml:"key"`
	Modifiers []Modifier `json:"modifiers" yaml:"modifiers"`
	Action    string     `json:"action" yaml:"action"`
}

// Clone returns a copy that shares no slices with h
func (h HotkeyConfig) Clone() HotkeyConfig {
	h.Modifiers = append([]Modifier(nil), h.Modifiers...)
	return h
}
