package hotkey

import (
	"strings"
	"unicode/utf8"

	"pictag/pkg/types"
)

// Event is one captured key press
type Event struct {
	Key   string
	Ctrl  bool
	Meta  bool // Cmd on macOS
	Alt   bool
	Shift bool
}

// modSet is the canonical modifier set. Ctrl and Cmd share one bit.
type modSet uint8

const (
	modCtrl modSet = 1 << iota
	modAlt
	modShift
)

// NormalizeKey upper-cases single characters and keeps named keys as-is
func NormalizeKey(key string) string {
	if utf8.RuneCountInString(key) == 1 {
		return strings.ToUpper(key)
	}
	return key
}

func canonical(mods []types.Modifier) modSet {
	var set modSet
	for _, m := range mods {
		switch m {
		case types.ModCtrl, types.ModCmd:
			set |= modCtrl
		case types.ModAlt:
			set |= modAlt
		case types.ModShift:
			set |= modShift
		}
	}
	return set
}

func (e Event) modSet() modSet {
	var set modSet
	if e.Ctrl || e.Meta {
		set |= modCtrl
	}
	if e.Alt {
		set |= modAlt
	}
	if e.Shift {
		set |= modShift
	}
	return set
}

// Modifiers returns the event's modifiers in display order
func (e Event) Modifiers() []types.Modifier {
	var mods []types.Modifier
	if e.Ctrl {
		mods = append(mods, types.ModCtrl)
	}
	if e.Meta {
		mods = append(mods, types.ModCmd)
	}
	if e.Alt {
		mods = append(mods, types.ModAlt)
	}
	if e.Shift {
		mods = append(mods, types.ModShift)
	}
	return mods
}

// NormalizeModifiers drops duplicates and unknown values and sorts the
// rest into display order. Ctrl and Cmd are both kept when both are given.
func NormalizeModifiers(mods []types.Modifier) []types.Modifier {
	out := []types.Modifier{}
	for _, m := range []types.Modifier{types.ModCtrl, types.ModCmd, types.ModAlt, types.ModShift} {
		for _, given := range mods {
			if given == m {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// Describe renders a chord like "Ctrl+Shift+K"
func Describe(key string, mods []types.Modifier) string {
	parts := make([]string, 0, len(mods)+1)
	for _, m := range NormalizeModifiers(mods) {
		parts = append(parts, string(m))
	}
	parts = append(parts, key)
	return strings.Join(parts, "+")
}
