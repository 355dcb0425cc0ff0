// Package hotkey keeps the table of keyboard bindings and matches captured
// chords against it.
package hotkey

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"pictag/internal/errors"
	"pictag/pkg/types"
)

// digitKeys is the scan order used when a category gets a key automatically
var digitKeys = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0"}

// Registry holds hotkey bindings. No two bindings share a key and
// canonical modifier set. It is not safe for concurrent use.
type Registry struct {
	hotkeys []types.HotkeyConfig
	newID   func() string
}

// Option configures a Registry
type Option func(*Registry)

// WithIDGenerator replaces the uuid generator for new bindings
func WithIDGenerator(gen func() string) Option {
	return func(r *Registry) { r.newID = gen }
}

// New creates an empty registry
func New(opts ...Option) *Registry {
	r := &Registry{newID: uuid.NewString}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Defaults returns the bindings seeded on first run
func Defaults(newID func() string) []types.HotkeyConfig {
	if newID == nil {
		newID = uuid.NewString
	}
	return []types.HotkeyConfig{
		{ID: newID(), Key: "J", Modifiers: []types.Modifier{}, Action: types.ActionPreviousImage},
		{ID: newID(), Key: "K", Modifiers: []types.Modifier{}, Action: types.ActionNextImage},
	}
}

// Hotkeys returns a copy of every binding
func (r *Registry) Hotkeys() []types.HotkeyConfig {
	out := make([]types.HotkeyConfig, len(r.hotkeys))
	for i, h := range r.hotkeys {
		out[i] = h.Clone()
	}
	return out
}

// Get looks up a binding by id
func (r *Registry) Get(id string) (types.HotkeyConfig, bool) {
	if i := r.indexOf(id); i >= 0 {
		return r.hotkeys[i].Clone(), true
	}
	return types.HotkeyConfig{}, false
}

// IsDuplicate reports whether a binding other than excludeID already uses
// the chord
func (r *Registry) IsDuplicate(key string, mods []types.Modifier, excludeID string) bool {
	key = NormalizeKey(key)
	set := canonical(mods)
	for _, h := range r.hotkeys {
		if h.ID == excludeID && excludeID != "" {
			continue
		}
		if h.Key == key && canonical(h.Modifiers) == set {
			return true
		}
	}
	return false
}

// Validate checks a binding before it is stored
func (r *Registry) Validate(h types.HotkeyConfig, excludeID string) error {
	if strings.TrimSpace(h.Key) == "" {
		return errors.NewValidationError("press a key to capture the hotkey", "key")
	}
	if r.IsDuplicate(h.Key, h.Modifiers, excludeID) {
		return errors.NewValidationError("hotkey "+Describe(NormalizeKey(h.Key), h.Modifiers)+" is already in use", "key")
	}
	return nil
}

// Add stores a new binding and returns it as stored
func (r *Registry) Add(h types.HotkeyConfig) (types.HotkeyConfig, error) {
	if err := r.Validate(h, ""); err != nil {
		return types.HotkeyConfig{}, err
	}
	h = normalize(h)
	if h.ID == "" {
		h.ID = r.newID()
	} else if r.indexOf(h.ID) >= 0 {
		return types.HotkeyConfig{}, errors.NewValidationError("a hotkey with this id already exists", "id")
	}
	r.hotkeys = append(r.hotkeys, h.Clone())
	return h, nil
}

// Update replaces an existing binding. A binding may keep its own chord.
func (r *Registry) Update(h types.HotkeyConfig) error {
	i := r.indexOf(h.ID)
	if i < 0 {
		return errors.NewNotFound(errors.HotkeyNotFound, h.ID)
	}
	if err := r.Validate(h, h.ID); err != nil {
		return err
	}
	r.hotkeys[i] = normalize(h).Clone()
	return nil
}

// Remove deletes a binding
func (r *Registry) Remove(id string) error {
	i := r.indexOf(id)
	if i < 0 {
		return errors.NewNotFound(errors.HotkeyNotFound, id)
	}
	r.hotkeys = slices.Delete(r.hotkeys, i, i+1)
	return nil
}

// Match finds the binding for a captured event
func (r *Registry) Match(e Event) (types.HotkeyConfig, bool) {
	key := NormalizeKey(e.Key)
	set := e.modSet()
	for _, h := range r.hotkeys {
		if h.Key == key && canonical(h.Modifiers) == set {
			return h.Clone(), true
		}
	}
	return types.HotkeyConfig{}, false
}

// ClearCategory blanks every action that names categoryID. The bindings
// themselves are kept. It returns how many were cleared.
func (r *Registry) ClearCategory(categoryID string) int {
	cleared := 0
	for i, h := range r.hotkeys {
		a := ParseAction(h.Action)
		if (a.Kind == ActionToggleCategory || a.Kind == ActionToggleCategoryNext) && a.CategoryID == categoryID {
			r.hotkeys[i].Action = ""
			cleared++
		}
	}
	return cleared
}

// BoundTo returns the bindings whose action names categoryID
func (r *Registry) BoundTo(categoryID string) []types.HotkeyConfig {
	var out []types.HotkeyConfig
	for _, h := range r.hotkeys {
		if a := ParseAction(h.Action); a.CategoryID == categoryID && a.CategoryID != "" {
			out = append(out, h.Clone())
		}
	}
	return out
}

// FreeDigitKey returns the first of 1..9, 0 without a modifier-free binding
func (r *Registry) FreeDigitKey() (string, bool) {
	for _, key := range digitKeys {
		if !r.IsDuplicate(key, nil, "") {
			return key, true
		}
	}
	return "", false
}

// Snapshot copies the binding table for rollback
func (r *Registry) Snapshot() []types.HotkeyConfig {
	return r.Hotkeys()
}

// Restore reinstates a table taken with Snapshot
func (r *Registry) Restore(hotkeys []types.HotkeyConfig) {
	r.hotkeys = make([]types.HotkeyConfig, len(hotkeys))
	for i, h := range hotkeys {
		r.hotkeys[i] = h.Clone()
	}
}

// Load replaces the table with bindings read from persistence. Bindings
// without a key or repeating an earlier chord are dropped; missing ids are
// generated. It returns how many were dropped.
func (r *Registry) Load(hotkeys []types.HotkeyConfig) int {
	r.hotkeys = r.hotkeys[:0]
	dropped := 0
	for _, h := range hotkeys {
		if strings.TrimSpace(h.Key) == "" || r.IsDuplicate(h.Key, h.Modifiers, "") {
			dropped++
			continue
		}
		h = normalize(h)
		if h.ID == "" || r.indexOf(h.ID) >= 0 {
			h.ID = r.newID()
		}
		r.hotkeys = append(r.hotkeys, h.Clone())
	}
	return dropped
}

func (r *Registry) indexOf(id string) int {
	return slices.IndexFunc(r.hotkeys, func(h types.HotkeyConfig) bool { return h.ID == id })
}

func normalize(h types.HotkeyConfig) types.HotkeyConfig {
	h.Key = NormalizeKey(h.Key)
	h.Modifiers = NormalizeModifiers(h.Modifiers)
	return h
}
