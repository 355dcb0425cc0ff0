package hotkey

import (
	"fmt"
	"testing"

	"pictag/internal/errors"
	"pictag/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("hk-%d", n)
	}
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "K", NormalizeKey("k"))
	assert.Equal(t, "1", NormalizeKey("1"))
	assert.Equal(t, "Ä", NormalizeKey("ä"))
	assert.Equal(t, "ArrowRight", NormalizeKey("ArrowRight"))
}

func TestAddRejectsDuplicates(t *testing.T) {
	r := New(WithIDGenerator(sequentialIDs()))
	first, err := r.Add(types.HotkeyConfig{Key: "k", Modifiers: []types.Modifier{types.ModShift, types.ModCtrl}, Action: types.ActionNextImage})
	require.NoError(t, err)
	assert.Equal(t, "hk-1", first.ID)
	assert.Equal(t, "K", first.Key)
	assert.Equal(t, []types.Modifier{types.ModCtrl, types.ModShift}, first.Modifiers)

	tests := []struct {
		name string
		mods []types.Modifier
	}{
		{"same set, other order", []types.Modifier{types.ModCtrl, types.ModShift}},
		{"cmd plays the ctrl role", []types.Modifier{types.ModShift, types.ModCmd}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Add(types.HotkeyConfig{Key: "K", Modifiers: tt.mods, Action: types.ActionPreviousImage})
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
		})
	}

	_, err = r.Add(types.HotkeyConfig{Key: "K", Modifiers: []types.Modifier{types.ModCtrl}, Action: types.ActionPreviousImage})
	assert.NoError(t, err, "a different modifier set is a different chord")
	assert.Len(t, r.Hotkeys(), 2)
}

func TestAddRejectsEmptyCapture(t *testing.T) {
	r := New()
	_, err := r.Add(types.HotkeyConfig{Key: " ", Action: types.ActionNextImage})
	require.Error(t, err)
	var valErr *errors.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "key", valErr.Field())
	assert.Empty(t, r.Hotkeys())
}

func TestUpdateAllowsOwnChord(t *testing.T) {
	r := New(WithIDGenerator(sequentialIDs()))
	h, err := r.Add(types.HotkeyConfig{Key: "A", Action: types.ActionNextImage})
	require.NoError(t, err)
	other, err := r.Add(types.HotkeyConfig{Key: "B", Action: types.ActionPreviousImage})
	require.NoError(t, err)

	h.Action = types.ActionDeleteImageAndNext
	require.NoError(t, r.Update(h))
	got, _ := r.Get(h.ID)
	assert.Equal(t, types.ActionDeleteImageAndNext, got.Action)

	other.Key = "a"
	assert.True(t, errors.IsValidation(r.Update(other)))
	assert.True(t, errors.IsNotFound(r.Update(types.HotkeyConfig{ID: "ghost", Key: "Z"})))
}

func TestMatch(t *testing.T) {
	r := New()
	_, err := r.Add(types.HotkeyConfig{Key: "S", Modifiers: []types.Modifier{types.ModCmd}, Action: "toggle_category_keep"})
	require.NoError(t, err)
	_, err = r.Add(types.HotkeyConfig{Key: "ArrowRight", Action: types.ActionNextImage})
	require.NoError(t, err)

	h, ok := r.Match(Event{Key: "s", Ctrl: true})
	require.True(t, ok, "Ctrl satisfies a binding captured with Cmd")
	assert.Equal(t, "toggle_category_keep", h.Action)

	_, ok = r.Match(Event{Key: "s", Meta: true})
	assert.True(t, ok)

	_, ok = r.Match(Event{Key: "s"})
	assert.False(t, ok, "modifier sets must be equal, not a subset")

	_, ok = r.Match(Event{Key: "s", Ctrl: true, Shift: true})
	assert.False(t, ok)

	h, ok = r.Match(Event{Key: "ArrowRight"})
	require.True(t, ok)
	assert.Equal(t, types.ActionNextImage, h.Action)
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		kind ActionKind
		id   string
	}{
		{"", ActionNone, ""},
		{"next_image", ActionNextImage, ""},
		{"previous_image", ActionPreviousImage, ""},
		{"delete_image_and_next", ActionDeleteImageAndNext, ""},
		{"toggle_category_cat1", ActionToggleCategory, "cat1"},
		{"toggle_category_next_cat1", ActionToggleCategoryNext, "cat1"},
		{"assign_category_cat1", ActionToggleCategory, "cat1"},
		{"toggle_category_", ActionUnknown, ""},
		{"toggle_category_next_", ActionUnknown, ""},
		{"assign_category_", ActionUnknown, ""},
		{"open_settings", ActionUnknown, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a := ParseAction(tt.in)
			assert.Equal(t, tt.kind, a.Kind)
			assert.Equal(t, tt.id, a.CategoryID)
			assert.Equal(t, tt.in, a.Raw)
		})
	}
}

func TestClearCategoryKeepsBindings(t *testing.T) {
	r := New()
	_, err := r.Add(types.HotkeyConfig{Key: "1", Action: ToggleAction("keep")})
	require.NoError(t, err)
	_, err = r.Add(types.HotkeyConfig{Key: "2", Action: ToggleNextAction("keep")})
	require.NoError(t, err)
	_, err = r.Add(types.HotkeyConfig{Key: "3", Action: ToggleAction("trash")})
	require.NoError(t, err)

	assert.Len(t, r.BoundTo("keep"), 2)
	assert.Equal(t, 2, r.ClearCategory("keep"))
	hotkeys := r.Hotkeys()
	require.Len(t, hotkeys, 3)
	assert.Empty(t, hotkeys[0].Action)
	assert.Empty(t, hotkeys[1].Action)
	assert.Equal(t, "toggle_category_trash", hotkeys[2].Action)
}

func TestFreeDigitKey(t *testing.T) {
	r := New()
	key, ok := r.FreeDigitKey()
	require.True(t, ok)
	assert.Equal(t, "1", key)

	// A binding with modifiers does not occupy the bare key
	_, err := r.Add(types.HotkeyConfig{Key: "1", Modifiers: []types.Modifier{types.ModAlt}})
	require.NoError(t, err)
	key, _ = r.FreeDigitKey()
	assert.Equal(t, "1", key)

	for _, k := range digitKeys[:9] {
		_, err := r.Add(types.HotkeyConfig{Key: k})
		require.NoError(t, err)
	}
	key, ok = r.FreeDigitKey()
	require.True(t, ok)
	assert.Equal(t, "0", key)

	_, err = r.Add(types.HotkeyConfig{Key: "0"})
	require.NoError(t, err)
	_, ok = r.FreeDigitKey()
	assert.False(t, ok)
}

func TestSnapshotRestoreAndRemove(t *testing.T) {
	r := New()
	h, err := r.Add(types.HotkeyConfig{Key: "1"})
	require.NoError(t, err)
	snap := r.Snapshot()

	require.NoError(t, r.Remove(h.ID))
	assert.Empty(t, r.Hotkeys())
	assert.True(t, errors.IsNotFound(r.Remove(h.ID)))

	r.Restore(snap)
	assert.Len(t, r.Hotkeys(), 1)
}

func TestLoadDropsInvalid(t *testing.T) {
	r := New(WithIDGenerator(sequentialIDs()))
	dropped := r.Load([]types.HotkeyConfig{
		{ID: "a", Key: "j", Action: types.ActionPreviousImage},
		{ID: "b", Key: "J", Action: types.ActionNextImage},
		{ID: "c", Key: "", Action: types.ActionNextImage},
		{Key: "k", Modifiers: []types.Modifier{types.ModShift, types.ModShift}, Action: types.ActionNextImage},
	})
	assert.Equal(t, 2, dropped)
	hotkeys := r.Hotkeys()
	require.Len(t, hotkeys, 2)
	assert.Equal(t, "J", hotkeys[0].Key)
	assert.Equal(t, "hk-1", hotkeys[1].ID)
	assert.Equal(t, []types.Modifier{types.ModShift}, hotkeys[1].Modifiers)
}

func TestDefaults(t *testing.T) {
	defaults := Defaults(sequentialIDs())
	require.Len(t, defaults, 2)
	assert.Equal(t, "J", defaults[0].Key)
	assert.Equal(t, types.ActionPreviousImage, defaults[0].Action)
	assert.Equal(t, "K", defaults[1].Key)
	assert.Equal(t, types.ActionNextImage, defaults[1].Action)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Ctrl+Shift+K", Describe("K", []types.Modifier{types.ModShift, types.ModCtrl}))
	assert.Equal(t, "1", Describe("1", nil))
}
