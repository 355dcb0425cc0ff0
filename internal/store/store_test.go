package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pictag/internal/errors"
	"pictag/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var assignedAt = time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

func sampleDocument() *types.Document {
	return &types.Document{
		Categories: []types.Category{
			{ID: "keep", Name: "Keep", Color: "#00ff00", MutuallyExclusiveWith: []string{"trash"}},
			{ID: "trash", Name: "Trash", Color: "#ff0000"},
		},
		ImageCategories: []types.ImageCategoryEntry{
			{Path: "/pics/a.jpg", Assignments: []types.CategoryAssignment{{CategoryID: "keep", AssignedAt: assignedAt}}},
			{Path: "/pics/b.jpg", Assignments: []types.CategoryAssignment{
				{CategoryID: "trash", AssignedAt: assignedAt},
				{CategoryID: "keep", AssignedAt: assignedAt.Add(time.Minute)},
			}},
		},
		Hotkeys: []types.HotkeyConfig{
			{ID: "h1", Key: "J", Modifiers: []types.Modifier{}, Action: types.ActionPreviousImage},
			{ID: "h2", Key: "1", Modifiers: []types.Modifier{types.ModCtrl, types.ModShift}, Action: "toggle_category_keep"},
		},
	}
}

func stores() map[string]ConfigStore {
	return map[string]ConfigStore{
		"json":   NewFileStore(""),
		"yaml":   NewFileStore("categories.yaml"),
		"sqlite": NewSQLiteStore(""),
	}
}

func TestSaveThenLoad(t *testing.T) {
	for name, s := range stores() {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			ctx := context.Background()
			require.NoError(t, s.SaveConfig(ctx, dir, "", sampleDocument()))

			doc, err := s.LoadConfig(ctx, dir, "")
			require.NoError(t, err)
			want := sampleDocument()
			assert.Equal(t, want.Categories, doc.Categories)
			assert.Equal(t, want.Hotkeys, doc.Hotkeys)
			require.Len(t, doc.ImageCategories, 2)
			for i, entry := range doc.ImageCategories {
				assert.Equal(t, want.ImageCategories[i].Path, entry.Path)
				require.Len(t, entry.Assignments, len(want.ImageCategories[i].Assignments))
				for j, a := range entry.Assignments {
					assert.Equal(t, want.ImageCategories[i].Assignments[j].CategoryID, a.CategoryID)
					assert.True(t, want.ImageCategories[i].Assignments[j].AssignedAt.Equal(a.AssignedAt))
				}
			}
		})
	}
}

func TestLoadMissingIsConfigNotFound(t *testing.T) {
	for name, s := range stores() {
		t.Run(name, func(t *testing.T) {
			_, err := s.LoadConfig(context.Background(), t.TempDir(), "")
			require.Error(t, err)
			assert.True(t, errors.IsConfigNotFound(err))
			assert.False(t, errors.IsTransportUnavailable(err))
		})
	}
}

func TestUnreachableDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")
	for name, s := range stores() {
		t.Run(name, func(t *testing.T) {
			_, err := s.LoadConfig(context.Background(), missing, "")
			assert.True(t, errors.IsTransportUnavailable(err))

			err = s.SaveConfig(context.Background(), missing, "", sampleDocument())
			assert.True(t, errors.IsTransportUnavailable(err))
		})
	}
}

func TestJSONLayout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewFileStore("").SaveConfig(context.Background(), dir, "", sampleDocument()))

	data, err := os.ReadFile(filepath.Join(dir, DefaultFilename))
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "categories")
	assert.Contains(t, raw, "hotkeys")

	var entries [][]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["image_categories"], &entries))
	require.Len(t, entries, 2)
	require.Len(t, entries[0], 2, "each entry is a [path, assignments] pair")
	assert.JSONEq(t, `"/pics/a.jpg"`, string(entries[0][0]))
	assert.JSONEq(t, `[{"category_id":"keep","assigned_at":"2024-02-03T04:05:06Z"}]`, string(entries[0][1]))

	leftovers, err := filepath.Glob(filepath.Join(dir, ".pictag-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestEmptyDocumentWritesLists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewFileStore("").SaveConfig(context.Background(), dir, "", nil))
	data, err := os.ReadFile(filepath.Join(dir, DefaultFilename))
	require.NoError(t, err)
	assert.JSONEq(t, `{"categories":[],"image_categories":[],"hotkeys":[]}`, string(data))
}

func TestMalformedFileIsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFilename), []byte(`{"image_categories":[["/a.jpg"]]}`), 0o644))
	_, err := NewFileStore("").LoadConfig(context.Background(), dir, "")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidConfig(err))
	assert.False(t, errors.IsConfigNotFound(err))
}

func TestFilenameOverride(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore("")
	require.NoError(t, s.SaveConfig(context.Background(), dir, "other.yml", sampleDocument()))
	assert.FileExists(t, filepath.Join(dir, "other.yml"))
	assert.NoFileExists(t, filepath.Join(dir, DefaultFilename))

	doc, err := s.LoadConfig(context.Background(), dir, "other.yml")
	require.NoError(t, err)
	assert.Len(t, doc.Categories, 2)
}

func TestSQLiteSaveReplacesRows(t *testing.T) {
	dir := t.TempDir()
	s := NewSQLiteStore("")
	ctx := context.Background()
	require.NoError(t, s.SaveConfig(ctx, dir, "", sampleDocument()))

	smaller := sampleDocument()
	smaller.Categories = smaller.Categories[:1]
	smaller.ImageCategories = smaller.ImageCategories[:1]
	require.NoError(t, s.SaveConfig(ctx, dir, "", smaller))

	doc, err := s.LoadConfig(ctx, dir, "")
	require.NoError(t, err)
	assert.Len(t, doc.Categories, 1)
	assert.Len(t, doc.ImageCategories, 1)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFileStore("").LoadConfig(ctx, t.TempDir(), "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewConfigStore(t *testing.T) {
	s, err := NewConfigStore("", "")
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = NewConfigStore("SQLite", "")
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)

	_, err = NewConfigStore("postgres", "")
	assert.True(t, errors.IsInvalidConfig(err))
}

type stubMedia struct{ deleted []string }

func (m *stubMedia) DeleteImageFile(_ context.Context, path string) error {
	m.deleted = append(m.deleted, path)
	return nil
}

func (m *stubMedia) LoadImageData(_ context.Context, path string) (string, error) {
	return "data:image/png;base64," + path, nil
}

func TestGateway(t *testing.T) {
	media := &stubMedia{}
	g := NewGateway(NewFileStore(""), media, media)
	require.NoError(t, g.DeleteImageFile(context.Background(), "/a.jpg"))
	assert.Equal(t, []string{"/a.jpg"}, media.deleted)

	url, err := g.LoadImageData(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,x", url)

	_, err = g.LoadConfig(context.Background(), t.TempDir(), "")
	assert.True(t, errors.IsConfigNotFound(err))
}
