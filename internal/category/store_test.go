package category

import (
	"testing"
	"time"

	"pictag/internal/errors"
	"pictag/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock returns strictly increasing timestamps
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore(t *testing.T, categories ...types.Category) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := New(WithClock(clock.Now))
	for _, c := range categories {
		require.NoError(t, s.Add(c))
	}
	return s, clock
}

// assertClean checks that the map never holds an empty list
func assertClean(t *testing.T, s *Store) {
	t.Helper()
	for path, list := range s.Assignments() {
		assert.NotEmpty(t, list, "path %s holds an empty list", path)
	}
}

func TestToggleIsIdempotentPair(t *testing.T) {
	s, _ := newTestStore(t,
		types.Category{ID: "keep", Name: "Keep"},
		types.Category{ID: "blue", Name: "Blue"},
	)

	_, err := s.Toggle("/a.jpg", "blue")
	require.NoError(t, err)
	before := s.AssignmentsFor("/a.jpg")

	added, err := s.Toggle("/a.jpg", "keep")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.Toggle("/a.jpg", "keep")
	require.NoError(t, err)
	assert.False(t, added)

	assert.Equal(t, before, s.AssignmentsFor("/a.jpg"), "retained entries keep their timestamps")
	assertClean(t, s)
}

func TestToggleOffLastDeletesEntry(t *testing.T) {
	s, _ := newTestStore(t, types.Category{ID: "keep", Name: "Keep"})

	_, err := s.Toggle("/a.jpg", "keep")
	require.NoError(t, err)
	_, err = s.Toggle("/a.jpg", "keep")
	require.NoError(t, err)

	_, exists := s.Assignments()["/a.jpg"]
	assert.False(t, exists)
	assertClean(t, s)
}

func TestMutualExclusion(t *testing.T) {
	categories := []types.Category{
		{ID: "A", Name: "A", MutuallyExclusiveWith: nil},
		{ID: "B", Name: "B"},
		{ID: "C", Name: "C"},
	}

	t.Run("B then toggle A leaves only A", func(t *testing.T) {
		s, _ := newTestStore(t, categories...)
		a, _ := s.Category("A")
		a.MutuallyExclusiveWith = []string{"B"}
		require.NoError(t, s.Update(a))

		_, err := s.Toggle("/img.jpg", "B")
		require.NoError(t, err)
		_, err = s.Toggle("/img.jpg", "A")
		require.NoError(t, err)
		assert.Equal(t, []string{"A"}, s.Assignments().CategoryIDs("/img.jpg"))
	})

	t.Run("A then B leaves only B (symmetric)", func(t *testing.T) {
		s, _ := newTestStore(t, categories...)
		a, _ := s.Category("A")
		a.MutuallyExclusiveWith = []string{"B"}
		require.NoError(t, s.Update(a))

		_, err := s.Toggle("/img.jpg", "A")
		require.NoError(t, err)
		_, err = s.Toggle("/img.jpg", "B")
		require.NoError(t, err)
		assert.Equal(t, []string{"B"}, s.Assignments().CategoryIDs("/img.jpg"))
	})

	t.Run("unrelated assignments survive", func(t *testing.T) {
		s, _ := newTestStore(t, categories...)
		a, _ := s.Category("A")
		a.MutuallyExclusiveWith = []string{"B"}
		require.NoError(t, s.Update(a))

		for _, id := range []string{"C", "B", "A"} {
			_, err := s.Toggle("/img.jpg", id)
			require.NoError(t, err)
		}
		assert.Equal(t, []string{"C", "A"}, s.Assignments().CategoryIDs("/img.jpg"))
	})
}

func TestAssignIsAddOnly(t *testing.T) {
	s, _ := newTestStore(t, types.Category{ID: "keep", Name: "Keep"})

	changed, err := s.Assign("/a.jpg", "keep")
	require.NoError(t, err)
	assert.True(t, changed)
	first := s.AssignmentsFor("/a.jpg")

	changed, err = s.Assign("/a.jpg", "keep")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, first, s.AssignmentsFor("/a.jpg"))
}

func TestToggleUnknownCategory(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Toggle("/a.jpg", "ghost")
	assert.True(t, errors.IsNotFound(err))
	assert.Empty(t, s.Assignments())
}

func TestAssignedAtUsesClock(t *testing.T) {
	s, clock := newTestStore(t, types.Category{ID: "keep", Name: "Keep"})
	_, err := s.Toggle("/a.jpg", "keep")
	require.NoError(t, err)
	assert.Equal(t, clock.t, s.AssignmentsFor("/a.jpg")[0].AssignedAt)
}

func TestValidation(t *testing.T) {
	s, _ := newTestStore(t, types.Category{ID: "keep", Name: "Keep", Color: "#00ff00"})

	tests := []struct {
		name  string
		cat   types.Category
		field string
	}{
		{"empty name", types.Category{ID: "x", Name: "  "}, "name"},
		{"duplicate name ignores case", types.Category{ID: "x", Name: "KEEP"}, "name"},
		{"bad color", types.Category{ID: "x", Name: "X", Color: "green"}, "color"},
		{"self exclusion", types.Category{ID: "x", Name: "X", MutuallyExclusiveWith: []string{"x"}}, "mutuallyExclusiveWith"},
		{"unknown exclusion", types.Category{ID: "x", Name: "X", MutuallyExclusiveWith: []string{"ghost"}}, "mutuallyExclusiveWith"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Add(tt.cat)
			require.Error(t, err)
			var valErr *errors.ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.Equal(t, tt.field, valErr.Field())
			assert.Len(t, s.Categories(), 1, "rejected input must not change state")
		})
	}

	// Renaming a category to its own name is allowed
	keep, _ := s.Category("keep")
	keep.Name = "keep"
	assert.NoError(t, s.Update(keep))
}

func TestRemoveCascades(t *testing.T) {
	s, _ := newTestStore(t,
		types.Category{ID: "keep", Name: "Keep"},
		types.Category{ID: "trash", Name: "Trash"},
	)
	trash, _ := s.Category("trash")
	trash.MutuallyExclusiveWith = []string{"keep"}
	require.NoError(t, s.Update(trash))

	_, err := s.Toggle("/a.jpg", "keep")
	require.NoError(t, err)
	_, err = s.Toggle("/b.jpg", "trash")
	require.NoError(t, err)

	require.NoError(t, s.Remove("keep"))

	_, exists := s.Assignments()["/a.jpg"]
	assert.False(t, exists, "emptied entry must be deleted")
	assert.True(t, s.Has("/b.jpg", "trash"))
	trash, _ = s.Category("trash")
	assert.Empty(t, trash.MutuallyExclusiveWith)
	assertClean(t, s)

	assert.True(t, errors.IsNotFound(s.Remove("keep")))
}

func TestSnapshotRestore(t *testing.T) {
	s, _ := newTestStore(t, types.Category{ID: "keep", Name: "Keep"})
	_, err := s.Toggle("/a.jpg", "keep")
	require.NoError(t, err)

	snap := s.Snapshot()
	require.NoError(t, s.Remove("keep"))
	assert.Empty(t, s.Categories())

	s.Restore(snap)
	assert.Len(t, s.Categories(), 1)
	assert.True(t, s.Has("/a.jpg", "keep"))

	before := s.SnapshotPath("/a.jpg")
	_, err = s.Toggle("/a.jpg", "keep")
	require.NoError(t, err)
	s.RestorePath("/a.jpg", before)
	assert.Equal(t, before, s.AssignmentsFor("/a.jpg"))
}

func TestLoadRepairsInput(t *testing.T) {
	s := New()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dropped := s.Load(
		[]types.Category{
			{ID: "keep", Name: " Keep ", MutuallyExclusiveWith: []string{"trash", "ghost"}},
			{ID: "trash", Name: "Trash"},
			{ID: "keep", Name: "Duplicate"},
			{ID: "", Name: "No id"},
		},
		[]types.ImageCategoryEntry{
			{Path: "/a.jpg", Assignments: []types.CategoryAssignment{{CategoryID: "keep", AssignedAt: at}, {CategoryID: "keep", AssignedAt: at}}},
			{Path: "/b.jpg", Assignments: []types.CategoryAssignment{{CategoryID: "ghost", AssignedAt: at}}},
			{Path: "/c.jpg", Assignments: nil},
		},
	)

	assert.Equal(t, 5, dropped)
	require.Len(t, s.Categories(), 2)
	keep, _ := s.Category("keep")
	assert.Equal(t, "Keep", keep.Name)
	assert.Equal(t, []string{"trash"}, keep.MutuallyExclusiveWith)
	assert.Len(t, s.AssignmentsFor("/a.jpg"), 1)
	assert.NotContains(t, s.Assignments(), "/b.jpg")
	assert.NotContains(t, s.Assignments(), "/c.jpg")
	assertClean(t, s)
}

func TestRemoveImage(t *testing.T) {
	s, _ := newTestStore(t, types.Category{ID: "keep", Name: "Keep"})
	_, err := s.Toggle("/a.jpg", "keep")
	require.NoError(t, err)
	s.RemoveImage("/a.jpg")
	assert.Empty(t, s.Assignments())
}
