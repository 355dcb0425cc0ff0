package view

import (
	"testing"
	"time"

	"pictag/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testImages() []types.Image {
	return []types.Image{
		{Path: "/pics/banana.jpg", Size: 50 * 1024, CreatedAt: base.Add(2 * time.Hour)},
		{Path: `C:\pics\Apple.png`, Size: 10 * 1024, CreatedAt: base},
		{Path: "/pics/cherry.gif", Size: 200 * 1024},
		{Path: "/pics/date.webp", Size: 0, CreatedAt: base.Add(time.Hour)},
	}
}

func query(f types.FilterOptions, s types.SortOption) Query {
	return Query{Filters: f, Sort: s}
}

func TestSortByName(t *testing.T) {
	got := Compute(testImages(), nil, query(types.DefaultFilters(), types.DefaultSort()))
	assert.Equal(t, []string{`C:\pics\Apple.png`, "/pics/banana.jpg", "/pics/cherry.gif", "/pics/date.webp"}, Paths(got))

	got = Compute(testImages(), nil, query(types.DefaultFilters(), types.SortOption{Field: types.SortName, Direction: types.Descending}))
	assert.Equal(t, []string{"/pics/date.webp", "/pics/cherry.gif", "/pics/banana.jpg", `C:\pics\Apple.png`}, Paths(got))
}

func TestSortBySizeAndDate(t *testing.T) {
	got := Compute(testImages(), nil, query(types.DefaultFilters(), types.SortOption{Field: types.SortSize, Direction: types.Ascending}))
	assert.Equal(t, []string{"/pics/date.webp", `C:\pics\Apple.png`, "/pics/banana.jpg", "/pics/cherry.gif"}, Paths(got))

	// Missing created_at counts as epoch 0
	got = Compute(testImages(), nil, query(types.DefaultFilters(), types.SortOption{Field: types.SortDateCreated, Direction: types.Ascending}))
	assert.Equal(t, []string{"/pics/cherry.gif", `C:\pics\Apple.png`, "/pics/date.webp", "/pics/banana.jpg"}, Paths(got))
}

func TestSortByLastCategorized(t *testing.T) {
	assignments := types.AssignmentMap{
		"/pics/banana.jpg": {{CategoryID: "a", AssignedAt: base}, {CategoryID: "b", AssignedAt: base.Add(3 * time.Hour)}},
		"/pics/cherry.gif": {{CategoryID: "a", AssignedAt: base.Add(time.Hour)}},
	}
	asc := types.SortOption{Field: types.SortLastCategorized, Direction: types.Ascending}
	got := Compute(testImages(), assignments, query(types.DefaultFilters(), asc))
	// Uncategorized images come first and keep their input order
	assert.Equal(t, []string{"/pics/date.webp", "/pics/cherry.gif", "/pics/banana.jpg"}, Paths(got)[1:])
	assert.Equal(t, `C:\pics\Apple.png`, got[0].Path)

	desc := types.SortOption{Field: types.SortLastCategorized, Direction: types.Descending}
	got = Compute(testImages(), assignments, query(types.DefaultFilters(), desc))
	assert.Equal(t, []string{"/pics/banana.jpg", "/pics/cherry.gif"}, Paths(got)[:2])
}

func TestCategoryFilter(t *testing.T) {
	assignments := types.AssignmentMap{
		"/pics/banana.jpg": {{CategoryID: "keep", AssignedAt: base}},
	}

	tests := []struct {
		name     string
		category string
		want     int
	}{
		{"all", types.CategoryFilterAll, 4},
		{"uncategorized", types.CategoryFilterUncategorized, 3},
		{"by id", "keep", 1},
		{"unknown id", "ghost", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := types.DefaultFilters()
			f.CategoryID = tt.category
			assert.Len(t, Compute(testImages(), assignments, query(f, types.DefaultSort())), tt.want)
		})
	}
}

func TestNameFilter(t *testing.T) {
	tests := []struct {
		op      types.NameOperator
		pattern string
		want    []string
	}{
		{types.NameContains, "AN", []string{"/pics/banana.jpg"}},
		{types.NameStartsWith, "apple", []string{`C:\pics\Apple.png`}},
		{types.NameEndsWith, ".GIF", []string{"/pics/cherry.gif"}},
		{types.NameExact, "date.webp", []string{"/pics/date.webp"}},
		{types.NameExact, "date", []string{}},
		{"regex", "x", []string{`C:\pics\Apple.png`, "/pics/banana.jpg", "/pics/cherry.gif", "/pics/date.webp"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.op)+"/"+tt.pattern, func(t *testing.T) {
			f := types.DefaultFilters()
			f.NameOperator = tt.op
			f.NamePattern = tt.pattern
			assert.Equal(t, tt.want, Paths(Compute(testImages(), nil, query(f, types.DefaultSort()))))
		})
	}
}

func TestSizeFilter(t *testing.T) {
	tests := []struct {
		name   string
		op     types.SizeOperator
		v1, v2 string
		want   int
	}{
		{"larger than", types.SizeLargerThan, "20", "", 2},
		{"less than", types.SizeLessThan, "20", "", 2},
		{"between inclusive", types.SizeBetween, "10", "50", 2},
		{"between reversed", types.SizeBetween, "50", "10", 2},
		{"empty value disables", types.SizeLargerThan, "", "", 4},
		{"garbage disables", types.SizeLessThan, "lots", "", 4},
		{"between missing upper disables", types.SizeBetween, "10", "", 4},
		{"NaN disables", types.SizeLargerThan, "NaN", "", 4},
		{"fractional KB", types.SizeLargerThan, "49.5", "", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := types.DefaultFilters()
			f.SizeOperator = tt.op
			f.SizeValue = tt.v1
			f.SizeValue2 = tt.v2
			assert.Len(t, Compute(testImages(), nil, query(f, types.DefaultSort())), tt.want)
		})
	}
}

func TestComputeIsTotalAndDeterministic(t *testing.T) {
	images := testImages()
	images = append(images, types.Image{Path: "/pics/twin.jpg", Size: 50 * 1024}, types.Image{Path: "/other/twin.jpg", Size: 50 * 1024})
	q := query(types.FilterOptions{SizeOperator: "bogus", NameOperator: "bogus", NamePattern: "t"}, types.SortOption{Field: "bogus", Direction: "sideways"})

	first := Compute(images, nil, q)
	second := Compute(images, nil, q)
	require.Equal(t, first, second)
	assert.Len(t, first, len(images))
	for _, img := range first {
		assert.Contains(t, images, img)
	}
}

func TestComputeDoesNotModifyInput(t *testing.T) {
	images := testImages()
	before := append([]types.Image(nil), images...)
	Compute(images, nil, query(types.DefaultFilters(), types.SortOption{Field: types.SortSize, Direction: types.Descending}))
	assert.Equal(t, before, images)
}

func TestUncategorizedScenario(t *testing.T) {
	images := []types.Image{{Path: "/a.jpg"}}
	f := types.DefaultFilters()
	f.CategoryID = types.CategoryFilterUncategorized
	q := query(f, types.DefaultSort())

	assert.True(t, Contains(Compute(images, types.AssignmentMap{}, q), "/a.jpg"))

	assigned := types.AssignmentMap{"/a.jpg": {{CategoryID: "keep", AssignedAt: base}}}
	assert.False(t, Contains(Compute(images, assigned, q), "/a.jpg"))
}

func TestIndexOf(t *testing.T) {
	got := Compute(testImages(), nil, DefaultQuery())
	assert.Equal(t, 1, IndexOf(got, "/pics/banana.jpg"))
	assert.Equal(t, -1, IndexOf(got, "/missing.jpg"))
}
