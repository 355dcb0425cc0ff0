package common

import (
	"pictag/internal/tui/styles"
	"pictag/internal/view"
	"pictag/pkg/types"
)

// Mode is the screen the TUI shows
type Mode int

const (
	Gallery Mode = iota
	Viewer
)

func (m Mode) String() string {
	if m == Viewer {
		return "viewer"
	}
	return "gallery"
}

// LoadedImage summarizes the data of the image shown in the viewer
type LoadedImage struct {
	Path  string
	MIME  string
	Bytes int
}

// ModelReader defines the interface that views use to read model state
type ModelReader interface {
	Mode() Mode
	Directory() string
	Images() []types.Image
	Cursor() int
	CurrentImage() (types.Image, bool)
	CategoriesOf(path string) []types.Category
	CategoryName(id string) string
	Query() view.Query
	Suppressed() bool
	Loaded() LoadedImage
	StatusLine() string
	ShowHelp() bool
	HelpView() string
	Styles() styles.Styles
	Width() int
	Height() int
}
