package components

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"pictag/internal/tui/styles"
	"pictag/pkg/types"
)

// Truncate shortens s to at most width terminal cells, ending in an
// ellipsis when something was cut
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// Pad right-pads s with spaces to width cells
func Pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// HumanSize renders a byte count, or "-" when unknown
func HumanSize(size int64) string {
	if size <= 0 {
		return "-"
	}
	return humanize.Bytes(uint64(size))
}

// Window returns the half-open range of rows to show so that cursor stays
// visible in a list of n rows
func Window(n, cursor, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := cursor - height/2
	start = max(0, min(start, n-height))
	return start, start + height
}

// Gallery renders the filtered and sorted image list
type Gallery struct {
	Styles     styles.Styles
	Width      int
	Height     int
	Categories func(path string) []types.Category
}

// Render draws images with the row at cursor highlighted
func (g Gallery) Render(images []types.Image, cursor int) string {
	if len(images) == 0 {
		return g.Styles.Muted.Render("No images match the current filter")
	}
	width := g.Width
	if width <= 0 {
		width = 80
	}
	nameWidth := max(12, width/2)

	var sb strings.Builder
	start, end := Window(len(images), cursor, g.Height)
	for i := start; i < end; i++ {
		img := images[i]
		prefix := "  "
		if i == cursor {
			prefix = "> "
		}
		name := Pad(Truncate(img.Name(), nameWidth), nameWidth)
		row := fmt.Sprintf("%s%s %9s", prefix, name, HumanSize(img.Size))

		style := g.Styles.Unselected
		if i == cursor {
			style = g.Styles.Selected
		}
		sb.WriteString(style.Render(row))
		if g.Categories != nil {
			for _, c := range g.Categories(img.Path) {
				sb.WriteString(" " + g.Styles.Badge(c.Name, c.Color))
			}
		}
		sb.WriteString("\n")
	}
	if start > 0 || end < len(images) {
		sb.WriteString(g.Styles.Muted.Render(fmt.Sprintf("%d-%d of %d", start+1, end, len(images))))
		sb.WriteString("\n")
	}
	return sb.String()
}
