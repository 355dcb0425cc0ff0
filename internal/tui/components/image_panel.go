package components

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"pictag/internal/tui/common"
	"pictag/internal/tui/styles"
	"pictag/pkg/types"
)

// ImagePanel renders the open image's details in the viewer
type ImagePanel struct {
	Styles styles.Styles
	Width  int
}

// Render draws img, its categories and the loaded data summary
func (p ImagePanel) Render(img types.Image, categories []types.Category, loaded common.LoadedImage, position, total int) string {
	width := p.Width
	if width <= 0 {
		width = 80
	}

	var sb strings.Builder
	sb.WriteString(p.Styles.Title.Render(Truncate(img.Name(), width-4)))
	sb.WriteString(p.Styles.Muted.Render(fmt.Sprintf("  %d/%d", position, total)))
	sb.WriteString("\n")
	sb.WriteString(p.Styles.Muted.Render(Truncate(img.Path, width-4)))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Size:     %s\n", HumanSize(img.Size))
	if img.Width > 0 && img.Height > 0 {
		fmt.Fprintf(&sb, "Pixels:   %dx%d\n", img.Width, img.Height)
	}
	if !img.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "Created:  %s (%s)\n", img.CreatedAt.Format("2006-01-02 15:04"), humanize.Time(img.CreatedAt))
	}

	sb.WriteString("Tags:     ")
	if len(categories) == 0 {
		sb.WriteString(p.Styles.Muted.Render("none"))
	}
	for i, c := range categories {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(p.Styles.Badge(c.Name, c.Color))
	}
	sb.WriteString("\n")

	switch {
	case loaded.Path != img.Path:
		sb.WriteString(p.Styles.Muted.Render("Loading image data…"))
	default:
		sb.WriteString(p.Styles.Info.Render(fmt.Sprintf("Loaded:   %s, %s encoded", loaded.MIME, humanize.Bytes(uint64(loaded.Bytes)))))
	}
	return p.Styles.Panel.Render(sb.String())
}
