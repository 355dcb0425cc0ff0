package views

import (
	"fmt"
	"strings"

	"pictag/internal/tui/common"
	"pictag/internal/tui/components"
	"pictag/pkg/types"
)

// chrome is the number of lines the header, status and help take
const chrome = 7

func RenderMainView(m common.ModelReader) string {
	st := m.Styles()

	var sb strings.Builder
	sb.WriteString(renderHeader(m))
	sb.WriteString("\n\n")

	switch m.Mode() {
	case common.Viewer:
		img, ok := m.CurrentImage()
		if !ok {
			sb.WriteString(st.Muted.Render("No image open"))
			break
		}
		panel := components.ImagePanel{Styles: st, Width: m.Width()}
		sb.WriteString(panel.Render(img, m.CategoriesOf(img.Path), m.Loaded(), m.Cursor()+1, len(m.Images())))
	default:
		gallery := components.Gallery{
			Styles:     st,
			Width:      m.Width(),
			Height:     max(1, m.Height()-chrome),
			Categories: m.CategoriesOf,
		}
		sb.WriteString(gallery.Render(m.Images(), m.Cursor()))
	}

	if status := m.StatusLine(); status != "" {
		sb.WriteString("\n" + status)
	}
	sb.WriteString("\n" + st.Help.Render(m.HelpView()))

	return st.App.Render(sb.String())
}

func renderHeader(m common.ModelReader) string {
	st := m.Styles()
	q := m.Query()

	title := st.Title.Render("pictag")
	dir := st.Muted.Render(components.Truncate(m.Directory(), max(10, m.Width()/2)))

	sort := fmt.Sprintf("sort: %s %s", q.Sort.Field, arrow(q.Sort.Direction))
	parts := []string{title, dir, st.Header.Render(filterLabel(m, q.Filters)), st.Header.Render(sort)}
	if m.Suppressed() {
		parts = append(parts, st.Warning.Render("[held]"))
	}
	return strings.Join(parts, "  ")
}

func filterLabel(m common.ModelReader, f types.FilterOptions) string {
	switch f.CategoryID {
	case types.CategoryFilterAll:
		return "filter: all"
	case types.CategoryFilterUncategorized:
		return "filter: uncategorized"
	default:
		return "filter: " + m.CategoryName(f.CategoryID)
	}
}

func arrow(d types.SortDirection) string {
	if d == types.Descending {
		return "↓"
	}
	return "↑"
}
