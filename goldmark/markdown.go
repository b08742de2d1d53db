// Package goldmark renders the assistant's markdown answers to ANSI-styled
// terminal output using goldmark for parsing and lipgloss for styling.
//
// Menu listings arrive as GFM tables and bullet lists, so the parser runs
// with the GFM extension and tables are laid out in aligned columns.
package goldmark

import "github.com/fwojciec/concierge"

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs and list items are word-wrapped to width. Code blocks and table
// rows are never reflowed.
func Render(source string, width int, theme concierge.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r := newRenderer(theme)
	return r.render([]byte(source), width)
}
