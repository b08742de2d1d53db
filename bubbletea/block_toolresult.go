package bubbletea

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/fwojciec/concierge"
	"github.com/mattn/go-runewidth"
)

var _ MessageBlock = (*ToolResultBlock)(nil)

// ToolResultBlock renders a tool result with a collapsible toggle.
// Success results start collapsed with a one-line preview; failures start
// expanded and show the error kind.
type ToolResultBlock struct {
	result    concierge.ToolResultMessage
	content   string
	collapsed bool
	styles    Styles
}

// NewToolResultBlock creates a ToolResultBlock. Remote tool output is
// sanitized before display.
func NewToolResultBlock(result concierge.ToolResultMessage, styles Styles) *ToolResultBlock {
	content := result.Content
	if result.Err != nil {
		content = result.Err.Message
		if result.Err.Field != "" {
			content = result.Err.Field + ": " + content
		}
	}
	return &ToolResultBlock{
		result:    result,
		content:   sanitize(content),
		collapsed: !result.IsError(),
		styles:    styles,
	}
}

// IsError reports whether this tool result represents an error.
func (b *ToolResultBlock) IsError() bool { return b.result.IsError() }

func (b *ToolResultBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *ToolResultBlock) View(width int) string {
	indicator := "▼"
	if b.collapsed {
		indicator = "▶"
	}
	icon := b.styles.Success.Render("✓")
	label := "← " + b.result.ToolName
	if b.result.IsError() {
		icon = b.styles.Error.Render("✗ " + string(b.result.Err.Kind))
	}
	header := b.styles.ToolCall.Render(indicator+" "+label) + " " + icon
	if b.result.Truncated {
		header += " " + b.styles.Muted.Render("(truncated)")
	}

	if b.collapsed {
		if b.content != "" {
			used := ansi.StringWidth(header) + 4
			if room := width - used; room > 3 {
				header += "  " + b.styles.Muted.Render(runewidth.Truncate(firstLine(b.content), room, "…"))
			}
		}
		return b.styles.ToolResultBg.Width(width).Render(header)
	}

	content := header
	if b.content != "" {
		body := b.content
		if b.result.IsError() {
			body = b.styles.Error.Render(body)
		}
		content = fmt.Sprintf("%s\n%s", header, body)
	}
	return b.styles.ToolResultBg.Width(width).Render(content)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
