package bubbletea

import (
	"bytes"
	"encoding/json"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/concierge"
	"github.com/mattn/go-runewidth"
)

var _ MessageBlock = (*ToolCallBlock)(nil)

// ToolCallBlock renders a dispatched tool call with a collapsible argument
// view. The header shows whether the result has come back.
type ToolCallBlock struct {
	call      concierge.ToolCallBlock
	done      bool
	failed    bool
	collapsed bool
	styles    Styles
}

// NewToolCallBlock creates a ToolCallBlock that starts collapsed.
func NewToolCallBlock(call concierge.ToolCallBlock, styles Styles) *ToolCallBlock {
	return &ToolCallBlock{call: call, collapsed: true, styles: styles}
}

// ID returns the correlation id of the call.
func (b *ToolCallBlock) ID() string { return b.call.ID }

// Complete marks the call as answered.
func (b *ToolCallBlock) Complete(failed bool) {
	b.done = true
	b.failed = failed
}

func (b *ToolCallBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *ToolCallBlock) View(width int) string {
	indicator := "▶"
	if !b.collapsed {
		indicator = "▼"
	}
	status := b.styles.Muted.Render("…")
	switch {
	case b.done && b.failed:
		status = b.styles.Error.Render("✗")
	case b.done:
		status = b.styles.Success.Render("✓")
	}
	header := b.styles.ToolCall.Render(indicator+" "+b.call.Name) + " " + status

	args := compactArgs(b.call.Arguments)
	if b.collapsed {
		if args != "{}" {
			room := width - runewidth.StringWidth(indicator+" "+b.call.Name+" … ") - 2
			if room > 3 {
				header += " " + b.styles.Muted.Render(runewidth.Truncate(args, room, "…"))
			}
		}
		return b.styles.ToolCallBg.Width(width).Render(header)
	}
	content := header + "\n" + b.styles.Muted.Render(indentArgs(b.call.Arguments))
	return b.styles.ToolCallBg.Width(width).Render(content)
}

func compactArgs(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func indentArgs(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
