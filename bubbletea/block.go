package bubbletea

import tea "github.com/charmbracelet/bubbletea"

// MessageBlock is a renderable element in the conversation.
// Unlike tea.Model, View takes a width parameter so the root model
// controls layout and blocks are testable in isolation.
type MessageBlock interface {
	Update(tea.Msg) (MessageBlock, tea.Cmd)
	View(width int) string
}

// ToggleMsg tells a collapsible block to toggle its collapsed state.
// Sent by the root model when the user presses the toggle key on a focused block.
type ToggleMsg struct{}

// collapsible reports whether b responds to ToggleMsg.
func collapsible(b MessageBlock) bool {
	switch b.(type) {
	case *NoteBlock, *ToolCallBlock, *ToolResultBlock:
		return true
	default:
		return false
	}
}

// blockSeparator returns the gap between two consecutive blocks. Tool
// activity is kept tight; everything else is separated by a blank line.
func blockSeparator(prev, curr MessageBlock) string {
	if isToolBlock(prev) && isToolBlock(curr) {
		return "\n"
	}
	return "\n\n"
}

func isToolBlock(b MessageBlock) bool {
	switch b.(type) {
	case *ToolCallBlock, *ToolResultBlock:
		return true
	default:
		return false
	}
}
