package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*NoteBlock)(nil)

// NoteBlock renders text the engine produced alongside a batch of tool
// calls. It starts collapsed.
type NoteBlock struct {
	text      string
	collapsed bool
	styles    Styles
}

// NewNoteBlock creates a NoteBlock.
func NewNoteBlock(text string, styles Styles) *NoteBlock {
	return &NoteBlock{text: text, collapsed: true, styles: styles}
}

func (b *NoteBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *NoteBlock) View(width int) string {
	wrap := lipgloss.NewStyle().Width(width)
	indicator := "▶"
	if !b.collapsed {
		indicator = "▼"
	}
	header := b.styles.Note.Render(wrap.Render(indicator + " Note"))
	if b.collapsed {
		return header
	}
	return header + "\n" + b.styles.Note.Render(wrap.Render(b.text))
}
