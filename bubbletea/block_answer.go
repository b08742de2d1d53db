package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/concierge"
	"github.com/fwojciec/concierge/goldmark"
)

var _ MessageBlock = (*AnswerBlock)(nil)

// AnswerBlock renders the final answer as markdown. Rendering is cached per
// width since answers never change once shown.
type AnswerBlock struct {
	text    string
	theme   concierge.Theme
	byWidth map[int]string
}

// NewAnswerBlock creates an AnswerBlock.
func NewAnswerBlock(text string, theme concierge.Theme) *AnswerBlock {
	return &AnswerBlock{text: text, theme: theme, byWidth: make(map[int]string)}
}

// Text returns the raw answer.
func (b *AnswerBlock) Text() string { return b.text }

func (b *AnswerBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *AnswerBlock) View(width int) string {
	if cached, ok := b.byWidth[width]; ok {
		return cached
	}
	rendered := goldmark.Render(b.text, width, b.theme)
	b.byWidth[width] = rendered
	return rendered
}
