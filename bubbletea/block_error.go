package bubbletea

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/concierge"
)

var _ MessageBlock = (*FailureBlock)(nil)

// FailureBlock renders an episode that ended without an answer.
type FailureBlock struct {
	err    *concierge.Error
	styles Styles
}

// NewFailureBlock creates a FailureBlock.
func NewFailureBlock(err *concierge.Error, styles Styles) *FailureBlock {
	return &FailureBlock{err: err, styles: styles}
}

func (b *FailureBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *FailureBlock) View(width int) string {
	content := b.styles.Error.Render(fmt.Sprintf("✗ %s: %s", b.err.Kind, b.err.Message))
	return lipgloss.NewStyle().Width(width).Render(content)
}
