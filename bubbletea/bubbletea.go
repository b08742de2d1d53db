// Package bubbletea provides the interactive chat TUI for the restaurant
// concierge.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/concierge"
)

// AskFunc runs one episode for query. onEvent is called for each progress
// event. The function blocks until the episode ends or ctx is cancelled.
type AskFunc func(ctx context.Context, query string, onEvent func(concierge.Event)) (concierge.Outcome, error)

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits. When ctx is cancelled the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// EventMsg wraps an episode event for delivery to the model.
type EventMsg struct {
	Event concierge.Event
}

// DoneMsg signals that an episode has ended.
type DoneMsg struct {
	Outcome concierge.Outcome
	Err     error
}
