package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/concierge"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the concierge chat.
type Model struct {
	// Input is the query input. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable conversation area. Exported for test access.
	Viewport viewport.Model

	ask    AskFunc
	title  string
	theme  concierge.Theme
	styles Styles

	blocks     []MessageBlock
	blockFocus int // index of focused collapsible block (-1 = none)

	// calls correlates results with the call block they answer. Ids are
	// unique within an episode; the map is reset per query.
	calls map[string]*ToolCallBlock

	turn    int
	usage   concierge.Usage
	running bool
	cancel  context.CancelFunc
	eventCh chan concierge.Event
	doneCh  chan DoneMsg
	err     error
	ready   bool
}

// Option configures a [Model].
type Option func(*Model)

// WithTitle sets the text shown in the status line while idle.
func WithTitle(title string) Option {
	return func(m *Model) { m.title = title }
}

// New creates a TUI Model that runs each submitted query through ask.
func New(ask AskFunc, theme concierge.Theme, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about the menu, tables or opening hours..."
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 0

	m := Model{
		Input:      ti,
		ask:        ask,
		theme:      theme,
		styles:     NewStyles(theme),
		blockFocus: -1,
		calls:      make(map[string]*ToolCallBlock),
	}
	for _, o := range opts {
		o(&m)
	}
	return m
}

// Running returns whether an episode is in progress.
func (m Model) Running() bool { return m.running }

// Err returns the last error that did not come from the episode itself.
func (m Model) Err() error { return m.err }

// Usage returns tokens consumed across all episodes in this session.
func (m Model) Usage() concierge.Usage { return m.usage }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EventMsg:
		m = m.processEvent(msg.Event)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		if m.eventCh != nil {
			return m, listenForEvent(m.eventCh, m.doneCh)
		}
		return m, nil

	case DoneMsg:
		m.running = false
		m.cancel = nil
		m.eventCh = nil
		m.doneCh = nil
		m.turn = 0
		m.usage = m.usage.Add(msg.Outcome.Usage)
		var domainErr *concierge.Error
		if msg.Err != nil && !errors.As(msg.Err, &domainErr) && !errors.Is(msg.Err, context.Canceled) {
			m.err = msg.Err
		}
		m = m.updateBlockFocus()
		return m, m.Input.Focus()
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	const chrome = 4 // input, status line and the newlines between sections
	vpHeight := max(msg.Height-chrome, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	m.Input.Width = msg.Width - len(m.Input.Prompt) - 1
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEsc:
		if m.running && m.cancel != nil {
			m.cancel()
		}
		return m, nil

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		switch strings.ToLower(text) {
		case "":
			return m, nil
		case "exit", "quit":
			return m, tea.Quit
		}
		return m.submit(text)

	case tea.KeyTab:
		if !m.running && m.blockFocus >= 0 {
			block, cmd := m.blocks[m.blockFocus].Update(ToggleMsg{})
			m.blocks[m.blockFocus] = block
			m.Viewport.SetContent(m.renderContent())
			return m, cmd
		}
		return m, nil

	case tea.KeyShiftTab:
		if !m.running {
			m = m.cycleFocusPrev()
			m.Viewport.SetContent(m.renderContent())
		}
		return m, nil
	}

	// Character keys go to the input only; 'j'/'k' would otherwise scroll.
	if !m.running {
		var cmds []tea.Cmd
		var cmd tea.Cmd
		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}
	m.Viewport, _ = m.Viewport.Update(msg)
	return m, nil
}

func (m Model) submit(query string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.Input.Blur()
	m.err = nil

	m.blocks = append(m.blocks, NewQueryBlock(query, m.styles))
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	m.calls = make(map[string]*ToolCallBlock)
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.eventCh = make(chan concierge.Event, 256)
	m.doneCh = make(chan DoneMsg, 1)
	m.running = true

	return m, tea.Batch(
		startEpisode(ctx, m.ask, query, m.eventCh, m.doneCh),
		listenForEvent(m.eventCh, m.doneCh),
	)
}

// processEvent turns an episode event into blocks.
func (m Model) processEvent(evt concierge.Event) Model {
	switch e := evt.(type) {
	case concierge.EventThinking:
		m.turn = e.Turn
	case concierge.EventText:
		m.blocks = append(m.blocks, NewNoteBlock(e.Text, m.styles))
	case concierge.EventToolCall:
		b := NewToolCallBlock(e.Call, m.styles)
		m.calls[e.Call.ID] = b
		m.blocks = append(m.blocks, b)
	case concierge.EventToolResult:
		if b, ok := m.calls[e.Result.ToolCallID]; ok {
			b.Complete(e.Result.IsError())
		}
		m.blocks = append(m.blocks, NewToolResultBlock(e.Result, m.styles))
	case concierge.EventFinal:
		m.blocks = append(m.blocks, NewAnswerBlock(e.Answer, m.theme))
	case concierge.EventAborted:
		m.blocks = append(m.blocks, NewFailureBlock(e.Err, m.styles))
	}
	return m.updateBlockFocus()
}

func (m Model) renderContent() string {
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString(blockSeparator(m.blocks[i-1], block))
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

// updateBlockFocus focuses the last collapsible block. Only the focused
// block responds to Tab; Shift+Tab cycles to earlier ones.
func (m Model) updateBlockFocus() Model {
	m.blockFocus = -1
	for i := len(m.blocks) - 1; i >= 0; i-- {
		if collapsible(m.blocks[i]) {
			m.blockFocus = i
			return m
		}
	}
	return m
}

// cycleFocusPrev moves blockFocus to the previous collapsible block, wrapping around.
func (m Model) cycleFocusPrev() Model {
	if len(m.blocks) == 0 {
		return m
	}
	start := m.blockFocus - 1
	if start < 0 {
		start = len(m.blocks) - 1
	}
	for i := range len(m.blocks) {
		idx := (start - i + len(m.blocks)) % len(m.blocks)
		if collapsible(m.blocks[idx]) {
			m.blockFocus = idx
			return m
		}
	}
	m.blockFocus = -1
	return m
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if m.running {
		if m.turn > 0 {
			return m.styles.Muted.Render(fmt.Sprintf("Thinking (turn %d)... Esc to cancel", m.turn))
		}
		return m.styles.Muted.Render("Thinking... Esc to cancel")
	}
	status := "Enter to ask, Tab to expand, Ctrl+C to quit"
	if m.title != "" {
		status = m.styles.Accent.Render(m.title) + m.styles.Muted.Render(" · "+status)
	} else {
		status = m.styles.Muted.Render(status)
	}
	if total := m.usage.Total(); total > 0 {
		status += m.styles.Muted.Render(fmt.Sprintf(" · %d tokens", total))
	}
	return status
}

// startEpisode runs ask in the command goroutine and reports its outcome on
// doneCh once every event has been delivered.
func startEpisode(ctx context.Context, ask AskFunc, query string, eventCh chan<- concierge.Event, doneCh chan<- DoneMsg) tea.Cmd {
	return func() tea.Msg {
		outcome, err := ask(ctx, query, func(e concierge.Event) {
			select {
			case eventCh <- e:
			case <-ctx.Done():
			}
		})
		close(eventCh)
		doneCh <- DoneMsg{Outcome: outcome, Err: err}
		return nil
	}
}

// listenForEvent waits for the next event. When the channel closes it
// returns the DoneMsg from doneCh.
func listenForEvent(ch <-chan concierge.Event, doneCh <-chan DoneMsg) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return <-doneCh
		}
		return EventMsg{Event: evt}
	}
}
