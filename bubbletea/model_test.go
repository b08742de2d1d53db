package bubbletea_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/fwojciec/concierge"
	bt "github.com/fwojciec/concierge/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nopAsk(context.Context, string, func(concierge.Event)) (concierge.Outcome, error) {
	return concierge.Outcome{State: concierge.StateFinal}, nil
}

func initModel(t *testing.T, ask bt.AskFunc) bt.Model {
	t.Helper()
	m := bt.New(ask, concierge.DefaultTheme())
	return updateModel(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

func sendEvents(t *testing.T, m bt.Model, events ...concierge.Event) bt.Model {
	t.Helper()
	for _, e := range events {
		m = updateModel(t, m, bt.EventMsg{Event: e})
	}
	return m
}

func TestNew(t *testing.T) {
	t.Parallel()

	m := bt.New(nopAsk, concierge.DefaultTheme())
	assert.False(t, m.Running())
	assert.NoError(t, m.Err())
	assert.Equal(t, "Initializing...", m.View())
}

func TestModel_WindowSize(t *testing.T) {
	t.Parallel()

	m := initModel(t, nopAsk)
	assert.Equal(t, 80, m.Viewport.Width)
	assert.Equal(t, 20, m.Viewport.Height)

	m = updateModel(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.Viewport.Width)
	assert.Equal(t, 36, m.Viewport.Height)
	assert.Contains(t, m.View(), "Enter to ask")
}

func TestModel_Submit(t *testing.T) {
	t.Parallel()

	t.Run("enter starts an episode", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nopAsk)
		m.Input.SetValue("  Get vegetarian menu ")
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m = updated.(bt.Model)

		assert.True(t, m.Running())
		require.NotNil(t, cmd)
		assert.Equal(t, "", m.Input.Value())
		assert.Contains(t, stripANSI(bt.RenderContent(m)), "> Get vegetarian menu")
		assert.Contains(t, m.View(), "Thinking...")
	})

	t.Run("blank input is ignored", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nopAsk)
		m.Input.SetValue("   ")
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		assert.False(t, updated.(bt.Model).Running())
		assert.Nil(t, cmd)
	})

	t.Run("exit and quit end the program", func(t *testing.T) {
		t.Parallel()
		for _, word := range []string{"exit", "QUIT"} {
			m := initModel(t, nopAsk)
			m.Input.SetValue(word)
			_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
			require.NotNil(t, cmd)
			assert.Equal(t, tea.QuitMsg{}, cmd())
		}
	})

	t.Run("enter while running is ignored", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nopAsk)
		m.Input.SetValue("first")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		m.Input.SetValue("second")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		assert.NotContains(t, stripANSI(bt.RenderContent(m)), "second")
	})
}

func TestModel_Events(t *testing.T) {
	t.Parallel()

	m := initModel(t, nopAsk)
	m = sendEvents(t, m,
		concierge.EventThinking{Turn: 1},
		concierge.EventText{Text: "Checking tables."},
		concierge.EventToolCall{Call: concierge.ToolCallBlock{ID: "a", Name: "tablesByCapacity", Arguments: json.RawMessage(`{"capacity":8}`)}},
		concierge.EventToolCall{Call: concierge.ToolCallBlock{ID: "b", Name: "isOpenNow", Arguments: json.RawMessage(`{}`)}},
		concierge.EventToolResult{Result: concierge.ToolResultMessage{ToolCallID: "a", ToolName: "tablesByCapacity", Content: `{"5":{"capacity":8}}`}},
		concierge.EventToolResult{Result: concierge.ToolResultMessage{ToolCallID: "b", ToolName: "isOpenNow", Err: concierge.Errorf(concierge.KindEndpointUnavailable, "timed out")}},
		concierge.EventThinking{Turn: 2},
		concierge.EventFinal{Answer: "Table 5 seats eight."},
	)

	blocks := bt.Blocks(m)
	require.Len(t, blocks, 6)
	assert.IsType(t, &bt.NoteBlock{}, blocks[0])
	assert.IsType(t, &bt.ToolCallBlock{}, blocks[1])
	assert.IsType(t, &bt.ToolCallBlock{}, blocks[2])
	assert.IsType(t, &bt.ToolResultBlock{}, blocks[3])
	assert.IsType(t, &bt.ToolResultBlock{}, blocks[4])
	assert.IsType(t, &bt.AnswerBlock{}, blocks[5])

	content := stripANSI(bt.RenderContent(m))
	assert.Contains(t, content, "tablesByCapacity ✓")
	assert.Contains(t, content, "isOpenNow ✗")
	assert.Contains(t, content, "EndpointUnavailable")
	assert.Contains(t, content, "Table 5 seats eight.")

	// Last collapsible block is the failed result.
	assert.Equal(t, 4, bt.BlockFocus(m))
}

func TestModel_Aborted(t *testing.T) {
	t.Parallel()

	m := initModel(t, nopAsk)
	abort := concierge.Errorf(concierge.KindTurnLimitExceeded, "no final answer after 8 reasoning turns")
	m = sendEvents(t, m, concierge.EventAborted{Err: abort})
	m = updateModel(t, m, bt.DoneMsg{Outcome: concierge.Outcome{State: concierge.StateAborted, Err: abort}, Err: abort})

	assert.Contains(t, stripANSI(bt.RenderContent(m)), "TurnLimitExceeded")
	// Episode failures are shown as blocks, not in the status line.
	assert.NoError(t, m.Err())
}

func TestModel_DoneWithTransportError(t *testing.T) {
	t.Parallel()

	m := initModel(t, nopAsk)
	m = updateModel(t, m, bt.DoneMsg{Err: errors.New("terminal gone")})
	assert.EqualError(t, m.Err(), "terminal gone")
	assert.Contains(t, m.View(), "Error: terminal gone")
}

func TestModel_DoneCancelled(t *testing.T) {
	t.Parallel()

	m := initModel(t, nopAsk)
	m = updateModel(t, m, bt.DoneMsg{Err: context.Canceled})
	assert.NoError(t, m.Err())
}

func TestModel_UsageAccumulates(t *testing.T) {
	t.Parallel()

	m := initModel(t, nopAsk)
	m = updateModel(t, m, bt.DoneMsg{Outcome: concierge.Outcome{Usage: concierge.Usage{InputTokens: 100, OutputTokens: 20}}})
	m = updateModel(t, m, bt.DoneMsg{Outcome: concierge.Outcome{Usage: concierge.Usage{InputTokens: 50, OutputTokens: 10}}})
	assert.Equal(t, 180, m.Usage().Total())
	assert.Contains(t, m.View(), "180 tokens")
}

func TestModel_BlockToggle(t *testing.T) {
	t.Parallel()

	m := initModel(t, nopAsk)
	m = sendEvents(t, m,
		concierge.EventToolCall{Call: concierge.ToolCallBlock{ID: "a", Name: "menuByCategory", Arguments: json.RawMessage(`{"category":"soups"}`)}},
		concierge.EventFinal{Answer: "Soups."},
	)
	require.Equal(t, 0, bt.BlockFocus(m))
	assert.NotContains(t, stripANSI(bt.RenderContent(m)), `"category": "soups"`)

	m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Contains(t, stripANSI(bt.RenderContent(m)), `"category": "soups"`)
}

func TestModel_BlockFocusCycle(t *testing.T) {
	t.Parallel()

	m := initModel(t, nopAsk)
	m = sendEvents(t, m,
		concierge.EventText{Text: "note"},
		concierge.EventFinal{Answer: "answer"},
		concierge.EventToolCall{Call: concierge.ToolCallBlock{ID: "a", Name: "isOpenNow"}},
	)
	require.Equal(t, 2, bt.BlockFocus(m))

	m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 0, bt.BlockFocus(m))

	m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 2, bt.BlockFocus(m))
}

func TestModel_ViewportScrolls(t *testing.T) {
	t.Parallel()

	m := initModel(t, nopAsk)
	for i := range 30 {
		m = sendEvents(t, m, concierge.EventFinal{Answer: fmt.Sprintf("line-%d", i)})
	}
	assert.Contains(t, m.Viewport.View(), "line-29")

	m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyPgUp})
	assert.NotContains(t, m.Viewport.View(), "line-29")
	assert.Less(t, len(strings.Split(m.View(), "\n")), 30)
}

func TestModel_Teatest(t *testing.T) {
	t.Parallel()

	t.Run("full episode", func(t *testing.T) {
		t.Parallel()

		var gotQuery string
		ask := func(_ context.Context, query string, onEvent func(concierge.Event)) (concierge.Outcome, error) {
			gotQuery = query
			onEvent(concierge.EventThinking{Turn: 1})
			onEvent(concierge.EventToolCall{Call: concierge.ToolCallBlock{ID: "1", Name: "vegetarianItems"}})
			onEvent(concierge.EventToolResult{Result: concierge.ToolResultMessage{ToolCallID: "1", ToolName: "vegetarianItems", Content: `[{"name":"Samosa"}]`}})
			onEvent(concierge.EventThinking{Turn: 2})
			onEvent(concierge.EventFinal{Answer: "Try the Samosa."})
			return concierge.Outcome{State: concierge.StateFinal, Answer: "Try the Samosa.", Turns: 2, Usage: concierge.Usage{InputTokens: 40, OutputTokens: 2}}, nil
		}

		m := bt.New(ask, concierge.DefaultTheme(), bt.WithTitle("Spice Garden"))
		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

		tm.Type("Get vegetarian menu")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Try the Samosa.")) &&
				bytes.Contains(out, []byte("42 tokens"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		assert.False(t, final.Running())
		assert.NoError(t, final.Err())
		assert.Equal(t, "Get vegetarian menu", gotQuery)
	})

	t.Run("ctrl+c cancels a running episode", func(t *testing.T) {
		t.Parallel()

		ask := func(ctx context.Context, _ string, onEvent func(concierge.Event)) (concierge.Outcome, error) {
			onEvent(concierge.EventThinking{Turn: 1})
			<-ctx.Done()
			e := &concierge.Error{Kind: concierge.KindReasoningEngineFailure, Message: "episode cancelled", Err: ctx.Err()}
			return concierge.Outcome{State: concierge.StateAborted, Err: e}, e
		}

		m := bt.New(ask, concierge.DefaultTheme())
		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

		tm.Type("slow question")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("turn 1"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Enter to ask"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		assert.False(t, fm.(bt.Model).Running())
		assert.NoError(t, fm.(bt.Model).Err())
	})
}
