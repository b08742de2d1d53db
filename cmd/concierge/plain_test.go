package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/concierge"
	cjson "github.com/fwojciec/concierge/json"
	"github.com/fwojciec/concierge/mock"
	"github.com/fwojciec/concierge/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scriptedAsk(answers map[string]concierge.Outcome) func(context.Context, string, func(concierge.Event)) (concierge.Outcome, error) {
	return func(_ context.Context, q string, onEvent func(concierge.Event)) (concierge.Outcome, error) {
		out, ok := answers[q]
		if !ok {
			e := concierge.Errorf(concierge.KindTurnLimitExceeded, "no final answer after 8 reasoning turns")
			return concierge.Outcome{State: concierge.StateAborted, Err: e}, e
		}
		if onEvent != nil {
			onEvent(concierge.EventToolCall{Call: concierge.ToolCallBlock{ID: "1", Name: "tablesByCapacity", Arguments: json.RawMessage(`{"capacity":4}`)}})
			onEvent(concierge.EventFinal{Answer: out.Answer})
		}
		return out, nil
	}
}

func TestRunOnce(t *testing.T) {
	t.Parallel()

	ask := scriptedAsk(map[string]concierge.Outcome{
		"Is the restaurant open?": {State: concierge.StateFinal, Answer: "Yes, until 22:00."},
	})

	var buf bytes.Buffer
	require.NoError(t, runOnce(context.Background(), &buf, ask, "Is the restaurant open?"))
	assert.Equal(t, "Yes, until 22:00.\n", buf.String())

	err := runOnce(context.Background(), &buf, ask, "unanswerable")
	require.Error(t, err)
	assert.Equal(t, concierge.KindTurnLimitExceeded, concierge.KindOf(err))
}

func TestRunPlain(t *testing.T) {
	t.Parallel()

	ask := scriptedAsk(map[string]concierge.Outcome{
		"tables for 4": {State: concierge.StateFinal, Answer: "Tables 2 and 4 are free."},
	})

	t.Run("answers until exit", func(t *testing.T) {
		t.Parallel()
		in := strings.NewReader("\n   \ntables for 4\nunanswerable\nexit\ntables for 4\n")
		var out bytes.Buffer
		require.NoError(t, runPlain(context.Background(), in, &out, ask))

		text := out.String()
		assert.Equal(t, 1, strings.Count(text, "Tables 2 and 4 are free."))
		assert.Contains(t, text, `→ tablesByCapacity {"capacity":4}`)
		assert.Contains(t, text, "Error: TurnLimitExceeded: no final answer after 8 reasoning turns")
		assert.True(t, strings.HasSuffix(text, "Goodbye!\n"))
	})

	t.Run("quit is case insensitive", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		require.NoError(t, runPlain(context.Background(), strings.NewReader("QUIT\n"), &out, ask))
		assert.Contains(t, out.String(), "Goodbye!")
	})

	t.Run("eof ends the loop", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		require.NoError(t, runPlain(context.Background(), strings.NewReader("tables for 4"), &out, ask))
		assert.Contains(t, out.String(), "Tables 2 and 4 are free.")
		assert.True(t, strings.HasSuffix(out.String(), "Goodbye!\n"))
	})

	t.Run("cancelled context ends the loop", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancelling := func(context.Context, string, func(concierge.Event)) (concierge.Outcome, error) {
			cancel()
			e := concierge.Errorf(concierge.KindReasoningEngineFailure, "episode cancelled")
			return concierge.Outcome{State: concierge.StateAborted, Err: e}, e
		}
		var out bytes.Buffer
		require.NoError(t, runPlain(ctx, strings.NewReader("a\nb\n"), &out, cancelling))
		assert.NotContains(t, out.String(), "Error:")
		assert.True(t, strings.HasSuffix(out.String(), "Goodbye!\n"))
	})
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("missing explicit file", func(t *testing.T) {
		t.Parallel()
		_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("explicit file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "concierge.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_turns: 3\nengine:\n  provider: gemini\n"), 0o600))
		cfg, err := loadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.MaxTurns)
		assert.Equal(t, "gemini", cfg.Engine.Provider)
	})
}

func TestRegistryOptions(t *testing.T) {
	t.Parallel()

	cfg := concierge.DefaultConfig()
	assert.Len(t, registryOptions(cfg, nil), 2)

	cfg.Endpoints[0].Tools = []string{"*Menu*"}
	assert.Len(t, registryOptions(cfg, nil), 3)
}

func TestDialEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("http endpoints", func(t *testing.T) {
		t.Parallel()
		eps, closeAll, err := dialEndpoints(context.Background(), concierge.DefaultConfig().Endpoints)
		require.NoError(t, err)
		defer closeAll()
		require.Len(t, eps, 1)
		assert.Equal(t, "restaurant", eps[0].Name())
	})

	t.Run("unknown transport", func(t *testing.T) {
		t.Parallel()
		_, _, err := dialEndpoints(context.Background(), []concierge.EndpointConfig{
			{Name: "a", Address: "http://localhost:1/mcp", Transport: concierge.TransportHTTP},
			{Name: "b", Address: "x", Transport: "carrier-pigeon"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `dial endpoint "b"`)
	})
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "transcript.json")
	rec := &recorder{}
	require.NoError(t, rec.save(path))
	_, err := os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)

	conv := concierge.NewConversation("c1", "sys", "Get vegetarian menu")
	rec.record(conv, concierge.Outcome{State: concierge.StateFinal, Answer: "Samosa.", Turns: 1})
	require.NoError(t, rec.save(path))

	got, err := cjson.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "c1", got.Conversation.ID)
	assert.Equal(t, "Samosa.", got.Outcome.Answer)
}

func TestTitle(t *testing.T) {
	t.Parallel()

	t.Run("tool count", func(t *testing.T) {
		t.Parallel()
		reg := registry.New([]registry.Endpoint{&mock.Endpoint{
			EndpointName: "restaurant",
			ListToolsFn: func(context.Context) ([]concierge.Tool, error) {
				return []concierge.Tool{{Name: "allMenuItems"}, {Name: "isOpenNow"}}, nil
			},
		}})
		assert.Equal(t, "concierge · 2 tools", title(context.Background(), reg, time.Second))
	})

	t.Run("hung endpoint is bounded by the timeout", func(t *testing.T) {
		t.Parallel()
		reg := registry.New([]registry.Endpoint{&mock.Endpoint{
			EndpointName: "restaurant",
			ListToolsFn: func(ctx context.Context) ([]concierge.Tool, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
		}})
		start := time.Now()
		assert.Equal(t, "concierge (offline)", title(context.Background(), reg, 20*time.Millisecond))
		assert.Less(t, time.Since(start), 5*time.Second)
	})
}
