package mock_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fwojciec/concierge"
	"github.com/fwojciec/concierge/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Decide(t *testing.T) {
	t.Parallel()

	t.Run("delegates to DecideFn", func(t *testing.T) {
		t.Parallel()
		e := mock.Engine{
			DecideFn: func(ctx context.Context, req concierge.Request) (concierge.Decision, error) {
				return concierge.FinalAnswer{Text: req.Model}, nil
			},
		}
		got, err := e.Decide(context.Background(), concierge.Request{Model: "m"})
		require.NoError(t, err)
		assert.Equal(t, concierge.FinalAnswer{Text: "m"}, got)
	})

	t.Run("panics when DecideFn not set", func(t *testing.T) {
		t.Parallel()
		e := mock.Engine{}
		assert.Panics(t, func() {
			_, _ = e.Decide(context.Background(), concierge.Request{})
		})
	})
}

func TestScript(t *testing.T) {
	t.Parallel()

	e := mock.Script(
		concierge.ToolCallBatch{Calls: []concierge.ToolCallBlock{{ID: "1", Name: "isOpenNow"}}},
		concierge.FinalAnswer{Text: "yes"},
	)
	ctx := context.Background()

	first, err := e.Decide(ctx, concierge.Request{})
	require.NoError(t, err)
	assert.IsType(t, concierge.ToolCallBatch{}, first)

	second, err := e.Decide(ctx, concierge.Request{})
	require.NoError(t, err)
	assert.Equal(t, concierge.FinalAnswer{Text: "yes"}, second)

	_, err = e.Decide(ctx, concierge.Request{})
	assert.Error(t, err)
}

func TestToolInvoker_Invoke(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("boom")
	i := mock.ToolInvoker{
		InvokeFn: func(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
			if name == "fail" {
				return nil, wantErr
			}
			return args, nil
		},
	}
	out, err := i.Invoke(context.Background(), "echo", json.RawMessage(`{"a":1}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(out))

	_, err = i.Invoke(context.Background(), "fail", nil)
	assert.ErrorIs(t, err, wantErr)
}

func TestEndpoint(t *testing.T) {
	t.Parallel()

	e := mock.Endpoint{
		EndpointName: "a",
		ListToolsFn: func(ctx context.Context) ([]concierge.Tool, error) {
			return []concierge.Tool{{Name: "x"}}, nil
		},
		CallToolFn: func(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
			return json.RawMessage(`"` + name + `"`), nil
		},
	}
	assert.Equal(t, "a", e.Name())
	tools, err := e.ListTools(context.Background())
	require.NoError(t, err)
	assert.Len(t, tools, 1)
	out, err := e.CallTool(context.Background(), "x", nil)
	require.NoError(t, err)
	assert.Equal(t, `"x"`, string(out))
}
