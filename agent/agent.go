// Package agent runs reasoning episodes: it alternates between asking an
// Engine for a decision and dispatching the requested tool calls until the
// engine answers or a limit is hit.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/concierge"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Loop orchestrates episodes between an Engine and a ToolInvoker. A Loop
// holds no per-episode state and may run many episodes concurrently.
type Loop struct {
	engine  concierge.Engine
	invoker concierge.ToolInvoker

	maxTurns       int
	episodeTimeout time.Duration
	toolTimeout    time.Duration
	maxParallel    int
	maxResultBytes int
	systemPrompt   string
	model          string
	logger         *slog.Logger
	newID          func() string
}

// Option configures a [Loop].
type Option func(*Loop)

// WithMaxTurns sets the maximum number of engine decisions per episode.
func WithMaxTurns(n int) Option {
	return func(l *Loop) { l.maxTurns = n }
}

// WithEpisodeTimeout bounds a whole episode. Zero disables the bound.
func WithEpisodeTimeout(d time.Duration) Option {
	return func(l *Loop) { l.episodeTimeout = d }
}

// WithToolTimeout bounds each tool call. Zero disables the bound.
func WithToolTimeout(d time.Duration) Option {
	return func(l *Loop) { l.toolTimeout = d }
}

// WithMaxParallel caps concurrently running tool calls of one batch.
// Zero means no cap.
func WithMaxParallel(n int) Option {
	return func(l *Loop) { l.maxParallel = n }
}

// WithMaxResultBytes sets the truncation budget for tool results.
func WithMaxResultBytes(n int) Option {
	return func(l *Loop) { l.maxResultBytes = n }
}

// WithSystemPrompt sets the system prompt used by Ask.
func WithSystemPrompt(p string) Option {
	return func(l *Loop) { l.systemPrompt = p }
}

// WithModel sets the default model ID sent to the engine. Empty string means
// the engine uses its default model.
func WithModel(model string) Option {
	return func(l *Loop) { l.model = model }
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// WithIDGenerator sets the generator for conversation and correlation ids.
func WithIDGenerator(fn func() string) Option {
	return func(l *Loop) { l.newID = fn }
}

// New creates a Loop.
func New(engine concierge.Engine, invoker concierge.ToolInvoker, opts ...Option) *Loop {
	l := &Loop{
		engine:         engine,
		invoker:        invoker,
		maxTurns:       concierge.DefaultMaxTurns,
		episodeTimeout: concierge.DefaultEpisodeTimeout,
		toolTimeout:    concierge.DefaultToolTimeout,
		maxParallel:    concierge.DefaultMaxParallel,
		maxResultBytes: DefaultMaxResultBytes,
		systemPrompt:   DefaultSystemPrompt,
		logger:         slog.Default(),
		newID:          uuid.NewString,
	}
	for _, o := range opts {
		o(l)
	}
	if l.maxTurns <= 0 {
		l.maxTurns = concierge.DefaultMaxTurns
	}
	l.logger = l.logger.With("component", "agent")
	return l
}

// RunOption configures a single Run invocation.
type RunOption func(*runConfig)

type runConfig struct {
	onEvent func(concierge.Event)
	model   string
}

func (c *runConfig) emit(e concierge.Event) {
	if c.onEvent != nil {
		c.onEvent(e)
	}
}

// WithEventHandler sets a callback that receives progress events during the
// run. Events for one episode are delivered sequentially.
func WithEventHandler(h func(concierge.Event)) RunOption {
	return func(c *runConfig) { c.onEvent = h }
}

// WithRunModel overrides the model ID for this run.
func WithRunModel(model string) RunOption {
	return func(c *runConfig) { c.model = model }
}

// Ask runs an episode for a single utterance, taking the tool list from
// source.
func (l *Loop) Ask(ctx context.Context, source concierge.ToolSource, query string, opts ...RunOption) (*concierge.Conversation, concierge.Outcome, error) {
	conv := concierge.NewConversation(l.newID(), l.systemPrompt, query)
	tools, err := source.Tools(ctx)
	if err != nil {
		e := concierge.Classify(err, concierge.KindEndpointUnavailable)
		var cfg runConfig
		for _, o := range opts {
			o(&cfg)
		}
		cfg.emit(concierge.EventAborted{Err: e})
		return conv, concierge.Outcome{State: concierge.StateAborted, Err: e}, e
	}
	out, err := l.Run(ctx, conv, tools, opts...)
	return conv, out, err
}

// Run drives conv to a terminal state. Every turn is appended to conv. The
// returned error is non-nil exactly when the outcome is aborted, and is the
// outcome's *concierge.Error.
func (l *Loop) Run(ctx context.Context, conv *concierge.Conversation, tools []concierge.Tool, opts ...RunOption) (concierge.Outcome, error) {
	cfg := runConfig{model: l.model}
	for _, o := range opts {
		o(&cfg)
	}
	if l.episodeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.episodeTimeout)
		defer cancel()
	}
	log := l.logger.With("conversation", conv.ID)
	start := time.Now()

	var out concierge.Outcome
	abort := func(e *concierge.Error) (concierge.Outcome, error) {
		out.State = concierge.StateAborted
		out.Err = e
		log.Warn("episode aborted", "kind", e.Kind, "error", e.Message, "turns", out.Turns, "elapsed", time.Since(start))
		cfg.emit(concierge.EventAborted{Err: e})
		return out, e
	}

	for turn := 1; turn <= l.maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return abort(l.interrupted(err, concierge.KindReasoningEngineFailure))
		}
		out.Turns = turn
		out.State = concierge.StateThinking
		cfg.emit(concierge.EventThinking{Turn: turn})
		log.Debug("thinking", "turn", turn)

		req := concierge.Request{
			Model:        cfg.model,
			SystemPrompt: conv.SystemPrompt,
			Messages:     conv.Messages,
			Tools:        tools,
		}
		decision, err := l.engine.Decide(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return abort(l.interrupted(ctx.Err(), concierge.KindReasoningEngineFailure))
			}
			return abort(&concierge.Error{
				Kind:    concierge.KindReasoningEngineFailure,
				Message: err.Error(),
				Err:     err,
			})
		}
		if err := concierge.ValidateDecision(decision); err != nil {
			return abort(&concierge.Error{
				Kind:    concierge.KindReasoningEngineFailure,
				Message: fmt.Sprintf("unusable decision: %v", err),
				Err:     err,
			})
		}

		switch d := decision.(type) {
		case concierge.FinalAnswer:
			out.Usage = out.Usage.Add(d.Usage)
			msg := d.Message()
			msg.Timestamp = time.Now()
			conv.Append(msg)
			out.State = concierge.StateFinal
			out.Answer = d.Text
			cfg.emit(concierge.EventFinal{Answer: d.Text})
			log.Info("episode finished", "turns", turn, "elapsed", time.Since(start))
			return out, nil

		case concierge.ToolCallBatch:
			out.Usage = out.Usage.Add(d.Usage)
			out.State = concierge.StateToolCall
			d.Calls = l.assignIDs(d.Calls)
			msg := d.Message()
			msg.Timestamp = time.Now()
			conv.Append(msg)
			if d.Text != "" {
				cfg.emit(concierge.EventText{Text: d.Text})
			}

			// Every call gets a result in the conversation, even when the
			// episode ends during dispatch.
			for _, r := range l.dispatch(ctx, d.Calls, &cfg) {
				conv.Append(r)
				cfg.emit(concierge.EventToolResult{Result: r})
			}
			if err := ctx.Err(); err != nil {
				return abort(l.interrupted(err, concierge.KindEndpointUnavailable))
			}
		}
	}
	return abort(concierge.Errorf(concierge.KindTurnLimitExceeded,
		"no final answer after %d reasoning turns", l.maxTurns))
}

func (l *Loop) interrupted(err error, kind concierge.ErrorKind) *concierge.Error {
	msg := "episode cancelled"
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "episode timed out"
		if l.episodeTimeout > 0 {
			msg = fmt.Sprintf("episode timed out after %s", l.episodeTimeout)
		}
	}
	return &concierge.Error{Kind: kind, Message: msg, Err: err}
}

func (l *Loop) assignIDs(calls []concierge.ToolCallBlock) []concierge.ToolCallBlock {
	out := make([]concierge.ToolCallBlock, len(calls))
	for i, c := range calls {
		if c.ID == "" {
			c.ID = l.newID()
		}
		out[i] = c
	}
	return out
}

// dispatch runs a batch concurrently and returns results in request order.
func (l *Loop) dispatch(ctx context.Context, calls []concierge.ToolCallBlock, cfg *runConfig) []concierge.ToolResultMessage {
	for _, c := range calls {
		cfg.emit(concierge.EventToolCall{Call: c})
	}
	results := make([]concierge.ToolResultMessage, len(calls))
	if len(calls) == 1 {
		results[0] = l.invoke(ctx, calls[0])
		return results
	}

	var g errgroup.Group
	if l.maxParallel > 0 {
		g.SetLimit(l.maxParallel)
	}
	for i, call := range calls {
		g.Go(func() error {
			results[i] = l.invoke(ctx, call)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (l *Loop) invoke(ctx context.Context, call concierge.ToolCallBlock) concierge.ToolResultMessage {
	msg := concierge.ToolResultMessage{ToolCallID: call.ID, ToolName: call.Name}
	callCtx := ctx
	if l.toolTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, l.toolTimeout)
		defer cancel()
	}

	start := time.Now()
	value, err := l.invoker.Invoke(callCtx, call.Name, call.Arguments)
	msg.Timestamp = time.Now()
	log := l.logger.With("tool", call.Name, "call_id", call.ID, "elapsed", msg.Timestamp.Sub(start))
	if err != nil {
		msg.Err = l.classifyToolError(ctx, callCtx, call.Name, err)
		log.Debug("tool failed", "kind", msg.Err.Kind, "error", msg.Err.Message)
		return msg
	}
	tr := Truncate(string(value), l.maxResultBytes)
	msg.Content = tr.Content + tr.Notice()
	msg.Truncated = tr.Truncated
	log.Debug("tool succeeded", "bytes", tr.TotalBytes, "truncated", tr.Truncated)
	return msg
}

func (l *Loop) classifyToolError(ctx, callCtx context.Context, name string, err error) *concierge.Error {
	if e, ok := concierge.AsError(err); ok && e.Kind.ToolLevel() {
		return e
	}
	if callCtx.Err() != nil && ctx.Err() == nil {
		return &concierge.Error{
			Kind:    concierge.KindEndpointUnavailable,
			Message: fmt.Sprintf("tool %q timed out after %s", name, l.toolTimeout),
			Err:     err,
		}
	}
	return &concierge.Error{Kind: concierge.KindToolExecution, Message: err.Error(), Err: err}
}
