// Package catalog publishes restaurant queries as named, typed tools.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/fwojciec/concierge"
	"github.com/fwojciec/concierge/restaurant"
)

// Interface compliance checks.
var (
	_ concierge.ToolInvoker = (*Catalog)(nil)
	_ concierge.ToolSource  = (*Catalog)(nil)
)

type handler func(ctx context.Context, args concierge.Arguments) (any, error)

type entry struct {
	tool concierge.Tool
	run  handler
}

// Catalog is a fixed set of tools over one restaurant store. The set and its
// schemas do not change after New returns.
type Catalog struct {
	store   *restaurant.Store
	booking bool
	logger  *slog.Logger

	entries []entry
	index   map[string]int
}

// Option configures a [Catalog].
type Option func(*Catalog)

// WithBooking publishes the bookTable tool. Default is off, which keeps the
// catalog read-only.
func WithBooking(enabled bool) Option {
	return func(c *Catalog) { c.booking = enabled }
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) { c.logger = l }
}

// New builds the catalog for store.
func New(store *restaurant.Store, opts ...Option) *Catalog {
	c := &Catalog{store: store, logger: slog.Default()}
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.With("component", "catalog")
	c.entries = c.build()
	c.index = make(map[string]int, len(c.entries))
	for i, e := range c.entries {
		if _, dup := c.index[e.tool.Name]; dup {
			panic(fmt.Sprintf("catalog: duplicate tool %q", e.tool.Name))
		}
		c.index[e.tool.Name] = i
	}
	return c
}

// List returns the tool descriptors in publication order.
func (c *Catalog) List() []concierge.Tool {
	tools := make([]concierge.Tool, len(c.entries))
	for i, e := range c.entries {
		tools[i] = cloneTool(e.tool)
	}
	return tools
}

// Tools implements [concierge.ToolSource].
func (c *Catalog) Tools(context.Context) ([]concierge.Tool, error) {
	return c.List(), nil
}

// Invoke runs the named tool. Unknown names fail with UnknownTool, schema
// mismatches with InvalidArgument, and failures inside the tool (including
// panics) with ToolExecutionError.
func (c *Catalog) Invoke(ctx context.Context, name string, raw json.RawMessage) (json.RawMessage, error) {
	i, ok := c.index[name]
	if !ok {
		return nil, concierge.Errorf(concierge.KindUnknownTool, "no tool named %q", name)
	}
	e := c.entries[i]
	args, err := e.tool.Bind(raw)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	v, err := c.run(ctx, e, args)
	c.logger.Debug("tool invoked", "tool", name, "elapsed", time.Since(start), "error", err)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, concierge.Errorf(concierge.KindToolExecution, "encode result: %v", err)
	}
	return out, nil
}

func (c *Catalog) run(ctx context.Context, e entry, args concierge.Arguments) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("tool panicked", "tool", e.tool.Name, "panic", r, "stack", string(debug.Stack()))
			v = nil
			err = concierge.Errorf(concierge.KindToolExecution, "%s failed: %v", e.tool.Name, r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, concierge.Errorf(concierge.KindToolExecution, "%s: %v", e.tool.Name, err)
	}
	v, err = e.run(ctx, args)
	if err != nil {
		return nil, classify(e.tool.Name, err)
	}
	return v, nil
}

// classify keeps argument errors raised by the store and reports everything
// else as an execution failure.
func classify(tool string, err error) error {
	if ce, ok := concierge.AsError(err); ok && ce.Kind == concierge.KindInvalidArgument {
		return ce
	}
	return &concierge.Error{Kind: concierge.KindToolExecution, Message: fmt.Sprintf("%s: %v", tool, err), Err: err}
}

func cloneTool(t concierge.Tool) concierge.Tool {
	t.Params = append([]concierge.Param(nil), t.Params...)
	return t
}
