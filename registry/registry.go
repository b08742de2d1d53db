// Package registry merges the tool catalogs of several endpoints into one
// view and routes invocations to the endpoint that owns each tool.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/concierge"
	"github.com/fwojciec/concierge/jsonschema"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// Endpoint is one remote tool catalog.
type Endpoint interface {
	Name() string
	ListTools(ctx context.Context) ([]concierge.Tool, error)
	CallTool(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error)
}

// Warning records a non-fatal discovery problem.
type Warning struct {
	Endpoint string
	Tool     string // empty for endpoint-level warnings
	Message  string
}

func (w Warning) String() string {
	if w.Tool == "" {
		return fmt.Sprintf("%s: %s", w.Endpoint, w.Message)
	}
	return fmt.Sprintf("%s: %s: %s", w.Endpoint, w.Tool, w.Message)
}

type route struct {
	tool     concierge.Tool
	endpoint Endpoint
}

type snapshot struct {
	tools     []concierge.Tool
	routes    map[string]route
	warnings  []Warning
	validator *jsonschema.Validator
}

// Registry is safe for concurrent use. Discovery runs at most once unless
// Refresh is called; concurrent first users wait for the same discovery.
type Registry struct {
	endpoints   []Endpoint
	filters     map[string][]string
	toolTimeout time.Duration
	logger      *slog.Logger

	discoverMu sync.Mutex // held for the whole of a discovery

	mu   sync.RWMutex
	snap *snapshot
}

var _ concierge.ToolInvoker = (*Registry)(nil)
var _ concierge.ToolSource = (*Registry)(nil)

// Option configures a [Registry].
type Option func(*Registry)

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithToolTimeout bounds each remote invocation. Zero disables the bound.
func WithToolTimeout(d time.Duration) Option {
	return func(r *Registry) { r.toolTimeout = d }
}

// WithFilter restricts the tools taken from the named endpoint to those
// matching at least one of the glob patterns.
func WithFilter(endpoint string, patterns ...string) Option {
	return func(r *Registry) { r.filters[endpoint] = patterns }
}

// New creates a registry over endpoints. Order matters: when two endpoints
// publish the same tool name, the later one wins.
func New(endpoints []Endpoint, opts ...Option) *Registry {
	r := &Registry{
		endpoints: endpoints,
		filters:   map[string][]string{},
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	r.logger = r.logger.With("component", "registry")
	return r
}

// ValidatePattern reports whether a tool filter pattern is well formed.
func ValidatePattern(pattern string) error {
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid tool pattern %q: %w", pattern, concierge.ErrValidation)
	}
	return nil
}

// Discover populates the registry if it has not been populated yet.
func (r *Registry) Discover(ctx context.Context) error {
	_, err := r.current(ctx)
	return err
}

// Tools returns the merged tool descriptors, discovering on first use.
func (r *Registry) Tools(ctx context.Context) ([]concierge.Tool, error) {
	snap, err := r.current(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]concierge.Tool, len(snap.tools))
	copy(out, snap.tools)
	return out, nil
}

// Warnings returns the warnings recorded by the latest discovery.
func (r *Registry) Warnings() []Warning {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.snap == nil {
		return nil
	}
	out := make([]Warning, len(r.snap.warnings))
	copy(out, r.snap.warnings)
	return out
}

// Refresh re-runs discovery and swaps the cached view. On failure the
// previous view is kept.
func (r *Registry) Refresh(ctx context.Context) error {
	r.discoverMu.Lock()
	defer r.discoverMu.Unlock()
	snap, err := r.discover(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.snap = snap
	r.mu.Unlock()
	return nil
}

// Schedule refreshes the registry on a cron schedule such as "@every 10m"
// or "0 * * * *". The returned function stops the schedule and waits for a
// running refresh to finish.
func (r *Registry) Schedule(spec string) (stop func(), err error) {
	c := cron.New()
	_, err = c.AddFunc(spec, func() {
		ctx := context.Background()
		if r.toolTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.toolTimeout)
			defer cancel()
		}
		if err := r.Refresh(ctx); err != nil {
			r.logger.Warn("scheduled refresh failed", "error", err)
			return
		}
		r.logger.Debug("registry refreshed")
	})
	if err != nil {
		return nil, fmt.Errorf("parse refresh schedule %q: %w", spec, err)
	}
	c.Start()
	return func() { <-c.Stop().Done() }, nil
}

// Invoke routes a call to the endpoint owning the tool.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	snap, err := r.current(ctx)
	if err != nil {
		return nil, err
	}
	rt, ok := snap.routes[name]
	if !ok {
		return nil, concierge.Errorf(concierge.KindUnknownTool, "tool %q not found", name)
	}
	if err := snap.validator.Validate(rt.tool, args); err != nil {
		return nil, err
	}

	callCtx := ctx
	if r.toolTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.toolTimeout)
		defer cancel()
	}
	start := time.Now()
	out, err := rt.endpoint.CallTool(callCtx, name, args)
	log := r.logger.With("tool", name, "endpoint", rt.endpoint.Name(), "elapsed", time.Since(start))
	if err != nil {
		if _, ok := concierge.AsError(err); ok {
			log.Debug("tool reported error", "error", err)
			return nil, err
		}
		log.Warn("endpoint call failed", "error", err)
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, &concierge.Error{
				Kind:    concierge.KindEndpointUnavailable,
				Message: fmt.Sprintf("%s: tool %q timed out after %s", rt.endpoint.Name(), name, r.toolTimeout),
				Err:     err,
			}
		}
		return nil, &concierge.Error{
			Kind:    concierge.KindEndpointUnavailable,
			Message: fmt.Sprintf("%s: %v", rt.endpoint.Name(), err),
			Err:     err,
		}
	}
	log.Debug("tool invoked")
	return out, nil
}

func (r *Registry) current(ctx context.Context) (*snapshot, error) {
	r.mu.RLock()
	snap := r.snap
	r.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	r.discoverMu.Lock()
	defer r.discoverMu.Unlock()
	r.mu.RLock()
	snap = r.snap
	r.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}
	snap, err := r.discover(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.snap = snap
	r.mu.Unlock()
	return snap, nil
}

type listing struct {
	tools []concierge.Tool
	err   error
}

// discover lists every endpoint concurrently and merges the results in
// configuration order. Callers hold discoverMu.
func (r *Registry) discover(ctx context.Context) (*snapshot, error) {
	if len(r.endpoints) == 0 {
		return nil, concierge.Errorf(concierge.KindEndpointUnavailable, "no endpoints configured")
	}
	results := make([]listing, len(r.endpoints))
	g, gctx := errgroup.WithContext(ctx)
	for i, ep := range r.endpoints {
		g.Go(func() error {
			tools, err := ep.ListTools(gctx)
			results[i] = listing{tools: tools, err: err}
			return nil
		})
	}
	_ = g.Wait()

	snap := &snapshot{routes: map[string]route{}, validator: jsonschema.NewValidator()}
	var order []string
	var failures []error
	for i, ep := range r.endpoints {
		res := results[i]
		if res.err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", ep.Name(), res.err))
			r.warn(snap, Warning{Endpoint: ep.Name(), Message: fmt.Sprintf("discovery failed: %v", res.err)})
			continue
		}
		for _, tool := range res.tools {
			if !r.allowed(ep.Name(), tool.Name) {
				continue
			}
			if prev, ok := snap.routes[tool.Name]; ok {
				r.warn(snap, Warning{
					Endpoint: ep.Name(),
					Tool:     tool.Name,
					Message:  fmt.Sprintf("overrides tool published by %s", prev.endpoint.Name()),
				})
			} else {
				order = append(order, tool.Name)
			}
			snap.routes[tool.Name] = route{tool: tool, endpoint: ep}
		}
	}
	if len(failures) == len(r.endpoints) {
		return nil, &concierge.Error{
			Kind:    concierge.KindEndpointUnavailable,
			Message: fmt.Sprintf("no endpoint reachable: %v", errors.Join(failures...)),
			Err:     errors.Join(failures...),
		}
	}
	snap.tools = make([]concierge.Tool, len(order))
	for i, name := range order {
		snap.tools[i] = snap.routes[name].tool
	}
	r.logger.Info("tools discovered", "tools", len(snap.tools), "endpoints", len(r.endpoints)-len(failures), "warnings", len(snap.warnings))
	return snap, nil
}

func (r *Registry) warn(snap *snapshot, w Warning) {
	snap.warnings = append(snap.warnings, w)
	r.logger.Warn("discovery warning", "endpoint", w.Endpoint, "tool", w.Tool, "message", w.Message)
}

func (r *Registry) allowed(endpoint, tool string) bool {
	patterns, ok := r.filters[endpoint]
	if !ok {
		return true
	}
	for _, p := range patterns {
		if matched, _ := doublestar.Match(p, tool); matched {
			return true
		}
	}
	return false
}
