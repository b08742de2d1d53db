package mock

import (
	"context"
	"encoding/json"

	"github.com/fwojciec/concierge"
	"github.com/fwojciec/concierge/registry"
)

// Interface compliance checks.
var (
	_ concierge.ToolInvoker = (*ToolInvoker)(nil)
	_ concierge.ToolSource  = (*ToolSource)(nil)
	_ registry.Endpoint     = (*Endpoint)(nil)
)

// ToolInvoker is a test double for concierge.ToolInvoker.
// Set InvokeFn before calling Invoke.
type ToolInvoker struct {
	InvokeFn func(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error)
}

// Invoke delegates to InvokeFn.
func (i *ToolInvoker) Invoke(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	return i.InvokeFn(ctx, name, args)
}

// ToolSource is a test double for concierge.ToolSource.
// Set ToolsFn before calling Tools.
type ToolSource struct {
	ToolsFn func(ctx context.Context) ([]concierge.Tool, error)
}

// Tools delegates to ToolsFn.
func (s *ToolSource) Tools(ctx context.Context) ([]concierge.Tool, error) {
	return s.ToolsFn(ctx)
}

// Endpoint is a test double for registry.Endpoint.
// Set the function fields for the methods you need.
type Endpoint struct {
	EndpointName string
	ListToolsFn  func(ctx context.Context) ([]concierge.Tool, error)
	CallToolFn   func(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error)
}

// Name returns EndpointName.
func (e *Endpoint) Name() string {
	return e.EndpointName
}

// ListTools delegates to ListToolsFn.
func (e *Endpoint) ListTools(ctx context.Context) ([]concierge.Tool, error) {
	return e.ListToolsFn(ctx)
}

// CallTool delegates to CallToolFn.
func (e *Endpoint) CallTool(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	return e.CallToolFn(ctx, name, args)
}
