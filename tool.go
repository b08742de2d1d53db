package concierge

import (
	"context"
	"encoding/json"
)

// ParamType is the JSON type of a tool parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
)

// Param describes one tool parameter. Minimum applies to integer and number
// parameters only.
type Param struct {
	Name        string
	Type        ParamType
	Required    bool
	Description string
	Minimum     *int
}

// Tool describes a callable operation. Params are ordered; Returns is a
// human-readable description of the result shape.
type Tool struct {
	Name        string
	Description string
	Params      []Param
	Returns     string
}

// Param returns the named parameter.
func (t Tool) Param(name string) (Param, bool) {
	for _, p := range t.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// ToolInvoker runs tools by name. The returned value is the JSON-encoded tool
// result. Failures are reported as *Error values carrying one of the
// tool-level kinds.
type ToolInvoker interface {
	Invoke(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error)
}

// ToolSource lists the tools a ToolInvoker accepts.
type ToolSource interface {
	Tools(ctx context.Context) ([]Tool, error)
}

// IntPtr returns a pointer to v, for Param.Minimum.
func IntPtr(v int) *int { return &v }
