// Package jsonschema converts tool parameter lists to and from JSON Schema
// and validates arguments against them, using google/jsonschema-go.
package jsonschema

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/fwojciec/concierge"
	"github.com/google/jsonschema-go/jsonschema"
)

// For returns the object schema describing the tool's parameters.
func For(tool concierge.Tool) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(tool.Params)),
		Required:   []string{},
	}
	for _, p := range tool.Params {
		prop := &jsonschema.Schema{Type: string(p.Type), Description: p.Description}
		if p.Minimum != nil {
			m := float64(*p.Minimum)
			prop.Minimum = &m
		}
		s.Properties[p.Name] = prop
		if p.Required {
			s.Required = append(s.Required, p.Name)
		}
	}
	return s
}

// Map returns the tool's schema as a generic JSON object, the form most
// provider SDKs accept.
func Map(tool concierge.Tool) map[string]any {
	data, err := json.Marshal(For(tool))
	if err != nil {
		// Schemas built by For contain only marshalable fields.
		panic(fmt.Sprintf("jsonschema: marshal schema for %q: %v", tool.Name, err))
	}
	var m map[string]any
	_ = json.Unmarshal(data, &m)
	return m
}

// Params converts an object schema back into an ordered parameter list.
// Required parameters come first in schema order, then optional parameters
// sorted by name. Properties without a recognized scalar type are reported
// as strings.
func Params(s *jsonschema.Schema) []concierge.Param {
	if s == nil || len(s.Properties) == 0 {
		return nil
	}
	required := make(map[string]bool, len(s.Required))
	var params []concierge.Param
	for _, name := range s.Required {
		prop, ok := s.Properties[name]
		if !ok || required[name] {
			continue
		}
		required[name] = true
		params = append(params, param(name, prop, true))
	}
	var optional []string
	for name := range s.Properties {
		if !required[name] {
			optional = append(optional, name)
		}
	}
	sort.Strings(optional)
	for _, name := range optional {
		params = append(params, param(name, s.Properties[name], false))
	}
	return params
}

func param(name string, prop *jsonschema.Schema, required bool) concierge.Param {
	p := concierge.Param{Name: name, Required: required, Type: concierge.ParamString}
	if prop == nil {
		return p
	}
	p.Description = prop.Description
	typ := prop.Type
	if typ == "" && len(prop.Types) > 0 {
		typ = prop.Types[0]
	}
	switch concierge.ParamType(typ) {
	case concierge.ParamInteger, concierge.ParamNumber, concierge.ParamBoolean:
		p.Type = concierge.ParamType(typ)
	}
	if prop.Minimum != nil {
		m := int(*prop.Minimum)
		p.Minimum = &m
	}
	return p
}

// Validator checks arguments against tool schemas. Resolved schemas are
// cached per tool name; Reset clears the cache after tools change.
type Validator struct {
	mu       sync.Mutex
	resolved map[string]*jsonschema.Resolved
}

// NewValidator creates an empty [Validator].
func NewValidator() *Validator {
	return &Validator{resolved: map[string]*jsonschema.Resolved{}}
}

// Validate checks raw JSON arguments against the tool's schema. Failures are
// *concierge.Error values of kind InvalidArgument.
func (v *Validator) Validate(tool concierge.Tool, args json.RawMessage) error {
	rs, err := v.resolve(tool)
	if err != nil {
		return err
	}
	instance := map[string]any{}
	if len(args) > 0 && string(args) != "null" {
		if err := json.Unmarshal(args, &instance); err != nil {
			return concierge.InvalidArgument("", "arguments must be a JSON object: %v", err)
		}
	}
	if err := rs.Validate(instance); err != nil {
		return &concierge.Error{Kind: concierge.KindInvalidArgument, Field: fieldOf(err), Message: err.Error(), Err: err}
	}
	return nil
}

var (
	propertyPath = regexp.MustCompile(`/properties/([^/:\s]+)`)
	namedProps   = regexp.MustCompile(`(?:missing properties:|additional properties) \["([^"]+)"`)
)

// fieldOf names the argument a validation error points at: the innermost
// property schema on the error's path, or the first missing or unexpected
// property.
func fieldOf(err error) string {
	msg := err.Error()
	if m := propertyPath.FindAllStringSubmatch(msg, -1); len(m) > 0 {
		return m[len(m)-1][1]
	}
	if m := namedProps.FindStringSubmatch(msg); m != nil {
		return m[1]
	}
	return ""
}

// Reset drops all cached schemas.
func (v *Validator) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resolved = map[string]*jsonschema.Resolved{}
}

func (v *Validator) resolve(tool concierge.Tool) (*jsonschema.Resolved, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if rs, ok := v.resolved[tool.Name]; ok {
		return rs, nil
	}
	rs, err := For(tool).Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: resolve %q: %w", tool.Name, err)
	}
	v.resolved[tool.Name] = rs
	return rs, nil
}
