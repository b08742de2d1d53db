package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/concierge"
	"github.com/fwojciec/concierge/jsonschema"
	gschema "github.com/google/jsonschema-go/jsonschema"
	mcpschema "github.com/viant/mcp-protocol/schema"
)

const returnsSep = "\nReturns: "

// ToolToMCP converts a tool descriptor to its wire form.
func ToolToMCP(t concierge.Tool) mcpschema.Tool {
	props := mcpschema.ToolInputSchemaProperties{}
	for name, prop := range jsonschema.For(t).Properties {
		data, _ := json.Marshal(prop)
		var m map[string]interface{}
		_ = json.Unmarshal(data, &m)
		props[name] = m
	}
	var required []string
	for _, p := range t.Params {
		if p.Required {
			required = append(required, p.Name)
		}
	}
	desc := t.Description
	if t.Returns != "" {
		desc += returnsSep + t.Returns
	}
	return mcpschema.Tool{
		Name:        t.Name,
		Description: &desc,
		InputSchema: mcpschema.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   required,
		},
	}
}

// ToolFromMCP converts a wire tool back to a descriptor. Parameters keep the
// order of the schema's required list, then optional names sorted.
func ToolFromMCP(t mcpschema.Tool) (concierge.Tool, error) {
	out := concierge.Tool{Name: t.Name}
	if t.Description != nil {
		out.Description, out.Returns, _ = strings.Cut(*t.Description, returnsSep)
	}
	data, err := json.Marshal(t.InputSchema)
	if err != nil {
		return concierge.Tool{}, fmt.Errorf("tool %q: marshal input schema: %w", t.Name, err)
	}
	var s gschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return concierge.Tool{}, fmt.Errorf("tool %q: parse input schema: %w", t.Name, err)
	}
	out.Params = jsonschema.Params(&s)
	return out, nil
}

type errorPayload struct {
	Kind    concierge.ErrorKind `json:"kind"`
	Message string              `json:"message"`
	Field   string              `json:"field,omitempty"`
}

// ResultToMCP wraps a JSON tool result as {"result": value}.
func ResultToMCP(value json.RawMessage) *mcpschema.CallToolResult {
	var v interface{}
	if err := json.Unmarshal(value, &v); err != nil {
		v = string(value)
	}
	return &mcpschema.CallToolResult{
		Content:           []mcpschema.CallToolResultContentElem{textContent(string(value))},
		StructuredContent: map[string]interface{}{"result": v},
	}
}

// ErrorToMCP reports a failed invocation as {"error": {kind, message}} with
// the error flag set.
func ErrorToMCP(err error) *mcpschema.CallToolResult {
	e := concierge.Classify(err, concierge.KindToolExecution)
	isErr := true
	return &mcpschema.CallToolResult{
		IsError: &isErr,
		Content: []mcpschema.CallToolResultContentElem{textContent(e.Error())},
		StructuredContent: map[string]interface{}{
			"error": errorPayload{Kind: e.Kind, Message: e.Message, Field: e.Field},
		},
	}
}

// ResultFromMCP unwraps a call result into the JSON value or a classified
// error. Results from servers that do not send structured content fall back
// to the first text block, which is used verbatim when it is valid JSON and
// quoted as a JSON string otherwise.
func ResultFromMCP(res *mcpschema.CallToolResult) (json.RawMessage, error) {
	if res == nil {
		return nil, concierge.Errorf(concierge.KindToolExecution, "empty tool result")
	}
	if res.IsError != nil && *res.IsError {
		return nil, decodeError(res)
	}
	if v, ok := res.StructuredContent["result"]; ok {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, concierge.Errorf(concierge.KindToolExecution, "encode structured result: %v", err)
		}
		return data, nil
	}
	text := firstText(res)
	if json.Valid([]byte(text)) {
		return json.RawMessage(text), nil
	}
	data, _ := json.Marshal(text)
	return data, nil
}

func decodeError(res *mcpschema.CallToolResult) error {
	if raw, ok := res.StructuredContent["error"]; ok {
		data, _ := json.Marshal(raw)
		var p errorPayload
		if err := json.Unmarshal(data, &p); err == nil && p.Kind.ToolLevel() {
			return &concierge.Error{Kind: p.Kind, Message: p.Message, Field: p.Field}
		}
	}
	msg := firstText(res)
	if msg == "" {
		msg = "tool returned error without content"
	}
	return concierge.Errorf(concierge.KindToolExecution, "%s", msg)
}

func textContent(text string) map[string]interface{} {
	return map[string]interface{}{"type": "text", "text": text}
}

// firstText returns the first non-empty text block. Decoded results carry
// content as generic maps; results built in-process may hold typed blocks.
func firstText(res *mcpschema.CallToolResult) string {
	for _, c := range res.Content {
		var text string
		switch v := c.(type) {
		case map[string]interface{}:
			if v["type"] == "text" {
				text, _ = v["text"].(string)
			}
		case mcpschema.TextContent:
			text = v.Text
		case *mcpschema.TextContent:
			if v != nil {
				text = v.Text
			}
		}
		if text != "" {
			return text
		}
	}
	return ""
}
