package concierge

import (
	"encoding/json"
	"time"
)

// Message is a sealed interface representing a conversation turn.
// The unexported marker method prevents external implementations.
// Role() returns the message's role without requiring a type switch.
type Message interface {
	isMessage()
	Role() Role
}

// UserMessage represents an utterance from the user.
type UserMessage struct {
	Content   []ContentBlock
	Timestamp time.Time
}

func (UserMessage) isMessage() {}

// Role returns RoleUser.
func (UserMessage) Role() Role { return RoleUser }

// AssistantMessage represents a decision made by the reasoning engine: either
// tool calls (optionally with interim text) or the final answer text.
type AssistantMessage struct {
	Content   []ContentBlock
	Usage     Usage
	Timestamp time.Time
}

func (AssistantMessage) isMessage() {}

// Role returns RoleAssistant.
func (AssistantMessage) Role() Role { return RoleAssistant }

// ToolCalls returns the tool call blocks in request order.
func (m AssistantMessage) ToolCalls() []ToolCallBlock {
	var calls []ToolCallBlock
	for _, b := range m.Content {
		if tc, ok := b.(ToolCallBlock); ok {
			calls = append(calls, tc)
		}
	}
	return calls
}

// ToolResultMessage carries the outcome of one tool call. Exactly one of
// Content and Err is meaningful: Content holds the JSON-encoded result when
// Err is nil.
type ToolResultMessage struct {
	ToolCallID string
	ToolName   string
	Content    string
	Err        *Error
	Truncated  bool
	Timestamp  time.Time
}

func (ToolResultMessage) isMessage() {}

// Role returns RoleToolResult.
func (ToolResultMessage) Role() Role { return RoleToolResult }

// IsError reports whether the call failed.
func (m ToolResultMessage) IsError() bool { return m.Err != nil }

// Text renders the result as it is shown to the reasoning engine: the result
// itself, or {"error":{"kind":...,"message":...}} on failure.
func (m ToolResultMessage) Text() string {
	if m.Err == nil {
		return m.Content
	}
	payload := struct {
		Error struct {
			Kind    ErrorKind `json:"kind"`
			Message string    `json:"message"`
		} `json:"error"`
	}{}
	payload.Error.Kind = m.Err.Kind
	payload.Error.Message = m.Err.Message
	if m.Err.Field != "" {
		payload.Error.Message = m.Err.Field + ": " + m.Err.Message
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

// ContentBlock is a sealed interface representing a block of content.
// The unexported marker method prevents external implementations.
type ContentBlock interface {
	contentBlock()
}

// TextBlock contains text content.
type TextBlock struct {
	Text string
}

func (TextBlock) contentBlock() {}

// ToolCallBlock represents one tool call requested by the reasoning engine.
// ID correlates the call with its ToolResultMessage.
type ToolCallBlock struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

func (ToolCallBlock) contentBlock() {}

// Text joins the text blocks of a block list.
func Text(blocks []ContentBlock) string {
	var s string
	for _, b := range blocks {
		if tb, ok := b.(TextBlock); ok {
			s += tb.Text
		}
	}
	return s
}

// Interface compliance checks.
var (
	_ Message = UserMessage{}
	_ Message = AssistantMessage{}
	_ Message = ToolResultMessage{}

	_ ContentBlock = TextBlock{}
	_ ContentBlock = ToolCallBlock{}
)
