package concierge

// Event is a sealed interface representing progress within an episode.
// Events are informational; the Outcome returned by the loop is
// authoritative.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventThinking signals the start of a reasoning turn.
type EventThinking struct {
	Turn int
}

func (EventThinking) event() {}

// EventText carries interim text emitted alongside tool calls.
type EventText struct {
	Text string
}

func (EventText) event() {}

// EventToolCall signals that a tool call is being dispatched.
type EventToolCall struct {
	Call ToolCallBlock
}

func (EventToolCall) event() {}

// EventToolResult carries a tool result as it is appended to the conversation.
type EventToolResult struct {
	Result ToolResultMessage
}

func (EventToolResult) event() {}

// EventFinal carries the final answer.
type EventFinal struct {
	Answer string
}

func (EventFinal) event() {}

// EventAborted carries the terminal failure of an episode.
type EventAborted struct {
	Err *Error
}

func (EventAborted) event() {}

// Interface compliance checks.
var (
	_ Event = EventThinking{}
	_ Event = EventText{}
	_ Event = EventToolCall{}
	_ Event = EventToolResult{}
	_ Event = EventFinal{}
	_ Event = EventAborted{}
)
