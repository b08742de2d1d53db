package concierge

import "context"

// Engine is the reasoning capability. Given the conversation so far and the
// available tools it decides what happens next. Implementations wrap a
// specific model provider; the loop never depends on their wire shapes.
type Engine interface {
	Decide(ctx context.Context, req Request) (Decision, error)
}

// Decision is a sealed interface over the two possible engine decisions.
// The unexported marker method prevents external implementations.
type Decision interface {
	decision()
	Message() AssistantMessage
}

// ToolCallBatch asks for one or more tool calls. Calls are independent of one
// another. Text carries any interim text the engine produced alongside them.
type ToolCallBatch struct {
	Calls []ToolCallBlock
	Text  string
	Usage Usage
}

func (ToolCallBatch) decision() {}

// Message returns the assistant turn recording this decision.
func (b ToolCallBatch) Message() AssistantMessage {
	var content []ContentBlock
	if b.Text != "" {
		content = append(content, TextBlock{Text: b.Text})
	}
	for _, c := range b.Calls {
		content = append(content, c)
	}
	return AssistantMessage{Content: content, Usage: b.Usage}
}

// FinalAnswer ends the episode with answer text.
type FinalAnswer struct {
	Text  string
	Usage Usage
}

func (FinalAnswer) decision() {}

// Message returns the assistant turn recording this decision.
func (a FinalAnswer) Message() AssistantMessage {
	return AssistantMessage{Content: []ContentBlock{TextBlock{Text: a.Text}}, Usage: a.Usage}
}

// Interface compliance checks.
var (
	_ Decision = ToolCallBatch{}
	_ Decision = FinalAnswer{}
)
