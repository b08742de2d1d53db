// Package openai implements [concierge.Engine] on the OpenAI Chat Completions
// API using github.com/openai/openai-go.
package openai

import (
	"context"
	"fmt"

	"github.com/fwojciec/concierge"
	"github.com/fwojciec/concierge/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultModel     = "gpt-4o"
	defaultMaxTokens = 4096
)

// Interface compliance check.
var _ concierge.Engine = (*Client)(nil)

// Client implements [concierge.Engine] for the OpenAI Chat Completions API.
type Client struct {
	client openai.Client
	model  string
}

// Option configures a [Client].
type Option func(*config)

type config struct {
	model   string
	baseURL string
}

// WithModel sets the model ID. Default is gpt-4o.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithBaseURL sets the API base URL. Useful for testing with httptest and
// for OpenAI-compatible servers.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// New creates a new OpenAI [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	cfg := config{model: defaultModel}
	for _, o := range opts {
		o(&cfg)
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(1)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	return &Client{client: openai.NewClient(reqOpts...), model: cfg.model}
}

// Decide sends the conversation to the Chat Completions API and maps the
// response to a decision.
func (c *Client) Decide(ctx context.Context, req concierge.Request) (concierge.Decision, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	completion, err := c.client.Chat.Completions.New(ctx, c.buildParams(req))
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	return ParseCompletion(completion)
}

func (c *Client) buildParams(req concierge.Request) openai.ChatCompletionNewParams {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(model),
		Messages:            ConvertMessages(req.SystemPrompt, req.Messages),
		Tools:               ConvertTools(req.Tools),
		MaxCompletionTokens: openai.Int(int64(maxTokens)),
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	return params
}

// ParseCompletion maps a completion to a decision.
// Exported for testing.
func ParseCompletion(completion *openai.ChatCompletion) (concierge.Decision, error) {
	if completion == nil || len(completion.Choices) == 0 {
		return nil, fmt.Errorf("openai: response has no choices")
	}
	usage := concierge.Usage{
		InputTokens:  int(completion.Usage.PromptTokens),
		OutputTokens: int(completion.Usage.CompletionTokens),
	}
	choice := completion.Choices[0]
	msg := choice.Message
	if len(msg.ToolCalls) > 0 {
		calls := make([]concierge.ToolCallBlock, len(msg.ToolCalls))
		for i, tc := range msg.ToolCalls {
			args := tc.Function.Arguments
			if args == "" {
				args = "{}"
			}
			calls[i] = concierge.ToolCallBlock{ID: tc.ID, Name: tc.Function.Name, Arguments: []byte(args)}
		}
		return concierge.ToolCallBatch{Calls: calls, Text: msg.Content, Usage: usage}, nil
	}
	if msg.Content == "" {
		if msg.Refusal != "" {
			return nil, fmt.Errorf("openai: model refused: %s", msg.Refusal)
		}
		return nil, fmt.Errorf("openai: empty response (finish reason %q)", choice.FinishReason)
	}
	return concierge.FinalAnswer{Text: msg.Content, Usage: usage}, nil
}

// ConvertMessages converts the system prompt and concierge Messages to chat
// messages. Exported for testing.
func ConvertMessages(system string, msgs []concierge.Message) []openai.ChatCompletionMessageParamUnion {
	var result []openai.ChatCompletionMessageParamUnion
	if system != "" {
		result = append(result, openai.SystemMessage(system))
	}
	for _, msg := range msgs {
		switch m := msg.(type) {
		case concierge.UserMessage:
			result = append(result, openai.UserMessage(concierge.Text(m.Content)))
		case concierge.AssistantMessage:
			result = append(result, assistantMessage(m))
		case concierge.ToolResultMessage:
			result = append(result, openai.ToolMessage(m.Text(), m.ToolCallID))
		}
	}
	return result
}

func assistantMessage(m concierge.AssistantMessage) openai.ChatCompletionMessageParamUnion {
	calls := m.ToolCalls()
	if len(calls) == 0 {
		return openai.AssistantMessage(concierge.Text(m.Content))
	}
	param := openai.ChatCompletionAssistantMessageParam{}
	if text := concierge.Text(m.Content); text != "" {
		param.Content.OfString = openai.String(text)
	}
	for _, c := range calls {
		args := string(c.Arguments)
		if args == "" {
			args = "{}"
		}
		param.ToolCalls = append(param.ToolCalls, openai.ChatCompletionMessageToolCallParam{
			ID: c.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      c.Name,
				Arguments: args,
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &param}
}

// ConvertTools converts concierge Tools to function tool definitions.
// Exported for testing.
func ConvertTools(tools []concierge.Tool) []openai.ChatCompletionToolParam {
	if len(tools) == 0 {
		return nil
	}
	result := make([]openai.ChatCompletionToolParam, len(tools))
	for i, t := range tools {
		result[i] = openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  openai.FunctionParameters(jsonschema.Map(t)),
			},
		}
	}
	return result
}
