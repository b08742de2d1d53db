package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fwojciec/concierge"
	"github.com/fwojciec/concierge/jsonschema"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ concierge.Engine = (*Client)(nil)

// Client implements [concierge.Engine] for the Google Gemini API.
type Client struct {
	client  *genai.Client
	model   string
	baseURL string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is gemini-2.5-flash.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	c := &Client{model: defaultModel}
	for _, o := range opts {
		o(c)
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	gc, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c.client = gc
	return c, nil
}

// Decide sends the conversation to the Gemini API and maps the response to
// a decision.
func (c *Client) Decide(ctx context.Context, req concierge.Request) (concierge.Decision, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	model := req.Model
	if model == "" {
		model = c.model
	}
	resp, err := c.client.Models.GenerateContent(ctx, model, ConvertMessages(req.Messages), buildConfig(req))
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return ParseResponse(resp)
}

func buildConfig(req concierge.Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		Tools:           ConvertTools(req.Tools),
	}

	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	return config
}

// ParseResponse maps a model response to a decision: function calls become a
// [concierge.ToolCallBatch], plain text a [concierge.FinalAnswer].
// Exported for testing.
func ParseResponse(resp *genai.GenerateContentResponse) (concierge.Decision, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		reason := "no candidates"
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			reason = "prompt blocked: " + string(resp.PromptFeedback.BlockReason)
		}
		return nil, fmt.Errorf("gemini: empty response (%s)", reason)
	}
	var usage concierge.Usage
	if u := resp.UsageMetadata; u != nil {
		usage = concierge.Usage{InputTokens: int(u.PromptTokenCount), OutputTokens: int(u.CandidatesTokenCount)}
	}

	var text string
	var calls []concierge.ToolCallBlock
	for _, p := range resp.Candidates[0].Content.Parts {
		switch {
		case p.FunctionCall != nil:
			args, err := json.Marshal(p.FunctionCall.Args)
			if err != nil {
				return nil, fmt.Errorf("gemini: encode arguments of %q: %w", p.FunctionCall.Name, err)
			}
			calls = append(calls, concierge.ToolCallBlock{
				ID:        p.FunctionCall.ID,
				Name:      p.FunctionCall.Name,
				Arguments: args,
			})
		case p.Thought:
			// Thought summaries are not part of the answer.
		default:
			text += p.Text
		}
	}
	if len(calls) > 0 {
		return concierge.ToolCallBatch{Calls: calls, Text: text, Usage: usage}, nil
	}
	if text == "" {
		return nil, fmt.Errorf("gemini: response has neither text nor function calls (finish reason %s)", resp.Candidates[0].FinishReason)
	}
	return concierge.FinalAnswer{Text: text, Usage: usage}, nil
}

// ConvertMessages converts concierge Messages to genai Contents.
// Exported for testing.
func ConvertMessages(msgs []concierge.Message) []*genai.Content {
	var result []*genai.Content
	for _, msg := range msgs {
		switch m := msg.(type) {
		case concierge.UserMessage:
			result = append(result, &genai.Content{
				Role:  "user",
				Parts: convertParts(m.Content),
			})
		case concierge.AssistantMessage:
			result = append(result, &genai.Content{
				Role:  "model",
				Parts: convertParts(m.Content),
			})
		case concierge.ToolResultMessage:
			var responseMap map[string]any
			if m.IsError() {
				responseMap = map[string]any{"error": map[string]any{
					"kind":    string(m.Err.Kind),
					"message": m.Err.Message,
				}}
			} else {
				responseMap = map[string]any{"output": decodeOutput(m.Content)}
			}
			result = append(result, &genai.Content{
				Role: "user",
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						ID:       m.ToolCallID,
						Name:     m.ToolName,
						Response: responseMap,
					},
				}},
			})
		}
	}
	return result
}

// decodeOutput returns the JSON value of a tool result, or the raw text when
// it is not JSON (e.g. after truncation).
func decodeOutput(content string) any {
	var v any
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return content
	}
	return v
}

func convertParts(blocks []concierge.ContentBlock) []*genai.Part {
	var parts []*genai.Part
	for _, b := range blocks {
		switch bl := b.(type) {
		case concierge.TextBlock:
			parts = append(parts, &genai.Part{Text: bl.Text})
		case concierge.ToolCallBlock:
			// Arguments is json.RawMessage, always valid JSON from domain types.
			var args map[string]any
			_ = json.Unmarshal(bl.Arguments, &args)
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{
					ID:   bl.ID,
					Name: bl.Name,
					Args: args,
				},
			})
		}
	}
	return parts
}

// ConvertTools converts concierge Tools to genai Tools.
// Exported for testing.
func ConvertTools(tools []concierge.Tool) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		decls[i] = &genai.FunctionDeclaration{
			Name:                 t.Name,
			Description:          t.Description,
			ParametersJsonSchema: jsonschema.Map(t),
		}
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}
