package json

import (
	"fmt"
	"time"

	"github.com/fwojciec/concierge"
)

// messageDTO is the JSON representation of a Message with a type discriminator.
type messageDTO struct {
	Type       string         `json:"type"`
	Content    []contentBlock `json:"content,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	Usage      *usageDTO      `json:"usage,omitempty"`
	ToolCallID *string        `json:"tool_call_id,omitempty"`
	ToolName   *string        `json:"tool_name,omitempty"`
	Result     *string        `json:"result,omitempty"`
	Error      *errorDTO      `json:"error,omitempty"`
	Truncated  bool           `json:"truncated,omitempty"`
}

func marshalMessage(msg concierge.Message) (messageDTO, error) {
	switch m := msg.(type) {
	case concierge.UserMessage:
		blocks, err := marshalContentBlocks(m.Content)
		if err != nil {
			return messageDTO{}, err
		}
		return messageDTO{
			Type:      "user",
			Content:   blocks,
			Timestamp: m.Timestamp,
		}, nil
	case concierge.AssistantMessage:
		blocks, err := marshalContentBlocks(m.Content)
		if err != nil {
			return messageDTO{}, err
		}
		usage := marshalUsage(m.Usage)
		return messageDTO{
			Type:      "assistant",
			Content:   blocks,
			Timestamp: m.Timestamp,
			Usage:     &usage,
		}, nil
	case concierge.ToolResultMessage:
		dto := messageDTO{
			Type:       "tool_result",
			Timestamp:  m.Timestamp,
			ToolCallID: &m.ToolCallID,
			ToolName:   &m.ToolName,
			Error:      marshalError(m.Err),
			Truncated:  m.Truncated,
		}
		if m.Err == nil {
			dto.Result = &m.Content
		}
		return dto, nil
	default:
		return messageDTO{}, fmt.Errorf("unknown message type: %T", msg)
	}
}

func unmarshalMessage(dto messageDTO) (concierge.Message, error) {
	blocks, err := unmarshalContentBlocks(dto.Content)
	if err != nil {
		return nil, err
	}
	switch dto.Type {
	case "user":
		return concierge.UserMessage{
			Content:   blocks,
			Timestamp: dto.Timestamp,
		}, nil
	case "assistant":
		var usage concierge.Usage
		if dto.Usage != nil {
			usage = unmarshalUsage(*dto.Usage)
		}
		return concierge.AssistantMessage{
			Content:   blocks,
			Usage:     usage,
			Timestamp: dto.Timestamp,
		}, nil
	case "tool_result":
		var toolCallID, toolName, result string
		if dto.ToolCallID != nil {
			toolCallID = *dto.ToolCallID
		}
		if dto.ToolName != nil {
			toolName = *dto.ToolName
		}
		if dto.Result != nil {
			result = *dto.Result
		}
		return concierge.ToolResultMessage{
			ToolCallID: toolCallID,
			ToolName:   toolName,
			Content:    result,
			Err:        unmarshalError(dto.Error),
			Truncated:  dto.Truncated,
			Timestamp:  dto.Timestamp,
		}, nil
	default:
		return nil, fmt.Errorf("unknown message type: %q", dto.Type)
	}
}
