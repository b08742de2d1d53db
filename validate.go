package concierge

import "fmt"

// ValidateMessage checks that a message's content blocks are valid for its role.
func ValidateMessage(msg Message) error {
	switch m := msg.(type) {
	case UserMessage:
		return validateBlocks(m.Content, m.Role(), allowText)
	case AssistantMessage:
		return validateBlocks(m.Content, m.Role(), allowText|allowToolCall)
	case ToolResultMessage:
		if m.ToolCallID == "" {
			return fmt.Errorf("tool result for %q has no call id: %w", m.ToolName, ErrValidation)
		}
		return nil
	default:
		return fmt.Errorf("unknown message type %T: %w", msg, ErrValidation)
	}
}

// ValidateDecision checks that a decision returned by an engine can be acted on.
func ValidateDecision(d Decision) error {
	switch v := d.(type) {
	case FinalAnswer:
		return nil
	case ToolCallBatch:
		if len(v.Calls) == 0 {
			return fmt.Errorf("tool call batch is empty: %w", ErrValidation)
		}
		for i, c := range v.Calls {
			if c.Name == "" {
				return fmt.Errorf("tool call %d has no name: %w", i, ErrValidation)
			}
		}
		return nil
	case nil:
		return fmt.Errorf("no decision: %w", ErrValidation)
	default:
		return fmt.Errorf("unknown decision type %T: %w", d, ErrValidation)
	}
}

type blockAllow uint8

const (
	allowText blockAllow = 1 << iota
	allowToolCall
)

func validateBlocks(blocks []ContentBlock, role Role, allowed blockAllow) error {
	for _, b := range blocks {
		switch b.(type) {
		case TextBlock:
			if allowed&allowText == 0 {
				return fmt.Errorf("TextBlock not allowed in %s message: %w", role, ErrValidation)
			}
		case ToolCallBlock:
			if allowed&allowToolCall == 0 {
				return fmt.Errorf("ToolCallBlock not allowed in %s message: %w", role, ErrValidation)
			}
		default:
			return fmt.Errorf("unknown content block type %T in %s message: %w", b, role, ErrValidation)
		}
	}
	return nil
}
