package concierge_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fwojciec/concierge"
	"github.com/stretchr/testify/assert"
)

func TestMessageTypeSwitch_Exhaustive(t *testing.T) {
	t.Parallel()
	messages := []concierge.Message{
		concierge.UserMessage{Content: []concierge.ContentBlock{concierge.TextBlock{Text: "hello"}}},
		concierge.AssistantMessage{Content: []concierge.ContentBlock{concierge.TextBlock{Text: "hi"}}},
		concierge.ToolResultMessage{ToolCallID: "tc_1", ToolName: "allMenuItems"},
	}
	for _, msg := range messages {
		switch msg.(type) {
		case concierge.UserMessage:
		case concierge.AssistantMessage:
		case concierge.ToolResultMessage:
		default:
			t.Fatalf("unexpected message type: %T", msg)
		}
	}
}

func TestMessage_Role(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		msg  concierge.Message
		want concierge.Role
	}{
		{"UserMessage", concierge.UserMessage{}, concierge.RoleUser},
		{"AssistantMessage", concierge.AssistantMessage{}, concierge.RoleAssistant},
		{"ToolResultMessage", concierge.ToolResultMessage{}, concierge.RoleToolResult},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.msg.Role())
		})
	}
}

func TestAssistantMessage_ToolCalls(t *testing.T) {
	t.Parallel()
	msg := concierge.AssistantMessage{
		Content: []concierge.ContentBlock{
			concierge.TextBlock{Text: "checking"},
			concierge.ToolCallBlock{ID: "a", Name: "isOpenNow"},
			concierge.ToolCallBlock{ID: "b", Name: "availableTables"},
		},
		Timestamp: time.Now(),
	}
	calls := msg.ToolCalls()
	assert.Len(t, calls, 2)
	assert.Equal(t, "a", calls[0].ID)
	assert.Equal(t, "b", calls[1].ID)
}

func TestToolResultMessage_Text(t *testing.T) {
	t.Parallel()

	t.Run("success returns content", func(t *testing.T) {
		t.Parallel()
		msg := concierge.ToolResultMessage{ToolCallID: "tc_1", ToolName: "isOpenNow", Content: "true"}
		assert.False(t, msg.IsError())
		assert.Equal(t, "true", msg.Text())
	})

	t.Run("error returns kind and message", func(t *testing.T) {
		t.Parallel()
		msg := concierge.ToolResultMessage{
			ToolCallID: "tc_1",
			ToolName:   "tablesByCapacity",
			Err:        concierge.InvalidArgument("capacity", "must be >= 0, got -1"),
		}
		assert.True(t, msg.IsError())
		assert.JSONEq(t, `{"error":{"kind":"InvalidArgument","message":"capacity: must be >= 0, got -1"}}`, msg.Text())
	})
}

func TestText(t *testing.T) {
	t.Parallel()
	blocks := []concierge.ContentBlock{
		concierge.TextBlock{Text: "Hello, "},
		concierge.ToolCallBlock{ID: "x", Name: "y", Arguments: json.RawMessage(`{}`)},
		concierge.TextBlock{Text: "world"},
	}
	assert.Equal(t, "Hello, world", concierge.Text(blocks))
}

func TestConversation(t *testing.T) {
	t.Parallel()

	c := concierge.NewConversation("c1", "be brief", "Is it open?")
	assert.Equal(t, "Is it open?", c.Query())
	assert.Len(t, c.Messages, 1)

	before := c.UpdatedAt
	c.Append(concierge.FinalAnswer{Text: "Yes."}.Message())
	assert.Len(t, c.Messages, 2)
	assert.False(t, c.UpdatedAt.Before(before))
	assert.Equal(t, concierge.RoleAssistant, c.Messages[1].Role())
}
