package concierge

import "time"

// Conversation is the transcript of one episode. Messages are only ever
// appended; the conversation is owned by the loop running the episode.
type Conversation struct {
	ID           string
	SystemPrompt string
	Messages     []Message
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewConversation starts a conversation from a single user utterance.
func NewConversation(id, systemPrompt, query string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:           id,
		SystemPrompt: systemPrompt,
		Messages: []Message{UserMessage{
			Content:   []ContentBlock{TextBlock{Text: query}},
			Timestamp: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds messages to the end of the transcript.
func (c *Conversation) Append(msgs ...Message) {
	c.Messages = append(c.Messages, msgs...)
	c.UpdatedAt = time.Now()
}

// Query returns the text of the first user message.
func (c *Conversation) Query() string {
	for _, m := range c.Messages {
		if um, ok := m.(UserMessage); ok {
			return Text(um.Content)
		}
	}
	return ""
}
