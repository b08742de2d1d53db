// Package json persists episode transcripts: the conversation of one episode
// and the outcome it ended with.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/concierge"
)

// Transcript is a conversation together with the outcome of its episode.
type Transcript struct {
	Conversation concierge.Conversation
	Outcome      concierge.Outcome
}

// envelope is the v1 wire format for a persisted transcript.
type envelope struct {
	Version      int          `json:"version"`
	ID           string       `json:"id"`
	SystemPrompt string       `json:"system_prompt"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Messages     []messageDTO `json:"messages"`
	Outcome      outcomeDTO   `json:"outcome"`
}

type outcomeDTO struct {
	State  string    `json:"state"`
	Answer string    `json:"answer,omitempty"`
	Error  *errorDTO `json:"error,omitempty"`
	Turns  int       `json:"turns"`
	Usage  usageDTO  `json:"usage"`
}

type errorDTO struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// MarshalTranscript serializes a Transcript to JSON in v1 envelope format.
func MarshalTranscript(t Transcript) ([]byte, error) {
	c := t.Conversation
	env := envelope{
		Version:      1,
		ID:           c.ID,
		SystemPrompt: c.SystemPrompt,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		Messages:     make([]messageDTO, len(c.Messages)),
		Outcome: outcomeDTO{
			State:  string(t.Outcome.State),
			Answer: t.Outcome.Answer,
			Error:  marshalError(t.Outcome.Err),
			Turns:  t.Outcome.Turns,
			Usage:  marshalUsage(t.Outcome.Usage),
		},
	}
	for i, msg := range c.Messages {
		dto, err := marshalMessage(msg)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		env.Messages[i] = dto
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalTranscript deserializes a Transcript from JSON in v1 envelope
// format.
func UnmarshalTranscript(data []byte) (Transcript, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Transcript{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return Transcript{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	msgs := make([]concierge.Message, len(env.Messages))
	for i, dto := range env.Messages {
		msg, err := unmarshalMessage(dto)
		if err != nil {
			return Transcript{}, fmt.Errorf("message %d: %w", i, err)
		}
		msgs[i] = msg
	}
	state := concierge.State(env.Outcome.State)
	switch state {
	case concierge.StateThinking, concierge.StateToolCall, concierge.StateFinal, concierge.StateAborted:
	default:
		return Transcript{}, fmt.Errorf("unknown outcome state: %q", env.Outcome.State)
	}
	return Transcript{
		Conversation: concierge.Conversation{
			ID:           env.ID,
			SystemPrompt: env.SystemPrompt,
			CreatedAt:    env.CreatedAt,
			UpdatedAt:    env.UpdatedAt,
			Messages:     msgs,
		},
		Outcome: concierge.Outcome{
			State:  state,
			Answer: env.Outcome.Answer,
			Err:    unmarshalError(env.Outcome.Error),
			Turns:  env.Outcome.Turns,
			Usage:  unmarshalUsage(env.Outcome.Usage),
		},
	}, nil
}

// Save writes a Transcript to a JSON file, creating parent directories as
// needed.
func Save(path string, t Transcript) error {
	data, err := MarshalTranscript(t)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a Transcript from a JSON file.
func Load(path string) (Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Transcript{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalTranscript(data)
}

func marshalError(e *concierge.Error) *errorDTO {
	if e == nil {
		return nil
	}
	return &errorDTO{Kind: string(e.Kind), Message: e.Message, Field: e.Field}
}

func unmarshalError(dto *errorDTO) *concierge.Error {
	if dto == nil {
		return nil
	}
	return &concierge.Error{Kind: concierge.ErrorKind(dto.Kind), Message: dto.Message, Field: dto.Field}
}
