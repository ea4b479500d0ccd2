// ABOUTME: ConversationTurn is a single message in a per-document chat history
// ABOUTME: Turns alternate between user and assistant roles
package models

import (
	"errors"
	"time"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn represents one message in the (user, document) history.
type ConversationTurn struct {
	Role      Role      `json:"role" dynamodbav:"role"`
	Text      string    `json:"text" dynamodbav:"text"`
	Timestamp time.Time `json:"timestamp" dynamodbav:"timestamp"`
}

// NewTurn creates a turn with the current UTC timestamp.
func NewTurn(role Role, text string) (*ConversationTurn, error) {
	if role != RoleUser && role != RoleAssistant {
		return nil, errors.New("turn role must be user or assistant")
	}
	if text == "" {
		return nil, errors.New("turn text cannot be empty")
	}
	return &ConversationTurn{
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}, nil
}

// TrimHistory returns the most recent maxTurns entries of history, preserving
// order. The full history is never sent to the model.
func TrimHistory(history []ConversationTurn, maxTurns int) []ConversationTurn {
	if maxTurns <= 0 || len(history) <= maxTurns {
		return history
	}
	return history[len(history)-maxTurns:]
}
