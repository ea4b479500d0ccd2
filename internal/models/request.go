// ABOUTME: Validated request/response shapes for the chat and indexing endpoints
// ABOUTME: Requests are rejected at the boundary when they don't match
package models

import (
	"fmt"
	"strings"
)

// Mode selects how an answer is composed.
type Mode string

const (
	// ModeGeneral answers from the model's own knowledge, no document context.
	ModeGeneral Mode = "general"
	// ModeGrounded restricts the answer to retrieved document evidence.
	ModeGrounded Mode = "grounded"
)

// ValidationError marks a malformed request. It is surfaced to the caller as
// a 4xx-equivalent and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// ChatRequest is the logical chat request shape.
type ChatRequest struct {
	Query      string             `json:"query"`
	DocumentID string             `json:"document_id,omitempty"`
	History    []ConversationTurn `json:"history,omitempty"`
	Stream     bool               `json:"stream,omitempty"`
	TopK       int                `json:"top_k,omitempty"`

	// UserID comes from the authenticated transport, not the body.
	UserID string `json:"-"`
}

// Validate rejects malformed chat requests at the boundary.
func (r *ChatRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return &ValidationError{Field: "query", Reason: "is required"}
	}
	if r.TopK < 0 {
		return &ValidationError{Field: "top_k", Reason: "must not be negative"}
	}
	if r.TopK > 50 {
		return &ValidationError{Field: "top_k", Reason: "must be 50 or less"}
	}
	for i, turn := range r.History {
		if turn.Role != RoleUser && turn.Role != RoleAssistant {
			return &ValidationError{Field: fmt.Sprintf("history[%d].role", i), Reason: "must be user or assistant"}
		}
	}
	return nil
}

// ChatResponse is the non-streaming chat response.
type ChatResponse struct {
	Mode        Mode       `json:"mode"`
	Answer      string     `json:"answer"`
	Citations   []Citation `json:"citations"`
	ContextUsed int        `json:"context_used"`
}

// IndexRequest triggers (re)indexing of an uploaded document's extracted text.
type IndexRequest struct {
	DocumentID string `json:"document_id"`
	DerivedKey string `json:"derived_key,omitempty"`
	Filename   string `json:"filename,omitempty"`
	UserID     string `json:"-"`
}

// Validate rejects malformed index requests at the boundary.
func (r *IndexRequest) Validate() error {
	if strings.TrimSpace(r.DocumentID) == "" {
		return &ValidationError{Field: "document_id", Reason: "is required"}
	}
	return nil
}

// IndexResponse reports the outcome of an indexing run.
type IndexResponse struct {
	DocumentID string `json:"document_id"`
	Chunks     int    `json:"chunks"`
	IndexKey   string `json:"index_key"`
}

// Stream frame event names.
const (
	StreamEventMetadata = "metadata"
	StreamEventDone     = "done"
)

// StreamFrame is one frame of a streaming chat response. The first frame
// carries citation metadata; subsequent frames carry tokens; a terminal
// done frame marks stream completion.
type StreamFrame struct {
	Event     string     `json:"event,omitempty"`
	Token     string     `json:"token,omitempty"`
	Citations []Citation `json:"citations,omitempty"`
	Error     string     `json:"error,omitempty"`
}
