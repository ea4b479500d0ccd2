// ABOUTME: DocumentIndex is the persisted chunk+vector artifact for one document
// ABOUTME: DocumentRecord is the per-user document metadata row with chat history
package models

import (
	"fmt"
	"time"
)

// DocumentIndex is the durable contract between the indexing step and the
// retrieval step. It is created once after text extraction, fully replaced on
// re-index, and read-only during retrieval.
type DocumentIndex struct {
	DocumentID string    `json:"document_id"`
	ModelID    string    `json:"model_id"`
	CreatedAt  time.Time `json:"created_at"`
	Chunks     []Chunk   `json:"chunks"`
}

// Validate checks the index invariants: unique chunk IDs and a single
// embedding dimension across all chunks (never mixed model versions).
func (di *DocumentIndex) Validate() error {
	if di.DocumentID == "" {
		return fmt.Errorf("document index missing document_id")
	}
	seen := make(map[string]bool, len(di.Chunks))
	dim := -1
	for _, chunk := range di.Chunks {
		if seen[chunk.ID] {
			return fmt.Errorf("duplicate chunk id %q in document %s", chunk.ID, di.DocumentID)
		}
		seen[chunk.ID] = true

		if dim == -1 {
			dim = len(chunk.Embedding)
		} else if len(chunk.Embedding) != dim {
			return fmt.Errorf("mixed embedding dimensions in document %s: %d and %d", di.DocumentID, dim, len(chunk.Embedding))
		}
	}
	return nil
}

// Dimension returns the embedding dimension of the index, or 0 if empty.
func (di *DocumentIndex) Dimension() int {
	if len(di.Chunks) == 0 {
		return 0
	}
	return len(di.Chunks[0].Embedding)
}

// DocumentRecord is the metadata row stored per (user, document) pair.
// Conversation history is owned by this pair and trimmed to a recent window.
type DocumentRecord struct {
	UserID             string             `json:"user_id" dynamodbav:"user_id"`
	DocumentID         string             `json:"document_id" dynamodbav:"document_id"`
	Filename           string             `json:"filename" dynamodbav:"filename"`
	Summary            string             `json:"summary,omitempty" dynamodbav:"summary"`
	Questions          []string           `json:"questions,omitempty" dynamodbav:"questions"`
	ChatHistory        []ConversationTurn `json:"chat_history,omitempty" dynamodbav:"chat_history"`
	LastMessagePreview string             `json:"last_message_preview,omitempty" dynamodbav:"last_message_preview"`
	CreatedAt          time.Time          `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" dynamodbav:"updated_at"`
}
