// ABOUTME: Chunk is the unit of retrieval for an indexed document
// ABOUTME: Chunk IDs are content-derived so re-chunking identical text is deterministic
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Chunk represents one bounded slice of a document's normalized text,
// together with its embedding vector.
type Chunk struct {
	ID         string    `json:"id"`
	Page       int       `json:"page,omitempty"`
	Text       string    `json:"text"`
	Embedding  []float64 `json:"embedding"`
	TokenCount int       `json:"token_count,omitempty"`
}

// NewChunkID derives a stable chunk identifier from the owning document,
// the chunk's position, and a hash of its content. Identical content at the
// same position always maps to the same ID (dedup key).
func NewChunkID(documentID string, position int, text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s_chunk_%d_%s", documentID, position, hex.EncodeToString(sum[:])[:8])
}

// EstimateTokens approximates the token count of a text as ceil(len/4).
// This is a documented approximation, not a real tokenizer.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
