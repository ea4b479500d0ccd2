// ABOUTME: Tests for chunk ID derivation and token estimation
// ABOUTME: Verifies determinism of the dedup key
package models

import (
	"strings"
	"testing"
)

func TestNewChunkID_Deterministic(t *testing.T) {
	a := NewChunkID("doc1", 3, "Microsoft was founded in 1975.")
	b := NewChunkID("doc1", 3, "Microsoft was founded in 1975.")
	if a != b {
		t.Errorf("identical inputs produced different IDs: %q vs %q", a, b)
	}
}

func TestNewChunkID_VariesWithInputs(t *testing.T) {
	base := NewChunkID("doc1", 0, "some text")

	tests := []struct {
		name string
		id   string
	}{
		{"different document", NewChunkID("doc2", 0, "some text")},
		{"different position", NewChunkID("doc1", 1, "some text")},
		{"different content", NewChunkID("doc1", 0, "other text")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.id == base {
				t.Errorf("expected distinct ID, got %q for both", base)
			}
		})
	}
}

func TestNewChunkID_Format(t *testing.T) {
	id := NewChunkID("abc", 7, "hello world")
	if !strings.HasPrefix(id, "abc_chunk_7_") {
		t.Errorf("ID = %q, want prefix abc_chunk_7_", id)
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"one char rounds up", "a", 1},
		{"exactly four chars", "abcd", 1},
		{"five chars", "abcde", 2},
		{"eight chars", "abcdefgh", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateTokens(tt.text); got != tt.want {
				t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}
