// ABOUTME: Retrieval result types: scored chunks and citations
// ABOUTME: Ephemeral per-request values, never persisted
package models

import "github.com/documentgpt/docchat/internal/util"

// ScoredChunk pairs a chunk with its cosine similarity score for one query.
// Scores lie in [-1, 1]; ranking is descending with input order as tiebreak.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// Citation is a structured pointer attached to a cited claim in an answer.
type Citation struct {
	N          int     `json:"n"`
	DocumentID string  `json:"document_id"`
	Page       int     `json:"page"`
	Snippet    string  `json:"snippet"`
	Score      float64 `json:"score"`
}

// SnippetLimit bounds citation snippet length to keep payloads small.
const SnippetLimit = 300

// NewCitation builds the nth citation from a scored chunk. Snippets are
// truncated to SnippetLimit characters.
func NewCitation(n int, documentID string, sc ScoredChunk) Citation {
	snippet := util.TruncateBytes(sc.Chunk.Text, SnippetLimit)
	return Citation{
		N:          n,
		DocumentID: documentID,
		Page:       sc.Chunk.Page,
		Snippet:    snippet,
		Score:      sc.Score,
	}
}
