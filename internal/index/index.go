// ABOUTME: In-memory similarity index over one document's chunks
// ABOUTME: Brute-force cosine scan; per-document chunk counts stay small
package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/documentgpt/docchat/internal/models"
)

// epsilon guards the cosine denominator against zero vectors.
const epsilon = 1e-10

// NoMinScore disables the similarity threshold in Search.
const NoMinScore = -2.0

// Index holds one document's chunk records for nearest-neighbor queries.
// It is ephemeral and read-only: built from a DocumentIndex artifact, used
// for one or more queries, then discarded.
type Index struct {
	doc *models.DocumentIndex
}

// New builds an Index after validating the artifact invariants.
func New(doc *models.DocumentIndex) (*Index, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document index")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &Index{doc: doc}, nil
}

// DocumentID returns the owning document's ID.
func (ix *Index) DocumentID() string {
	return ix.doc.DocumentID
}

// ModelID returns the embedding model the artifact was built with.
func (ix *Index) ModelID() string {
	return ix.doc.ModelID
}

// Len returns the number of chunks in the index.
func (ix *Index) Len() int {
	return len(ix.doc.Chunks)
}

// Search scores every chunk against the query vector, sorts descending by
// score with input order as tiebreak, drops results below minScore (pass
// NoMinScore to disable), and truncates to topK. Scanning is O(n) over the
// document's chunks; no index structure is built.
func (ix *Index) Search(query []float64, topK int, minScore float64) ([]models.ScoredChunk, error) {
	if len(ix.doc.Chunks) == 0 {
		return nil, nil
	}
	if dim := ix.doc.Dimension(); len(query) != dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), dim)
	}
	if topK <= 0 {
		return nil, nil
	}

	results := make([]models.ScoredChunk, 0, len(ix.doc.Chunks))
	for _, chunk := range ix.doc.Chunks {
		score := Cosine(query, chunk.Embedding)
		if score < minScore {
			continue
		}
		results = append(results, models.ScoredChunk{Chunk: chunk, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Cosine computes the cosine similarity of two equal-length vectors. The
// result lies in [-1, 1]; a small epsilon in the denominator guards against
// zero vectors.
func Cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + epsilon)
}
