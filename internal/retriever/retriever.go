// ABOUTME: Retriever embeds a query and ranks a document's chunks by similarity
// ABOUTME: A missing index degrades to empty results, never a hard failure
package retriever

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/documentgpt/docchat/internal/index"
	"github.com/documentgpt/docchat/internal/models"
	"github.com/documentgpt/docchat/internal/store"
)

const (
	// DefaultTopK bounds how many chunks ground one answer.
	DefaultTopK = 5
	// DefaultMinScore drops weakly related chunks. Configurable; earlier
	// iterations of the product flip-flopped between 0.3 and none.
	DefaultMinScore = 0.3
)

// ErrModelMismatch means the index artifact was built with a different
// embedding model than the one configured; scores across models are
// meaningless, so the query is rejected.
var ErrModelMismatch = errors.New("index embedding model does not match configured model")

// Embedder produces query embeddings. Satisfied by llm.Client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbeddingModelID() string
}

// Config holds retrieval parameters. Zero TopK falls back to DefaultTopK;
// zero MinScore falls back to DefaultMinScore; a negative MinScore disables
// the threshold.
type Config struct {
	TopK     int
	MinScore float64
}

// Retriever loads a document's index and returns its top-K chunks for a query.
type Retriever struct {
	indexes  store.IndexStore
	embedder Embedder
	topK     int
	minScore float64
}

// New creates a Retriever.
func New(indexes store.IndexStore, embedder Embedder, cfg Config) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.MinScore == 0 {
		cfg.MinScore = DefaultMinScore
	} else if cfg.MinScore < 0 {
		cfg.MinScore = index.NoMinScore
	}
	return &Retriever{
		indexes:  indexes,
		embedder: embedder,
		topK:     cfg.TopK,
		minScore: cfg.MinScore,
	}
}

// Retrieve embeds the query once and scores every chunk of the document's
// index. topK overrides the configured value when positive. A document with
// no index yields zero results; the caller treats "no context" as a valid,
// expected outcome.
func (r *Retriever) Retrieve(ctx context.Context, query, documentID string, topK int) ([]models.ScoredChunk, error) {
	if topK <= 0 {
		topK = r.topK
	}

	doc, err := r.indexes.LoadIndex(ctx, documentID)
	if err != nil {
		if errors.Is(err, store.ErrIndexNotFound) {
			log.Printf("retriever: no index for document %s, returning no context", documentID)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load index for %s: %w", documentID, err)
	}

	if doc.ModelID != "" && doc.ModelID != r.embedder.EmbeddingModelID() {
		return nil, fmt.Errorf("document %s indexed with %s, configured %s: %w",
			documentID, doc.ModelID, r.embedder.EmbeddingModelID(), ErrModelMismatch)
	}

	ix, err := index.New(doc)
	if err != nil {
		return nil, fmt.Errorf("unusable index for %s: %w", documentID, err)
	}
	if ix.Len() == 0 {
		return nil, nil
	}

	queryVector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := ix.Search(queryVector, topK, r.minScore)
	if err != nil {
		return nil, fmt.Errorf("search failed for %s: %w", documentID, err)
	}
	return results, nil
}
