// ABOUTME: Indexing pipeline: extracted text to a stored embedding index
// ABOUTME: Reindexing replaces the artifact atomically; briefs never block it
package indexer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/documentgpt/docchat/internal/chunker"
	"github.com/documentgpt/docchat/internal/llm"
	"github.com/documentgpt/docchat/internal/models"
	"github.com/documentgpt/docchat/internal/normalize"
	"github.com/documentgpt/docchat/internal/store"
)

// Embedder produces chunk embeddings. Satisfied by llm.Client.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
	EmbeddingModelID() string
}

// BriefGenerator produces a document summary and suggested questions.
// Satisfied by llm.Client.
type BriefGenerator interface {
	GenerateBrief(ctx context.Context, docName, text string) llm.DocumentBrief
}

// Indexer runs the full pipeline for one document: load extracted text,
// normalize, chunk, embed, and store the index artifact, then refresh the
// document record with a generated brief.
type Indexer struct {
	texts    store.TextStore
	indexes  store.IndexStore
	docs     store.DocumentStore
	embedder Embedder
	briefs   BriefGenerator
	chunker  *chunker.Chunker
}

// New creates an Indexer. docs and briefs may be nil; the document record
// refresh is then skipped, which the CLI uses when indexing local files.
func New(texts store.TextStore, indexes store.IndexStore, docs store.DocumentStore, embedder Embedder, briefs BriefGenerator) *Indexer {
	return &Indexer{
		texts:    texts,
		indexes:  indexes,
		docs:     docs,
		embedder: embedder,
		briefs:   briefs,
		chunker:  chunker.New(chunker.Config{}),
	}
}

// Index processes one document end to end and reports how many chunks were
// stored. An empty document yields an empty but valid index, so a chat
// against it degrades to the no-context reply instead of failing.
func (ix *Indexer) Index(ctx context.Context, req *models.IndexRequest) (*models.IndexResponse, error) {
	key := req.DerivedKey
	if key == "" {
		key = store.TextKey(req.DocumentID)
	}

	raw, err := ix.texts.LoadText(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load text for %s: %w", req.DocumentID, err)
	}

	text := normalize.Normalize(raw)
	chunks := ix.chunker.BuildChunks(req.DocumentID, text)

	if len(chunks) > 0 {
		inputs := make([]string, len(chunks))
		for i, c := range chunks {
			inputs[i] = c.Text
		}
		vectors, err := ix.embedder.EmbedBatch(ctx, inputs)
		if err != nil {
			return nil, err
		}
		for i := range chunks {
			chunks[i].Embedding = vectors[i]
		}
	}

	doc := &models.DocumentIndex{
		DocumentID: req.DocumentID,
		ModelID:    ix.embedder.EmbeddingModelID(),
		CreatedAt:  time.Now().UTC(),
		Chunks:     chunks,
	}
	if err := ix.indexes.SaveIndex(ctx, doc); err != nil {
		return nil, err
	}

	ix.refreshRecord(ctx, req, text)

	return &models.IndexResponse{
		DocumentID: req.DocumentID,
		Chunks:     len(chunks),
		IndexKey:   store.IndexKey(req.DocumentID),
	}, nil
}

// refreshRecord updates the document record with a generated brief. Best
// effort: the index artifact is already stored, so failures here only cost
// the summary.
func (ix *Indexer) refreshRecord(ctx context.Context, req *models.IndexRequest, text string) {
	if ix.docs == nil || ix.briefs == nil || req.UserID == "" {
		return
	}

	name := req.Filename
	if name == "" {
		name = req.DocumentID
	}
	brief := ix.briefs.GenerateBrief(ctx, name, text)

	record, err := ix.docs.GetDocument(ctx, req.UserID, req.DocumentID)
	if err != nil {
		log.Printf("indexer: failed to load record for %s: %v", req.DocumentID, err)
		return
	}
	if record == nil {
		record = &models.DocumentRecord{UserID: req.UserID, DocumentID: req.DocumentID}
	}
	if req.Filename != "" {
		record.Filename = req.Filename
	}
	record.Summary = brief.Summary
	record.Questions = brief.Questions

	if err := ix.docs.PutDocument(ctx, record); err != nil {
		log.Printf("indexer: failed to update record for %s: %v", req.DocumentID, err)
	}
}
