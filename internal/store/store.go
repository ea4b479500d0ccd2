// ABOUTME: Storage contracts for index artifacts and document records
// ABOUTME: S3 holds chunk+vector artifacts; DynamoDB holds per-user metadata
package store

import (
	"context"
	"errors"

	"github.com/documentgpt/docchat/internal/models"
)

// ErrIndexNotFound means the document has no index artifact yet: either it
// was never processed or processing failed. Callers treat this as "no
// context available", not a hard failure.
var ErrIndexNotFound = errors.New("document index not found")

// ErrTextNotFound means the document's extracted text is missing.
var ErrTextNotFound = errors.New("document text not found")

// IndexStore persists DocumentIndex artifacts. An index is written once per
// (re)indexing run and fully replaced, never incrementally updated.
type IndexStore interface {
	SaveIndex(ctx context.Context, doc *models.DocumentIndex) error
	LoadIndex(ctx context.Context, documentID string) (*models.DocumentIndex, error)
}

// TextStore reads a document's extracted text, produced upstream by the
// text-extraction step.
type TextStore interface {
	LoadText(ctx context.Context, key string) (string, error)
}

// DocumentStore persists per-(user, document) metadata and chat history.
// Writes are idempotent last-write-wins; history is trimmed to a recent
// window on every append.
type DocumentStore interface {
	GetDocument(ctx context.Context, userID, documentID string) (*models.DocumentRecord, error)
	PutDocument(ctx context.Context, record *models.DocumentRecord) error
	AppendTurns(ctx context.Context, userID, documentID string, turns []models.ConversationTurn, window int) error
}
