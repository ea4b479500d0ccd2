// ABOUTME: Filesystem store for local development and the CLI
// ABOUTME: Mirrors the S3 artifact layout under a base directory
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/documentgpt/docchat/internal/models"
)

// LocalStore keeps index artifacts and extracted text on disk using the same
// keys as the S3 layout. Used by the CLI and the local dev server.
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates a LocalStore rooted at baseDir.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, "derived"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

func (l *LocalStore) path(key string) string {
	return filepath.Join(l.baseDir, filepath.FromSlash(key))
}

// SaveIndex writes the artifact JSON, fully replacing any previous index.
func (l *LocalStore) SaveIndex(_ context.Context, doc *models.DocumentIndex) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid index: %w", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	if err := os.WriteFile(l.path(IndexKey(doc.DocumentID)), data, 0o644); err != nil {
		return fmt.Errorf("failed to write index for %s: %w", doc.DocumentID, err)
	}
	return nil
}

// LoadIndex reads and validates a document's artifact.
func (l *LocalStore) LoadIndex(_ context.Context, documentID string) (*models.DocumentIndex, error) {
	data, err := os.ReadFile(l.path(IndexKey(documentID)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("failed to read index for %s: %w", documentID, err)
	}

	var doc models.DocumentIndex
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode index for %s: %w", documentID, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("corrupt index for %s: %w", documentID, err)
	}
	return &doc, nil
}

// LoadText reads extracted document text by key.
func (l *LocalStore) LoadText(_ context.Context, key string) (string, error) {
	data, err := os.ReadFile(l.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrTextNotFound
		}
		return "", fmt.Errorf("failed to read text at %s: %w", key, err)
	}
	return string(data), nil
}

// SaveText writes extracted document text, used when indexing local files.
func (l *LocalStore) SaveText(_ context.Context, key, text string) error {
	if err := os.WriteFile(l.path(key), []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write text at %s: %w", key, err)
	}
	return nil
}
