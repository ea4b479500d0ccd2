// ABOUTME: Index artifact and extracted-text storage operations for SQLite
// ABOUTME: Artifacts are stored whole and replaced on reindex
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/documentgpt/docchat/internal/models"
	"github.com/documentgpt/docchat/internal/store"
)

// SaveIndex stores a document's index artifact, replacing any previous one
func (s *Store) SaveIndex(_ context.Context, doc *models.DocumentIndex) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid index: %w", err)
	}
	artifact, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO indexes (document_id, artifact, model_id, chunk_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			artifact = excluded.artifact,
			model_id = excluded.model_id,
			chunk_count = excluded.chunk_count,
			created_at = CURRENT_TIMESTAMP
	`, doc.DocumentID, string(artifact), doc.ModelID, len(doc.Chunks))
	return err
}

// LoadIndex retrieves and validates a document's index artifact
func (s *Store) LoadIndex(_ context.Context, documentID string) (*models.DocumentIndex, error) {
	var artifact string
	err := s.db.QueryRow(`SELECT artifact FROM indexes WHERE document_id = ?`, documentID).Scan(&artifact)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrIndexNotFound
	}
	if err != nil {
		return nil, err
	}

	var doc models.DocumentIndex
	if err := json.Unmarshal([]byte(artifact), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode index for %s: %w", documentID, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("corrupt index for %s: %w", documentID, err)
	}
	return &doc, nil
}

// SaveText stores extracted document text under a key
func (s *Store) SaveText(_ context.Context, key, text string) error {
	_, err := s.db.Exec(`
		INSERT INTO texts (key, content) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET content = excluded.content
	`, key, text)
	return err
}

// LoadText retrieves extracted document text by key
func (s *Store) LoadText(_ context.Context, key string) (string, error) {
	var content string
	err := s.db.QueryRow(`SELECT content FROM texts WHERE key = ?`, key).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrTextNotFound
	}
	if err != nil {
		return "", err
	}
	return content, nil
}
