// ABOUTME: Document record storage operations for SQLite
// ABOUTME: Implements the document store contract for local, single-user use
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/documentgpt/docchat/internal/models"
	"github.com/documentgpt/docchat/internal/store"
	"github.com/documentgpt/docchat/internal/util"
)

// Store implements the index, text, and document store contracts on SQLite.
// Used by the CLI, where S3 and DynamoDB are not in play.
type Store struct {
	db *DB
}

// NewStore creates a Store on an open database
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// GetDocument retrieves one document record, nil when absent
func (s *Store) GetDocument(_ context.Context, userID, documentID string) (*models.DocumentRecord, error) {
	row := s.db.QueryRow(`
		SELECT filename, summary, questions, chat_history, last_message_preview, created_at, updated_at
		FROM documents
		WHERE user_id = ? AND document_id = ?
	`, userID, documentID)

	var (
		record       models.DocumentRecord
		questions    sql.NullString
		history      sql.NullString
		preview      sql.NullString
		filename     sql.NullString
		summary      sql.NullString
	)
	err := row.Scan(&filename, &summary, &questions, &history, &preview, &record.CreatedAt, &record.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	record.UserID = userID
	record.DocumentID = documentID
	record.Filename = filename.String
	record.Summary = summary.String
	record.LastMessagePreview = preview.String

	if questions.Valid && questions.String != "" {
		if err := json.Unmarshal([]byte(questions.String), &record.Questions); err != nil {
			record.Questions = []string{}
		}
	}
	if history.Valid && history.String != "" {
		if err := json.Unmarshal([]byte(history.String), &record.ChatHistory); err != nil {
			record.ChatHistory = nil
		}
	}
	return &record, nil
}

// PutDocument upserts a document record
func (s *Store) PutDocument(_ context.Context, record *models.DocumentRecord) error {
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	questionsJSON, err := json.Marshal(record.Questions)
	if err != nil {
		return err
	}
	historyJSON, err := json.Marshal(record.ChatHistory)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO documents (user_id, document_id, filename, summary, questions, chat_history, last_message_preview, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, document_id) DO UPDATE SET
			filename = excluded.filename,
			summary = excluded.summary,
			questions = excluded.questions,
			chat_history = excluded.chat_history,
			last_message_preview = excluded.last_message_preview,
			updated_at = excluded.updated_at
	`, record.UserID, record.DocumentID, record.Filename, record.Summary,
		string(questionsJSON), string(historyJSON), record.LastMessagePreview,
		record.CreatedAt, record.UpdatedAt)
	return err
}

// AppendTurns adds turns to a document's chat history, trimming to window
// and refreshing the last-message preview
func (s *Store) AppendTurns(ctx context.Context, userID, documentID string, turns []models.ConversationTurn, window int) error {
	record, err := s.GetDocument(ctx, userID, documentID)
	if err != nil {
		return err
	}
	if record == nil {
		record = &models.DocumentRecord{UserID: userID, DocumentID: documentID}
	}

	record.ChatHistory = models.TrimHistory(append(record.ChatHistory, turns...), window)
	if len(record.ChatHistory) > 0 {
		last := record.ChatHistory[len(record.ChatHistory)-1].Text
		record.LastMessagePreview = util.TruncateBytes(last, store.PreviewLimit)
	}
	return s.PutDocument(ctx, record)
}
