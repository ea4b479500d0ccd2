// ABOUTME: SQLite database schema for local document storage
// ABOUTME: Creates all tables and indexes for documents, text, and embeddings
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- Document records (one per upload per user)
CREATE TABLE IF NOT EXISTS documents (
    user_id TEXT NOT NULL,
    document_id TEXT NOT NULL,
    filename TEXT,
    summary TEXT,
    questions TEXT,
    chat_history TEXT,
    last_message_preview TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, document_id)
);

-- Extracted document text, keyed like the object store layout
CREATE TABLE IF NOT EXISTS texts (
    key TEXT PRIMARY KEY,
    content TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Index artifacts (whole-document JSON, replaced on reindex)
CREATE TABLE IF NOT EXISTS indexes (
    document_id TEXT PRIMARY KEY,
    artifact TEXT NOT NULL,
    model_id TEXT,
    chunk_count INTEGER DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Indexes for efficient querying
CREATE INDEX IF NOT EXISTS idx_documents_user ON documents(user_id);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1
