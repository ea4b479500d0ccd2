// ABOUTME: Shared wiring for CLI commands: config, local store, and LLM client
// ABOUTME: The CLI runs everything against SQLite instead of S3 and DynamoDB
package commands

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/documentgpt/docchat/internal/composer"
	"github.com/documentgpt/docchat/internal/config"
	"github.com/documentgpt/docchat/internal/indexer"
	"github.com/documentgpt/docchat/internal/llm"
	"github.com/documentgpt/docchat/internal/retriever"
	"github.com/documentgpt/docchat/internal/store/sqlite"
)

// localUser is the implicit user for CLI document records.
const localUser = "local"

type stack struct {
	cfg       *config.Config
	db        *sqlite.DB
	store     *sqlite.Store
	llm       *llm.Client
	retriever *retriever.Retriever
	composer  *composer.Composer
	indexer   *indexer.Indexer
}

// openStack builds the full local pipeline. Close the returned stack when done.
func openStack() (*stack, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	dbPath := sqlite.DefaultDBPath()
	if cfg.DataDir != "" {
		dbPath = filepath.Join(cfg.DataDir, "docchat.db")
	}
	db, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}
	if verbose {
		log.Printf("local store at %s", dbPath)
	}

	client, err := llm.NewClient(llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		ChatModel:      cfg.ChatModel,
		EmbeddingModel: cfg.EmbeddingModel,
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing OpenAI client: %w", err)
	}

	st := sqlite.NewStore(db)
	r := retriever.New(st, client, retriever.Config{TopK: cfg.TopK, MinScore: cfg.MinScore})

	return &stack{
		cfg:       cfg,
		db:        db,
		store:     st,
		llm:       client,
		retriever: r,
		composer:  composer.New(client, r),
		indexer:   indexer.New(st, st, st, client, client),
	}, nil
}

func (s *stack) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}
