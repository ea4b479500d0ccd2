// ABOUTME: Benchmark runner: indexes fixture documents and scores query answers
// ABOUTME: Runs the real pipeline (chunker, embeddings, retriever, composer) per scenario

package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/documentgpt/docchat/internal/composer"
	"github.com/documentgpt/docchat/internal/config"
	"github.com/documentgpt/docchat/internal/indexer"
	"github.com/documentgpt/docchat/internal/llm"
	"github.com/documentgpt/docchat/internal/models"
	"github.com/documentgpt/docchat/internal/retriever"
	"github.com/documentgpt/docchat/internal/store"
	"github.com/documentgpt/docchat/internal/store/sqlite"
)

// benchmarkUser scopes fixture document records.
const benchmarkUser = "benchmark"

// Runner executes retrieval benchmark scenarios against the live pipeline.
type Runner struct {
	cfg     *config.Config
	client  *llm.Client
	verbose bool
}

// NewRunner creates a Runner. It needs a working OpenAI configuration.
func NewRunner(verbose bool) (*Runner, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
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
		return nil, fmt.Errorf("initializing OpenAI client: %w", err)
	}

	return &Runner{cfg: cfg, client: client, verbose: verbose}, nil
}

// RunScenario indexes the scenario's fixtures into a fresh in-memory store,
// answers each query, and scores the results.
func (r *Runner) RunScenario(ctx context.Context, s Scenario) (Result, error) {
	if r.verbose {
		fmt.Printf("\n=== %s: %s ===\n%s\n\n", s.ID, s.Name, s.Description)
	}

	db, err := sqlite.OpenInMemory()
	if err != nil {
		return Result{}, fmt.Errorf("opening scratch store: %w", err)
	}
	defer db.Close()

	st := sqlite.NewStore(db)
	ix := indexer.New(st, st, nil, r.client, nil)
	ret := retriever.New(st, r.client, retriever.Config{TopK: r.cfg.TopK, MinScore: r.cfg.MinScore})
	comp := composer.New(r.client, ret)

	for _, doc := range s.Documents {
		if err := st.SaveText(ctx, store.TextKey(doc.DocumentID), doc.Text); err != nil {
			return Result{}, fmt.Errorf("storing fixture %s: %w", doc.DocumentID, err)
		}
		resp, err := ix.Index(ctx, &models.IndexRequest{
			DocumentID: doc.DocumentID,
			Filename:   doc.Filename,
			UserID:     benchmarkUser,
		})
		if err != nil {
			return Result{}, fmt.Errorf("indexing fixture %s: %w", doc.DocumentID, err)
		}
		if r.verbose {
			fmt.Printf("indexed %s: %d chunks\n", doc.DocumentID, resp.Chunks)
		}
	}

	scores := make([]queryScore, 0, len(s.Queries))
	for _, q := range s.Queries {
		qs, err := r.runQuery(ctx, comp, ret, q)
		if err != nil {
			return Result{}, fmt.Errorf("query %q: %w", q.Query, err)
		}
		if r.verbose {
			fmt.Printf("  %q -> faith %.2f recall %.2f cites %.2f (%s)\n",
				q.Query, qs.faithfulness, qs.recall, qs.citations, qs.detail)
		}
		scores = append(scores, qs)
	}

	return aggregate(s, scores), nil
}

func (r *Runner) runQuery(ctx context.Context, comp *composer.Composer, ret *retriever.Retriever, q QueryCase) (queryScore, error) {
	resp, err := comp.Answer(ctx, &models.ChatRequest{
		Query:      q.Query,
		DocumentID: q.DocumentID,
		UserID:     benchmarkUser,
	})
	// An uncited grounded answer is a scoring outcome, not a runner failure.
	if err != nil && !errors.Is(err, composer.ErrNoCitation) {
		return queryScore{}, err
	}
	if resp == nil {
		return queryScore{}, fmt.Errorf("no response")
	}

	passages, err := ret.Retrieve(ctx, q.Query, q.DocumentID, 0)
	if err != nil {
		return queryScore{}, fmt.Errorf("retrieving context: %w", err)
	}

	faith, faithDetail := scoreFaithfulness(resp.Answer, q.ExpectedInAnswer, q.ForbiddenInAnswer)
	recall, recallDetail := scoreRecall(passages, q.ExpectedInContext)
	cites, citeDetail := scoreCitations(resp, q.ExpectCitations)

	return queryScore{
		faithfulness: faith,
		recall:       recall,
		citations:    cites,
		detail:       fmt.Sprintf("%s; %s; %s", faithDetail, recallDetail, citeDetail),
	}, nil
}

// RunAll executes every scenario in order.
func (r *Runner) RunAll(ctx context.Context) ([]Result, error) {
	scenarios := AllScenarios()
	results := make([]Result, 0, len(scenarios))
	for _, s := range scenarios {
		result, err := r.RunScenario(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.ID, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// ExportResults writes a JSON summary of the run.
func (r *Runner) ExportResults(results []Result, outputPath string) error {
	passed, failed := 0, 0
	for _, result := range results {
		if result.Status == "PASS" {
			passed++
		} else {
			failed++
		}
	}

	summary := map[string]interface{}{
		"timestamp":       time.Now().Format(time.RFC3339),
		"embedding_model": r.cfg.EmbeddingModel,
		"chat_model":      r.cfg.ChatModel,
		"total_scenarios": len(results),
		"passed":          passed,
		"failed":          failed,
		"results":         results,
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	fmt.Printf("Results exported to %s\n", outputPath)
	return nil
}
