// ABOUTME: Tests for the OpenAI client against a local fake provider
// ABOUTME: Verifies batching, truncation, ordering, and typed failures
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/documentgpt/docchat/internal/models"
)

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// newFakeProvider returns a test server that answers embedding requests with
// one fixed vector per input and chat requests with a fixed answer.
func newFakeProvider(t *testing.T, calls *[]embeddingRequest, answer string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/embeddings":
			var req embeddingRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("bad embedding request: %v", err)
			}
			*calls = append(*calls, req)

			data := make([]map[string]interface{}, len(req.Input))
			for i := range req.Input {
				data[i] = map[string]interface{}{
					"index":     i,
					"embedding": []float64{float64(len(req.Input[i])), 1},
				}
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"data": data})

		case "/v1/chat/completions":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"choices": []map[string]interface{}{
					{"message": map[string]string{"role": "assistant", "content": answer}},
				},
			})

		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{
		APIKey:     "test-key",
		BaseURL:    baseURL + "/v1",
		MaxRetries: 0,
		RetryDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	var calls []embeddingRequest
	srv := newFakeProvider(t, &calls, "")
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	vectors, err := client.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if len(vectors) != 0 {
		t.Errorf("vectors = %d, want 0", len(vectors))
	}
	if len(calls) != 0 {
		t.Errorf("provider called %d times for empty input, want 0", len(calls))
	}
}

func TestEmbedBatch_OneVectorPerInputInOrder(t *testing.T) {
	var calls []embeddingRequest
	srv := newFakeProvider(t, &calls, "")
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	texts := []string{"a", "bb", "ccc"}
	vectors, err := client.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if len(vectors) != 3 {
		t.Fatalf("vectors = %d, want 3", len(vectors))
	}
	// The fake encodes input length into the first component, so order is
	// observable.
	for i, text := range texts {
		if vectors[i][0] != float64(len(text)) {
			t.Errorf("vector %d first component = %v, want %d", i, vectors[i][0], len(text))
		}
	}
}

func TestEmbedBatch_SplitsLargeBatches(t *testing.T) {
	var calls []embeddingRequest
	srv := newFakeProvider(t, &calls, "")
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	texts := make([]string, 250)
	for i := range texts {
		texts[i] = "text"
	}

	vectors, err := client.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if len(vectors) != 250 {
		t.Errorf("vectors = %d, want 250", len(vectors))
	}
	if len(calls) != 3 {
		t.Fatalf("provider calls = %d, want 3 (batches of %d)", len(calls), MaxBatchSize)
	}
	if len(calls[0].Input) != 100 || len(calls[1].Input) != 100 || len(calls[2].Input) != 50 {
		t.Errorf("batch sizes = %d/%d/%d, want 100/100/50",
			len(calls[0].Input), len(calls[1].Input), len(calls[2].Input))
	}
}

func TestEmbedBatch_TruncatesLongInputs(t *testing.T) {
	var calls []embeddingRequest
	srv := newFakeProvider(t, &calls, "")
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	long := make([]byte, MaxInputChars*2)
	for i := range long {
		long[i] = 'x'
	}

	if _, err := client.EmbedBatch(context.Background(), []string{string(long)}); err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("provider calls = %d, want 1", len(calls))
	}
	if len(calls[0].Input[0]) != MaxInputChars {
		t.Errorf("sent input length = %d, want %d", len(calls[0].Input[0]), MaxInputChars)
	}
}

func TestEmbedBatch_ProviderFailureIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.EmbedBatch(context.Background(), []string{"text"})
	if err == nil {
		t.Fatal("expected provider error")
	}

	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T, want *ProviderError", err)
	}
	if perr.Op != OpEmbedding {
		t.Errorf("op = %q, want %q", perr.Op, OpEmbedding)
	}
}

func TestComplete_ReturnsContent(t *testing.T) {
	var calls []embeddingRequest
	srv := newFakeProvider(t, &calls, "the answer [1]")
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	answer, err := client.Complete(context.Background(), CompletionParams{
		System:   "system prompt",
		Messages: []Message{{Role: models.RoleUser, Text: "question"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if answer != "the answer [1]" {
		t.Errorf("answer = %q", answer)
	}
}

func TestComplete_EmptyChoicesIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.Complete(context.Background(), CompletionParams{
		Messages: []Message{{Role: models.RoleUser, Text: "question"}},
	})

	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ProviderError", err)
	}
	if perr.Op != OpCompletion {
		t.Errorf("op = %q, want %q", perr.Op, OpCompletion)
	}
}

func TestGenerateBrief_FallbackOnUnparsableResponse(t *testing.T) {
	var calls []embeddingRequest
	srv := newFakeProvider(t, &calls, "this is not json")
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	brief := client.GenerateBrief(context.Background(), "report.pdf", "some document text")

	if brief.Summary == "" {
		t.Error("fallback summary is empty")
	}
	if len(brief.Questions) != 3 {
		t.Errorf("fallback questions = %d, want 3", len(brief.Questions))
	}
}

func TestGenerateBrief_ParsesModelResponse(t *testing.T) {
	var calls []embeddingRequest
	srv := newFakeProvider(t, &calls, `{"summary":"A short summary.","questions":["q1","q2","q3"]}`)
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	brief := client.GenerateBrief(context.Background(), "report.pdf", "some document text")

	if brief.Summary != "A short summary." {
		t.Errorf("summary = %q", brief.Summary)
	}
	if len(brief.Questions) != 3 {
		t.Errorf("questions = %d, want 3", len(brief.Questions))
	}
}
