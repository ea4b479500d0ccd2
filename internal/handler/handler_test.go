// ABOUTME: Tests for the chat and indexing endpoint handlers
// ABOUTME: Verifies status mapping, rate limiting, caching, and turn persistence
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/documentgpt/docchat/internal/cache"
	"github.com/documentgpt/docchat/internal/composer"
	"github.com/documentgpt/docchat/internal/llm"
	"github.com/documentgpt/docchat/internal/models"
	"github.com/documentgpt/docchat/internal/ratelimit"
	"github.com/documentgpt/docchat/internal/store"
)

type fakeAnswerer struct {
	resp  *models.ChatResponse
	err   error
	calls int
}

func (f *fakeAnswerer) Answer(_ context.Context, _ *models.ChatRequest) (*models.ChatResponse, error) {
	f.calls++
	return f.resp, f.err
}

type fakeIndexer struct {
	resp  *models.IndexResponse
	err   error
	calls int
}

func (f *fakeIndexer) Index(_ context.Context, _ *models.IndexRequest) (*models.IndexResponse, error) {
	f.calls++
	return f.resp, f.err
}

type fakeLimiter struct {
	allow bool
}

func (f *fakeLimiter) Allow(_ string, _ ratelimit.Action) bool { return f.allow }

type fakeDocStore struct {
	appended int
}

func (f *fakeDocStore) GetDocument(_ context.Context, _, _ string) (*models.DocumentRecord, error) {
	return nil, nil
}

func (f *fakeDocStore) PutDocument(_ context.Context, _ *models.DocumentRecord) error { return nil }

func (f *fakeDocStore) AppendTurns(_ context.Context, _, _ string, turns []models.ConversationTurn, _ int) error {
	f.appended += len(turns)
	return nil
}

func chatRequest(t *testing.T, body any) events.APIGatewayV2HTTPRequest {
	t.Helper()
	var raw string
	switch b := body.(type) {
	case string:
		raw = b
	default:
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		raw = string(data)
	}
	return events.APIGatewayV2HTTPRequest{
		Body:    raw,
		Headers: map[string]string{"x-user-id": "user1"},
	}
}

func groundedResponse() *models.ChatResponse {
	return &models.ChatResponse{
		Mode:        models.ModeGrounded,
		Answer:      "Refunds take 30 days [1].",
		Citations:   []models.Citation{{N: 1, DocumentID: "doc1", Page: 1, Snippet: "refunds"}},
		ContextUsed: 1,
	}
}

func TestChatHandle_Success(t *testing.T) {
	answerer := &fakeAnswerer{resp: groundedResponse()}
	docs := &fakeDocStore{}
	h := NewChatHandler(answerer, nil, nil, docs, nil)

	resp, err := h.Handle(context.Background(), chatRequest(t, models.ChatRequest{Query: "refund policy?", DocumentID: "doc1"}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, resp.Body)
	}

	var out models.ChatResponse
	if err := json.Unmarshal([]byte(resp.Body), &out); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if out.Answer != "Refunds take 30 days [1]." || len(out.Citations) != 1 {
		t.Errorf("body = %+v", out)
	}
	if docs.appended != 2 {
		t.Errorf("turns appended = %d, want 2", docs.appended)
	}
}

func TestChatHandle_BadJSON(t *testing.T) {
	h := NewChatHandler(&fakeAnswerer{}, nil, nil, nil, nil)

	resp, _ := h.Handle(context.Background(), chatRequest(t, "{not json"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	var body errorBody
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil || body.Error == "" {
		t.Errorf("error body = %s", resp.Body)
	}
}

func TestChatHandle_MissingQuery(t *testing.T) {
	h := NewChatHandler(&fakeAnswerer{}, nil, nil, nil, nil)

	resp, _ := h.Handle(context.Background(), chatRequest(t, models.ChatRequest{DocumentID: "doc1"}))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestChatHandle_RateLimited(t *testing.T) {
	h := NewChatHandler(&fakeAnswerer{resp: groundedResponse()}, nil, &fakeLimiter{allow: false}, nil, nil)

	resp, _ := h.Handle(context.Background(), chatRequest(t, models.ChatRequest{Query: "q"}))
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", resp.StatusCode)
	}
}

func TestChatHandle_CacheSkipsComposer(t *testing.T) {
	answerer := &fakeAnswerer{resp: groundedResponse()}
	answerCache, err := cache.New(10, time.Minute)
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	h := NewChatHandler(answerer, answerCache, nil, nil, nil)

	req := chatRequest(t, models.ChatRequest{Query: "refund policy?", DocumentID: "doc1"})
	if _, err := h.Handle(context.Background(), req); err != nil {
		t.Fatalf("first Handle() error = %v", err)
	}
	if _, err := h.Handle(context.Background(), req); err != nil {
		t.Fatalf("second Handle() error = %v", err)
	}

	if answerer.calls != 1 {
		t.Errorf("composer calls = %d, want 1 (second served from cache)", answerer.calls)
	}
}

func TestChatHandle_ProviderFailure(t *testing.T) {
	answerer := &fakeAnswerer{err: fmt.Errorf("compose: %w", &llm.ProviderError{Op: llm.OpCompletion, Err: errors.New("down")})}
	h := NewChatHandler(answerer, nil, nil, nil, nil)

	resp, _ := h.Handle(context.Background(), chatRequest(t, models.ChatRequest{Query: "q"}))
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}

func TestChatHandle_UncitedAnswerStillServed(t *testing.T) {
	answerer := &fakeAnswerer{
		resp: &models.ChatResponse{Mode: models.ModeGrounded, Answer: composer.NoCitationFallback, Citations: []models.Citation{}},
		err:  composer.ErrNoCitation,
	}
	h := NewChatHandler(answerer, nil, nil, nil, nil)

	resp, _ := h.Handle(context.Background(), chatRequest(t, models.ChatRequest{Query: "q", DocumentID: "doc1"}))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestIndexHandle_Success(t *testing.T) {
	answerCache, err := cache.New(10, time.Minute)
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	answerCache.Put("q", "doc1", groundedResponse())

	indexer := &fakeIndexer{resp: &models.IndexResponse{DocumentID: "doc1", Chunks: 4, IndexKey: "derived/doc1.index.json"}}
	h := NewIndexHandler(indexer, answerCache, nil, nil)

	resp, err := h.Handle(context.Background(), chatRequest(t, models.IndexRequest{DocumentID: "doc1"}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, resp.Body)
	}

	var out models.IndexResponse
	if err := json.Unmarshal([]byte(resp.Body), &out); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if out.Chunks != 4 {
		t.Errorf("chunks = %d", out.Chunks)
	}
	if answerCache.Get("q", "doc1") != nil {
		t.Error("stale cached answer survived reindexing")
	}
}

func TestIndexHandle_MissingDocumentID(t *testing.T) {
	h := NewIndexHandler(&fakeIndexer{}, nil, nil, nil)

	resp, _ := h.Handle(context.Background(), chatRequest(t, models.IndexRequest{}))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestIndexHandle_TextNotFound(t *testing.T) {
	indexer := &fakeIndexer{err: fmt.Errorf("load: %w", store.ErrTextNotFound)}
	h := NewIndexHandler(indexer, nil, nil, nil)

	resp, _ := h.Handle(context.Background(), chatRequest(t, models.IndexRequest{DocumentID: "doc1"}))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestIndexHandle_RateLimited(t *testing.T) {
	h := NewIndexHandler(&fakeIndexer{}, nil, &fakeLimiter{allow: false}, nil)

	resp, _ := h.Handle(context.Background(), chatRequest(t, models.IndexRequest{DocumentID: "doc1"}))
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", resp.StatusCode)
	}
}

func TestChatHandle_RequestIDGenerated(t *testing.T) {
	h := NewChatHandler(&fakeAnswerer{resp: groundedResponse()}, nil, nil, nil, nil)

	resp, err := h.Handle(context.Background(), chatRequest(t, models.ChatRequest{Query: "q", DocumentID: "doc1"}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	id := resp.Headers["X-Request-Id"]
	if id == "" {
		t.Fatal("X-Request-Id header missing")
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("X-Request-Id = %q is not a UUID: %v", id, err)
	}
}

func TestChatHandle_RequestIDEchoesGateway(t *testing.T) {
	h := NewChatHandler(&fakeAnswerer{resp: groundedResponse()}, nil, nil, nil, nil)

	req := chatRequest(t, models.ChatRequest{Query: "q", DocumentID: "doc1"})
	req.RequestContext.RequestID = "gw-abc123"

	resp, err := h.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if got := resp.Headers["X-Request-Id"]; got != "gw-abc123" {
		t.Errorf("X-Request-Id = %q, want gw-abc123", got)
	}
}

func TestChatHandle_RequestIDOnErrorResponse(t *testing.T) {
	h := NewChatHandler(&fakeAnswerer{}, nil, nil, nil, nil)

	resp, _ := h.Handle(context.Background(), chatRequest(t, "{not json"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if resp.Headers["X-Request-Id"] == "" {
		t.Error("error response missing X-Request-Id header")
	}
}

func TestIndexHandle_RequestIDGenerated(t *testing.T) {
	indexer := &fakeIndexer{resp: &models.IndexResponse{DocumentID: "doc1", Chunks: 1}}
	h := NewIndexHandler(indexer, nil, nil, nil)

	resp, err := h.Handle(context.Background(), chatRequest(t, models.IndexRequest{DocumentID: "doc1"}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	id := resp.Headers["X-Request-Id"]
	if id == "" {
		t.Fatal("X-Request-Id header missing")
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("X-Request-Id = %q is not a UUID: %v", id, err)
	}
}

func TestUserID_FromJWT(t *testing.T) {
	req := events.APIGatewayV2HTTPRequest{
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			Authorizer: &events.APIGatewayV2HTTPRequestContextAuthorizerDescription{
				JWT: &events.APIGatewayV2HTTPRequestContextAuthorizerJWTDescription{
					Claims: map[string]string{"sub": "jwt-user"},
				},
			},
		},
		Headers: map[string]string{"x-user-id": "header-user"},
	}
	if got := userID(req); got != "jwt-user" {
		t.Errorf("userID = %s, want jwt-user", got)
	}
}
