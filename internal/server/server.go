// ABOUTME: Local dev HTTP server with SSE streaming for the chat endpoint
// ABOUTME: Mirrors the deployed API shape so the frontend runs unchanged
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/documentgpt/docchat/internal/cache"
	"github.com/documentgpt/docchat/internal/composer"
	"github.com/documentgpt/docchat/internal/llm"
	"github.com/documentgpt/docchat/internal/models"
	"github.com/documentgpt/docchat/internal/ratelimit"
	"github.com/documentgpt/docchat/internal/store"
)

// Composer is the answer surface the server needs. Satisfied by
// composer.Composer.
type Composer interface {
	Answer(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error)
	StreamAnswer(ctx context.Context, req *models.ChatRequest) (<-chan models.StreamFrame, error)
}

// Indexer runs the indexing pipeline. Satisfied by indexer.Indexer.
type Indexer interface {
	Index(ctx context.Context, req *models.IndexRequest) (*models.IndexResponse, error)
}

// Server is the local development server. It serves the same chat and index
// operations as the deployed handlers, plus SSE streaming.
type Server struct {
	composer Composer
	indexer  Indexer
	cache    *cache.AnswerCache
	limiter  *ratelimit.Limiter
}

// New creates a Server. cache and limiter may be nil.
func New(c Composer, ix Indexer, answerCache *cache.AnswerCache, limiter *ratelimit.Limiter) *Server {
	return &Server{composer: c, indexer: ix, cache: answerCache, limiter: limiter}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /index", s.handleIndex)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	return mux
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: body must be valid JSON")
		return
	}
	req.UserID = devUser(r)
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.limiter != nil && !s.limiter.Allow(req.UserID, ratelimit.ActionChat) {
		writeError(w, http.StatusTooManyRequests, "too many requests, slow down")
		return
	}

	if req.Stream {
		s.streamChat(w, r, &req)
		return
	}

	if s.cache != nil {
		if cached := s.cache.Get(req.Query, req.DocumentID); cached != nil {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	resp, err := s.composer.Answer(r.Context(), &req)
	if err != nil && !errors.Is(err, composer.ErrNoCitation) {
		log.Printf("server: answer failed: %v", err)
		writeError(w, statusFor(err), "failed to compose an answer")
		return
	}
	if s.cache != nil && err == nil {
		s.cache.Put(req.Query, req.DocumentID, resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

// streamChat writes the answer as server-sent events: a metadata event with
// citations first, token events, then a [DONE] sentinel.
func (s *Server) streamChat(w http.ResponseWriter, r *http.Request, req *models.ChatRequest) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	frames, err := s.composer.StreamAnswer(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), "failed to compose an answer")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for frame := range frames {
		if frame.Event == models.StreamEventDone {
			fmt.Fprint(w, "data: [DONE]\n\n")
			flusher.Flush()
			return
		}
		data, err := json.Marshal(frame)
		if err != nil {
			log.Printf("server: failed to marshal frame: %v", err)
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var req models.IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: body must be valid JSON")
		return
	}
	req.UserID = devUser(r)
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.limiter != nil && !s.limiter.Allow(req.UserID, ratelimit.ActionIndex) {
		writeError(w, http.StatusTooManyRequests, "too many indexing requests, slow down")
		return
	}

	resp, err := s.indexer.Index(r.Context(), &req)
	if err != nil {
		log.Printf("server: indexing failed: %v", err)
		writeError(w, statusFor(err), "failed to index document")
		return
	}
	if s.cache != nil {
		s.cache.Invalidate()
	}
	writeJSON(w, http.StatusOK, resp)
}

// devUser resolves the caller. There is no authorizer locally, so a header
// stands in, with a fixed fallback.
func devUser(r *http.Request) string {
	if user := r.Header.Get("x-user-id"); user != "" {
		return user
	}
	return "local-dev"
}

func statusFor(err error) int {
	var validation *models.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, store.ErrIndexNotFound) || errors.Is(err, store.ErrTextNotFound) {
		return http.StatusNotFound
	}
	var provider *llm.ProviderError
	if errors.As(err, &provider) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("server: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
