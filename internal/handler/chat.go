// ABOUTME: Chat endpoint handler: validate, rate limit, answer, persist turns
// ABOUTME: Cached answers skip the provider entirely
package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/documentgpt/docchat/internal/cache"
	"github.com/documentgpt/docchat/internal/composer"
	"github.com/documentgpt/docchat/internal/metrics"
	"github.com/documentgpt/docchat/internal/models"
	"github.com/documentgpt/docchat/internal/ratelimit"
	"github.com/documentgpt/docchat/internal/store"
)

// ChatHandler serves the chat endpoint. Streaming requests are served by the
// dev server's SSE endpoint; the Lambda path is always a complete response.
type ChatHandler struct {
	composer Answerer
	cache    *cache.AnswerCache
	limiter  RateLimiter
	docs     store.DocumentStore
	metrics  *metrics.Emitter
}

// NewChatHandler creates a ChatHandler. cache, limiter, docs, and metrics
// may be nil; the corresponding step is then skipped.
func NewChatHandler(answerer Answerer, answerCache *cache.AnswerCache, limiter RateLimiter, docs store.DocumentStore, emitter *metrics.Emitter) *ChatHandler {
	return &ChatHandler{
		composer: answerer,
		cache:    answerCache,
		limiter:  limiter,
		docs:     docs,
		metrics:  emitter,
	}
}

// Handle processes one API Gateway chat request.
func (h *ChatHandler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	started := time.Now()
	id := requestID(req)

	chatReq, err := parseChatRequest(req)
	if err != nil {
		return withRequestID(respondError(statusFor(err), err.Error()), id)
	}

	if h.limiter != nil && !h.limiter.Allow(chatReq.UserID, ratelimit.ActionChat) {
		return withRequestID(respondError(http.StatusTooManyRequests, "too many requests, slow down"), id)
	}

	if h.cache != nil {
		if cached := h.cache.Get(chatReq.Query, chatReq.DocumentID); cached != nil {
			h.metrics.Count(ctx, "ChatCacheHits", 1, nil)
			return withRequestID(respond(http.StatusOK, cached), id)
		}
	}

	resp, err := h.composer.Answer(ctx, chatReq)
	if err != nil && !errors.Is(err, composer.ErrNoCitation) {
		log.Printf("chat %s: answer failed for user %s: %v", id, chatReq.UserID, err)
		h.metrics.Count(ctx, "ChatFailures", 1, nil)
		return withRequestID(respondError(statusFor(err), "failed to compose an answer"), id)
	}
	if errors.Is(err, composer.ErrNoCitation) {
		h.metrics.Count(ctx, "UncitedAnswers", 1, nil)
	}

	if h.cache != nil && err == nil {
		h.cache.Put(chatReq.Query, chatReq.DocumentID, resp)
	}

	h.appendTurns(ctx, chatReq, resp)

	h.metrics.Count(ctx, "ChatRequests", 1, map[string]string{"Mode": string(resp.Mode)})
	h.metrics.Duration(ctx, "ChatLatency", time.Since(started), nil)

	return withRequestID(respond(http.StatusOK, resp), id)
}

// appendTurns records the exchange on the document's chat history. Best
// effort: the answer is already composed.
func (h *ChatHandler) appendTurns(ctx context.Context, req *models.ChatRequest, resp *models.ChatResponse) {
	if h.docs == nil || req.UserID == "" || req.DocumentID == "" {
		return
	}
	userTurn, err := models.NewTurn(models.RoleUser, req.Query)
	if err != nil {
		return
	}
	assistantTurn, err := models.NewTurn(models.RoleAssistant, resp.Answer)
	if err != nil {
		return
	}
	turns := []models.ConversationTurn{*userTurn, *assistantTurn}
	if err := h.docs.AppendTurns(ctx, req.UserID, req.DocumentID, turns, 20); err != nil {
		log.Printf("chat: failed to append turns for %s: %v", req.DocumentID, err)
	}
}

func parseChatRequest(req events.APIGatewayV2HTTPRequest) (*models.ChatRequest, error) {
	var chatReq models.ChatRequest
	if err := decodeBody(req.Body, &chatReq); err != nil {
		return nil, &models.ValidationError{Field: "body", Reason: "must be valid JSON"}
	}
	chatReq.UserID = userID(req)
	if err := chatReq.Validate(); err != nil {
		return nil, err
	}
	return &chatReq, nil
}
