// ABOUTME: Indexing endpoint handler: validate, rate limit, run the pipeline
// ABOUTME: A successful reindex invalidates cached answers
package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/documentgpt/docchat/internal/cache"
	"github.com/documentgpt/docchat/internal/metrics"
	"github.com/documentgpt/docchat/internal/models"
	"github.com/documentgpt/docchat/internal/ratelimit"
)

// IndexHandler serves the indexing endpoint.
type IndexHandler struct {
	indexer DocumentIndexer
	cache   *cache.AnswerCache
	limiter RateLimiter
	metrics *metrics.Emitter
}

// NewIndexHandler creates an IndexHandler. cache, limiter, and metrics may
// be nil.
func NewIndexHandler(indexer DocumentIndexer, answerCache *cache.AnswerCache, limiter RateLimiter, emitter *metrics.Emitter) *IndexHandler {
	return &IndexHandler{indexer: indexer, cache: answerCache, limiter: limiter, metrics: emitter}
}

// Handle processes one API Gateway indexing request.
func (h *IndexHandler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	started := time.Now()
	id := requestID(req)

	var indexReq models.IndexRequest
	if err := decodeBody(req.Body, &indexReq); err != nil {
		return withRequestID(respondError(http.StatusBadRequest, "invalid request: body must be valid JSON"), id)
	}
	indexReq.UserID = userID(req)
	if err := indexReq.Validate(); err != nil {
		return withRequestID(respondError(http.StatusBadRequest, err.Error()), id)
	}

	if h.limiter != nil && !h.limiter.Allow(indexReq.UserID, ratelimit.ActionIndex) {
		return withRequestID(respondError(http.StatusTooManyRequests, "too many indexing requests, slow down"), id)
	}

	resp, err := h.indexer.Index(ctx, &indexReq)
	if err != nil {
		log.Printf("index %s: pipeline failed for %s: %v", id, indexReq.DocumentID, err)
		h.metrics.Count(ctx, "IndexFailures", 1, nil)
		return withRequestID(respondError(statusFor(err), "failed to index document"), id)
	}

	// Answers composed against the old index are stale now.
	if h.cache != nil {
		h.cache.Invalidate()
	}

	h.metrics.Count(ctx, "IndexRequests", 1, nil)
	h.metrics.Count(ctx, "IndexedChunks", float64(resp.Chunks), nil)
	h.metrics.Duration(ctx, "IndexLatency", time.Since(started), nil)

	return withRequestID(respond(http.StatusOK, resp), id)
}
