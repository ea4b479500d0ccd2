// ABOUTME: Lambda handlers for the chat and indexing endpoints
// ABOUTME: Maps the error taxonomy to status codes with a uniform error body
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/documentgpt/docchat/internal/llm"
	"github.com/documentgpt/docchat/internal/models"
	"github.com/documentgpt/docchat/internal/ratelimit"
	"github.com/documentgpt/docchat/internal/store"
)

// Answerer composes chat responses. Satisfied by composer.Composer.
type Answerer interface {
	Answer(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error)
}

// DocumentIndexer runs the indexing pipeline. Satisfied by indexer.Indexer.
type DocumentIndexer interface {
	Index(ctx context.Context, req *models.IndexRequest) (*models.IndexResponse, error)
}

// RateLimiter gates per-user actions. Satisfied by ratelimit.Limiter.
type RateLimiter interface {
	Allow(userID string, action ratelimit.Action) bool
}

type errorBody struct {
	Error string `json:"error"`
}

func respond(status int, payload any) events.APIGatewayV2HTTPResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("handler: failed to marshal response: %v", err)
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"error":"internal error"}`,
		}
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func respondError(status int, msg string) events.APIGatewayV2HTTPResponse {
	return respond(status, errorBody{Error: msg})
}

// statusFor maps an error to its HTTP status: validation 400, missing
// artifacts 404, provider failures 502, everything else 500.
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

func decodeBody(body string, out any) error {
	if body == "" {
		return errors.New("empty body")
	}
	return json.Unmarshal([]byte(body), out)
}

// requestID identifies one invocation in logs and the X-Request-Id response
// header. API Gateway's request ID is reused when present so log lines match
// the gateway's own; otherwise a fresh UUID is generated.
func requestID(req events.APIGatewayV2HTTPRequest) string {
	if id := req.RequestContext.RequestID; id != "" {
		return id
	}
	return uuid.NewString()
}

// withRequestID stamps the response with the invocation's request ID.
func withRequestID(resp events.APIGatewayV2HTTPResponse, id string) (events.APIGatewayV2HTTPResponse, error) {
	resp.Headers["X-Request-Id"] = id
	return resp, nil
}

// userID resolves the authenticated caller. The JWT authorizer's sub claim
// is authoritative; a dev header is accepted when no authorizer ran.
func userID(req events.APIGatewayV2HTTPRequest) string {
	if auth := req.RequestContext.Authorizer; auth != nil && auth.JWT != nil {
		if sub := auth.JWT.Claims["sub"]; sub != "" {
			return sub
		}
	}
	return req.Headers["x-user-id"]
}
