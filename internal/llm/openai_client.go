// ABOUTME: OpenAI client for embeddings and chat completions
// ABOUTME: Batched embedding calls, streaming completions, retry with backoff
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/documentgpt/docchat/internal/models"
	"github.com/documentgpt/docchat/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultChatModel is the default model for chat completions.
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings.
	DefaultEmbeddingModel = string(openai.SmallEmbedding3)

	// MaxBatchSize is the provider limit on inputs per embedding call.
	MaxBatchSize = 100
	// MaxInputChars is the provider character ceiling per embedding input.
	MaxInputChars = 8000
)

// ClientConfig holds configuration for the OpenAI client.
type ClientConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// Client wraps the OpenAI API client with retry logic.
type Client struct {
	client         *openai.Client
	chatModel      string
	embeddingModel string
	timeout        time.Duration
	maxRetries     int
	retryDelay     time.Duration
}

// NewClient creates a new OpenAI client with the given configuration.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	oaCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oaCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		client:         openai.NewClientWithConfig(oaCfg),
		chatModel:      cfg.ChatModel,
		embeddingModel: cfg.EmbeddingModel,
		timeout:        cfg.Timeout,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
	}, nil
}

// EmbeddingModelID returns the embedding model recorded in index artifacts.
func (c *Client) EmbeddingModelID() string {
	return c.embeddingModel
}

// EmbedBatch generates one embedding vector per input text, in input order.
// Inputs are truncated to the provider character ceiling and sent in batches
// of at most MaxBatchSize. An empty input returns an empty result without
// calling the provider.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	vectors := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch := make([]string, 0, end-start)
		for _, text := range texts[start:end] {
			batch = append(batch, util.TruncateBytes(text, MaxInputChars))
		}

		batchVectors, err := c.embedOnce(ctx, batch)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batchVectors...)
	}
	return vectors, nil
}

// Embed generates a single embedding vector for one text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *Client) embedOnce(ctx context.Context, batch []string) ([][]float64, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(c.retryDelay, attempt))
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.client.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
			Input: batch,
			Model: openai.EmbeddingModel(c.embeddingModel),
		})
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		if len(resp.Data) != len(batch) {
			lastErr = fmt.Errorf("attempt %d: got %d embeddings for %d inputs", attempt+1, len(resp.Data), len(batch))
			continue
		}

		vectors := make([][]float64, len(resp.Data))
		for i, item := range resp.Data {
			vector := make([]float64, len(item.Embedding))
			for j, v := range item.Embedding {
				vector[j] = float64(v)
			}
			vectors[i] = vector
		}
		return vectors, nil
	}

	return nil, &ProviderError{Op: OpEmbedding, Err: lastErr}
}

// Message is one prompt message for a chat completion.
type Message struct {
	Role models.Role
	Text string
}

// CompletionParams configures one chat completion call.
type CompletionParams struct {
	System      string
	Messages    []Message
	Temperature float32
	MaxTokens   int
	JSONMode    bool
}

// Complete runs a chat completion and returns the answer content. A missing
// or empty answer is a provider error, never a fabricated response.
func (c *Client) Complete(ctx context.Context, params CompletionParams) (string, error) {
	req := c.buildRequest(params)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(c.retryDelay, attempt))
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.client.CreateChatCompletion(callCtx, req)
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			lastErr = fmt.Errorf("attempt %d: no completion content returned", attempt+1)
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}

	return "", &ProviderError{Op: OpCompletion, Err: lastErr}
}

// TokenStream yields streamed completion deltas. Satisfied by the OpenAI
// chat completion stream.
type TokenStream interface {
	Recv() (openai.ChatCompletionStreamResponse, error)
	Close() error
}

// CompleteStream opens a streaming chat completion. The caller owns the
// stream and must Close it; once issued the call runs to completion or
// failure.
func (c *Client) CompleteStream(ctx context.Context, params CompletionParams) (TokenStream, error) {
	req := c.buildRequest(params)
	req.Stream = true

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, &ProviderError{Op: OpCompletion, Err: err}
	}
	return stream, nil
}

func (c *Client) buildRequest(params CompletionParams) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(params.Messages)+1)
	if params.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: params.System,
		})
	}
	for _, m := range params.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}

	req := openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    messages,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	}
	if params.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	return req
}
