// ABOUTME: Answer composer: turns a question plus retrieved evidence into a reply
// ABOUTME: Grounded answers must cite evidence; streaming sends citations first
package composer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"

	"github.com/documentgpt/docchat/internal/llm"
	"github.com/documentgpt/docchat/internal/models"
	"github.com/documentgpt/docchat/internal/util"
)

const (
	groundedSystemPrompt = "You are a careful assistant answering questions about one specific document. " +
		"Use ONLY the numbered EVIDENCE sections below. Every factual sentence must end with a citation marker like [1]. " +
		"If the evidence does not support an answer, say you can't find it in the document."

	generalSystemPrompt = "You are a helpful AI assistant."

	// NoContextReply is returned when the document has no usable index yet.
	NoContextReply = "I couldn't find relevant passages in this document. It may not have finished indexing yet."

	// NoCitationFallback replaces a grounded answer that cites nothing.
	NoCitationFallback = "I can't find support for that in the document."

	maxEvidenceChars = 1200
	maxHistoryTurns  = 20
	maxHistoryChars  = 500

	groundedTemperature float32 = 0
	generalTemperature  float32 = 0.7
	groundedMaxTokens           = 500
	generalMaxTokens            = 1000
)

var citationMarker = regexp.MustCompile(`\[\d+\]`)

// ErrNoCitation marks a grounded answer that contained no citation markers.
// The caller still receives a usable response; the error is for observability.
var ErrNoCitation = errors.New("grounded answer contained no citations")

// Completer is the completion surface the composer needs. Satisfied by
// llm.Client.
type Completer interface {
	Complete(ctx context.Context, params llm.CompletionParams) (string, error)
	CompleteStream(ctx context.Context, params llm.CompletionParams) (llm.TokenStream, error)
}

// DocumentRetriever finds the most relevant chunks of one document.
// Satisfied by retriever.Retriever.
type DocumentRetriever interface {
	Retrieve(ctx context.Context, query, documentID string, topK int) ([]models.ScoredChunk, error)
}

// Composer assembles prompts and produces answers in two modes: general chat
// when no document is in play, grounded evidence-cited answers when one is.
type Composer struct {
	llm       Completer
	retriever DocumentRetriever
}

// New creates a Composer.
func New(completer Completer, retriever DocumentRetriever) *Composer {
	return &Composer{llm: completer, retriever: retriever}
}

// Answer produces a complete, non-streaming chat response. The request is
// assumed validated at the boundary.
func (c *Composer) Answer(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	if req.DocumentID == "" {
		answer, err := c.llm.Complete(ctx, c.generalParams(req))
		if err != nil {
			return nil, err
		}
		return &models.ChatResponse{Mode: models.ModeGeneral, Answer: answer, Citations: []models.Citation{}}, nil
	}

	results, err := c.retriever.Retrieve(ctx, req.Query, req.DocumentID, req.TopK)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &models.ChatResponse{Mode: models.ModeGrounded, Answer: NoContextReply, Citations: []models.Citation{}}, nil
	}

	citations := buildCitations(req.DocumentID, results)
	answer, err := c.llm.Complete(ctx, c.groundedParams(req, results))
	if err != nil {
		return nil, err
	}

	if !citationMarker.MatchString(answer) {
		log.Printf("composer: grounded answer for %s cited nothing, replacing", req.DocumentID)
		return &models.ChatResponse{
			Mode:        models.ModeGrounded,
			Answer:      NoCitationFallback,
			Citations:   []models.Citation{},
			ContextUsed: len(results),
		}, ErrNoCitation
	}

	return &models.ChatResponse{
		Mode:        models.ModeGrounded,
		Answer:      answer,
		Citations:   citations,
		ContextUsed: len(results),
	}, nil
}

// StreamAnswer produces the same answer as Answer but as a frame stream:
// one metadata frame with citations, token frames as the model produces
// them, then a done frame. The channel is unbuffered so a slow consumer
// paces the producer. Retrieval errors are returned before any frame is
// sent; provider failures mid-stream arrive as an error frame.
func (c *Composer) StreamAnswer(ctx context.Context, req *models.ChatRequest) (<-chan models.StreamFrame, error) {
	var (
		params    llm.CompletionParams
		citations []models.Citation
		grounded  bool
		noContext bool
	)

	if req.DocumentID == "" {
		params = c.generalParams(req)
	} else {
		grounded = true
		results, err := c.retriever.Retrieve(ctx, req.Query, req.DocumentID, req.TopK)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			noContext = true
		} else {
			citations = buildCitations(req.DocumentID, results)
			params = c.groundedParams(req, results)
		}
	}

	frames := make(chan models.StreamFrame)
	go func() {
		defer close(frames)

		if !send(ctx, frames, models.StreamFrame{Event: models.StreamEventMetadata, Citations: citations}) {
			return
		}
		if noContext {
			if send(ctx, frames, models.StreamFrame{Token: NoContextReply}) {
				send(ctx, frames, models.StreamFrame{Event: models.StreamEventDone})
			}
			return
		}

		stream, err := c.llm.CompleteStream(ctx, params)
		if err != nil {
			send(ctx, frames, models.StreamFrame{Error: err.Error()})
			return
		}
		defer stream.Close()

		var full strings.Builder
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				send(ctx, frames, models.StreamFrame{Error: err.Error()})
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			token := resp.Choices[0].Delta.Content
			if token == "" {
				continue
			}
			full.WriteString(token)
			if !send(ctx, frames, models.StreamFrame{Token: token}) {
				return
			}
		}

		// A grounded stream that cited nothing cannot be rewritten after
		// the fact, so the correction is appended.
		if grounded && !citationMarker.MatchString(full.String()) {
			if !send(ctx, frames, models.StreamFrame{Token: "\n\n" + NoCitationFallback}) {
				return
			}
		}
		send(ctx, frames, models.StreamFrame{Event: models.StreamEventDone})
	}()
	return frames, nil
}

func send(ctx context.Context, frames chan<- models.StreamFrame, frame models.StreamFrame) bool {
	select {
	case frames <- frame:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Composer) generalParams(req *models.ChatRequest) llm.CompletionParams {
	history := models.TrimHistory(req.History, maxHistoryTurns)
	messages := make([]llm.Message, 0, len(history)+1)
	for _, turn := range history {
		messages = append(messages, llm.Message{Role: turn.Role, Text: trimTurn(turn.Text)})
	}
	messages = append(messages, llm.Message{Role: models.RoleUser, Text: req.Query})

	return llm.CompletionParams{
		System:      generalSystemPrompt,
		Messages:    messages,
		Temperature: generalTemperature,
		MaxTokens:   generalMaxTokens,
	}
}

func (c *Composer) groundedParams(req *models.ChatRequest, results []models.ScoredChunk) llm.CompletionParams {
	var b strings.Builder
	b.WriteString("EVIDENCE:\n")
	for i, sc := range results {
		text := util.TruncateBytes(sc.Chunk.Text, maxEvidenceChars)
		fmt.Fprintf(&b, "[%d] (page %d) %s\n\n", i+1, sc.Chunk.Page, text)
	}

	if history := formatHistory(req.History); history != "" {
		b.WriteString("CONVERSATION SO FAR:\n")
		b.WriteString(history)
		b.WriteString("\n")
	}

	if hint := intentHint(req.Query); hint != "" {
		b.WriteString(hint)
		b.WriteString("\n\n")
	}

	b.WriteString("QUESTION: ")
	b.WriteString(req.Query)

	return llm.CompletionParams{
		System:      groundedSystemPrompt,
		Messages:    []llm.Message{{Role: models.RoleUser, Text: b.String()}},
		Temperature: groundedTemperature,
		MaxTokens:   groundedMaxTokens,
	}
}

// intentHint steers summary and comparison questions, which otherwise tend
// to answer from a single chunk.
func intentHint(query string) string {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "summar") || strings.Contains(q, "tl;dr") || strings.Contains(q, "overview"):
		return "Write a summary that draws on every evidence section, not just the first."
	case strings.Contains(q, "compare") || strings.Contains(q, "versus") || strings.Contains(q, " vs ") || strings.Contains(q, "difference between"):
		return "Compare the items point by point, citing evidence for each side."
	default:
		return ""
	}
}

func formatHistory(history []models.ConversationTurn) string {
	history = models.TrimHistory(history, maxHistoryTurns)
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	for _, turn := range history {
		label := "User"
		if turn.Role == models.RoleAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, trimTurn(turn.Text))
	}
	return b.String()
}

func trimTurn(text string) string {
	return util.TruncateBytes(text, maxHistoryChars)
}

func buildCitations(documentID string, results []models.ScoredChunk) []models.Citation {
	citations := make([]models.Citation, len(results))
	for i, sc := range results {
		citations[i] = models.NewCitation(i+1, documentID, sc)
	}
	return citations
}
