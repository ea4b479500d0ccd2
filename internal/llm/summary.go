// ABOUTME: Document summary and suggested-question generation after indexing
// ABOUTME: Samples long documents and falls back to canned copy on parse failure
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/documentgpt/docchat/internal/models"
	"github.com/documentgpt/docchat/internal/util"
)

// DocumentBrief is the generated orientation blurb for a freshly indexed
// document: a short summary plus suggested questions for the chat UI.
type DocumentBrief struct {
	Summary   string   `json:"summary"`
	Questions []string `json:"questions"`
}

const briefSystemPrompt = `Return JSON {"summary":string, "questions":string[]} with a 3-5 sentence summary and 3 specific questions a reader might ask about the document.`

// maxBriefSample bounds how much document text is sent for summarization.
const maxBriefSample = 12000

// GenerateBrief produces a summary and suggested questions for a document.
// Long documents are sampled from the head, middle, and tail. When the model
// response cannot be parsed, a deterministic fallback is returned instead of
// an error so indexing never fails on summary generation.
func (c *Client) GenerateBrief(ctx context.Context, docName, text string) DocumentBrief {
	sample := sampleText(text, maxBriefSample)

	content, err := c.Complete(ctx, CompletionParams{
		System:      briefSystemPrompt,
		Messages:    []Message{{Role: models.RoleUser, Text: fmt.Sprintf("Document: %s\n\n%s", docName, sample)}},
		Temperature: 0,
		JSONMode:    true,
	})
	if err == nil {
		var brief DocumentBrief
		if jsonErr := json.Unmarshal([]byte(content), &brief); jsonErr == nil && brief.Summary != "" {
			return brief
		}
	}

	return DocumentBrief{
		Summary: fmt.Sprintf("This document (%s) contains %d characters. Upload successful - you can now ask questions about the content.", docName, len(text)),
		Questions: []string{
			"What are the main topics covered in this document?",
			"Can you summarize the key findings?",
			"What are the most important points?",
		},
	}
}

// sampleText returns up to limit characters: the whole text when it fits,
// otherwise head, middle, and tail excerpts on rune boundaries.
func sampleText(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	head := util.TruncateBytes(text, limit/3)
	mid := util.TruncateBytes(text[runeStart(text, len(text)/2):], limit/6)
	tail := text[runeStart(text, len(text)-limit/6):]
	return head + "\n...\n" + mid + "\n...\n" + tail
}

// runeStart moves i forward to the start of the next rune.
func runeStart(s string, i int) int {
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}
