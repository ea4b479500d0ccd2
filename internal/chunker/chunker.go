// ABOUTME: Chunker splits normalized text into overlapping token-bounded segments
// ABOUTME: Packs sentences greedily; identical input always yields identical chunks
package chunker

import (
	"strings"

	"github.com/documentgpt/docchat/internal/models"
)

const (
	// DefaultMaxTokens bounds one chunk's estimated size.
	DefaultMaxTokens = 500
	// DefaultOverlapTokens is carried from the tail of one chunk into the next.
	DefaultOverlapTokens = 50
	// DefaultMinChunkChars filters out noise fragments.
	DefaultMinChunkChars = 100

	// Tokens are estimated as ceil(chars/4); see models.EstimateTokens.
	charsPerToken = 4
	// Page numbers are estimated from character offsets when the extractor
	// provides none.
	charsPerPage = 3000
)

// Config holds chunking parameters. Zero values fall back to defaults.
type Config struct {
	MaxTokens     int
	OverlapTokens int
	MinChunkChars int
}

// Chunker splits text into chunk pieces.
type Chunker struct {
	maxChars     int
	overlapChars int
	minChars     int
}

// New creates a Chunker, applying defaults for zero config fields.
func New(cfg Config) *Chunker {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.OverlapTokens < 0 {
		cfg.OverlapTokens = 0
	} else if cfg.OverlapTokens == 0 {
		cfg.OverlapTokens = DefaultOverlapTokens
	}
	if cfg.MinChunkChars <= 0 {
		cfg.MinChunkChars = DefaultMinChunkChars
	}
	return &Chunker{
		maxChars:     cfg.MaxTokens * charsPerToken,
		overlapChars: cfg.OverlapTokens * charsPerToken,
		minChars:     cfg.MinChunkChars,
	}
}

// Piece is one chunk of text plus its approximate character offset in the
// source, used for page estimation.
type Piece struct {
	Text  string
	Start int
}

// Split breaks text into overlapping pieces. An empty input yields no pieces.
// Text without sentence boundaries falls back to fixed-size character slices.
func (c *Chunker) Split(text string) []Piece {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	sentences := splitSentences(text)
	if len(sentences) <= 1 && len(text) > c.maxChars {
		return c.splitFixed(text)
	}

	var pieces []Piece
	var cur strings.Builder
	curStart := 0

	for _, sent := range sentences {
		if cur.Len() > 0 && cur.Len()+1+len(sent.text) > c.maxChars {
			if cur.Len() >= c.minChars {
				pieces = append(pieces, Piece{Text: strings.TrimSpace(cur.String()), Start: curStart})
			}
			tail := overlapTail(cur.String(), c.overlapChars)
			cur.Reset()
			cur.WriteString(tail)
			curStart = sent.start - len(tail)
			if curStart < 0 {
				curStart = 0
			}
		}
		if cur.Len() == 0 {
			curStart = sent.start
		} else {
			cur.WriteByte(' ')
		}
		cur.WriteString(sent.text)
	}

	if cur.Len() >= c.minChars {
		pieces = append(pieces, Piece{Text: strings.TrimSpace(cur.String()), Start: curStart})
	}
	return pieces
}

// BuildChunks splits text and derives chunk records with stable IDs, page
// estimates, and token counts. Embeddings are attached later by the indexer.
func (c *Chunker) BuildChunks(documentID, text string) []models.Chunk {
	pieces := c.Split(text)
	chunks := make([]models.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, models.Chunk{
			ID:         models.NewChunkID(documentID, i, piece.Text),
			Page:       piece.Start/charsPerPage + 1,
			Text:       piece.Text,
			TokenCount: models.EstimateTokens(piece.Text),
		})
	}
	return chunks
}

// splitFixed slices text into fixed-size chunks with overlap. Used when no
// sentence boundaries are found.
func (c *Chunker) splitFixed(text string) []Piece {
	var pieces []Piece
	step := c.maxChars - c.overlapChars
	if step <= 0 {
		step = c.maxChars
	}
	for start := 0; start < len(text); start += step {
		end := start + c.maxChars
		if end > len(text) {
			end = len(text)
		}
		slice := strings.TrimSpace(text[start:end])
		if len(slice) >= c.minChars {
			pieces = append(pieces, Piece{Text: slice, Start: start})
		}
		if end == len(text) {
			break
		}
	}
	return pieces
}

// overlapTail returns the trailing n characters of text, extended to the next
// word boundary so the overlap carries whole words.
func overlapTail(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(text) <= n {
		return text
	}
	tail := text[len(text)-n:]
	if idx := strings.IndexByte(tail, ' '); idx >= 0 {
		tail = tail[idx+1:]
	}
	return tail
}

type sentence struct {
	text  string
	start int
}

var sentenceEnders = []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}

// splitSentences breaks text on sentence boundaries, keeping each sentence's
// start offset in the original text.
func splitSentences(text string) []sentence {
	var sentences []sentence
	start := 0

	for i := 0; i < len(text); i++ {
		for _, ender := range sentenceEnders {
			if i+len(ender) <= len(text) && text[i:i+len(ender)] == ender {
				raw := text[start : i+1]
				if trimmed := strings.TrimSpace(raw); trimmed != "" {
					sentences = append(sentences, sentence{text: trimmed, start: start})
				}
				start = i + len(ender)
				i += len(ender) - 1
				break
			}
		}
	}

	if trimmed := strings.TrimSpace(text[start:]); trimmed != "" {
		sentences = append(sentences, sentence{text: trimmed, start: start})
	}
	return sentences
}
