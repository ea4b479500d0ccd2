// ABOUTME: Pure text normalizer for extracted document text
// ABOUTME: Strips page-number lines, rule artifacts, and invisible characters
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// Lines that are nothing but a page number, e.g. "12", "- 12 -", "Page 3",
	// "Page 3 of 10".
	pageNumberLine = regexp.MustCompile(`(?i)^\s*(?:-\s*)?(?:page\s+)?\d+(?:\s+of\s+\d+)?(?:\s*-)?\s*$`)

	// Repeated horizontal-rule artifacts: three or more rule characters.
	ruleLine = regexp.MustCompile(`^\s*[-_=*~]{3,}\s*$`)

	// Runs of spaces and tabs inside a line.
	spaceRun = regexp.MustCompile(`[ \t]+`)

	// Three or more consecutive newlines collapse to a paragraph break.
	blankRun = regexp.MustCompile(`\n{3,}`)
)

// Zero-width and soft-hyphen characters that survive PDF extraction.
var invisibleRunes = map[rune]bool{
	'\u200b': true, // zero width space
	'\u200c': true, // zero width non-joiner
	'\u200d': true, // zero width joiner
	'\ufeff': true, // byte order mark
	'\u00ad': true, // soft hyphen
}

// Normalize cleans raw extracted text for chunking. It is a pure function and
// idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	text := stripInvisible(raw)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && (pageNumberLine.MatchString(line) || ruleLine.MatchString(line)) {
			continue
		}
		line = spaceRun.ReplaceAllString(line, " ")
		cleaned = append(cleaned, strings.TrimSpace(line))
	}

	text = strings.Join(cleaned, "\n")
	// Preserve paragraph breaks but cap at two consecutive newlines.
	text = blankRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// stripInvisible removes zero-width and control characters, keeping newlines
// and tabs for the line pass above.
func stripInvisible(text string) string {
	return strings.Map(func(r rune) rune {
		if invisibleRunes[r] {
			return -1
		}
		if r == '\n' || r == '\t' || r == '\r' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}
