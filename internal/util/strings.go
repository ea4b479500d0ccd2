// ABOUTME: String helpers for byte-budget truncation
// ABOUTME: Cuts never land inside a multi-byte UTF-8 rune
package util

import "unicode/utf8"

// TruncateBytes returns s cut to at most max bytes. The cut backs up to the
// nearest rune start, so the result is always valid UTF-8 when s is.
func TruncateBytes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
