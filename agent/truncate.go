package agent

import (
	"fmt"
	"unicode/utf8"
)

// DefaultMaxResultBytes bounds a tool result fed back to the engine.
const DefaultMaxResultBytes = 32 * 1024

// TruncateResult describes the outcome of head truncation.
type TruncateResult struct {
	Content     string
	Truncated   bool
	TotalBytes  int
	OutputBytes int
}

// Truncate keeps at most maxBytes bytes from the start of s, cutting on a
// rune boundary. A non-positive maxBytes disables truncation.
func Truncate(s string, maxBytes int) TruncateResult {
	total := len(s)
	if maxBytes <= 0 || total <= maxBytes {
		return TruncateResult{Content: s, TotalBytes: total, OutputBytes: total}
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return TruncateResult{
		Content:     s[:cut],
		Truncated:   true,
		TotalBytes:  total,
		OutputBytes: cut,
	}
}

// Notice is appended to truncated content so the engine knows data is missing.
func (r TruncateResult) Notice() string {
	if !r.Truncated {
		return ""
	}
	return fmt.Sprintf("\n[result truncated: showing %d of %d bytes]", r.OutputBytes, r.TotalBytes)
}
