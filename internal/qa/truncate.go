package qa

import "strings"

// TruncateWords keeps at most max whitespace-separated words of text, joined with single
// spaces. Text within the cap is returned trimmed but otherwise untouched.
func TruncateWords(text string, max int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || max <= 0 {
		return trimmed
	}
	words := strings.Fields(trimmed)
	if len(words) <= max {
		return trimmed
	}
	return strings.Join(words[:max], " ")
}
