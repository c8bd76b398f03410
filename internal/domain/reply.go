package domain

import (
	"strings"
	"unicode"
)

const MaxMessageLength = 2000

// SplitReply cuts text into chunks of at most limit runes, preferring to
// break after a newline or space in the second half of a window.
// Concatenating the chunks yields the original text.
func SplitReply(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 {
		limit = MaxMessageLength
	}

	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/limit+1)
	for len(runes) > limit {
		cut := breakPoint(runes[:limit])
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}

	return chunks
}

func breakPoint(window []rune) int {
	half := len(window) / 2
	for i := len(window) - 1; i >= half; i-- {
		if window[i] == '\n' {
			return i + 1
		}
	}
	for i := len(window) - 1; i >= half; i-- {
		if unicode.IsSpace(window[i]) {
			return i + 1
		}
	}
	return len(window)
}

const truncationSuffix = "…"

// TruncateAnswer caps text at limit runes, marking the cut.
func TruncateAnswer(text string, limit int) string {
	if limit <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	suffix := []rune(truncationSuffix)
	if limit <= len(suffix) {
		return string(runes[:limit])
	}

	return strings.TrimRightFunc(string(runes[:limit-len(suffix)]), unicode.IsSpace) + truncationSuffix
}
