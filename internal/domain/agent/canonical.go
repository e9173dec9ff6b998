package agent

import (
	"regexp"
	"strings"
)

// Display names arrive in several spellings for the same underlying model:
// spacing variants of brand names and a family of "thinking mode" suffixes.
// The persistent score table is keyed by the canonical form so all variants
// accrue to one row.
var (
	chatGPTSpacing = regexp.MustCompile(`(?i)Chat\s*GPT`)

	thinkingSuffixes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\s*\(Ext\)\s*Thinking`),
		regexp.MustCompile(`(?i)\s*\[Ext\.\s*Thinking\]`),
		regexp.MustCompile(`(?i)\s*\[Thinking\]`),
		regexp.MustCompile(`(?i)\s*\(Thinking\)`),
		regexp.MustCompile(`(?i)\s+Thinking$`),
	}
)

// Canonicalize normalizes a display name to its persistent score key:
// brand spacing is collapsed, thinking-mode suffixes are stripped case
// insensitively, and surrounding whitespace is trimmed. Idempotent, so it is
// safe to apply to names that may already be canonical.
func Canonicalize(name string) string {
	if name == "" {
		return name
	}
	clean := chatGPTSpacing.ReplaceAllString(name, "ChatGPT")
	for _, re := range thinkingSuffixes {
		clean = re.ReplaceAllString(clean, "")
	}
	return strings.TrimSpace(clean)
}
