package conversation_test

import (
	"strings"
	"testing"

	"github.com/synod-io/synod/internal/domain/conversation"
)

func TestNormalizeTitleStripsQuotes(t *testing.T) {
	cases := map[string]string{
		`"Rust Borrow Checker"`: "Rust Borrow Checker",
		`'Quantum Computing'`:   "Quantum Computing",
		`"'Mixed Quotes'"`:      "Mixed Quotes",
		"  Plain With Spaces  ": "Plain With Spaces",
		"Already Clean":         "Already Clean",
		`"Leading quote only`:   "Leading quote only",
		"Ends with period.":     "Ends with period.",
	}
	for in, want := range cases {
		if got := conversation.NormalizeTitle(in); got != want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeTitleTruncatesLongTitles(t *testing.T) {
	long := strings.Repeat("a", 60)
	got := conversation.NormalizeTitle(long)

	want := strings.Repeat("a", 47) + "..."
	if got != want {
		t.Fatalf("expected truncation to 47 chars plus ellipsis, got %q", got)
	}
	if len([]rune(got)) != 50 {
		t.Fatalf("expected 50 runes, got %d", len([]rune(got)))
	}
}

func TestNormalizeTitleKeepsFiftyCharTitle(t *testing.T) {
	exact := strings.Repeat("b", 50)
	if got := conversation.NormalizeTitle(exact); got != exact {
		t.Fatalf("expected 50-char title untouched, got %q", got)
	}
}

func TestNormalizeTitleEmptyFallsBack(t *testing.T) {
	for _, in := range []string{"", "   ", `""`, `''`} {
		if got := conversation.NormalizeTitle(in); got != conversation.DefaultTitle {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", in, got, conversation.DefaultTitle)
		}
	}
}
