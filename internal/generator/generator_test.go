package generator

import (
	"strings"
	"testing"
)

func TestGenerateCountAndVocabulary(t *testing.T) {
	g := NewSeeded(1)
	words := []string{"alpha", "beta", "gamma"}
	out := g.Generate(words, 10, 0, 0, nil)
	if len(out) != 10 {
		t.Fatalf("expected 10 words, got %d", len(out))
	}
	for _, w := range out {
		if w != "alpha" && w != "beta" && w != "gamma" {
			t.Fatalf("unexpected word %q", w)
		}
	}
}

func TestGenerateEmptyVocabulary(t *testing.T) {
	if out := NewSeeded(1).Generate(nil, 5, 0, 0, nil); out != nil {
		t.Fatalf("expected nil for empty vocabulary, got %v", out)
	}
}

func TestGenerateWeightedFavorsBoost(t *testing.T) {
	g := NewSeeded(7)
	words := []string{"a", "b", "c", "d", "Like"}
	boost := map[string]struct{}{"like": {}}
	out := g.GenerateWeighted(words, 2000, 0, 0, nil, boost, 20)
	hits := 0
	for _, w := range out {
		if w == "Like" {
			hits++
		}
	}
	// Expected share is 21/25.
	if hits < 1400 {
		t.Fatalf("expected boosted word to dominate, got %d of %d", hits, len(out))
	}
}

func TestCapsAndPunct(t *testing.T) {
	g := NewSeeded(3)
	out := g.Generate([]string{"word"}, 5, 1, 1, []rune{'.'})
	for _, w := range out {
		if !strings.HasPrefix(w, "W") || !strings.HasSuffix(w, ".") {
			t.Fatalf("expected capitalized punctuated word, got %q", w)
		}
	}
}
