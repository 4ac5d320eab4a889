package preview

import (
	"fmt"
	"reflect"
	"testing"
)

func TestWindowKeepsLastTokens(t *testing.T) {
	w := New(3)
	w.Append([]string{"a", "b"})
	w.Append([]string{"c", "d"})
	if got := w.Tokens(); !reflect.DeepEqual(got, []string{"b", "c", "d"}) {
		t.Fatalf("unexpected tokens: %v", got)
	}
}

func TestWindowNeverExceedsSize(t *testing.T) {
	w := New(20)
	for i := 0; i < 50; i++ {
		batch := make([]string, i%7+1)
		for j := range batch {
			batch[j] = fmt.Sprintf("w%d-%d", i, j)
		}
		w.Append(batch)
		if w.Len() > 20 {
			t.Fatalf("window grew to %d tokens", w.Len())
		}
	}
	big := make([]string, 45)
	for i := range big {
		big[i] = fmt.Sprintf("big%d", i)
	}
	w.Append(big)
	got := w.Tokens()
	if len(got) != 20 {
		t.Fatalf("expected 20 tokens, got %d", len(got))
	}
	if got[0] != "big25" || got[19] != "big44" {
		t.Fatalf("unexpected window bounds: %s..%s", got[0], got[19])
	}
}

func TestWindowClear(t *testing.T) {
	w := New(5)
	w.Append([]string{"x", "y"})
	w.Clear()
	if w.Len() != 0 {
		t.Fatalf("expected empty window, got %v", w.Tokens())
	}
}

func TestNewDefaultsSize(t *testing.T) {
	if got := New(0).Size(); got != DefaultSize {
		t.Fatalf("expected default size %d, got %d", DefaultSize, got)
	}
}

func TestTokensReturnsCopy(t *testing.T) {
	w := New(2)
	w.Append([]string{"a"})
	out := w.Tokens()
	out[0] = "z"
	if w.Tokens()[0] != "a" {
		t.Fatalf("window mutated through returned slice")
	}
}
