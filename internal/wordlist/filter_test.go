package wordlist

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSpeakable(t *testing.T) {
	for _, word := range []string{"hello", "résumé", "naïve", "don’t", "co-op", "Like"} {
		if !Speakable(word) {
			t.Fatalf("expected %q to be speakable", word)
		}
	}
	for _, word := range []string{"", "two words", "-dash", "42", "end'", "like,"} {
		if Speakable(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}

func TestFilter(t *testing.T) {
	got := Filter([]string{"um", "3d", "like"}, Speakable)
	if !reflect.DeepEqual(got, []string{"um", "like"}) {
		t.Fatalf("unexpected filter result %v", got)
	}
}

func TestLoadWordsSkipsCommentsAndBlanks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	data := "# fillers\nlike\n\n  um  \n#basically\nyou know\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	words, err := LoadWords(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(words, []string{"like", "um", "you know"}) {
		t.Fatalf("unexpected words %v", words)
	}
}

func TestLoadWordsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("# only a comment\n\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadWords(path); err == nil {
		t.Fatalf("expected error for empty list")
	}
}
