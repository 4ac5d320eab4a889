package wordlist

import "unicode"

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// Filter returns the words accepted by keep, preserving order.
func Filter(words []string, keep FilterFunc) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out
}

// Speakable accepts single words made of letters, with inner apostrophes or
// hyphens allowed ("don't", "co-op").
func Speakable(word string) bool {
	if word == "" {
		return false
	}
	runes := []rune(word)
	for i, r := range runes {
		if unicode.IsLetter(r) {
			continue
		}
		if (r == '\'' || r == '’' || r == '-') && i > 0 && i < len(runes)-1 {
			continue
		}
		return false
	}
	return true
}
