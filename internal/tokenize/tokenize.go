// Package tokenize splits transcript text into normalized word tokens.
package tokenize

import "strings"

// Words splits text on whitespace and case-folds each token.
// Punctuation is kept as part of the token.
func Words(text string) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, strings.ToLower(f))
	}
	return tokens
}

// Frequencies counts occurrences of each token.
func Frequencies(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		freq[tok]++
	}
	return freq
}

// Normalize returns the registry key for a user-entered word.
func Normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
