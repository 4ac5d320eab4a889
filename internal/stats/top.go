package stats

import (
	"sort"

	"github.com/verte-zerg/wordtrack/internal/model"
)

// TopWords returns tracked words ordered by lifetime count, highest first.
// Ties keep their original order. n <= 0 returns all words.
func TopWords(words []model.TrackedWord, n int) []model.TrackedWord {
	if len(words) == 0 {
		return nil
	}
	out := make([]model.TrackedWord, len(words))
	copy(out, words)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Lifetime > out[j].Lifetime
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
