// Package registry owns the set of tracked words and their counters.
package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/verte-zerg/wordtrack/internal/model"
	"github.com/verte-zerg/wordtrack/internal/tokenize"
)

// Persister stores the lifetime counters of tracked words.
type Persister interface {
	Load(ctx context.Context) ([]model.Entry, error)
	Save(ctx context.Context, entries []model.Entry) error
	Clear(ctx context.Context) error
}

// Registry keeps tracked words in insertion order. It is not safe for
// concurrent use; callers serialize access.
type Registry struct {
	words   []model.TrackedWord
	persist Persister
}

// New returns an empty registry backed by p. A nil Persister disables persistence.
func New(p Persister) *Registry {
	return &Registry{persist: p}
}

// Load restores a registry from p. Session counters start at zero. When the
// stored state cannot be read the registry starts empty and the error is
// returned for reporting.
func Load(ctx context.Context, p Persister) (*Registry, error) {
	r := New(p)
	if p == nil {
		return r, nil
	}
	entries, err := p.Load(ctx)
	if err != nil {
		return r, fmt.Errorf("failed to load tracked words: %w", err)
	}
	for _, e := range entries {
		display := strings.TrimSpace(e.Word)
		key := tokenize.Normalize(display)
		if key == "" || r.indexOfKey(key) >= 0 {
			continue
		}
		count := e.Count
		if count < 0 {
			count = 0
		}
		r.words = append(r.words, model.TrackedWord{Key: key, Display: display, Lifetime: count})
	}
	return r, nil
}

// Add starts tracking raw. Empty input and words already tracked under any
// casing are ignored and report false. The error only reflects persistence;
// the word stays tracked either way.
func (r *Registry) Add(ctx context.Context, raw string) (bool, error) {
	display := strings.TrimSpace(raw)
	if display == "" {
		return false, nil
	}
	key := tokenize.Normalize(display)
	if r.indexOfKey(key) >= 0 {
		return false, nil
	}
	r.words = append(r.words, model.TrackedWord{Key: key, Display: display})
	return true, r.save(ctx)
}

// Remove stops tracking the word whose display form equals display exactly.
// Matching is case-sensitive, unlike Add.
func (r *Registry) Remove(ctx context.Context, display string) (bool, error) {
	idx := -1
	for i, w := range r.words {
		if w.Display == display {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}
	r.words = append(r.words[:idx], r.words[idx+1:]...)
	return true, r.save(ctx)
}

// ApplyCounts adds freq[key] to both counters of every tracked word and
// saves when anything changed.
func (r *Registry) ApplyCounts(ctx context.Context, freq map[string]int) (bool, error) {
	changed := false
	for i := range r.words {
		n := freq[r.words[i].Key]
		if n <= 0 {
			continue
		}
		r.words[i].Lifetime += n
		r.words[i].Session += n
		changed = true
	}
	if !changed {
		return false, nil
	}
	return true, r.save(ctx)
}

// List returns a copy of the tracked words in insertion order.
func (r *Registry) List() []model.TrackedWord {
	out := make([]model.TrackedWord, len(r.words))
	copy(out, r.words)
	return out
}

// Contains reports whether key, already normalized, is tracked.
func (r *Registry) Contains(key string) bool {
	return r.indexOfKey(key) >= 0
}

// Len returns the number of tracked words.
func (r *Registry) Len() int {
	return len(r.words)
}

func (r *Registry) indexOfKey(key string) int {
	for i, w := range r.words {
		if w.Key == key {
			return i
		}
	}
	return -1
}

// save writes the current state, or erases it once nothing is tracked.
func (r *Registry) save(ctx context.Context) error {
	if r.persist == nil {
		return nil
	}
	if len(r.words) == 0 {
		if err := r.persist.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear tracked words: %w", err)
		}
		return nil
	}
	entries := make([]model.Entry, len(r.words))
	for i, w := range r.words {
		entries[i] = model.Entry{Word: w.Display, Count: w.Lifetime}
	}
	if err := r.persist.Save(ctx, entries); err != nil {
		return fmt.Errorf("failed to save tracked words: %w", err)
	}
	return nil
}
