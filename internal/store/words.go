package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/verte-zerg/wordtrack/internal/model"
)

// TrackedWordsKey is the kv key holding the tracked word list.
const TrackedWordsKey = "tracked_words"

// WordStore persists tracked words as a JSON list under a single key.
type WordStore struct {
	store  *Store
	key    string
	logger *slog.Logger
}

// NewWordStore returns a WordStore on st using TrackedWordsKey.
func NewWordStore(st *Store, logger *slog.Logger) *WordStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &WordStore{store: st, key: TrackedWordsKey, logger: logger}
}

// Load returns the stored entries. A missing or unreadable payload yields no
// entries rather than an error.
func (w *WordStore) Load(ctx context.Context) ([]model.Entry, error) {
	raw, err := w.store.Get(ctx, w.key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", w.key, err)
	}
	var entries []model.Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		w.logger.Warn("discarding malformed tracked words", "key", w.key, "err", err)
		return nil, nil
	}
	return entries, nil
}

// Save overwrites the stored entries.
func (w *WordStore) Save(ctx context.Context, entries []model.Entry) error {
	if entries == nil {
		entries = []model.Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode %s: %w", w.key, err)
	}
	if err := w.store.Put(ctx, w.key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", w.key, err)
	}
	return nil
}

// Clear deletes the stored record.
func (w *WordStore) Clear(ctx context.Context) error {
	if err := w.store.Delete(ctx, w.key); err != nil {
		return fmt.Errorf("delete %s: %w", w.key, err)
	}
	return nil
}
