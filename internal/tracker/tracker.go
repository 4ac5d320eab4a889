// Package tracker holds the word counting state shared by the recognizer and
// user actions.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/verte-zerg/wordtrack/internal/model"
	"github.com/verte-zerg/wordtrack/internal/preview"
	"github.com/verte-zerg/wordtrack/internal/registry"
	"github.com/verte-zerg/wordtrack/internal/tokenize"
)

// Recorder stores summaries of finished listening sessions.
type Recorder interface {
	InsertSession(ctx context.Context, sess model.ListenSession) error
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithRecorder records a history row whenever listening ends.
func WithRecorder(r Recorder) Option {
	return func(t *Tracker) {
		t.recorder = r
	}
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = l
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// Tracker owns the registry and preview window. Every method runs as one
// step under a single lock, so a segment is never interleaved with another
// segment or with an add/remove.
type Tracker struct {
	mu       sync.Mutex
	reg      *registry.Registry
	window   *preview.Window
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time

	current *model.ListenSession
}

// New returns a Tracker over reg and window.
func New(reg *registry.Registry, window *preview.Window, opts ...Option) *Tracker {
	t := &Tracker{
		reg:    reg,
		window: window,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// ProcessSegment counts tracked words in one finalized segment and appends its
// tokens to the preview. The returned error only reports a failed save.
func (t *Tracker) ProcessSegment(ctx context.Context, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	tokens := tokenize.Words(text)
	if len(tokens) == 0 {
		return nil
	}
	freq := tokenize.Frequencies(tokens)
	_, err := t.reg.ApplyCounts(ctx, freq)
	t.window.Append(tokens)

	if t.current != nil {
		t.current.Segments++
		t.current.Tokens += len(tokens)
		for key, n := range freq {
			if t.reg.Contains(key) {
				t.current.Matches += n
			}
		}
	}
	if err != nil {
		t.logger.Warn("tracked words not saved", "err", err)
	}
	return err
}

// Add starts tracking word. See registry.Registry.Add.
func (t *Tracker) Add(ctx context.Context, word string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	added, err := t.reg.Add(ctx, word)
	if err != nil {
		t.logger.Warn("tracked words not saved", "op", "add", "err", err)
	}
	return added, err
}

// Remove stops tracking the word displayed as display. See registry.Registry.Remove.
func (t *Tracker) Remove(ctx context.Context, display string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	removed, err := t.reg.Remove(ctx, display)
	if err != nil {
		t.logger.Warn("tracked words not saved", "op", "remove", "err", err)
	}
	return removed, err
}

// Words returns the tracked words in insertion order.
func (t *Tracker) Words() []model.TrackedWord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reg.List()
}

// IsTracked reports whether a preview token matches a tracked word.
func (t *Tracker) IsTracked(token string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reg.Contains(token)
}

// Snapshot returns the tracked words and the preview annotated for display.
func (t *Tracker) Snapshot() model.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	tokens := t.window.Tokens()
	previewTokens := make([]model.PreviewToken, len(tokens))
	for i, tok := range tokens {
		previewTokens[i] = model.PreviewToken{Text: tok, Tracked: t.reg.Contains(tok)}
	}
	return model.Snapshot{Words: t.reg.List(), Preview: previewTokens}
}

// BeginListening starts collecting statistics for a listening session.
func (t *Tracker) BeginListening(_ context.Context, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = &model.ListenSession{ID: id, StartedAt: t.now()}
}

// EndListening clears the preview and records the finished session.
func (t *Tracker) EndListening(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.window.Clear()
	if t.current == nil {
		return
	}
	sess := *t.current
	t.current = nil
	sess.EndedAt = t.now()
	if t.recorder == nil {
		return
	}
	if err := t.recorder.InsertSession(ctx, sess); err != nil {
		t.logger.Warn("listening session not recorded", "session", sess.ID, "err", err)
	}
}
