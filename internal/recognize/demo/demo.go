// Package demo provides an offline recognition engine that speaks generated
// sentences. It is useful for trying wordtrack without a microphone.
package demo

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/wordtrack/internal/generator"
	"github.com/verte-zerg/wordtrack/internal/recognize"
)

const (
	defaultInterval = 1500 * time.Millisecond
	defaultWords    = 8
	boostFactor     = 3.0
)

var defaultVocabulary = []string{
	"the", "a", "and", "so", "like", "um", "uh", "basically", "actually",
	"really", "just", "you", "know", "I", "mean", "we", "were", "going",
	"to", "talk", "about", "this", "that", "project", "today", "right",
	"okay", "well", "think", "maybe", "literally", "kind", "of", "sort",
	"thing", "stuff", "yeah", "it", "is", "was",
}

// Option configures an Engine.
type Option func(*Engine)

// WithInterval sets the delay between spoken sentences.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithWords sets the number of words per sentence.
func WithWords(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.words = n
		}
	}
}

// WithVocabulary replaces the built-in vocabulary.
func WithVocabulary(words []string) Option {
	return func(e *Engine) {
		if len(words) > 0 {
			e.vocab = append([]string(nil), words...)
		}
	}
}

// WithBoost makes words returned by fn appear more often. fn is called once
// per sentence so newly tracked words show up while listening.
func WithBoost(fn func() []string) Option {
	return func(e *Engine) {
		e.boost = fn
	}
}

// WithGenerator replaces the sentence generator.
func WithGenerator(g *generator.Generator) Option {
	return func(e *Engine) {
		e.gen = g
	}
}

// Engine emits generated sentences as interim then final results.
type Engine struct {
	mu       sync.Mutex
	gen      *generator.Generator
	vocab    []string
	boost    func() []string
	interval time.Duration
	words    int
}

// New returns a demo Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		gen:      generator.New(),
		vocab:    defaultVocabulary,
		interval: defaultInterval,
		words:    defaultWords,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Available implements recognize.Engine.
func (e *Engine) Available() bool {
	return true
}

// Start implements recognize.Engine.
func (e *Engine) Start(ctx context.Context, cfg recognize.Config) (recognize.Stream, error) {
	s := &stream{
		events: make(chan recognize.Event),
		done:   make(chan struct{}),
	}
	go s.run(ctx, e, cfg)
	return s, nil
}

func (e *Engine) sentence() []string {
	vocab := e.vocab
	set := map[string]struct{}{}
	if e.boost != nil {
		for _, w := range e.boost() {
			key := strings.ToLower(w)
			if _, ok := set[key]; ok {
				continue
			}
			set[key] = struct{}{}
			vocab = append(vocab[:len(vocab):len(vocab)], w)
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen.GenerateWeighted(vocab, e.words, 0.1, 0, nil, set, boostFactor)
}

type stream struct {
	events chan recognize.Event
	done   chan struct{}
	once   sync.Once
}

func (s *stream) Events() <-chan recognize.Event {
	return s.events
}

func (s *stream) Close() error {
	s.once.Do(func() {
		close(s.done)
	})
	return nil
}

func (s *stream) run(ctx context.Context, e *Engine, cfg recognize.Config) {
	defer close(s.events)
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
		words := e.sentence()
		if cfg.InterimResults {
			for i := 1; i < len(words); i += 3 {
				if !s.send(ctx, strings.Join(words[:i], " "), false) {
					return
				}
			}
		}
		if !s.send(ctx, strings.Join(words, " "), true) {
			return
		}
	}
}

func (s *stream) send(ctx context.Context, text string, final bool) bool {
	ev := recognize.Event{Results: []recognize.Result{{Alternatives: []string{text}, IsFinal: final}}}
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	case <-ctx.Done():
		return false
	}
}
