// Package mock provides scripted test doubles for the recognize package.
//
// Tests push Events into a Stream's EventsCh and observe how the consumer
// reacts. Set HoldOpen to keep EventsCh open after Close, which lets a test
// deliver events that arrive after the consumer asked the engine to stop.
package mock

import (
	"context"
	"sync"

	"github.com/verte-zerg/wordtrack/internal/recognize"
)

// Engine is a mock implementation of recognize.Engine.
type Engine struct {
	mu sync.Mutex

	// Unavailable makes Available report false.
	Unavailable bool

	// StartErr, if non-nil, is returned from Start.
	StartErr error

	// HoldOpen is copied to every Stream created by Start.
	HoldOpen bool

	// StartCalls records the Config of every Start call.
	StartCalls []recognize.Config

	// Streams records every Stream returned by Start, in order.
	Streams []*Stream
}

// Available implements recognize.Engine.
func (e *Engine) Available() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.Unavailable
}

// Start records the call and returns a new unbuffered Stream.
func (e *Engine) Start(_ context.Context, cfg recognize.Config) (recognize.Stream, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.StartCalls = append(e.StartCalls, cfg)
	if e.StartErr != nil {
		return nil, e.StartErr
	}
	s := &Stream{EventsCh: make(chan recognize.Event), HoldOpen: e.HoldOpen}
	e.Streams = append(e.Streams, s)
	return s, nil
}

// Last returns the most recently started stream, or nil.
func (e *Engine) Last() *Stream {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Streams) == 0 {
		return nil
	}
	return e.Streams[len(e.Streams)-1]
}

var _ recognize.Engine = (*Engine)(nil)

// Stream is a mock implementation of recognize.Stream.
type Stream struct {
	mu sync.Mutex

	// EventsCh is returned by Events. Sends block until the consumer reads.
	EventsCh chan recognize.Event

	// HoldOpen keeps EventsCh open on Close; call Finish to close it.
	HoldOpen bool

	// CloseCallCount is the number of times Close was called.
	CloseCallCount int

	finished bool
}

// Events implements recognize.Stream.
func (s *Stream) Events() <-chan recognize.Event {
	return s.EventsCh
}

// Close records the call and closes EventsCh unless HoldOpen is set.
func (s *Stream) Close() error {
	s.mu.Lock()
	s.CloseCallCount++
	hold := s.HoldOpen
	s.mu.Unlock()
	if !hold {
		s.Finish()
	}
	return nil
}

// Closed reports how many times Close was called.
func (s *Stream) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.CloseCallCount
}

// Finish closes EventsCh once.
func (s *Stream) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.finished = true
	close(s.EventsCh)
}

// Final builds a final event with a single alternative.
func Final(text string) recognize.Event {
	return recognize.Event{Results: []recognize.Result{{Alternatives: []string{text}, IsFinal: true}}}
}

// Interim builds a non-final event with a single alternative.
func Interim(text string) recognize.Event {
	return recognize.Event{Results: []recognize.Result{{Alternatives: []string{text}}}}
}

var _ recognize.Stream = (*Stream)(nil)
