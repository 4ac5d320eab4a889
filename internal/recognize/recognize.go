// Package recognize defines the boundary to speech recognition engines.
//
// An engine produces a stream of Events while listening. Each event carries
// the results the engine currently holds; consumers look at the latest result
// and ignore it unless the engine marked it final.
package recognize

import (
	"context"
	"errors"
)

// ErrClosed is returned when using a stream after Close.
var ErrClosed = errors.New("recognize: stream closed")

// DefaultLocale is the recognition language used when none is configured.
const DefaultLocale = "en-US"

// Config describes how an engine should listen.
type Config struct {
	Continuous     bool
	InterimResults bool
	// Locale is a BCP-47 language tag such as "en-US".
	Locale string
}

// DefaultConfig returns continuous recognition with interim results.
func DefaultConfig(locale string) Config {
	if locale == "" {
		locale = DefaultLocale
	}
	return Config{Continuous: true, InterimResults: true, Locale: locale}
}

// Result is one recognition hypothesis group.
type Result struct {
	// Alternatives holds candidate transcriptions, best first.
	Alternatives []string
	// IsFinal is set once the engine will no longer revise the result.
	IsFinal bool
}

// Event is a single delivery from an engine. Either Results or Err is set.
type Event struct {
	Results []Result
	Err     error
}

// Latest returns the last result of the event.
func (e Event) Latest() (Result, bool) {
	if len(e.Results) == 0 {
		return Result{}, false
	}
	return e.Results[len(e.Results)-1], true
}

// Transcript returns the best alternative of the latest result when it is final.
func (e Event) Transcript() (string, bool) {
	res, ok := e.Latest()
	if !ok || !res.IsFinal || len(res.Alternatives) == 0 {
		return "", false
	}
	return res.Alternatives[0], true
}

// Stream is an open recognition session.
type Stream interface {
	// Events is closed when the stream ends.
	Events() <-chan Event
	// Close stops recognition. Calling Close more than once is safe.
	Close() error
}

// Engine starts recognition streams.
type Engine interface {
	// Available reports whether the engine can run on this system.
	Available() bool
	Start(ctx context.Context, cfg Config) (Stream, error)
}
