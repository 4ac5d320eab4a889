// Package listen drives a recognition engine and forwards finalized speech to
// the word tracker.
package listen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/verte-zerg/wordtrack/internal/recognize"
)

var (
	// ErrUnavailable is returned by Start when the engine cannot run here.
	ErrUnavailable = errors.New("speech recognition unavailable")
	// ErrEngine wraps failures reported by the recognition engine.
	ErrEngine = errors.New("recognition engine error")
)

// State is the controller lifecycle state.
type State int

const (
	Idle State = iota
	Listening
)

func (s State) String() string {
	switch s {
	case Listening:
		return "listening"
	default:
		return "idle"
	}
}

// Sink receives finalized segments and listening lifecycle changes.
type Sink interface {
	ProcessSegment(ctx context.Context, text string) error
	BeginListening(ctx context.Context, id string)
	EndListening(ctx context.Context)
}

// NoticeKind identifies a Notice.
type NoticeKind int

const (
	// NoticeSegment follows a processed final segment. Err holds a save failure.
	NoticeSegment NoticeKind = iota
	// NoticeStopped follows the engine ending the stream on its own.
	NoticeStopped
	// NoticeFailed follows an engine error; the controller is idle again.
	NoticeFailed
)

// Notice reports asynchronous controller activity.
type Notice struct {
	Kind NoticeKind
	Err  error
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotify sets a callback for asynchronous activity. It is called without
// internal locks held and must not block for long.
func WithNotify(fn func(Notice)) Option {
	return func(c *Controller) {
		c.notify = fn
	}
}

// WithConfig sets the recognition settings passed to the engine.
func WithConfig(cfg recognize.Config) Option {
	return func(c *Controller) {
		c.cfg = cfg
	}
}

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// Controller starts and stops recognition. Each Start opens a new session
// token; events carrying an older token are dropped, so nothing delivered
// after Stop reaches the sink.
type Controller struct {
	engine recognize.Engine
	sink   Sink
	cfg    recognize.Config
	notify func(Notice)
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	session uint64
	stream  recognize.Stream
	cancel  context.CancelFunc
}

// New returns an idle Controller.
func New(engine recognize.Engine, sink Sink, opts ...Option) *Controller {
	c := &Controller{
		engine: engine,
		sink:   sink,
		cfg:    recognize.DefaultConfig(""),
		notify: func(Notice) {},
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Available reports whether the engine can run at all.
func (c *Controller) Available() bool {
	return c.engine != nil && c.engine.Available()
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start begins listening. It returns ErrUnavailable without side effects when
// the engine is missing, and does nothing when already listening.
func (c *Controller) Start(ctx context.Context) error {
	if !c.Available() {
		return ErrUnavailable
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Listening {
		return nil
	}

	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stream, err := c.engine.Start(streamCtx, c.cfg)
	if err != nil {
		cancel()
		return fmt.Errorf("%w: %w", ErrEngine, err)
	}

	c.session++
	token := c.session
	c.state = Listening
	c.stream = stream
	c.cancel = cancel

	id := uuid.NewString()
	c.sink.BeginListening(ctx, id)
	c.logger.Info("listening started", "session", id, "locale", c.cfg.Locale)

	go c.pump(streamCtx, token, stream)
	return nil
}

// Stop ends listening and clears the preview. It does nothing when idle.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Listening {
		c.mu.Unlock()
		return nil
	}
	stream, cancel := c.endLocked(ctx)
	c.mu.Unlock()

	c.logger.Info("listening stopped")
	return c.release(stream, cancel)
}

// endLocked moves to Idle and invalidates the current token. c.mu must be held.
func (c *Controller) endLocked(ctx context.Context) (recognize.Stream, context.CancelFunc) {
	c.session++
	c.state = Idle
	stream, cancel := c.stream, c.cancel
	c.stream, c.cancel = nil, nil
	c.sink.EndListening(ctx)
	return stream, cancel
}

func (c *Controller) release(stream recognize.Stream, cancel context.CancelFunc) error {
	var err error
	if stream != nil {
		if cerr := stream.Close(); cerr != nil {
			err = fmt.Errorf("close recognition stream: %w", cerr)
		}
	}
	if cancel != nil {
		cancel()
	}
	return err
}

// pump reads events until the engine closes the stream.
func (c *Controller) pump(ctx context.Context, token uint64, stream recognize.Stream) {
	for ev := range stream.Events() {
		c.handle(ctx, token, ev)
	}
	c.finish(ctx, token)
}

func (c *Controller) handle(ctx context.Context, token uint64, ev recognize.Event) {
	c.mu.Lock()
	if token != c.session || c.state != Listening {
		c.mu.Unlock()
		c.logger.Debug("dropping event from stale session")
		return
	}

	if ev.Err != nil {
		stream, cancel := c.endLocked(ctx)
		c.mu.Unlock()
		c.logger.Error("recognition failed", "err", ev.Err)
		if err := c.release(stream, cancel); err != nil {
			c.logger.Warn("recognition stream close failed", "err", err)
		}
		c.notify(Notice{Kind: NoticeFailed, Err: fmt.Errorf("%w: %w", ErrEngine, ev.Err)})
		return
	}

	text, ok := ev.Transcript()
	if !ok {
		c.mu.Unlock()
		return
	}
	err := c.sink.ProcessSegment(ctx, text)
	c.mu.Unlock()
	c.notify(Notice{Kind: NoticeSegment, Err: err})
}

// finish handles the engine closing its stream while still current.
func (c *Controller) finish(ctx context.Context, token uint64) {
	c.mu.Lock()
	if token != c.session || c.state != Listening {
		c.mu.Unlock()
		return
	}
	stream, cancel := c.endLocked(ctx)
	c.mu.Unlock()
	c.logger.Info("recognition stream ended")
	if err := c.release(stream, cancel); err != nil {
		c.logger.Warn("recognition stream close failed", "err", err)
	}
	c.notify(Notice{Kind: NoticeStopped})
}
