package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/verte-zerg/wordtrack/internal/recognize"
)

// DefaultSocketPath returns the socket path used when none is configured.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "wordtrack", "transcribe.sock")
	}
	return filepath.Join(os.TempDir(), "wordtrack-transcribe.sock")
}

// Engine implements recognize.Engine on top of the daemon protocol. It uses
// one connection for commands and a second one for the event subscription.
type Engine struct {
	socketPath string
	logger     *slog.Logger
}

// New returns an Engine for the daemon listening on socketPath.
func New(socketPath string, logger *slog.Logger) *Engine {
	if socketPath == "" {
		socketPath = DefaultSocketPath()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{socketPath: socketPath, logger: logger}
}

// Available reports whether the daemon socket exists.
func (e *Engine) Available() bool {
	info, err := os.Stat(e.socketPath)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSocket != 0
}

// Start subscribes to transcription events and asks the daemon to record.
func (e *Engine) Start(_ context.Context, cfg recognize.Config) (recognize.Stream, error) {
	evClient, err := Connect(e.socketPath)
	if err != nil {
		return nil, err
	}
	resp, err := evClient.SendCommand(Command{
		Cmd:    "subscribe",
		Events: []string{EventPartial, EventSegment, EventError, EventStatus},
	})
	if err != nil {
		_ = evClient.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	if !resp.OK {
		_ = evClient.Close()
		return nil, fmt.Errorf("subscribe: %s", resp.Error)
	}

	client, err := Connect(e.socketPath)
	if err != nil {
		_ = evClient.Close()
		return nil, err
	}
	resp, err = client.SendCommand(Command{Cmd: "start", Locale: cfg.Locale})
	if err == nil && !resp.OK {
		err = errors.New(resp.Error)
	}
	if err != nil {
		_ = evClient.Close()
		_ = client.Close()
		return nil, fmt.Errorf("start recording: %w", err)
	}
	e.logger.Debug("daemon recording started", "session", resp.SessionID, "locale", cfg.Locale)

	s := &stream{
		client:   client,
		evClient: evClient,
		interim:  cfg.InterimResults,
		events:   make(chan recognize.Event, 16),
		done:     make(chan struct{}),
		logger:   e.logger,
	}
	go s.readLoop()
	return s, nil
}

type stream struct {
	client   *Client
	evClient *Client
	interim  bool
	events   chan recognize.Event
	done     chan struct{}
	once     sync.Once
	logger   *slog.Logger
}

func (s *stream) Events() <-chan recognize.Event {
	return s.events
}

// Close asks the daemon to stop recording and drops both connections.
func (s *stream) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		if resp, serr := s.client.SendCommand(Command{Cmd: "stop"}); serr != nil {
			err = fmt.Errorf("stop recording: %w", serr)
		} else if !resp.OK {
			err = fmt.Errorf("stop recording: %s", resp.Error)
		}
		_ = s.evClient.Close()
		_ = s.client.Close()
	})
	return err
}

func (s *stream) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *stream) readLoop() {
	defer close(s.events)
	for {
		ev, err := s.evClient.ReadEvent()
		if err != nil {
			if !s.closed() {
				s.emit(recognize.Event{Err: err})
			}
			return
		}
		out, ok, end := s.translate(ev)
		if end {
			return
		}
		if ok && !s.emit(out) {
			return
		}
	}
}

// translate maps a daemon event. end is set when the daemon stopped recording.
func (s *stream) translate(ev Event) (out recognize.Event, ok bool, end bool) {
	switch ev.Event {
	case EventPartial:
		if !s.interim {
			return recognize.Event{}, false, false
		}
		return resultEvent(ev.Text, false), true, false
	case EventSegment:
		return resultEvent(ev.Text, true), true, false
	case EventError:
		if ev.Transient != nil && *ev.Transient {
			s.logger.Warn("daemon reported transient error", "message", ev.Message)
			return recognize.Event{}, false, false
		}
		msg := ev.Message
		if msg == "" {
			msg = "unknown daemon error"
		}
		return recognize.Event{Err: errors.New(msg)}, true, false
	case EventStatus:
		if ev.Recording != nil && !*ev.Recording {
			return recognize.Event{}, false, true
		}
	}
	return recognize.Event{}, false, false
}

func (s *stream) emit(ev recognize.Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

func resultEvent(text string, final bool) recognize.Event {
	return recognize.Event{Results: []recognize.Result{{Alternatives: []string{text}, IsFinal: final}}}
}
