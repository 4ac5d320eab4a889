// Package deepgram streams raw PCM audio to the Deepgram live transcription
// API and reports its results as recognize events.
package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/coder/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/wordtrack/internal/recognize"
)

const (
	deepgramEndpoint  = "wss://api.deepgram.com/v1/listen"
	defaultModel      = "nova-3"
	defaultSampleRate = 16000
	// 100ms of 16-bit mono audio at the default rate.
	chunkSize = 3200
)

// AudioSource opens the PCM stream for one recognition session.
type AudioSource func() (io.ReadCloser, error)

// Option is a functional option for configuring the Engine.
type Option func(*Engine)

// WithModel sets the Deepgram model (e.g., "nova-3", "base").
func WithModel(model string) Option {
	return func(e *Engine) {
		if model != "" {
			e.model = model
		}
	}
}

// WithSampleRate sets the sample rate of the audio source in Hz.
func WithSampleRate(rate int) Option {
	return func(e *Engine) {
		if rate > 0 {
			e.sampleRate = rate
		}
	}
}

// WithAudio sets where audio comes from. Without it the engine is unavailable.
func WithAudio(src AudioSource) Option {
	return func(e *Engine) {
		e.audio = src
	}
}

// WithEndpoint overrides the streaming endpoint URL.
func WithEndpoint(endpoint string) Option {
	return func(e *Engine) {
		e.endpoint = endpoint
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine implements recognize.Engine backed by the Deepgram streaming API.
type Engine struct {
	apiKey     string
	model      string
	sampleRate int
	endpoint   string
	audio      AudioSource
	logger     *slog.Logger
}

// New creates a Deepgram Engine.
func New(apiKey string, opts ...Option) *Engine {
	e := &Engine{
		apiKey:     apiKey,
		model:      defaultModel,
		sampleRate: defaultSampleRate,
		endpoint:   deepgramEndpoint,
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Available reports whether an API key and an audio source are configured.
func (e *Engine) Available() bool {
	return e.apiKey != "" && e.audio != nil
}

// Start dials Deepgram and begins streaming audio.
func (e *Engine) Start(ctx context.Context, cfg recognize.Config) (recognize.Stream, error) {
	if !e.Available() {
		return nil, errors.New("deepgram: api key or audio source missing")
	}
	wsURL, err := e.buildURL(cfg)
	if err != nil {
		return nil, fmt.Errorf("deepgram: build URL: %w", err)
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+e.apiKey)
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{HTTPHeader: headers})
	if err != nil {
		return nil, fmt.Errorf("deepgram: dial: %w", err)
	}

	audio, err := e.audio()
	if err != nil {
		_ = conn.Close(websocket.StatusInternalError, "audio unavailable")
		return nil, fmt.Errorf("deepgram: open audio: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s := &stream{
		conn:   conn,
		audio:  audio,
		events: make(chan recognize.Event, 16),
		done:   make(chan struct{}),
		cancel: cancel,
		logger: e.logger,
	}
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return s.readLoop(gctx) })
	g.Go(func() error { return s.writeLoop(gctx) })
	go s.wait(g)
	return s, nil
}

// buildURL constructs the streaming endpoint URL for cfg.
func (e *Engine) buildURL(cfg recognize.Config) (string, error) {
	u, err := url.Parse(e.endpoint)
	if err != nil {
		return "", err
	}
	lang := cfg.Locale
	if lang == "" {
		lang = recognize.DefaultLocale
	}
	q := u.Query()
	q.Set("model", e.model)
	q.Set("language", lang)
	q.Set("encoding", "linear16")
	q.Set("channels", "1")
	q.Set("sample_rate", strconv.Itoa(e.sampleRate))
	q.Set("interim_results", strconv.FormatBool(cfg.InterimResults))
	if !cfg.Continuous {
		q.Set("endpointing", "true")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// response is the JSON structure of a Deepgram Results message.
type response struct {
	Type    string `json:"type"`
	IsFinal bool   `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"channel"`
}

// parseResponse converts a raw message. ok is false for messages to skip.
func parseResponse(data []byte) (recognize.Event, bool) {
	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		return recognize.Event{}, false
	}
	if resp.Type != "Results" || len(resp.Channel.Alternatives) == 0 {
		return recognize.Event{}, false
	}
	alts := make([]string, 0, len(resp.Channel.Alternatives))
	for _, a := range resp.Channel.Alternatives {
		alts = append(alts, a.Transcript)
	}
	if alts[0] == "" {
		return recognize.Event{}, false
	}
	return recognize.Event{Results: []recognize.Result{{Alternatives: alts, IsFinal: resp.IsFinal}}}, true
}

type stream struct {
	conn   *websocket.Conn
	audio  io.ReadCloser
	events chan recognize.Event
	done   chan struct{}
	once   sync.Once
	cancel context.CancelFunc
	logger *slog.Logger
}

func (s *stream) Events() <-chan recognize.Event {
	return s.events
}

// Close stops streaming. Pending results are discarded.
func (s *stream) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.cancel()
		_ = s.audio.Close()
		_ = s.conn.Close(websocket.StatusNormalClosure, "session closed")
	})
	return nil
}

func (s *stream) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// wait reports the first loop failure and ends the event stream.
func (s *stream) wait(g *errgroup.Group) {
	defer close(s.events)
	err := g.Wait()
	if err == nil || s.closed() {
		return
	}
	select {
	case s.events <- recognize.Event{Err: err}:
	case <-s.done:
	}
}

// readLoop receives JSON messages until the server closes the connection.
func (s *stream) readLoop(ctx context.Context) error {
	for {
		_, msg, err := s.conn.Read(ctx)
		if err != nil {
			if s.closed() || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return fmt.Errorf("deepgram: read: %w", err)
		}
		ev, ok := parseResponse(msg)
		if !ok {
			continue
		}
		select {
		case s.events <- ev:
		case <-s.done:
			return nil
		}
	}
}

// writeLoop sends audio in binary frames and asks Deepgram to flush at EOF.
func (s *stream) writeLoop(ctx context.Context) error {
	buf := make([]byte, chunkSize)
	for {
		n, err := s.audio.Read(buf)
		if n > 0 {
			if werr := s.conn.Write(ctx, websocket.MessageBinary, buf[:n]); werr != nil {
				if s.closed() {
					return nil
				}
				return fmt.Errorf("deepgram: write: %w", werr)
			}
		}
		if errors.Is(err, io.EOF) {
			s.logger.Debug("deepgram audio source drained")
			if werr := s.conn.Write(ctx, websocket.MessageText, []byte(`{"type":"CloseStream"}`)); werr != nil && !s.closed() {
				return fmt.Errorf("deepgram: close stream: %w", werr)
			}
			return nil
		}
		if err != nil {
			if s.closed() {
				return nil
			}
			return fmt.Errorf("deepgram: read audio: %w", err)
		}
	}
}
