package listen

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/verte-zerg/wordtrack/internal/preview"
	"github.com/verte-zerg/wordtrack/internal/recognize"
	"github.com/verte-zerg/wordtrack/internal/recognize/mock"
	"github.com/verte-zerg/wordtrack/internal/registry"
	"github.com/verte-zerg/wordtrack/internal/tracker"
)

type harness struct {
	engine  *mock.Engine
	tracker *tracker.Tracker
	ctrl    *Controller
	notices chan Notice
}

func newHarness(t *testing.T, engine *mock.Engine, words ...string) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := registry.New(nil)
	for _, w := range words {
		if _, err := reg.Add(context.Background(), w); err != nil {
			t.Fatalf("add %q: %v", w, err)
		}
	}
	tr := tracker.New(reg, preview.New(20), tracker.WithLogger(logger))
	notices := make(chan Notice, 16)
	ctrl := New(engine, tr,
		WithLogger(logger),
		WithConfig(recognize.DefaultConfig("en-US")),
		WithNotify(func(n Notice) { notices <- n }),
	)
	return &harness{engine: engine, tracker: tr, ctrl: ctrl, notices: notices}
}

func (h *harness) wait(t *testing.T, kind NoticeKind) Notice {
	t.Helper()
	select {
	case n := <-h.notices:
		if n.Kind != kind {
			t.Fatalf("expected notice %d, got %+v", kind, n)
		}
		return n
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for notice %d", kind)
	}
	return Notice{}
}

func (h *harness) count(t *testing.T) int {
	t.Helper()
	words := h.tracker.Words()
	if len(words) == 0 {
		t.Fatalf("no tracked words")
	}
	return words[0].Lifetime
}

func TestStartUnavailable(t *testing.T) {
	h := newHarness(t, &mock.Engine{Unavailable: true})
	if err := h.ctrl.Start(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if h.ctrl.State() != Idle {
		t.Fatalf("expected idle state")
	}
	if h.ctrl.Available() {
		t.Fatalf("expected capability to be reported absent")
	}
	if len(h.engine.StartCalls) != 0 {
		t.Fatalf("engine must not be started")
	}
}

func TestStartTwiceIsNoop(t *testing.T) {
	h := newHarness(t, &mock.Engine{})
	ctx := context.Background()
	if err := h.ctrl.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := h.ctrl.Start(ctx); err != nil {
		t.Fatalf("second start: %v", err)
	}
	if len(h.engine.StartCalls) != 1 {
		t.Fatalf("expected a single engine start, got %d", len(h.engine.StartCalls))
	}
	cfg := h.engine.StartCalls[0]
	if !cfg.Continuous || !cfg.InterimResults || cfg.Locale != "en-US" {
		t.Fatalf("unexpected engine config: %+v", cfg)
	}
	_ = h.ctrl.Stop(ctx)
}

func TestStopWhenIdleIsNoop(t *testing.T) {
	h := newHarness(t, &mock.Engine{})
	if err := h.ctrl.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if h.ctrl.State() != Idle {
		t.Fatalf("expected idle")
	}
}

func TestStartFailureStaysIdle(t *testing.T) {
	h := newHarness(t, &mock.Engine{StartErr: errors.New("no mic")})
	err := h.ctrl.Start(context.Background())
	if !errors.Is(err, ErrEngine) {
		t.Fatalf("expected ErrEngine, got %v", err)
	}
	if h.ctrl.State() != Idle {
		t.Fatalf("expected idle after failed start")
	}
}

func TestInterimEventsNeverCount(t *testing.T) {
	h := newHarness(t, &mock.Engine{}, "the")
	ctx := context.Background()
	if err := h.ctrl.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	stream := h.engine.Last()
	stream.EventsCh <- mock.Interim("the the")
	stream.EventsCh <- mock.Interim("the the the")
	stream.EventsCh <- mock.Final("the cat sat on the mat")
	h.wait(t, NoticeSegment)

	if got := h.count(t); got != 2 {
		t.Fatalf("expected only the final segment counted, got %d", got)
	}
	words := h.tracker.Words()
	if words[0].Session != 2 {
		t.Fatalf("expected session count 2, got %d", words[0].Session)
	}
	if n := len(h.tracker.Snapshot().Preview); n != 6 {
		t.Fatalf("expected 6 preview tokens, got %d", n)
	}
	_ = h.ctrl.Stop(ctx)
}

func TestOnlyLatestResultIsConsumed(t *testing.T) {
	h := newHarness(t, &mock.Engine{}, "yes")
	ctx := context.Background()
	if err := h.ctrl.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	stream := h.engine.Last()
	stream.EventsCh <- recognize.Event{Results: []recognize.Result{
		{Alternatives: []string{"yes yes"}, IsFinal: true},
		{Alternatives: []string{"yes", "no"}, IsFinal: true},
	}}
	h.wait(t, NoticeSegment)
	if got := h.count(t); got != 1 {
		t.Fatalf("expected latest result's best alternative only, got %d", got)
	}
	_ = h.ctrl.Stop(ctx)
}

func TestStopClearsPreview(t *testing.T) {
	h := newHarness(t, &mock.Engine{}, "a")
	ctx := context.Background()
	_ = h.ctrl.Start(ctx)
	h.engine.Last().EventsCh <- mock.Final("a b c")
	h.wait(t, NoticeSegment)
	if err := h.ctrl.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if h.ctrl.State() != Idle {
		t.Fatalf("expected idle after stop")
	}
	if n := len(h.tracker.Snapshot().Preview); n != 0 {
		t.Fatalf("expected empty preview, got %d tokens", n)
	}
	if h.engine.Last().Closed() != 1 {
		t.Fatalf("expected stream closed once")
	}
}

func TestEventAfterStopIsIgnored(t *testing.T) {
	engine := &mock.Engine{HoldOpen: true}
	h := newHarness(t, engine, "late")
	ctx := context.Background()
	_ = h.ctrl.Start(ctx)
	stream := engine.Last()
	if err := h.ctrl.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	// The engine has not acknowledged the stop yet and keeps delivering.
	stream.EventsCh <- mock.Final("late late late")
	// The unbuffered send below completes only once the previous event was handled.
	stream.EventsCh <- mock.Final("late")
	stream.Finish()

	if got := h.count(t); got != 0 {
		t.Fatalf("expected stale events ignored, got count %d", got)
	}
	if n := len(h.tracker.Snapshot().Preview); n != 0 {
		t.Fatalf("expected preview untouched, got %d tokens", n)
	}
	select {
	case n := <-h.notices:
		t.Fatalf("unexpected notice for stale event: %+v", n)
	default:
	}
}

func TestStaleSubscriptionIgnoredAfterRestart(t *testing.T) {
	engine := &mock.Engine{HoldOpen: true}
	h := newHarness(t, engine, "word")
	ctx := context.Background()
	_ = h.ctrl.Start(ctx)
	first := engine.Last()
	_ = h.ctrl.Stop(ctx)
	_ = h.ctrl.Start(ctx)
	second := engine.Last()
	if first == second {
		t.Fatalf("expected a new stream per start")
	}

	first.EventsCh <- mock.Final("word word")
	first.EventsCh <- mock.Final("word")
	first.Finish()
	if got := h.count(t); got != 0 {
		t.Fatalf("old subscription leaked into new session: %d", got)
	}

	second.EventsCh <- mock.Final("word")
	h.wait(t, NoticeSegment)
	if got := h.count(t); got != 1 {
		t.Fatalf("expected current session counted, got %d", got)
	}
	_ = h.ctrl.Stop(ctx)
	second.Finish()
}

func TestEngineErrorStopsAndReports(t *testing.T) {
	h := newHarness(t, &mock.Engine{}, "x")
	ctx := context.Background()
	_ = h.ctrl.Start(ctx)
	stream := h.engine.Last()
	stream.EventsCh <- mock.Final("x y")
	h.wait(t, NoticeSegment)

	stream.EventsCh <- recognize.Event{Err: errors.New("network lost")}
	n := h.wait(t, NoticeFailed)
	if !errors.Is(n.Err, ErrEngine) {
		t.Fatalf("expected ErrEngine, got %v", n.Err)
	}
	if h.ctrl.State() != Idle {
		t.Fatalf("expected idle after engine error")
	}
	if len(h.tracker.Snapshot().Preview) != 0 {
		t.Fatalf("expected preview cleared after engine error")
	}
	if len(h.engine.StartCalls) != 1 {
		t.Fatalf("controller must not retry automatically")
	}

	// The user may start again.
	if err := h.ctrl.Start(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if h.ctrl.State() != Listening {
		t.Fatalf("expected listening after restart")
	}
	_ = h.ctrl.Stop(ctx)
}

func TestEngineEndingStreamReturnsToIdle(t *testing.T) {
	h := newHarness(t, &mock.Engine{HoldOpen: true}, "x")
	ctx := context.Background()
	_ = h.ctrl.Start(ctx)
	h.engine.Last().Finish()
	h.wait(t, NoticeStopped)
	if h.ctrl.State() != Idle {
		t.Fatalf("expected idle after stream end")
	}
}

func TestStateString(t *testing.T) {
	if Idle.String() != "idle" || Listening.String() != "listening" {
		t.Fatalf("unexpected state names")
	}
}
