package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/verte-zerg/wordtrack/internal/model"
	"github.com/verte-zerg/wordtrack/internal/recognize"
	"github.com/verte-zerg/wordtrack/internal/recognize/daemon"
	"github.com/verte-zerg/wordtrack/internal/recognize/deepgram"
	"github.com/verte-zerg/wordtrack/internal/recognize/demo"
	"github.com/verte-zerg/wordtrack/internal/tracker"
	"github.com/verte-zerg/wordtrack/internal/wordlist"
)

const (
	engineDaemon   = "daemon"
	engineDeepgram = "deepgram"
	engineDemo     = "demo"
)

// buildEngine returns the recognition engine selected by cfg. Engines that
// cannot run here are still returned; they report Available() == false.
func buildEngine(cfg model.Config, tr *tracker.Tracker, logger *slog.Logger) (recognize.Engine, error) {
	switch cfg.Engine {
	case engineDaemon:
		return daemon.New(cfg.DaemonSocket, logger), nil
	case engineDeepgram:
		opts := []deepgram.Option{
			deepgram.WithModel(cfg.DeepgramModel),
			deepgram.WithSampleRate(cfg.DeepgramSampleRate),
			deepgram.WithLogger(logger),
		}
		if cfg.DeepgramAudio != "" {
			opts = append(opts, deepgram.WithAudio(audioSource(cfg.DeepgramAudio)))
		}
		return deepgram.New(cfg.DeepgramAPIKey, opts...), nil
	case engineDemo:
		opts := []demo.Option{
			demo.WithInterval(cfg.DemoInterval),
			demo.WithWords(cfg.DemoWords),
			demo.WithBoost(func() []string { return trackedDisplays(tr) }),
		}
		if cfg.DemoWordList != "" {
			words, err := wordlist.LoadWords(cfg.DemoWordList)
			if err != nil {
				return nil, fmt.Errorf("failed to load demo word list: %w", err)
			}
			words = wordlist.Filter(words, wordlist.Speakable)
			if len(words) == 0 {
				return nil, fmt.Errorf("demo word list %s has no usable words", cfg.DemoWordList)
			}
			opts = append(opts, demo.WithVocabulary(words))
		}
		return demo.New(opts...), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}

func trackedDisplays(tr *tracker.Tracker) []string {
	words := tr.Words()
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, w.Display)
	}
	return out
}

// audioSource opens path for each session. "-" reads stdin, which is never
// closed by the engine.
func audioSource(path string) deepgram.AudioSource {
	return func() (io.ReadCloser, error) {
		if path == "-" {
			return io.NopCloser(os.Stdin), nil
		}
		return os.Open(path)
	}
}
