// Package model defines shared data structures.
package model

import "time"

// Config defines listening settings.
type Config struct {
	Engine      string
	Locale      string
	PreviewSize int
	LogLevel    string

	DaemonSocket string

	DeepgramAPIKey     string
	DeepgramModel      string
	DeepgramSampleRate int
	DeepgramAudio      string

	DemoInterval time.Duration
	DemoWords    int
	DemoWordList string
}

// TrackedWord is a word being counted.
type TrackedWord struct {
	// Key is the case-folded identity of the word.
	Key string
	// Display is the word as first entered.
	Display  string
	Lifetime int
	// Session counts occurrences since the registry was loaded. Never persisted.
	Session int
}

// Entry is the persisted form of a tracked word.
type Entry struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// PreviewToken is a recent word annotated for highlighting.
type PreviewToken struct {
	Text    string
	Tracked bool
}

// Snapshot is a read-only view of tracker state for presentation.
type Snapshot struct {
	Words   []TrackedWord
	Preview []PreviewToken
}

// ListenSession summarizes one start/stop cycle.
type ListenSession struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	Segments  int
	Tokens    int
	Matches   int
}

// HistoryConfig defines filters for history output.
type HistoryConfig struct {
	Since *time.Time
	Last  int
}
