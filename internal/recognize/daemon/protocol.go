// Package daemon connects to a local transcription daemon over a Unix socket.
//
// The daemon speaks newline-delimited JSON. A client sends one Command per
// line and reads one Response per line; after a subscribe command the
// connection carries a stream of Event lines instead.
package daemon

// Event names emitted by the daemon.
const (
	EventPartial = "partial"
	EventSegment = "segment"
	EventError   = "error"
	EventStatus  = "status"
)

// Command is sent from a client to the daemon.
type Command struct {
	Cmd    string   `json:"cmd"`
	Locale string   `json:"locale,omitempty"`
	Events []string `json:"events,omitempty"`
}

// Response is returned by the daemon after processing a command.
type Response struct {
	OK        bool   `json:"ok"`
	SessionID string `json:"sessionId,omitempty"`
	Recording *bool  `json:"recording,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Event is streamed from the daemon to subscribed clients.
type Event struct {
	Event          string `json:"event"`
	Text           string `json:"text,omitempty"`
	SessionID      string `json:"sessionId,omitempty"`
	SequenceNumber *int   `json:"sequenceNumber,omitempty"`
	Message        string `json:"message,omitempty"`
	Transient      *bool  `json:"transient,omitempty"`
	Recording      *bool  `json:"recording,omitempty"`
}
