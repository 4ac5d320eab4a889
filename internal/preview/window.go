// Package preview keeps a bounded trail of recently heard words.
package preview

// DefaultSize is the number of tokens kept when no size is configured.
const DefaultSize = 20

// Window retains at most size tokens, oldest first.
type Window struct {
	size   int
	tokens []string
}

// New returns a Window holding at most size tokens. Sizes below 1 use DefaultSize.
func New(size int) *Window {
	if size < 1 {
		size = DefaultSize
	}
	return &Window{size: size, tokens: make([]string, 0, size)}
}

// Append adds tokens and drops the oldest entries beyond the window size.
func (w *Window) Append(tokens []string) {
	if len(tokens) == 0 {
		return
	}
	if len(tokens) >= w.size {
		w.tokens = append(w.tokens[:0], tokens[len(tokens)-w.size:]...)
		return
	}
	w.tokens = append(w.tokens, tokens...)
	if over := len(w.tokens) - w.size; over > 0 {
		n := copy(w.tokens, w.tokens[over:])
		w.tokens = w.tokens[:n]
	}
}

// Clear empties the window.
func (w *Window) Clear() {
	w.tokens = w.tokens[:0]
}

// Tokens returns a copy of the current tokens.
func (w *Window) Tokens() []string {
	out := make([]string, len(w.tokens))
	copy(out, w.tokens)
	return out
}

// Len returns the number of tokens held.
func (w *Window) Len() int {
	return len(w.tokens)
}

// Size returns the window capacity.
func (w *Window) Size() int {
	return w.size
}
