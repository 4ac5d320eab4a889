package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/wordtrack/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MatchRate returns the share of tokens that were tracked words.
func MatchRate(matches, tokens int) float64 {
	if tokens <= 0 {
		return 0
	}
	return float64(matches) / float64(tokens)
}

// MatchesPerMinute returns how often tracked words were heard.
func MatchesPerMinute(matches int, d time.Duration) float64 {
	minutes := d.Minutes()
	if minutes <= 0 {
		return 0
	}
	return float64(matches) / minutes
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints totals across the history and a match rate trend.
func RenderSummary(w io.Writer, h History, window int) error {
	if len(h.Sessions) == 0 {
		_, err := fmt.Fprintln(w, "No listening sessions found.")
		return err
	}
	var listened time.Duration
	var tokens, matches int
	for _, s := range h.Sessions {
		listened += s.EndedAt.Sub(s.StartedAt)
		tokens += s.Tokens
		matches += s.Matches
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(h.Sessions)),
		fmt.Sprintf("Listening time: %s", listened.Round(time.Second)),
		fmt.Sprintf("Words heard: %d", tokens),
		fmt.Sprintf("Tracked words heard: %d", matches),
		fmt.Sprintf("Match rate: %.2f%%", MatchRate(matches, tokens)*100),
		fmt.Sprintf("Per minute: %.2f", MatchesPerMinute(matches, listened)),
	}
	if len(h.Rates) > 1 {
		lines = append(lines, fmt.Sprintf("Trend: [%s]", Sparkline(MovingAverage(h.Rates, window))))
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSessionTable prints one row per listening session.
func RenderSessionTable(w io.Writer, sessions []model.ListenSession, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	headers := []string{"Started", "Duration", "Segments", "Words", "Tracked", "Rate"}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			s.EndedAt.Sub(s.StartedAt).Round(time.Second).String(),
			fmt.Sprintf("%d", s.Segments),
			fmt.Sprintf("%d", s.Tokens),
			fmt.Sprintf("%d", s.Matches),
			fmt.Sprintf("%.2f%%", MatchRate(s.Matches, s.Tokens)*100),
		})
	}
	return writeTable(w, headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}, useColor)
}

// RenderWordTable prints tracked words with their counts. The session column
// is only meaningful while a tracker is live.
func RenderWordTable(w io.Writer, words []model.TrackedWord, showSession, useColor bool) error {
	if len(words) == 0 {
		_, err := fmt.Fprintln(w, "No tracked words.")
		return err
	}
	headers := []string{"Word", "Lifetime"}
	if showSession {
		headers = []string{"Word", "Session", "Lifetime"}
	}
	rows := make([][]string, 0, len(words))
	for _, tw := range words {
		row := []string{tw.Display}
		if showSession {
			row = append(row, fmt.Sprintf("%d", tw.Session))
		}
		rows = append(rows, append(row, fmt.Sprintf("%d", tw.Lifetime)))
	}
	return writeTable(w, headers, rows, map[int]bool{1: true, 2: true}, useColor)
}

func writeTable(w io.Writer, headers []string, rows [][]string, rightAlign map[int]bool, useColor bool) error {
	lines := FormatTable(headers, rows, rightAlign)
	for i, line := range lines {
		if i == 0 {
			line = bold(line, useColor)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
