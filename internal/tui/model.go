// Package tui provides the Bubble Tea listening interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/wordtrack/internal/listen"
	"github.com/verte-zerg/wordtrack/internal/model"
	"github.com/verte-zerg/wordtrack/internal/stats"
)

// Tracker is the word state shown and edited by the UI.
type Tracker interface {
	Snapshot() model.Snapshot
	Add(ctx context.Context, word string) (bool, error)
	Remove(ctx context.Context, display string) (bool, error)
}

// Listener starts and stops recognition.
type Listener interface {
	Available() bool
	State() listen.State
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Notices buffers controller notices until the UI loop picks them up.
type Notices chan listen.Notice

// NewNotices returns a buffered notice channel.
func NewNotices() Notices {
	return make(Notices, 64)
}

// Send queues n without blocking. A full queue drops the notice; the next
// refresh still shows current state.
func (n Notices) Send(notice listen.Notice) {
	select {
	case n <- notice:
	default:
	}
}

type noticeMsg listen.Notice

func waitForNotice(ch <-chan listen.Notice) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

// Model implements the Bubble Tea listening UI.
type Model struct {
	tracker  Tracker
	listener Listener
	notices  <-chan listen.Notice
	locale   string
	logger   *slog.Logger

	input    textinput.Model
	snap     model.Snapshot
	selected int
	status   string
	errText  string

	width  int
	height int
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	listeningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	idleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Underline(true)
	wordStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	previewStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	trackedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

const unavailableText = "speech recognition unavailable"

// NewModel constructs the listening TUI model.
func NewModel(tracker Tracker, listener Listener, notices <-chan listen.Notice, locale string, logger *slog.Logger) *Model {
	input := textinput.New()
	input.Prompt = "+ "
	input.Placeholder = "word to track"
	input.CharLimit = 64
	input.Focus()

	if logger == nil {
		logger = slog.Default()
	}
	m := &Model{
		tracker:  tracker,
		listener: listener,
		notices:  notices,
		locale:   locale,
		logger:   logger,
		input:    input,
	}
	if !listener.Available() {
		m.status = unavailableText
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForNotice(m.notices))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case noticeMsg:
		m.handleNotice(listen.Notice(msg))
		return m, waitForNotice(m.notices)
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			if err := m.listener.Stop(context.Background()); err != nil {
				m.logger.Warn("stop on quit failed", "err", err)
			}
			return m, tea.Quit
		case tea.KeyCtrlL:
			m.toggleListening()
			return m, nil
		case tea.KeyEnter:
			m.addFromInput()
			return m, nil
		case tea.KeyCtrlD:
			m.removeSelected()
			return m, nil
		case tea.KeyUp:
			m.moveSelection(-1)
			return m, nil
		case tea.KeyDown:
			m.moveSelection(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleNotice(n listen.Notice) {
	switch n.Kind {
	case listen.NoticeFailed:
		m.status = ""
		if n.Err != nil {
			m.errText = n.Err.Error()
		}
	case listen.NoticeStopped:
		m.status = "recognition ended"
	case listen.NoticeSegment:
		if n.Err != nil {
			m.errText = fmt.Sprintf("counts not saved: %v", n.Err)
		}
	}
	m.refresh()
}

func (m *Model) toggleListening() {
	ctx := context.Background()
	m.errText = ""
	if m.listener.State() == listen.Listening {
		if err := m.listener.Stop(ctx); err != nil {
			m.errText = err.Error()
		}
		m.status = ""
		m.refresh()
		return
	}
	if err := m.listener.Start(ctx); err != nil {
		if errors.Is(err, listen.ErrUnavailable) {
			m.status = unavailableText
			return
		}
		m.errText = err.Error()
		return
	}
	m.status = ""
	m.refresh()
}

func (m *Model) addFromInput() {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		return
	}
	m.errText = ""
	added, err := m.tracker.Add(context.Background(), value)
	switch {
	case err != nil:
		m.errText = fmt.Sprintf("word added but not saved: %v", err)
	case !added:
		m.status = fmt.Sprintf("%q is already tracked", value)
	default:
		m.status = ""
	}
	m.input.Reset()
	m.refresh()
	if added {
		m.selected = len(m.snap.Words) - 1
	}
}

func (m *Model) removeSelected() {
	if m.selected < 0 || m.selected >= len(m.snap.Words) {
		return
	}
	m.errText = ""
	word := m.snap.Words[m.selected].Display
	if _, err := m.tracker.Remove(context.Background(), word); err != nil {
		m.errText = fmt.Sprintf("word removed but not saved: %v", err)
	}
	m.refresh()
}

func (m *Model) moveSelection(delta int) {
	if len(m.snap.Words) == 0 {
		return
	}
	m.selected += delta
	m.clampSelection()
}

func (m *Model) refresh() {
	m.snap = m.tracker.Snapshot()
	m.clampSelection()
}

func (m *Model) clampSelection() {
	if m.selected >= len(m.snap.Words) {
		m.selected = len(m.snap.Words) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	contentWidth := m.width - 4
	if m.width == 0 {
		contentWidth = 76
	}
	if contentWidth < 20 {
		contentWidth = 20
	}

	sections := []string{
		m.renderHeader(),
		m.renderWords(),
		m.renderPreview(contentWidth),
		m.input.View(),
		m.renderFooter(),
	}
	content := lipgloss.NewStyle().Width(contentWidth).Render(strings.Join(sections, "\n\n"))
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Top, content)
}

func (m *Model) renderHeader() string {
	state := idleStyle.Render("○ idle")
	if m.listener.State() == listen.Listening {
		state = listeningStyle.Render("● listening (" + m.locale + ")")
	}
	return titleStyle.Render("wordtrack") + "  " + state
}

func (m *Model) renderWords() string {
	if len(m.snap.Words) == 0 {
		return idleStyle.Render("No tracked words yet. Type one below and press enter.")
	}
	rows := make([][]string, 0, len(m.snap.Words))
	for _, w := range m.snap.Words {
		rows = append(rows, []string{w.Display, fmt.Sprintf("%d", w.Session), fmt.Sprintf("%d", w.Lifetime)})
	}
	lines := stats.FormatTable([]string{"Word", "Session", "Lifetime"}, rows, map[int]bool{1: true, 2: true})
	out := make([]string, 0, len(lines))
	out = append(out, "  "+headerStyle.Render(lines[0]))
	for i, line := range lines[1:] {
		if i == m.selected {
			out = append(out, selectedStyle.Render("> "+line))
			continue
		}
		out = append(out, "  "+wordStyle.Render(line))
	}
	return strings.Join(out, "\n")
}

func (m *Model) renderPreview(width int) string {
	if len(m.snap.Preview) == 0 {
		if m.listener.State() == listen.Listening {
			return previewStyle.Render("…")
		}
		return previewStyle.Render("Press ctrl+l to start listening.")
	}
	return wrapStyledRunes(buildStyledRunes(m.snap.Preview), width)
}

func (m *Model) renderFooter() string {
	var segments []string
	if m.errText != "" {
		segments = append(segments, errorStyle.Render(m.errText))
	}
	if m.status != "" {
		segments = append(segments, footerStyle.Render(m.status))
	}
	var session, lifetime int
	for _, w := range m.snap.Words {
		session += w.Session
		lifetime += w.Lifetime
	}
	summary := fmt.Sprintf("Tracked %d · Session %d · Lifetime %d", len(m.snap.Words), session, lifetime)
	help := "ctrl+l listen · enter add · ctrl+d remove · ↑/↓ select · ctrl+c quit"
	segments = append(segments, footerStyle.Render(summary), footerStyle.Render(help))
	return strings.Join(segments, "\n")
}
