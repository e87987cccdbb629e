// ABOUTME: Bubbletea model for the scrub player TUI
// ABOUTME: Maps keys to deck gestures and renders the playhead
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sendspin/scrub-go/pkg/deck"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	// RefreshInterval between status polls
	RefreshInterval = 50 * time.Millisecond

	// ScrubIdle ends a gesture when no scrub key arrives for this long.
	// Terminals report no key-up events.
	ScrubIdle = 250 * time.Millisecond

	// Scrub step per key press, as a fraction of a second
	fineStepDivisor = 20
	coarseStepSecs  = 1
)

// Deck is the part of the deck the TUI drives
type Deck interface {
	Toggle()
	Seek(frame int)
	Skip(seconds float64)
	SetVolume(volume int)
	SetMuted(muted bool)
	ScrubBy(delta int)
	EndScrub()
	Status() deck.Status
}

// Model represents the TUI state
type Model struct {
	deck Deck

	// Last polled deck state
	status deck.Status

	// Output
	backend string

	// Remote control
	remoteAddr string
	clients    int

	// Gesture bookkeeping; an idle tick only ends its own gesture
	scrubSeq int

	// Debug
	showDebug bool

	// Dimensions
	width  int
	height int
}

type tickMsg time.Time

type scrubIdleMsg struct {
	seq int
}

// StatusMsg updates host-side TUI state
type StatusMsg struct {
	Backend    string
	RemoteAddr string
	Clients    *int
}

// NewModel creates a new TUI model
func NewModel(d Deck, backend string) Model {
	m := Model{
		deck:    d,
		backend: backend,
	}
	if d != nil {
		m.status = d.Status()
	}
	return m
}

// Init starts the status poll
func (m Model) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.refresh()
		return m, tickEvery()
	case scrubIdleMsg:
		if msg.seq == m.scrubSeq && m.deck != nil {
			m.deck.EndScrub()
			m.refresh()
		}
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

func (m *Model) refresh() {
	if m.deck != nil {
		m.status = m.deck.Status()
	}
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "d":
		m.showDebug = !m.showDebug
		return m, nil
	}

	if m.deck == nil {
		return m, nil
	}

	switch key {
	case " ", "space":
		m.deck.Toggle()
	case "left", "right", "shift+left", "shift+right":
		return m.scrub(key)
	case "home":
		m.deck.Seek(0)
	case "[":
		m.deck.Skip(-deck.SkipSeconds)
	case "]":
		m.deck.Skip(deck.SkipSeconds)
	case "up":
		m.deck.SetVolume(m.status.Volume + 5)
	case "down":
		m.deck.SetVolume(m.status.Volume - 5)
	case "m":
		m.deck.SetMuted(!m.status.Muted)
	}

	m.refresh()
	return m, nil
}

// scrub moves the gesture one key step and arms the idle timer
func (m Model) scrub(key string) (tea.Model, tea.Cmd) {
	step := m.status.SampleRate / fineStepDivisor
	if strings.HasPrefix(key, "shift+") {
		step = m.status.SampleRate * coarseStepSecs
	}
	if strings.HasSuffix(key, "left") {
		step = -step
	}

	m.deck.ScrubBy(step)
	m.refresh()

	m.scrubSeq++
	seq := m.scrubSeq
	return m, tea.Tick(ScrubIdle, func(time.Time) tea.Msg {
		return scrubIdleMsg{seq: seq}
	})
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Backend != "" {
		m.backend = msg.Backend
	}
	if msg.RemoteAddr != "" {
		m.remoteAddr = msg.RemoteAddr
	}
	if msg.Clients != nil {
		m.clients = *msg.Clients
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	scrubStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220"))

	helpStyle = lipgloss.NewStyle().Faint(true)
)

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	title := m.status.Title
	if title == "" {
		title = "(untitled)"
	}
	b.WriteString(titleStyle.Render("Scrub Player"))
	b.WriteString("  ")
	b.WriteString(valueStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(m.renderTransport())
	b.WriteString(m.renderControls())

	if m.remoteAddr != "" {
		b.WriteString(headerStyle.Render("Remote: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%s (%d clients)", m.remoteAddr, m.clients)))
		b.WriteString("\n")
	}

	if m.showDebug {
		b.WriteString(m.renderDebug())
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space:Play/Pause  ←/→:Scrub  shift+←/→:Coarse  home:Start  [/]:∓10s  ↑/↓:Volume  m:Mute  d:Debug  q:Quit"))

	return b.String()
}

// renderTransport renders state, time and the position bar
func (m Model) renderTransport() string {
	st := m.status

	state := "Paused"
	switch {
	case st.Scrubbing:
		state = scrubStyle.Render(fmt.Sprintf("Scrubbing %.0f%%", st.Velocity))
	case st.Playing:
		state = "Playing"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("State:  "))
	b.WriteString(valueStyle.Render(state))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Time:   "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%s / %s",
		formatFrames(st.Position, st.SampleRate), formatFrames(st.Frames, st.SampleRate))))
	b.WriteString("\n")

	width := 40
	if m.width > 20 && m.width-10 < width {
		width = m.width - 10
	}
	b.WriteString("[")
	b.WriteString(renderBar(st.Position, st.Frames, width))
	b.WriteString("]\n\n")

	return b.String()
}

// renderControls renders volume and mute
func (m Model) renderControls() string {
	muteIcon := ""
	if m.status.Muted {
		muteIcon = " 🔇"
	}

	return headerStyle.Render("Volume: ") +
		valueStyle.Render(fmt.Sprintf("[%s] %d%%%s", renderBar(m.status.Volume, 100, 10), m.status.Volume, muteIcon)) +
		"\n" +
		headerStyle.Render("Output: ") +
		valueStyle.Render(fmt.Sprintf("%s %dHz %s", m.backend, m.status.SampleRate, channelName(m.status.Channels))) +
		"\n"
}

// renderDebug renders debug information
func (m Model) renderDebug() string {
	return fmt.Sprintf("\nDEBUG: position=%d frames=%d velocity=%.1f gesture=%d\n",
		m.status.Position, m.status.Frames, m.status.Velocity, m.scrubSeq)
}

// Utility functions
func renderBar(value, max, width int) string {
	if max <= 0 || width <= 0 {
		return strings.Repeat("░", width)
	}
	filled := (value * width) / max
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// formatFrames renders a frame count as m:ss.cc
func formatFrames(frames, sampleRate int) string {
	if sampleRate <= 0 {
		return "0:00.00"
	}
	cs := frames * 100 / sampleRate
	return fmt.Sprintf("%d:%02d.%02d", cs/6000, (cs/100)%60, cs%100)
}

func channelName(channels int) string {
	if channels == 1 {
		return "Mono"
	}
	return "Stereo"
}
