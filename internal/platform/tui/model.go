package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-farm/internal/patterns"
)

// Playback speed limits.
const (
	minFrame = 30 * time.Millisecond
	maxFrame = 2 * time.Second
)

type phase int

const (
	phasePlaying phase = iota
	phaseSummary
	phaseDone
)

// PlaybackConfig configures a PlaybackModel.
type PlaybackConfig struct {
	Day        int
	Grid       patterns.Grid
	Cache      *patterns.Cache
	Frame      time.Duration // time per highlighted slot
	HoldFrames int           // frames the summary stays on screen
	Theme      Theme
	Keys       KeyMap
	Width      int
	Height     int
}

// PlaybackModel walks the cached matches slot by slot, then shows a summary
// and quits on its own.
type PlaybackModel struct {
	cfg    PlaybackConfig
	slots  []int // slots covered by at least one match, ascending
	pos    int
	held   int
	phase  phase
	paused bool
	frame  time.Duration
	help   help.Model

	interrupted bool
	width       int
	height      int
}

// NewPlaybackModel creates a playback model over the cache contents.
func NewPlaybackModel(cfg PlaybackConfig) PlaybackModel {
	if cfg.Frame <= 0 {
		cfg.Frame = 120 * time.Millisecond
	}
	if cfg.HoldFrames < 0 {
		cfg.HoldFrames = 0
	}
	if cfg.Theme.Tiers == nil {
		cfg.Theme = DefaultTheme()
	}
	if len(cfg.Keys.Quit.Keys()) == 0 {
		cfg.Keys = DefaultKeyMap()
	}

	m := PlaybackModel{
		cfg:    cfg,
		slots:  coveredSlots(cfg.Cache),
		frame:  cfg.Frame,
		help:   help.New(),
		width:  cfg.Width,
		height: cfg.Height,
	}
	if len(m.slots) == 0 {
		m.phase = phaseSummary
	}
	return m
}

func coveredSlots(c *patterns.Cache) []int {
	if c == nil {
		return nil
	}
	seen := make(map[int]bool)
	var out []int
	for _, m := range c.All() {
		for _, s := range m.Slots {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	sort.Ints(out)
	return out
}

// Init starts the frame clock.
func (m PlaybackModel) Init() tea.Cmd {
	return frameCmd(m.frame)
}

// Update handles frames and keys.
func (m PlaybackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		if m.phase == phaseDone {
			return m, nil
		}
		if !m.paused {
			m.advance()
		}
		if m.phase == phaseDone {
			return m, tea.Quit
		}
		return m, frameCmd(m.frame)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.cfg.Keys.Quit):
			m.interrupted = msg.String() == "ctrl+c"
			m.phase = phaseDone
			return m, tea.Quit
		case key.Matches(msg, m.cfg.Keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.cfg.Keys.Step):
			m.advance()
			if m.phase == phaseDone {
				return m, tea.Quit
			}
		case key.Matches(msg, m.cfg.Keys.Skip):
			if m.phase == phaseSummary {
				m.phase = phaseDone
				return m, tea.Quit
			}
			m.phase = phaseSummary
		case key.Matches(msg, m.cfg.Keys.Faster):
			m.frame = max(m.frame/2, minFrame)
		case key.Matches(msg, m.cfg.Keys.Slower):
			m.frame = min(m.frame*2, maxFrame)
		case key.Matches(msg, m.cfg.Keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	}
	return m, nil
}

// advance moves the cursor one slot forward, or one hold frame forward once
// the summary is showing.
func (m *PlaybackModel) advance() {
	switch m.phase {
	case phasePlaying:
		if m.pos < len(m.slots)-1 {
			m.pos++
			return
		}
		m.phase = phaseSummary
	case phaseSummary:
		m.held++
		if m.held >= m.cfg.HoldFrames {
			m.phase = phaseDone
		}
	}
}

// Cursor returns the slot being shown, or -1 outside of playback.
func (m PlaybackModel) Cursor() int {
	if m.phase != phasePlaying || len(m.slots) == 0 {
		return -1
	}
	return m.slots[m.pos]
}

// Done reports whether the playback finished or was closed.
func (m PlaybackModel) Done() bool { return m.phase == phaseDone }

// Interrupted reports whether the user aborted with ctrl+c.
func (m PlaybackModel) Interrupted() bool { return m.interrupted }

// Paused reports whether the frame clock is ignored.
func (m PlaybackModel) Paused() bool { return m.paused }

// Frame returns the current time per slot.
func (m PlaybackModel) Frame() time.Duration { return m.frame }

// View renders the grid next to the matches of the current slot.
func (m PlaybackModel) View() string {
	if m.phase == phaseDone {
		return ""
	}
	t := m.cfg.Theme

	var (
		title   string
		matches []patterns.Match
		hl      Highlight
	)
	if cursor := m.Cursor(); cursor >= 0 {
		matches = m.cfg.Cache.MatchesAt(cursor)
		hl = HighlightMatches(matches, cursor)
		title = fmt.Sprintf("DAY %d  slot %d/%d", m.cfg.Day, m.pos+1, len(m.slots))
	} else {
		if m.cfg.Cache != nil {
			matches = m.cfg.Cache.All()
		}
		hl = HighlightMatches(matches, -1)
		title = fmt.Sprintf("DAY %d  %d patterns", m.cfg.Day, len(matches))
	}
	if m.paused {
		title += "  [paused]"
	}

	grid := t.Panel.Render(RenderGrid(m.cfg.Grid, t, hl))
	side := t.Panel.Render(t.PanelTitle.Render("Patterns") + "\n" + RenderMatches(matches, t))
	body := lipgloss.JoinHorizontal(lipgloss.Top, grid, "  ", side)

	var b strings.Builder
	b.WriteString(t.HUDTitle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(Legend(t))
	b.WriteString("\n")
	b.WriteString(t.HUDControls.Render(m.help.View(m.cfg.Keys)))

	if m.width > 0 && lipgloss.Width(body) < m.width {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, b.String())
	}
	return b.String()
}
