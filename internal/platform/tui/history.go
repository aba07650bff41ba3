package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-farm/internal/run"
	"github.com/vovakirdan/tui-farm/internal/storage"
)

// History layout constants
const (
	minWidthForSidebar = 80  // Minimum width to show run list sidebar
	sidebarWidth       = 24  // Width of run list sidebar
	maxRuns            = 50  // Max runs to list
	maxDays            = 200 // Max day records to load per run
)

// HistorySource is the read side of the run store.
type HistorySource interface {
	ListRuns(ctx context.Context, limit int) ([]storage.RunSummary, error)
	Days(ctx context.Context, runID string, limit int) ([]run.DayRecord, error)
}

// HistoryKeyMap defines the key bindings for the history browser.
type HistoryKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextRun key.Binding
	PrevRun key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextRun, k.PrevRun, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextRun, k.PrevRun},
		{k.Quit},
	}
}

// DefaultHistoryKeyMap returns default key bindings.
func DefaultHistoryKeyMap() HistoryKeyMap {
	return HistoryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextRun: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next run"),
		),
		PrevRun: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev run"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HistoryModel is the Bubble Tea model for browsing stored runs.
type HistoryModel struct {
	ctx         context.Context
	src         HistorySource
	runs        []storage.RunSummary
	runCursor   int
	days        []run.DayRecord
	loadErr     error
	table       table.Model
	help        help.Model
	keys        HistoryKeyMap
	width       int
	height      int
	quitting    bool
	showSidebar bool
}

// NewHistoryModel creates a history model and loads the run list.
func NewHistoryModel(ctx context.Context, src HistorySource, width, height int) HistoryModel {
	m := HistoryModel{
		ctx:         ctx,
		src:         src,
		keys:        DefaultHistoryKeyMap(),
		help:        help.New(),
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.table = m.createTable()

	runs, err := src.ListRuns(ctx, maxRuns)
	if err != nil {
		m.loadErr = err
		return m
	}
	m.runs = runs
	if len(m.runs) > 0 {
		m.loadDays(m.runs[0].ID)
	}
	return m
}

func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Day", Width: 5},
		{Title: "Week", Width: 5},
		{Title: "Passive", Width: 8},
		{Title: "Patterns", Width: 9},
		{Title: "Bonus", Width: 6},
		{Title: "Total", Width: 7},
		{Title: "Money", Width: 6},
		{Title: "Status", Width: 10},
	}

	height := m.height - 8 // Leave room for header, help, and margins
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func (m *HistoryModel) loadDays(runID string) {
	days, err := m.src.Days(m.ctx, runID, maxDays)
	if err != nil {
		m.loadErr = err
		m.days = nil
	} else {
		m.loadErr = nil
		m.days = days
	}
	m.updateTableRows()
}

func (m *HistoryModel) updateTableRows() {
	m.table.SetRows(dayRows(m.days))
	m.table.GotoTop()
}

func dayRows(days []run.DayRecord) []table.Row {
	rows := make([]table.Row, len(days))
	for i, d := range days {
		status := "ok"
		if d.Aborted {
			status = "aborted"
		}
		rows[i] = table.Row{
			fmt.Sprintf("%d", d.Day),
			fmt.Sprintf("%d", d.Week),
			fmt.Sprintf("%d", d.Passive),
			fmt.Sprintf("%d", d.PatternTotal),
			fmt.Sprintf("%d", d.EffectBonus),
			fmt.Sprintf("%d", d.Total),
			fmt.Sprintf("%d", d.Money),
			status,
		}
	}
	return rows
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history browser.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextRun):
			if len(m.runs) > 0 {
				m.runCursor = (m.runCursor + 1) % len(m.runs)
				m.loadDays(m.runs[m.runCursor].ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevRun):
			if len(m.runs) > 0 {
				m.runCursor--
				if m.runCursor < 0 {
					m.runCursor = len(m.runs) - 1
				}
				m.loadDays(m.runs[m.runCursor].ID)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Selected returns the run currently shown, if any.
func (m HistoryModel) Selected() (storage.RunSummary, bool) {
	if len(m.runs) == 0 {
		return storage.RunSummary{}, false
	}
	return m.runs[m.runCursor], true
}

// View renders the history browser.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := "RUN HISTORY"
	if r, ok := m.Selected(); ok {
		title = fmt.Sprintf("RUN HISTORY - %s  score %d  money %d  goals %d/%d",
			shortID(r.ID), r.TotalScore, r.Money, r.GoalsMet, r.GoalsMet+r.GoalsMissed)
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	if m.showSidebar {
		sidebar := panel.Width(sidebarWidth).Render(m.renderRunList())
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, sidebar, "  ", panel.Render(m.renderTableContent())))
	} else {
		b.WriteString(panel.Render(m.renderTableContent()))
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func (m HistoryModel) renderRunList() string {
	var sb strings.Builder
	sb.WriteString("Runs\n")
	sb.WriteString(strings.Repeat("-", sidebarWidth-4))
	sb.WriteString("\n")

	for i, r := range m.runs {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.runCursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		sb.WriteString(style.Render(fmt.Sprintf("%s%s d%d", cursor, shortID(r.ID), r.Day)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m HistoryModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.loadErr != nil:
		return emptyStyle.Render("Failed to load history:\n" + m.loadErr.Error())
	case len(m.runs) == 0:
		return emptyStyle.Render("No runs yet.\nStart one with 'farm new'.")
	case len(m.days) == 0:
		return emptyStyle.Render("No days resolved yet.")
	}
	return m.table.View()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// RunHistory runs the history browser.
func RunHistory(ctx context.Context, src HistorySource, width, height int) error {
	model := NewHistoryModel(ctx, src, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}
