package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-farm/internal/farm"
	"github.com/vovakirdan/tui-farm/internal/patterns"
)

// Slot glyphs.
const (
	glyphLocked   = "#"
	glyphEmpty    = "."
	glyphWithered = "x"
)

// Highlight selects which slots are drawn with a tier background.
type Highlight struct {
	Tiers  map[int]patterns.Tier // slot -> highest tier covering it
	Cursor int                   // -1 for none
}

// NoHighlight draws the grid without any highlight.
var NoHighlight = Highlight{Cursor: -1}

// HighlightMatches builds a highlight covering every slot of ms. When a slot
// is covered by several matches the highest tier wins.
func HighlightMatches(ms []patterns.Match, cursor int) Highlight {
	h := Highlight{Tiers: make(map[int]patterns.Tier), Cursor: cursor}
	for _, m := range ms {
		for _, s := range m.Slots {
			if tierRank(m.Tier) > tierRank(h.Tiers[s]) {
				h.Tiers[s] = m.Tier
			}
		}
	}
	return h
}

func tierRank(t patterns.Tier) int {
	switch t {
	case patterns.TierCommon:
		return 1
	case patterns.TierUncommon:
		return 2
	case patterns.TierRare:
		return 3
	case patterns.TierEpic:
		return 4
	}
	return 0
}

// SlotGlyph returns the one-character representation of a slot: the first
// letter of its crop, upper-cased once mature.
func SlotGlyph(s farm.Slot) string {
	switch {
	case !s.Unlocked:
		return glyphLocked
	case s.Empty():
		return glyphEmpty
	case s.Withered:
		return glyphWithered
	}
	g := strings.ToLower(string(s.Crop)[:1])
	if s.Mature {
		g = strings.ToUpper(g)
	}
	return g
}

func (t Theme) slotStyle(s farm.Slot) lipgloss.Style {
	switch {
	case !s.Unlocked:
		return t.Locked
	case s.Empty():
		return t.Empty
	case s.Withered:
		return t.Withered
	case s.Mature:
		return t.Mature
	case s.Watered:
		return t.Watered
	}
	return t.Growing
}

// RenderGrid draws the grid row by row, three columns per slot.
func RenderGrid(g patterns.Grid, theme Theme, h Highlight) string {
	var b strings.Builder
	w := g.Width()
	for i := 0; i < g.Len(); i++ {
		if i > 0 && i%w == 0 {
			b.WriteByte('\n')
		}
		s := g.Slot(i)
		cell := " " + SlotGlyph(s) + " "

		style := theme.slotStyle(s)
		if tier, ok := h.Tiers[i]; ok {
			style = theme.Tier(tier)
		}
		if i == h.Cursor {
			style = theme.Cursor
		}
		b.WriteString(style.Render(cell))
	}
	return b.String()
}

// RenderMatches lists matches one per line.
func RenderMatches(ms []patterns.Match, theme Theme) string {
	if len(ms) == 0 {
		return theme.HUDControls.Render("no patterns")
	}
	lines := make([]string, len(ms))
	for i, m := range ms {
		age := ""
		if m.DaysActive > 1 {
			age = fmt.Sprintf(" (day %d)", m.DaysActive)
		}
		lines[i] = fmt.Sprintf("%s %s %s%s",
			theme.Tier(m.Tier).Render(" "+string(m.Tier)+" "),
			theme.HUDValue.Render(m.PatternID),
			theme.HUDControls.Render(fmt.Sprintf("+%d", m.BaseScore)),
			age,
		)
	}
	return strings.Join(lines, "\n")
}

// Legend explains the slot glyphs.
func Legend(theme Theme) string {
	sep := theme.HUDSeparator.Render(" | ")
	return strings.Join([]string{
		theme.Locked.Render(glyphLocked) + " locked",
		theme.Empty.Render(glyphEmpty) + " empty",
		theme.Growing.Render("w") + " growing",
		theme.Mature.Render("W") + " mature",
		theme.Withered.Render(glyphWithered) + " withered",
	}, sep)
}

func centerText(text string, width int) string {
	tw := lipgloss.Width(text)
	if tw >= width {
		return text
	}
	padding := (width - tw) / 2
	return strings.Repeat(" ", padding) + text
}
