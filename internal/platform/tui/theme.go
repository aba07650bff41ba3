package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-farm/internal/patterns"
)

// Theme contains all configurable visual styles for the farm views.
type Theme struct {
	// Slot styles
	Locked   lipgloss.Style
	Empty    lipgloss.Style
	Growing  lipgloss.Style
	Mature   lipgloss.Style
	Withered lipgloss.Style
	Watered  lipgloss.Style

	// Highlight styles by pattern tier
	Tiers map[patterns.Tier]lipgloss.Style
	// Cursor marks the slot being played back
	Cursor lipgloss.Style

	// HUD styles
	HUDTitle     lipgloss.Style
	HUDValue     lipgloss.Style
	HUDSeparator lipgloss.Style
	HUDControls  lipgloss.Style

	// Panel styles
	Panel      lipgloss.Style
	PanelTitle lipgloss.Style
}

// DefaultTheme returns the default visual theme.
func DefaultTheme() Theme {
	return Theme{
		Locked:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")), // Dark gray
		Empty:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Growing:  lipgloss.NewStyle().Foreground(lipgloss.Color("114")), // Soft green
		Mature:   lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true),
		Withered: lipgloss.NewStyle().Foreground(lipgloss.Color("94")), // Brown
		Watered:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),

		Tiers: map[patterns.Tier]lipgloss.Style{
			patterns.TierCommon:   lipgloss.NewStyle().Background(lipgloss.Color("238")).Foreground(lipgloss.Color("255")),
			patterns.TierUncommon: lipgloss.NewStyle().Background(lipgloss.Color("28")).Foreground(lipgloss.Color("255")),
			patterns.TierRare:     lipgloss.NewStyle().Background(lipgloss.Color("25")).Foreground(lipgloss.Color("255")),
			patterns.TierEpic:     lipgloss.NewStyle().Background(lipgloss.Color("91")).Foreground(lipgloss.Color("255")).Bold(true),
		},
		Cursor: lipgloss.NewStyle().Background(lipgloss.Color("226")).Foreground(lipgloss.Color("16")).Bold(true),

		HUDTitle:     lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		HUDValue:     lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		HUDSeparator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		HUDControls:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		PanelTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true),
	}
}

// Tier returns the highlight style for a tier.
func (t Theme) Tier(tier patterns.Tier) lipgloss.Style {
	if s, ok := t.Tiers[tier]; ok {
		return s
	}
	return t.Tiers[patterns.TierCommon]
}

// PlainTheme renders without colors, for logs and tests.
func PlainTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Locked: plain, Empty: plain, Growing: plain, Mature: plain, Withered: plain, Watered: plain,
		Tiers:    map[patterns.Tier]lipgloss.Style{},
		Cursor:   plain,
		HUDTitle: plain, HUDValue: plain, HUDSeparator: plain, HUDControls: plain,
		Panel: plain, PanelTitle: plain,
	}
}
