// Package tui provides the Bubble Tea views of the farm: the pattern
// playback viewer that runs inside the day pipeline, the run history
// browser and the grid rendering shared with plain CLI output.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameMsg advances the playback by one frame.
type FrameMsg time.Time

// frameCmd returns a Bubble Tea command that sends a frame after interval.
func frameCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}
