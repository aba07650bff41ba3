package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-farm/internal/daily"
)

// ErrInterrupted is returned when the user aborts the playback with ctrl+c.
var ErrInterrupted = errors.New("tui: playback interrupted")

// PresenterConfig configures a Presenter.
type PresenterConfig struct {
	Frame      time.Duration
	HoldFrames int
	Theme      Theme
	Keys       KeyMap
	Logger     *log.Logger

	// Input and Output default to the process terminal.
	Input  io.Reader
	Output io.Writer
	// AltScreen switches to the alternate screen while playing.
	AltScreen bool
}

// Presenter plays detected patterns back in the terminal. It implements
// daily.Presenter.
type Presenter struct {
	cfg PresenterConfig
	log *log.Logger
}

var _ daily.Presenter = (*Presenter)(nil)

// NewPresenter creates a terminal presenter.
func NewPresenter(cfg PresenterConfig) *Presenter {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.Theme.Tiers == nil {
		cfg.Theme = DefaultTheme()
	}
	if len(cfg.Keys.Quit.Keys()) == 0 {
		cfg.Keys = DefaultKeyMap()
	}
	return &Presenter{cfg: cfg, log: logger}
}

// PresentPatterns runs the playback until it finishes, the user closes it or
// ctx is cancelled.
func (p *Presenter) PresentPatterns(ctx context.Context, pb daily.Playback) error {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	model := NewPlaybackModel(PlaybackConfig{
		Day:        pb.Day,
		Grid:       pb.Grid,
		Cache:      pb.Cache,
		Frame:      p.cfg.Frame,
		HoldFrames: p.cfg.HoldFrames,
		Theme:      p.cfg.Theme,
		Keys:       p.cfg.Keys,
		Width:      width,
		Height:     height,
	})

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if p.cfg.Input != nil {
		opts = append(opts, tea.WithInput(p.cfg.Input))
	}
	if p.cfg.Output != nil {
		opts = append(opts, tea.WithOutput(p.cfg.Output))
	}

	p.log.Debug("playback started", "day", pb.Day, "slots", len(model.slots))
	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("tui: playback: %w", err)
	}

	if m, ok := final.(PlaybackModel); ok && m.Interrupted() {
		return ErrInterrupted
	}
	p.log.Debug("playback finished", "day", pb.Day)
	return nil
}
