package daily

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-farm/internal/events"
	"github.com/vovakirdan/tui-farm/internal/pipeline"
)

// ErrMissingCollaborator is returned when a structural collaborator is nil.
var ErrMissingCollaborator = errors.New("daily: missing collaborator")

// Step names, in pipeline order.
const (
	StepGrow    = "grow-grid"
	StepDetect  = "detect-patterns"
	StepPresent = "present-patterns"
	StepScore   = "calculate-score-and-weekly-goal"
	StepAdvance = "advance-time"
	StepDraw    = "draw-new-cards"
)

// Builder assembles the day pipeline.
type Builder struct {
	logger *log.Logger
}

// NewBuilder creates a builder. A nil logger discards output.
func NewBuilder(logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Builder{logger: logger}
}

// Build validates c, clears the stale analysis and detection cache, and
// returns the ordered steps. Missing structural collaborators make the
// builder decline. Missing optional ones degrade the pipeline: a nil event
// sink becomes a no-op sink, a nil presenter runs headless, and a nil drawer
// drops the card draw. c is updated in place with the substituted defaults.
func (b *Builder) Build(c *Context) ([]pipeline.Step, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: context", ErrMissingCollaborator)
	}
	var missing []string
	if c.Grid == nil {
		missing = append(missing, "grid")
	}
	if c.Detector == nil {
		missing = append(missing, "detector")
	}
	if c.Cache == nil {
		missing = append(missing, "cache")
	}
	if c.Calculator == nil {
		missing = append(missing, "calculator")
	}
	if c.Analysis == nil {
		missing = append(missing, "analysis")
	}
	if c.Run == nil {
		missing = append(missing, "run data")
	}
	if len(missing) > 0 {
		b.logger.Error("cannot build day pipeline", "missing", strings.Join(missing, ", "))
		return nil, fmt.Errorf("%w: %s", ErrMissingCollaborator, strings.Join(missing, ", "))
	}

	if c.Logger == nil {
		c.Logger = b.logger
	}
	if c.Events == nil {
		b.logger.Warn("no event sink, events are dropped")
		c.Events = events.Nop{}
	}

	c.Analysis.Reset()
	c.Cache.Clear()

	steps := []pipeline.Step{
		&growStep{c: c},
		&detectStep{c: c},
	}
	if c.Presenter != nil {
		steps = append(steps, presentStep(c))
	} else {
		b.logger.Debug("no presenter, running headless")
	}
	steps = append(steps,
		&scoreStep{c: c},
		&advanceStep{c: c},
	)
	if c.Drawer != nil {
		steps = append(steps, &drawStep{c: c})
	} else {
		b.logger.Warn("no card drawer, skipping card draw")
	}
	return steps, nil
}
