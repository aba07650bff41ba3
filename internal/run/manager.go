package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-farm/internal/cards"
	"github.com/vovakirdan/tui-farm/internal/core"
	"github.com/vovakirdan/tui-farm/internal/farm"
	"github.com/vovakirdan/tui-farm/internal/random"
	"github.com/vovakirdan/tui-farm/internal/scoring"
	"github.com/vovakirdan/tui-farm/internal/unlock"
)

// Rules configure the calendar, goals and starting resources of a run.
type Rules struct {
	DaysPerWeek   int     `yaml:"days_per_week" json:"days_per_week"`
	WeeklyGoal    int     `yaml:"weekly_goal" json:"weekly_goal"`
	GoalGrowth    float64 `yaml:"goal_growth" json:"goal_growth"` // multiplier applied after each week
	StartingMoney int     `yaml:"starting_money" json:"starting_money"`
	StartingHand  int     `yaml:"starting_hand" json:"starting_hand"`
	DrawPerDay    int     `yaml:"draw_per_day" json:"draw_per_day"`
	HandLimit     int     `yaml:"hand_limit" json:"hand_limit"`
}

// DefaultRules returns the built-in run rules.
func DefaultRules() Rules {
	return Rules{
		DaysPerWeek:   7,
		WeeklyGoal:    150,
		GoalGrowth:    1.25,
		StartingMoney: 10,
		StartingHand:  2,
		DrawPerDay:    1,
		HandLimit:     5,
	}
}

// Validate checks the rules.
func (r Rules) Validate() error {
	switch {
	case r.DaysPerWeek < 1:
		return fmt.Errorf("run: days_per_week must be >= 1, got %d", r.DaysPerWeek)
	case r.WeeklyGoal < 0:
		return fmt.Errorf("run: weekly_goal must be >= 0, got %d", r.WeeklyGoal)
	case r.GoalGrowth < 1:
		return fmt.Errorf("run: goal_growth must be >= 1, got %g", r.GoalGrowth)
	case r.StartingHand < 0 || r.DrawPerDay < 0 || r.HandLimit < 0:
		return errors.New("run: hand sizes must be >= 0")
	case r.StartingHand > r.HandLimit:
		return fmt.Errorf("run: starting_hand (%d) exceeds hand_limit (%d)", r.StartingHand, r.HandLimit)
	}
	return nil
}

// NextGoal grows a weekly goal.
func (r Rules) NextGoal(goal int) int {
	return int(float64(goal)*r.GoalGrowth + 0.5)
}

// Manager creates and resumes runs.
type Manager struct {
	store   Store
	gen     *unlock.Generator
	rules   Rules
	runtime core.RuntimeConfig
	catalog *farm.Catalog
	cards   []cards.Card
	logger  *log.Logger
	now     func() time.Time
}

// ManagerConfig bundles the collaborators of a Manager.
type ManagerConfig struct {
	Store     Store
	Generator *unlock.Generator
	Rules     Rules
	Runtime   core.RuntimeConfig
	Catalog   *farm.Catalog
	Cards     []cards.Card
	Logger    *log.Logger
}

// NewManager creates a run manager.
func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	gen := cfg.Generator
	if gen == nil {
		gen, _ = unlock.NewWeightedGenerator(unlock.DefaultWeights(), logger)
	}
	return &Manager{
		store:   cfg.Store,
		gen:     gen,
		rules:   cfg.Rules,
		runtime: cfg.Runtime,
		catalog: cfg.Catalog,
		cards:   cfg.Cards,
		logger:  logger,
		now:     time.Now,
	}
}

// Store returns the backing store.
func (m *Manager) Store() Store { return m.store }

// Rules returns the run rules.
func (m *Manager) Rules() Rules { return m.rules }

// Runtime returns the grid configuration.
func (m *Manager) Runtime() core.RuntimeConfig { return m.runtime }

// Catalog returns the crop catalog.
func (m *Manager) Catalog() *farm.Catalog { return m.catalog }

// Cards returns the card catalog.
func (m *Manager) Cards() []cards.Card { return m.cards }

// NewRun creates and saves a run. A zero seed draws one from the system.
// The unlock and deck streams are derived from the run seed so the whole
// run is reproducible from it.
func (m *Manager) NewRun(ctx context.Context, seed int64) (*Data, error) {
	if seed == 0 {
		s, err := random.NewSeed()
		if err != nil {
			return nil, err
		}
		seed = s
	}
	rng := random.New(seed)
	seeds := Seeds{Run: seed, Unlock: rng.Int63(), Deck: rng.Int63()}

	w, h := m.runtime.GridW, m.runtime.GridH
	layout := m.gen.Generate(w, h, m.runtime.UnlockCount, seeds.Unlock)
	grid := farm.NewGrid(w, h, m.catalog)
	grid.ApplyUnlock(layout.Coords)

	deck, err := cards.NewDeck(m.cards, cards.NewState(m.cards, seeds.Deck))
	if err != nil {
		return nil, err
	}
	if m.rules.StartingHand > 0 {
		if _, err := deck.Draw(m.rules.StartingHand); err != nil && !errors.Is(err, cards.ErrDeckEmpty) {
			return nil, err
		}
	}

	d := &Data{
		ID:          uuid.NewString(),
		Seeds:       seeds,
		CreatedAt:   m.now().UTC(),
		Day:         1,
		Week:        1,
		DaysPerWeek: m.rules.DaysPerWeek,
		Money:       m.rules.StartingMoney,
		WeeklyGoal:  m.rules.WeeklyGoal,
		Unlock:      layout,
		History:     scoring.History{},
		Slots:       grid.Snapshot(),
		Deck:        deck.State(),
	}
	if err := m.store.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("run: save new run: %w", err)
	}
	m.logger.Info("run created", "run", d.ID, "seed", seed, "shape", layout.Shape,
		"size", fmt.Sprintf("%dx%d", w, h), "unlocked", len(layout.Coords))
	return d, nil
}

// Resume loads a run (the latest one when id is empty) and heals it against
// the live configuration: an unlock layout generated by another algorithm
// version or for other dimensions or count is regenerated from the run's
// persisted unlock seed and the grid is rebuilt around it. Healed runs are
// saved back before returning.
func (m *Manager) Resume(ctx context.Context, id string) (*Data, error) {
	var (
		d   *Data
		err error
	)
	if id == "" {
		d, err = m.store.Latest(ctx)
	} else {
		d, err = m.store.Load(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	healed, changed := m.Heal(d)
	if !changed {
		return d, nil
	}
	if err := m.store.Save(ctx, healed); err != nil {
		return nil, fmt.Errorf("run: save healed run: %w", err)
	}
	return healed, nil
}

// Heal returns d adjusted to the live configuration and whether anything
// changed. d itself is not modified.
func (m *Manager) Heal(d *Data) (*Data, bool) {
	w, h, count := m.runtime.GridW, m.runtime.GridH, m.runtime.UnlockCount
	layout, regenerated := m.gen.Ensure(d.Unlock, w, h, count, d.Seeds.Unlock)
	if !regenerated {
		return d, false
	}

	out := d.Clone()
	out.Unlock = layout

	grid := farm.NewGrid(w, h, m.catalog)
	if err := grid.Restore(d.Slots); err != nil {
		m.logger.Warn("grid size changed, crops cleared", "run", d.ID, "error", err)
	}
	grid.ApplyUnlock(layout.Coords)
	out.Slots = grid.Snapshot()

	// Match keys are slot indices, which a resize renumbers.
	if d.Unlock.Width != w || d.Unlock.Height != h {
		out.History = scoring.History{}
		m.logger.Warn("grid size changed, pattern history cleared", "run", d.ID)
	}

	m.logger.Info("unlock layout regenerated", "run", d.ID, "shape", layout.Shape, "unlocked", len(layout.Coords))
	return out, true
}
