package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-farm/internal/config"
	"github.com/vovakirdan/tui-farm/internal/core"
	"github.com/vovakirdan/tui-farm/internal/daily"
	"github.com/vovakirdan/tui-farm/internal/events"
	"github.com/vovakirdan/tui-farm/internal/journal"
	"github.com/vovakirdan/tui-farm/internal/patterns"
	"github.com/vovakirdan/tui-farm/internal/pipeline"
	"github.com/vovakirdan/tui-farm/internal/run"
	"github.com/vovakirdan/tui-farm/internal/storage"
	"github.com/vovakirdan/tui-farm/internal/telemetry"
)

// app holds what every subcommand needs: the resolved configuration, the
// run database and the run manager.
type app struct {
	cfg      config.FarmConfig
	logger   *log.Logger
	store    *storage.Store
	manager  *run.Manager
	shutdown telemetry.Shutdown
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "farm",
	})
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

// loadConfig resolves the rules: file search, environment, then flags.
func loadConfig(logger *log.Logger) (config.FarmConfig, error) {
	cfg, source, err := config.Load(flagConfig, logger)
	if err != nil {
		return config.FarmConfig{}, err
	}
	logger.Debug("config loaded", "source", source)

	if flagDifficulty != "" {
		preset, err := config.ParsePreset(flagDifficulty)
		if err != nil {
			return config.FarmConfig{}, err
		}
		config.ApplyPreset(&cfg, preset)
	}
	if flagDBPath != "" {
		cfg.Storage.DB = flagDBPath
	}
	if flagJournal != "" {
		cfg.Storage.JournalDir = flagJournal
	}
	if flagSeed != 0 {
		cfg.Grid.Seed = flagSeed
	}
	return cfg, nil
}

func openApp(ctx context.Context) (*app, error) {
	logger := newLogger()
	cfg, err := loadConfig(logger)
	if err != nil {
		return nil, err
	}

	shutdown, err := telemetry.Setup(ctx, "farm", version, logger)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.Storage.DB)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("opening run database: %w", err)
	}

	gen, err := cfg.Generator()
	if err != nil {
		store.Close()
		_ = shutdown(ctx)
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		manager: run.NewManager(run.ManagerConfig{
			Store:     store,
			Generator: gen,
			Rules:     cfg.Run,
			Runtime:   cfg.Runtime(),
			Catalog:   cfg.Catalog(),
			Cards:     cfg.Cards,
			Logger:    logger,
		}),
		shutdown: shutdown,
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing run database", "error", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.shutdown(ctx); err != nil {
		a.logger.Warn("telemetry shutdown", "error", err)
	}
}

// resume loads the run selected by --run, or the latest one.
func (a *app) resume(ctx context.Context) (*run.Data, error) {
	d, err := a.manager.Resume(ctx, flagRun)
	if err != nil {
		return nil, fmt.Errorf("loading run (start one with 'farm new'): %w", err)
	}
	return d, nil
}

// openJournal returns the run's journal sink, or nil when the journal is
// disabled. The returned func closes it.
func (a *app) openJournal(runID string) (events.Sink, func()) {
	if a.cfg.Storage.JournalDir == "" {
		return nil, func() {}
	}
	j := journal.NewSink(config.ExpandHome(a.cfg.Storage.JournalDir), runID, a.logger)
	return j, func() {
		if err := j.Close(); err != nil {
			a.logger.Warn("closing journal", "error", err)
		}
	}
}

// engineOptions are the per-command parts of an engine.
type engineOptions struct {
	store     run.Store // defaults to the run database
	sink      events.Sink
	presenter daily.Presenter
}

func (a *app) newEngine(d *run.Data, opts engineOptions) (*daily.Engine, error) {
	reg, err := a.cfg.Registry()
	if err != nil {
		return nil, err
	}
	store := opts.store
	if store == nil {
		store = a.store
	}

	exec := pipeline.NewExecutor(
		pipeline.WithLogger(a.logger),
		pipeline.WithHooks(pipeline.Hooks{
			OnStepFinished: func(index int, name string, d time.Duration, err error) {
				a.logger.Debug("step finished", "index", index, "step", name, "took", d, "error", err)
			},
		}),
	)

	return daily.NewEngine(daily.EngineConfig{
		Run:       d,
		Store:     store,
		Runtime:   a.cfg.Runtime(),
		Rules:     a.cfg.Run,
		Scoring:   a.cfg.Scoring,
		Catalog:   a.cfg.Catalog(),
		Detector:  patterns.NewDetectorFromRegistry(reg, a.logger),
		Cards:     a.cfg.Cards,
		Sink:      opts.sink,
		Presenter: opts.presenter,
		Executor:  exec,
		Logger:    a.logger,
	})
}

// parseSlot accepts a row-major index ("7") or x,y coordinates ("2,1").
func parseSlot(s string, w, h int) (int, error) {
	if x, y, ok := strings.Cut(s, ","); ok {
		cx, errX := strconv.Atoi(strings.TrimSpace(x))
		cy, errY := strconv.Atoi(strings.TrimSpace(y))
		if errX != nil || errY != nil {
			return 0, fmt.Errorf("invalid slot %q: want x,y or an index", s)
		}
		if cx < 0 || cx >= w || cy < 0 || cy >= h {
			return 0, fmt.Errorf("slot %q is outside the %dx%d grid", s, w, h)
		}
		return core.C(cx, cy).Index(w), nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid slot %q: want x,y or an index", s)
	}
	if i < 0 || i >= w*h {
		return 0, fmt.Errorf("slot %d is outside the %dx%d grid", i, w, h)
	}
	return i, nil
}
