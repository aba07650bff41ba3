package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-farm/internal/journal"
	"github.com/vovakirdan/tui-farm/internal/run"
	"github.com/vovakirdan/tui-farm/internal/storage"
)

func TestParseSlot(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"24", 24, false},
		{"2,1", 7, false},
		{" 4 , 4 ", 24, false},
		{"25", 0, true},
		{"-1", 0, true},
		{"5,0", 0, true},
		{"a,b", 0, true},
		{"x", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSlot(tt.in, 5, 5)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type env struct {
	db      string
	journal string
}

// isolate points every config lookup and output path at a temp dir.
func isolate(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("FARM_OTEL_ENDPOINT", "")
	t.Chdir(dir)
	return env{db: filepath.Join(dir, "farm.db"), journal: filepath.Join(dir, "journal")}
}

func resetFlags() {
	flagConfig, flagDBPath, flagJournal, flagRun, flagDifficulty = "", "", "", "", ""
	flagSeed = 0
	flagVerbose = false
	flagResolveDays, flagResolveDryRun, flagResolveEvents = 1, false, false
	flagShowPatterns = false
	flagHistoryDays, flagHistoryTUI, flagHistoryRm = 10, false, false
	flagUnlockWidth, flagUnlockHeight, flagUnlockCount = 0, 0, 0
}

func (e env) execute(t *testing.T, args ...string) string {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--db", e.db, "--journal", e.journal))
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func (e env) latest(t *testing.T) *run.Data {
	t.Helper()
	store, err := storage.Open(e.db)
	require.NoError(t, err)
	defer store.Close()
	d, err := store.Latest(context.Background())
	require.NoError(t, err)
	return d
}

func TestRunLifecycle(t *testing.T) {
	e := isolate(t)

	out := e.execute(t, "new", "--seed", "42")
	assert.Contains(t, out, "created (seed 42)")

	d := e.latest(t)
	require.Equal(t, 1, d.Day)
	slots := d.Unlock.Indices()
	require.NotEmpty(t, slots)

	out = e.execute(t, "plant", strconv.Itoa(slots[0]), "wheat")
	assert.Contains(t, out, "Planted wheat")
	out = e.execute(t, "water")
	assert.Contains(t, out, "Watered 1 crops")

	out = e.execute(t, "resolve", "--days", "2")
	assert.Contains(t, out, "Day 1:")
	assert.Contains(t, out, "Day 2:")

	d = e.latest(t)
	assert.Equal(t, 3, d.Day)

	entries, err := journal.ReadRun(e.journal, d.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)

	out = e.execute(t, "history")
	assert.Contains(t, out, d.ID)
	assert.Contains(t, out, "2 days resolved")

	out = e.execute(t, "show", "--patterns")
	assert.Contains(t, out, "day 3")
}

func TestResolveDryRunKeepsRun(t *testing.T) {
	e := isolate(t)
	e.execute(t, "new", "--seed", "7")

	out := e.execute(t, "resolve", "--dry-run", "--events")
	assert.Contains(t, out, "Day 1:")
	assert.Contains(t, out, "event day_resolved")

	assert.Equal(t, 1, e.latest(t).Day)
}

func TestUnlockPreviewIsDeterministic(t *testing.T) {
	e := isolate(t)

	first := e.execute(t, "unlock", "--seed", "99")
	second := e.execute(t, "unlock", "--seed", "99")
	assert.Equal(t, first, second)
	assert.Contains(t, first, "Seed 99")
}
