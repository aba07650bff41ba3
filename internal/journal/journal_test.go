package journal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-farm/internal/events"
	"github.com/vovakirdan/tui-farm/internal/patterns"
)

func TestSinkWritesSegmentsPerDay(t *testing.T) {
	dir := t.TempDir()
	sink := NewSink(dir, "run1", nil)

	sink.SetDay(1)
	sink.Publish(events.PatternDetected{Day: 1, Match: patterns.Match{PatternID: "row", Slots: []int{0, 1, 2}}})
	sink.Publish(events.DayChanged{Day: 2, Week: 1})
	sink.SetDay(2)
	sink.Publish(events.ScoreCalculated{Day: 2, Total: 26})
	require.NoError(t, sink.Close())

	day1, err := ReadFile(filepath.Join(dir, "run1-day-0001.jsonl.zst"))
	require.NoError(t, err)
	require.Len(t, day1, 2)
	assert.Equal(t, "pattern_detected", day1[0].Kind)
	assert.Equal(t, "run1", day1[0].RunID)
	assert.Equal(t, 1, day1[0].Day)

	var pd events.PatternDetected
	require.NoError(t, json.Unmarshal(day1[0].Event, &pd))
	assert.Equal(t, []int{0, 1, 2}, pd.Match.Slots)

	all, err := ReadRun(dir, "run1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "score_calculated", all[2].Kind)
	assert.Equal(t, 2, all[2].Day)
}

func TestReopenAppends(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 2; i++ {
		sink := NewSink(dir, "run2", nil)
		sink.SetDay(3)
		sink.Publish(events.DayChanged{Day: 4})
		require.NoError(t, sink.Close())
	}

	entries, err := ReadRun(dir, "run2")
	require.NoError(t, err)
	assert.Len(t, entries, 2, "zstd frames appended to one file decode back to back")
}

func TestWriterCloseReportsFileErrors(t *testing.T) {
	w := NewWriter(t.TempDir(), "run3")
	require.NoError(t, w.Write("day-0001", map[string]int{"day": 1}))

	// Close the segment file underneath the writer.
	require.NoError(t, w.f.Close())

	err := w.Close()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrClosed)
	assert.ErrorContains(t, err, "journal: close segment")
	assert.Nil(t, w.f)
	assert.NoError(t, w.Close(), "closing twice is a no-op")
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.jsonl.zst"))
	assert.Error(t, err)
}
