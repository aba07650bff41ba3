package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"

	"github.com/vovakirdan/tui-farm/internal/events"
)

// Entry is one journal line.
type Entry struct {
	Time  time.Time       `json:"time"`
	RunID string          `json:"run_id"`
	Day   int             `json:"day"`
	Kind  string          `json:"kind"`
	Event json.RawMessage `json:"event"`
}

// Sink is an events.Sink writing every event of a run to the journal.
// Write errors are logged, never returned to the publisher.
type Sink struct {
	w      *Writer
	runID  string
	logger *log.Logger
	now    func() time.Time

	mu  sync.Mutex
	day int
}

// NewSink creates a journal sink for a run under dir.
func NewSink(dir, runID string, logger *log.Logger) *Sink {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Sink{
		w:      NewWriter(dir, runID),
		runID:  runID,
		logger: logger,
		now:    time.Now,
	}
}

// SetDay selects the segment for following events.
func (s *Sink) SetDay(day int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.day = day
}

// Publish writes evt to the current day segment.
func (s *Sink) Publish(evt events.Event) {
	s.mu.Lock()
	day := s.day
	s.mu.Unlock()

	raw, err := json.Marshal(evt)
	if err != nil {
		s.logger.Warn("journal: cannot encode event", "kind", evt.Kind(), "error", err)
		return
	}
	entry := Entry{
		Time:  s.now().UTC(),
		RunID: s.runID,
		Day:   day,
		Kind:  evt.Kind(),
		Event: raw,
	}
	if err := s.w.Write(segmentName(day), entry); err != nil {
		s.logger.Warn("journal: write failed", "kind", evt.Kind(), "error", err)
	}
}

// Close flushes and closes the current segment.
func (s *Sink) Close() error {
	return s.w.Close()
}

func segmentName(day int) string {
	return fmt.Sprintf("day-%04d", day)
}

// ReadFile decodes every entry of a segment file.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("journal: open: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("journal: zstd reader: %w", err)
	}
	defer dec.Close()

	var out []Entry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return out, fmt.Errorf("journal: decode line %d: %w", len(out)+1, err)
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("journal: read: %w", err)
	}
	return out, nil
}

// ReadRun decodes every segment of a run in day order.
func ReadRun(dir, runID string) ([]Entry, error) {
	paths, err := filepath.Glob(filepath.Join(dir, runID+"-day-*.jsonl.zst"))
	if err != nil {
		return nil, fmt.Errorf("journal: glob: %w", err)
	}
	sort.Strings(paths)

	var out []Entry
	for _, p := range paths {
		entries, err := ReadFile(p)
		if err != nil {
			return out, err
		}
		out = append(out, entries...)
	}
	return out, nil
}
