package run

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is an in-process Store. Runs are kept as JSON so callers can
// never alias stored state.
type MemoryStore struct {
	mu    sync.Mutex
	runs  map[string][]byte
	order []string // most recently saved last
	days  map[string][]DayRecord
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string][]byte),
		days: make(map[string][]DayRecord),
	}
}

// Save stores a run.
func (m *MemoryStore) Save(_ context.Context, d *Data) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("run: encode: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[d.ID] = b
	m.touch(d.ID)
	return nil
}

// Commit stores a run and appends a day record.
func (m *MemoryStore) Commit(ctx context.Context, d *Data, rec DayRecord) error {
	if err := m.Save(ctx, d); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days[rec.RunID] = append(m.days[rec.RunID], rec)
	return nil
}

// Load returns a copy of a run.
func (m *MemoryStore) Load(_ context.Context, id string) (*Data, error) {
	m.mu.Lock()
	b, ok := m.runs[id]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	var d Data
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("run: decode: %w", err)
	}
	return &d, nil
}

// Latest returns the most recently saved run.
func (m *MemoryStore) Latest(ctx context.Context) (*Data, error) {
	m.mu.Lock()
	n := len(m.order)
	var id string
	if n > 0 {
		id = m.order[n-1]
	}
	m.mu.Unlock()
	if n == 0 {
		return nil, ErrNotFound
	}
	return m.Load(ctx, id)
}

// Days returns day records newest first.
func (m *MemoryStore) Days(_ context.Context, runID string, limit int) ([]DayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := m.days[runID]
	out := make([]DayRecord, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, recs[i])
	}
	return out, nil
}

func (m *MemoryStore) touch(id string) {
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.order = append(m.order, id)
}

var _ Store = (*MemoryStore)(nil)
