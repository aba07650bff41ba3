package scoring

import (
	"sort"

	"github.com/vovakirdan/tui-farm/internal/patterns"
)

// History remembers pattern identities across days. Active maps a match key
// to its consecutive days active; Broken lists keys that disappeared, oldest
// first.
type History struct {
	Active map[string]int `json:"active,omitempty"`
	Broken []string       `json:"broken,omitempty"`
}

// Tracked is a match annotated with its history.
type Tracked struct {
	Match     patterns.Match
	Recreated bool
}

// Track records today's matches and returns them with DaysActive filled in.
// A match present yesterday gains a day. A match absent yesterday but listed
// as broken starts again at zero and is flagged as recreated (once; it leaves
// the broken list). Anything else is new. Yesterday's matches that are gone
// today move to the broken list, which keeps at most maxBroken entries.
func (h *History) Track(matches []patterns.Match, maxBroken int) []Tracked {
	out := make([]Tracked, 0, len(matches))
	next := make(map[string]int, len(matches))

	for _, m := range matches {
		m = m.Clone()
		key := m.Key()
		t := Tracked{}
		if days, ok := h.Active[key]; ok {
			m.DaysActive = days + 1
		} else {
			m.DaysActive = 0
			if h.removeBroken(key) {
				t.Recreated = true
			}
		}
		t.Match = m
		next[key] = m.DaysActive
		out = append(out, t)
	}

	var gone []string
	for key := range h.Active {
		if _, ok := next[key]; !ok {
			gone = append(gone, key)
		}
	}
	sort.Strings(gone)
	for _, key := range gone {
		h.removeBroken(key)
		h.Broken = append(h.Broken, key)
	}
	if maxBroken >= 0 && len(h.Broken) > maxBroken {
		h.Broken = append([]string(nil), h.Broken[len(h.Broken)-maxBroken:]...)
	}

	h.Active = next
	return out
}

// IsBroken reports whether key is in the broken list.
func (h *History) IsBroken(key string) bool {
	for _, k := range h.Broken {
		if k == key {
			return true
		}
	}
	return false
}

func (h *History) removeBroken(key string) bool {
	for i, k := range h.Broken {
		if k == key {
			h.Broken = append(h.Broken[:i], h.Broken[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (h History) Clone() History {
	out := History{Broken: append([]string(nil), h.Broken...)}
	if h.Active != nil {
		out.Active = make(map[string]int, len(h.Active))
		for k, v := range h.Active {
			out.Active[k] = v
		}
	}
	return out
}
