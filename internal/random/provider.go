// Package random provides the deterministic pseudo-random source used by
// every procedural system of the farm engine.
//
// # Determinism
//
// A Provider is fully determined by its seed. Two providers created with the
// same seed produce identical output for identical call sequences, across
// platforms and releases: the state is initialised with a splitmix64 mix of
// the seed and advanced with xorshift64. Changing either function is a
// breaking change for persisted unlock layouts and must bump the unlock
// algorithm version.
//
// A Provider is not safe for concurrent use and must not be shared between
// call sites that expect independent streams; use Split to derive one.
package random

// fallbackState replaces an all-zero state, which xorshift cannot leave.
const fallbackState = 88172645463325252

// Provider is a seeded xorshift64 generator.
type Provider struct {
	seed  int64
	state uint64
}

// New creates a provider for the given seed.
func New(seed int64) *Provider {
	return &Provider{seed: seed, state: mix(uint64(seed))}
}

// mix is the splitmix64 finalizer. It spreads low-entropy seeds (0, 1, 42)
// over the whole state space.
func mix(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	x ^= x >> 31
	if x == 0 {
		x = fallbackState
	}
	return x
}

// Seed returns the seed the provider was created with.
func (p *Provider) Seed() int64 {
	return p.seed
}

// Next returns the next random uint64.
func (p *Provider) Next() uint64 {
	p.state ^= p.state << 13
	p.state ^= p.state >> 7
	p.state ^= p.state << 17
	return p.state
}

// Int63 returns a non-negative random int64.
func (p *Provider) Int63() int64 {
	return int64(p.Next() >> 1)
}

// Intn returns a uniformly distributed int in [0, n).
// Returns 0 when n <= 0.
func (p *Provider) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	bound := uint64(n)
	// Reject the short tail so every residue is equally likely.
	threshold := -bound % bound
	for {
		r := p.Next()
		if r >= threshold {
			return int(r % bound)
		}
	}
}

// Range returns an int in [min, max). Returns min when max <= min.
func (p *Provider) Range(min, max int) int {
	if max <= min {
		return min
	}
	return min + p.Intn(max-min)
}

// Float returns a random float64 in [0, 1).
func (p *Provider) Float() float64 {
	return float64(p.Next()>>11) / (1 << 53)
}

// RangeFloat returns a float64 in [min, max).
func (p *Provider) RangeFloat(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + p.Float()*(max-min)
}

// Bool returns true or false with equal probability.
func (p *Provider) Bool() bool {
	return p.Next()>>63 == 1
}

// Chance returns true with the given probability.
func (p *Provider) Chance(probability float64) bool {
	return p.Float() < probability
}

// Split derives an independent provider from the next value of this stream.
func (p *Provider) Split() *Provider {
	return New(p.Int63())
}

// Shuffle permutes items in place with an unbiased Fisher-Yates pass:
// from the last index down to 1, each element is swapped with one drawn
// uniformly from [0, i].
func Shuffle[T any](p *Provider, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := p.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// Pick returns a uniformly chosen element. ok is false for an empty slice.
func Pick[T any](p *Provider, items []T) (item T, ok bool) {
	if len(items) == 0 {
		return item, false
	}
	return items[p.Intn(len(items))], true
}

// WeightedIndex performs roulette-wheel selection over integer weights.
// Negative weights count as zero. A single roll is drawn in [0, total) and
// the first candidate whose cumulative band contains the roll wins, so a
// zero-weight candidate is never selected. Returns -1 when the total is 0.
func (p *Provider) WeightedIndex(weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}
	return SelectWeighted(weights, p.Intn(total))
}

// SelectWeighted maps a roll in [0, total) onto the weight table.
// Exposed separately so the band walk can be checked against fixed rolls.
func SelectWeighted(weights []int, roll int) int {
	cumulative := 0
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		last = i
		if roll < cumulative {
			return i
		}
	}
	return last
}
