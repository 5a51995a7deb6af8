package sim

import "math"

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible shift.
// Two shifts with the same SimulationKey, scenario, and action sequence
// MUST produce bit-for-bit identical results.
type SimulationKey uint32

// NewSimulationKey creates a SimulationKey from a seed value.
// Only the low 32 bits are kept.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(uint32(seed))
}

// === RNG ===

// RNG is the single stochastic source of a shift (mulberry32).
// Every random decision (failures, demand noise, due buckets, batch splits,
// error draws, incidents) is drawn from one instance so that a seed replays
// an entire shift. Operator actions never draw from it.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type RNG struct {
	key   SimulationKey
	state uint32
	draws uint64
}

// NewRNG creates an RNG seeded with key.
func NewRNG(key SimulationKey) *RNG {
	return &RNG{key: key, state: uint32(key)}
}

// Key returns the SimulationKey used to create this RNG.
func (r *RNG) Key() SimulationKey {
	return r.key
}

// Draws returns how many uniforms have been consumed so far.
func (r *RNG) Draws() uint64 {
	return r.draws
}

// Float64 returns a uniform value in [0,1).
func (r *RNG) Float64() float64 {
	r.draws++
	r.state += 0x6D2B79F5
	t := r.state
	t = (t ^ (t >> 15)) * (t | 1)
	t = (t + (t^(t>>7))*(t|61)) ^ t
	return float64(t^(t>>14)) / 4294967296.0
}

// Gaussian returns a standard-normal sample (Box-Muller, two uniforms per call).
func (r *RNG) Gaussian() float64 {
	u := 0.0
	for u == 0 {
		u = r.Float64()
	}
	v := 0.0
	for v == 0 {
		v = r.Float64()
	}
	return math.Sqrt(-2.0*math.Log(u)) * math.Cos(2.0*math.Pi*v)
}

// Binomial approximates a Binomial(n, p) count with a rounded normal draw
// (mean n·p, variance n·p·(1-p)), clamped to [0, n].
// Returns 0 without drawing when n <= 0.
func (r *RNG) Binomial(n int, p float64) int {
	if n <= 0 {
		return 0
	}
	p = clamp(p, 0, 1)
	mean := float64(n) * p
	variance := float64(n) * p * (1 - p)
	z := r.Gaussian()
	x := int(roundHalfUp(mean + math.Sqrt(math.Max(0, variance))*z))
	return clampInt(x, 0, n)
}

// IntRange returns a uniform integer in [lo, hi].
func (r *RNG) IntRange(lo, hi int) int {
	return lo + int(math.Floor(r.Float64()*float64(hi-lo+1)))
}

// Weighted pairs a value with its relative selection weight.
type Weighted[T any] struct {
	W float64
	V T
}

// PickWeighted selects one value with probability proportional to its weight.
// One uniform is consumed. Returns the zero value for an empty list.
func PickWeighted[T any](r *RNG, items []Weighted[T]) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	total := 0.0
	for _, it := range items {
		total += it.W
	}
	t := r.Float64() * total
	for _, it := range items {
		t -= it.W
		if t <= 0 {
			return it.V
		}
	}
	return items[len(items)-1].V
}

// roundHalfUp rounds halves toward +Inf (-2.5 -> -2).
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
