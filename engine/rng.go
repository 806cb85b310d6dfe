package engine

import "math/rand"

// countingSource wraps a rand.Source64 and counts every step it takes, so
// the generator can be rebuilt at the same position after a load.
type countingSource struct {
	src rand.Source64
	pos int64
}

func (c *countingSource) Int63() int64 {
	c.pos++
	return c.src.Int63()
}

func (c *countingSource) Uint64() uint64 {
	c.pos++
	return c.src.Uint64()
}

func (c *countingSource) Seed(seed int64) {
	c.src.Seed(seed)
	c.pos = 0
}

// RNG wraps math/rand.Rand with deterministic position tracking.
// Position increments with every step of the underlying source, enabling
// save/restore.
type RNG struct {
	seed int64
	src  *countingSource
	r    *rand.Rand
}

// NewRNG creates a new deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	src := &countingSource{src: rand.NewSource(seed).(rand.Source64)}
	return &RNG{
		seed: seed,
		src:  src,
		r:    rand.New(src),
	}
}

// Roll returns a random integer in [1, sides].
func (r *RNG) Roll(sides int) int {
	return r.r.Intn(sides) + 1
}

// Intn returns a random integer in [0, n).
func (r *RNG) Intn(n int) int {
	return r.r.Intn(n)
}

// Shuffle randomizes the order of n elements.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	r.r.Shuffle(n, swap)
}

// WeightedSelect returns an index chosen by weighted random selection.
// weights must be non-empty with all positive values.
func (r *RNG) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	roll := r.r.Intn(total)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// Read fills p with random bytes, one source step per byte, so that no
// partially used value is buffered between calls.
func (r *RNG) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.src.Int63())
	}
	return len(p), nil
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of source steps taken since creation.
func (r *RNG) Position() int64 {
	return r.src.pos
}

// RestoreRNG creates an RNG and advances it to the given position.
// This reproduces the exact RNG state for save/load.
func RestoreRNG(seed int64, position int64) *RNG {
	rng := NewRNG(seed)
	for i := int64(0); i < position; i++ {
		rng.src.Int63()
	}
	return rng
}
