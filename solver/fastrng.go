package solver

import (
	"math/rand"
	randv2 "math/rand/v2"
)

// PCG32 is a small, fast PCG-XSH-RR generator with 64-bit state and 32-bit
// output. It backs NewFastRand; the trainer's own traversal and checkpoint
// RNGs are math/rand sources and do not use it.
type PCG32 struct {
	state uint64
}

// NewPCG32 creates a PCG32 seeded deterministically from seed.
func NewPCG32(seed int64) *PCG32 {
	return &PCG32{state: uint64(seed)*2 + 1}
}

// InitSeed reseeds in place, avoiding an allocation.
func (r *PCG32) InitSeed(seed int64) {
	r.state = uint64(seed)*2 + 1
}

// Uint32 generates the next output word.
func (r *PCG32) Uint32() uint32 {
	oldstate := r.state
	r.state = oldstate*6364136223846793005 + 1442695040888963407
	xorshifted := uint32(((oldstate >> 18) ^ oldstate) >> 27)
	rot := uint32(oldstate >> 59)
	return (xorshifted >> rot) | (xorshifted << ((-rot) & 31))
}

// Intn returns a value in [0, n).
func (r *PCG32) Intn(n int) int {
	return int(r.Uint32() % uint32(n))
}

// wrapperSource adapts PCG32 to the math/rand.Source interface so it can
// back a *rand.Rand wherever the rest of the module expects one.
type wrapperSource struct {
	rng *PCG32
}

func (w *wrapperSource) Int63() int64 {
	return int64(w.rng.Uint32())<<31 | int64(w.rng.Uint32())
}

func (w *wrapperSource) Seed(seed int64) {
	w.rng = NewPCG32(seed)
}

// NewFastRand returns a *rand.Rand backed by PCG32, for traversal hot paths
// where the global locking rand.Rand would contend across parallel tables.
func NewFastRand(seed int64) *rand.Rand {
	return rand.New(&wrapperSource{rng: NewPCG32(seed)})
}

// v2Wrapper adapts rand/v2's PCG (two uint64 seeds, golden-ratio-mixed from
// one int64 here) to the math/rand.Source interface.
type v2Wrapper struct {
	src *randv2.PCG
}

// goldenRatio64 is the fractional part of the golden ratio scaled to 64
// bits, the standard constant for mixing a single seed into two PCG streams
// without correlating them.
const goldenRatio64 = 0x9E3779B97F4A7C15

func (w *v2Wrapper) Int63() int64 {
	return int64(w.src.Uint64() >> 1)
}

func (w *v2Wrapper) Seed(seed int64) {
	*w.src = *randv2.NewPCG(uint64(seed), uint64(seed)^goldenRatio64)
}

// NewFastRandV2 returns a *rand.Rand backed by rand/v2's PCG, an alternative
// to NewFastRand when the stronger two-stream PCG is preferred.
func NewFastRandV2(seed int64) *rand.Rand {
	src := randv2.NewPCG(uint64(seed), uint64(seed)^goldenRatio64)
	return rand.New(&v2Wrapper{src: src})
}
