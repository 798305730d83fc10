package rng

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"corrlab/ports"
)

// BoxMuller turns a uniform source into standard-normal draws.
// It keeps no state of its own beyond the uniform source.
type BoxMuller struct {
	src ports.UniformSource
}

var _ ports.NormalSource = (*BoxMuller)(nil)

// NewBoxMuller wraps src
func NewBoxMuller(src ports.UniformSource) *BoxMuller {
	return &BoxMuller{src: src}
}

// NewSeeded returns a deterministic generator over math/rand seeded with seed
func NewSeeded(seed int64) *BoxMuller {
	return NewBoxMuller(rand.New(rand.NewSource(seed)))
}

// NewStream returns a deterministic generator for a named consumer. The same
// (name, seed) pair always yields the same sequence; different names diverge.
func NewStream(name string, seed int64) *BoxMuller {
	return NewSeeded(StreamSeed(name, seed))
}

// NewUnseeded returns a generator seeded from the wall clock
func NewUnseeded() *BoxMuller {
	return NewSeeded(time.Now().UnixNano())
}

// StreamSeed mixes a stream name into a base seed
func StreamSeed(name string, seed int64) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(h.Sum64()) ^ seed
}

// NextStandardNormal returns sqrt(-2 ln u) * cos(2*pi*v) for u, v uniform in (0, 1)
func (b *BoxMuller) NextStandardNormal() float64 {
	u := b.nonZeroUniform()
	v := b.nonZeroUniform()
	return math.Sqrt(-2*math.Log(u)) * math.Cos(2*math.Pi*v)
}

// nonZeroUniform resamples until the draw is not exactly 0, so ln(u) stays finite
func (b *BoxMuller) nonZeroUniform() float64 {
	u := b.src.Float64()
	for u == 0 {
		u = b.src.Float64()
	}
	return u
}
