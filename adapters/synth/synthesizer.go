package synth

import (
	"math"

	"github.com/montanaflynn/stats"

	"corrlab/domain/sample"
	"corrlab/ports"
)

// Synthesizer generates correlated samples from a normal source
type Synthesizer struct {
	src ports.NormalSource
}

var _ ports.SampleSynthesizer = (*Synthesizer)(nil)

// NewSynthesizer creates a synthesizer drawing from src
func NewSynthesizer(src ports.NormalSource) *Synthesizer {
	return &Synthesizer{src: src}
}

// Generate implements ports.SampleSynthesizer
func (s *Synthesizer) Generate(targetCorrelation float64, n int, rangeMin, rangeMax float64) sample.Sample {
	return Generate(s.src, targetCorrelation, n, rangeMin, rangeMax)
}

// Generate draws n points whose population correlation is targetCorrelation
// and rescales each axis independently onto [rangeMin, rangeMax].
//
// The realized correlation differs from the target, more so for small n.
// Callers must pass n >= 1 and a correlation already validated to [-1, 1].
func Generate(src ports.NormalSource, targetCorrelation float64, n int, rangeMin, rangeMax float64) sample.Sample {
	if n <= 0 {
		return sample.New(nil)
	}

	// max() absorbs rounding when |r| is a hair above 1
	noise := math.Sqrt(math.Max(0, 1-targetCorrelation*targetCorrelation))

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		z1 := src.NextStandardNormal()
		z2 := src.NextStandardNormal()
		xs[i] = z1
		ys[i] = targetCorrelation*z1 + noise*z2
	}

	return sample.FromColumns(
		Rescale(xs, rangeMin, rangeMax),
		Rescale(ys, rangeMin, rangeMax),
	)
}

// Rescale maps values linearly from their own [min, max] onto [lo, hi].
// A zero-width input range uses a divisor of 1, which sends every value to lo.
func Rescale(values []float64, lo, hi float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	minV, err := stats.Min(values)
	if err != nil {
		return out
	}
	maxV, err := stats.Max(values)
	if err != nil {
		return out
	}

	span := maxV - minV
	if span == 0 {
		span = 1
	}

	width := hi - lo
	for i, v := range values {
		out[i] = lo + (v-minV)/span*width
	}
	return out
}
