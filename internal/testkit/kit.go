package testkit

import (
	"math"
	"math/rand"

	"corrlab/domain/sample"
	"corrlab/ports"
)

// TestKit provides deterministic fixtures for tests across the module
type TestKit struct {
	Seed int64
}

// NewTestKit creates a test kit with a fixed seed
func NewTestKit() *TestKit {
	return &TestKit{Seed: 42}
}

// Uniform returns a seeded uniform source
func (t *TestKit) Uniform() ports.UniformSource {
	return rand.New(rand.NewSource(t.Seed))
}

// SequenceUniform replays a fixed list of uniform draws, cycling when exhausted
type SequenceUniform struct {
	Values []float64
	next   int
}

// NewSequenceUniform creates a replaying uniform source
func NewSequenceUniform(values ...float64) *SequenceUniform {
	return &SequenceUniform{Values: values}
}

// Float64 implements ports.UniformSource
func (s *SequenceUniform) Float64() float64 {
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return v
}

// Draws reports how many values have been consumed
func (s *SequenceUniform) Draws() int {
	return s.next
}

// SequenceNormal replays a fixed list of normal draws, cycling when exhausted
type SequenceNormal struct {
	Values []float64
	next   int
}

// NewSequenceNormal creates a replaying normal source
func NewSequenceNormal(values ...float64) *SequenceNormal {
	return &SequenceNormal{Values: values}
}

// NextStandardNormal implements ports.NormalSource
func (s *SequenceNormal) NextStandardNormal() float64 {
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return v
}

// ConstantNormal always returns the same draw
type ConstantNormal float64

// NextStandardNormal implements ports.NormalSource
func (c ConstantNormal) NextStandardNormal() float64 {
	return float64(c)
}

// LineSample places one point on y = slope*x + intercept for each x
func LineSample(slope, intercept float64, xs ...float64) sample.Sample {
	points := make([]sample.Point, len(xs))
	for i, x := range xs {
		points[i] = sample.Point{X: x, Y: slope*x + intercept}
	}
	return sample.New(points)
}

// ConstantYSample places every point at height y
func ConstantYSample(y float64, xs ...float64) sample.Sample {
	return LineSample(0, y, xs...)
}

// Range returns n evenly spaced values starting at start with the given step
func Range(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// ApproxEqual reports whether a and b differ by at most tol
func ApproxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
