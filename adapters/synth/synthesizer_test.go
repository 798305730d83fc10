package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"corrlab/adapters/rng"
	"corrlab/internal/testkit"
)

const rangeTol = 1e-9

func TestGenerate_CountRangeAndExtremes(t *testing.T) {
	cases := []struct {
		name string
		r    float64
		n    int
		lo   float64
		hi   float64
	}{
		{"strong positive", 0.9, 50, 0, 10},
		{"independent", 0, 2, 0, 10},
		{"perfect negative", -1, 10, 0, 10},
		{"perfect positive", 1, 200, -5, 5},
		{"shifted range", -0.4, 37, 100, 250},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Generate(rng.NewSeeded(3), tc.r, tc.n, tc.lo, tc.hi)
			require.Equal(t, tc.n, s.Len())

			var hitMinX, hitMaxX, hitMinY, hitMaxY bool
			for i := 0; i < s.Len(); i++ {
				p := s.At(i)
				assert.GreaterOrEqual(t, p.X, tc.lo-rangeTol)
				assert.LessOrEqual(t, p.X, tc.hi+rangeTol)
				assert.GreaterOrEqual(t, p.Y, tc.lo-rangeTol)
				assert.LessOrEqual(t, p.Y, tc.hi+rangeTol)

				hitMinX = hitMinX || testkit.ApproxEqual(p.X, tc.lo, rangeTol)
				hitMaxX = hitMaxX || testkit.ApproxEqual(p.X, tc.hi, rangeTol)
				hitMinY = hitMinY || testkit.ApproxEqual(p.Y, tc.lo, rangeTol)
				hitMaxY = hitMaxY || testkit.ApproxEqual(p.Y, tc.hi, rangeTol)
			}
			assert.True(t, hitMinX && hitMaxX, "x should attain both ends of the range")
			assert.True(t, hitMinY && hitMaxY, "y should attain both ends of the range")
		})
	}
}

func TestGenerate_SinglePointMapsToRangeMin(t *testing.T) {
	s := Generate(rng.NewSeeded(1), 0, 1, 0, 10)
	require.Equal(t, 1, s.Len())

	p := s.At(0)
	if p.X != 0 || p.Y != 0 {
		t.Fatalf("expected single point at (0, 0), got (%v, %v)", p.X, p.Y)
	}
}

func TestGenerate_ConstantDrawsDoNotDivideByZero(t *testing.T) {
	s := Generate(testkit.ConstantNormal(1.5), 0.5, 20, 2, 8)
	require.Equal(t, 20, s.Len())

	for i := 0; i < s.Len(); i++ {
		p := s.At(i)
		if p.X != 2 || p.Y != 2 {
			t.Fatalf("expected every degenerate point at rangeMin, got (%v, %v) at %d", p.X, p.Y, i)
		}
	}
}

func TestGenerate_PerfectCorrelationIsExact(t *testing.T) {
	for _, r := range []float64{1, -1} {
		s := Generate(rng.NewSeeded(11), r, 100, 0, 10)
		got := stat.Correlation(s.Xs(), s.Ys(), nil)
		if !testkit.ApproxEqual(got, r, 1e-9) {
			t.Errorf("target %v: expected realized correlation %v, got %.12f", r, r, got)
		}
	}
}

func TestGenerate_RealizedCorrelationTracksTarget(t *testing.T) {
	// Large n keeps sampling noise well under the tolerance.
	const n = 20000
	for _, r := range []float64{-0.8, -0.3, 0, 0.5, 0.9} {
		s := Generate(rng.NewSeeded(5), r, n, 0, 10)
		got := stat.Correlation(s.Xs(), s.Ys(), nil)
		if math.Abs(got-r) > 0.03 {
			t.Errorf("target %v: realized correlation %.4f too far off", r, got)
		}
	}
}

func TestGenerate_UsesTwoDrawsPerPointInOrder(t *testing.T) {
	// z1 alternates 0 and 1, z2 is fixed at 0 so y = r*z1; r = 0.5.
	src := testkit.NewSequenceNormal(0, 0, 1, 0, 0, 0, 1, 0)
	s := Generate(src, 0.5, 4, 0, 10)
	require.Equal(t, 4, s.Len())

	wantX := []float64{0, 10, 0, 10}
	assert.Equal(t, wantX, s.Xs())
	assert.Equal(t, wantX, s.Ys(), "y rescales to the same pattern since y = 0.5 * x")
}

func TestRescale(t *testing.T) {
	got := Rescale([]float64{-2, 0, 2}, 0, 10)
	assert.InDeltaSlice(t, []float64{0, 5, 10}, got, 1e-12)

	assert.Equal(t, []float64{3, 3}, Rescale([]float64{7, 7}, 3, 9))
	assert.Empty(t, Rescale(nil, 0, 1))
}

func TestSynthesizer_ImplementsPort(t *testing.T) {
	s := NewSynthesizer(rng.NewSeeded(9)).Generate(0.2, 15, 0, 10)
	assert.Equal(t, 15, s.Len())
}
