package rng

import (
	"math"
	"sort"
	"testing"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"corrlab/internal/testkit"
)

func TestBoxMuller_KnownDraw(t *testing.T) {
	// u = 0.5, v = 0.5 -> sqrt(-2 ln 0.5) * cos(pi) = -sqrt(2 ln 2)
	src := testkit.NewSequenceUniform(0.5, 0.5)
	got := NewBoxMuller(src).NextStandardNormal()
	want := -math.Sqrt(2 * math.Ln2)
	if !testkit.ApproxEqual(got, want, 1e-12) {
		t.Fatalf("expected %.12f, got %.12f", want, got)
	}
}

func TestBoxMuller_ResamplesExactZero(t *testing.T) {
	src := testkit.NewSequenceUniform(0, 0, 0.5, 0, 0.5)
	got := NewBoxMuller(src).NextStandardNormal()

	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("expected finite draw after resampling zeros, got %v", got)
	}
	if src.Draws() != 5 {
		t.Fatalf("expected 5 uniform draws (3 zeros resampled), got %d", src.Draws())
	}
	if !testkit.ApproxEqual(got, -math.Sqrt(2*math.Ln2), 1e-12) {
		t.Fatalf("expected the draw from the first non-zero u and v, got %.12f", got)
	}
}

func TestBoxMuller_Moments(t *testing.T) {
	const n = 200000
	gen := NewSeeded(7)

	draws := make([]float64, n)
	for i := range draws {
		draws[i] = gen.NextStandardNormal()
		if math.IsNaN(draws[i]) || math.IsInf(draws[i], 0) {
			t.Fatalf("draw %d is not finite: %v", i, draws[i])
		}
	}

	mean, std := stat.MeanStdDev(draws, nil)
	if math.Abs(mean) > 0.01 {
		t.Errorf("expected mean near 0, got %.4f", mean)
	}
	if math.Abs(std-1) > 0.01 {
		t.Errorf("expected std dev near 1, got %.4f", std)
	}
}

func TestBoxMuller_MatchesNormalCDF(t *testing.T) {
	const n = 100000
	gen := NewSeeded(42)

	draws := make([]float64, n)
	for i := range draws {
		draws[i] = gen.NextStandardNormal()
	}
	sort.Float64s(draws)

	// Kolmogorov-Smirnov distance against the unit normal
	maxGap := 0.0
	for i, x := range draws {
		cdf := distuv.UnitNormal.CDF(x)
		lo := math.Abs(cdf - float64(i)/n)
		hi := math.Abs(float64(i+1)/n - cdf)
		maxGap = math.Max(maxGap, math.Max(lo, hi))
	}
	if maxGap > 0.01 {
		t.Fatalf("expected KS distance below 0.01, got %.5f", maxGap)
	}
}

func TestNewStream_Deterministic(t *testing.T) {
	a := NewStream("explorer", 99)
	b := NewStream("explorer", 99)
	c := NewStream("cli", 99)

	same, diverged := true, false
	for i := 0; i < 16; i++ {
		va, vb, vc := a.NextStandardNormal(), b.NextStandardNormal(), c.NextStandardNormal()
		if va != vb {
			same = false
		}
		if va != vc {
			diverged = true
		}
	}
	if !same {
		t.Error("expected identical streams for the same name and seed")
	}
	if !diverged {
		t.Error("expected different names to yield different streams")
	}
}
