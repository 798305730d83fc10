package engine

import "math"

// Correlation returns the Pearson correlation of two equal-length slices.
//
// Uses the two-pass definition (means first, then centered sums). Returns 0
// instead of NaN for fewer than two points, mismatched lengths, or a constant
// dimension.
func Correlation(xs, ys []float64) float64 {
	n := len(xs)
	if n != len(ys) || n <= 1 {
		return 0
	}

	meanX, meanY := mean(xs), mean(ys)

	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}

	if sxx == 0 || syy == 0 {
		return 0
	}

	r := sxy / math.Sqrt(sxx*syy)

	// Clamp to [-1, 1] range (due to floating point precision)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
