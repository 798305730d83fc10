package engine

import (
	"corrlab/domain/sample"
	"corrlab/domain/stats"
)

// Regress fits y = slope*x + intercept by ordinary least squares.
//
// An empty sample yields {0, 0, 0}. When every x is identical the slope is
// undefined; the fit degrades to the horizontal line through meanY.
func Regress(s sample.Sample) stats.Regression {
	n := s.Len()
	if n == 0 {
		return stats.Regression{}
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		p := s.At(i)
		sumX += p.X
		sumY += p.Y
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var ssXY, ssXX float64
	for i := 0; i < n; i++ {
		p := s.At(i)
		dx := p.X - meanX
		ssXY += dx * (p.Y - meanY)
		ssXX += dx * dx
	}

	if ssXX == 0 {
		return stats.Regression{Slope: 0, Intercept: meanY, MeanY: meanY}
	}

	slope := ssXY / ssXX
	return stats.Regression{
		Slope:     slope,
		Intercept: meanY - slope*meanX,
		MeanY:     meanY,
	}
}

// Residuals pairs every point, in sample order, with its prediction on reg
func Residuals(s sample.Sample, reg stats.Regression) []sample.ResidualSegment {
	segments := make([]sample.ResidualSegment, s.Len())
	for i := range segments {
		p := s.At(i)
		segments[i] = sample.ResidualSegment{
			From: p,
			To:   sample.Point{X: p.X, Y: reg.Predict(p.X)},
		}
	}
	return segments
}

// SumSquaredResiduals returns the sum of squared vertical distances to reg
func SumSquaredResiduals(s sample.Sample, reg stats.Regression) float64 {
	sse := 0.0
	for i := 0; i < s.Len(); i++ {
		p := s.At(i)
		d := p.Y - reg.Predict(p.X)
		sse += d * d
	}
	return sse
}
