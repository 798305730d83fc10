package engine

import (
	"math"

	"github.com/montanaflynn/stats"

	"corrlab/domain/sample"
	domainstats "corrlab/domain/stats"
)

// StatsEngine computes everything derived from one sample in a single pass
// over the pure functions of this package
type StatsEngine struct{}

// NewStatsEngine creates a new statistical engine
func NewStatsEngine() *StatsEngine {
	return &StatsEngine{}
}

// Analysis is the full set of derived values for a sample
type Analysis struct {
	Correlation float64
	Regression  domainstats.Regression
	Summary     domainstats.Summary
}

// Analyze computes correlation, regression and summary for s
func (e *StatsEngine) Analyze(s sample.Sample, targetCorrelation float64) Analysis {
	reg := Regress(s)
	summary := Describe(s, reg)
	summary.TargetCorrelation = targetCorrelation
	return Analysis{
		Correlation: summary.Correlation,
		Regression:  reg,
		Summary:     summary,
	}
}

// Describe summarizes s around the fitted regression reg
func Describe(s sample.Sample, reg domainstats.Regression) domainstats.Summary {
	xs, ys := s.Xs(), s.Ys()
	summary := domainstats.Summary{
		N:           s.Len(),
		Correlation: Correlation(xs, ys),
		Regression:  reg,
	}
	if s.Len() == 0 {
		return summary
	}

	// Errors only arise for empty input, ruled out above
	summary.MeanX, _ = stats.Mean(xs)
	summary.MeanY, _ = stats.Mean(ys)
	summary.StdDevX, _ = stats.StandardDeviation(xs)
	summary.StdDevY, _ = stats.StandardDeviation(ys)

	summary.ResidualSSE = SumSquaredResiduals(s, reg)
	sst := 0.0
	for _, y := range ys {
		d := y - summary.MeanY
		sst += d * d
	}
	if sst > 0 {
		summary.RSquared = math.Max(0, 1-summary.ResidualSSE/sst)
	}

	summary.Residuals = residualQuantiles(s, reg)
	return summary
}

func residualQuantiles(s sample.Sample, reg domainstats.Regression) domainstats.ResidualQuantiles {
	abs := make([]float64, 0, s.Len())
	for _, seg := range Residuals(s, reg) {
		abs = append(abs, math.Abs(seg.Residual()))
	}

	var q domainstats.ResidualQuantiles
	q.P50, _ = stats.Median(abs)
	q.P90, _ = stats.Percentile(abs, 90)
	q.Max, _ = stats.Max(abs)
	return q
}
