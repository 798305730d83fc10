package stats

import (
	"fmt"
	"math"
	"strings"

	"corrlab/domain/sample"
)

// ============================================================================
// STABLE PRIMITIVES
// ============================================================================

// Regression is the ordinary-least-squares fit y = Slope*x + Intercept.
// INVARIANTS:
// - derived from exactly one Sample, never stored apart from it
// - MeanY is the sample mean of y (0 for an empty sample)
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	MeanY     float64 `json:"mean_y"`
}

// Line returns the fitted line
func (r Regression) Line() Line {
	return Line{Slope: r.Slope, Intercept: r.Intercept}
}

// Predict evaluates the fitted line at x
func (r Regression) Predict(x float64) float64 {
	return r.Slope*x + r.Intercept
}

// Line is a straight line in slope-intercept form
type Line struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// At evaluates the line at x
func (l Line) At(x float64) float64 {
	return l.Slope*x + l.Intercept
}

// Equation renders the line as "y = 0.81x + 1.02"
func (l Line) Equation() string {
	slope := roundZero(l.Slope)
	intercept := roundZero(l.Intercept)
	if slope == 0 {
		return fmt.Sprintf("y = %.2f", intercept)
	}
	sign := "+"
	if intercept < 0 {
		sign = "-"
	}
	return fmt.Sprintf("y = %.2fx %s %.2f", slope, sign, math.Abs(intercept))
}

// roundZero keeps tiny values from printing as "-0.00"
func roundZero(v float64) float64 {
	if math.Abs(v) < 0.005 {
		return 0
	}
	return v
}

// ============================================================================
// SUMMARY
// ============================================================================

// ResidualQuantiles describes the spread of absolute residuals around the fit
type ResidualQuantiles struct {
	P50 float64 `json:"p50"`
	P90 float64 `json:"p90"`
	Max float64 `json:"max"`
}

// Summary collects the numbers the presentation shows next to the chart
type Summary struct {
	N                 int               `json:"n"`
	TargetCorrelation float64           `json:"target_correlation"`
	Correlation       float64           `json:"correlation"`
	RSquared          float64           `json:"r_squared"`
	MeanX             float64           `json:"mean_x"`
	MeanY             float64           `json:"mean_y"`
	StdDevX           float64           `json:"std_dev_x"`
	StdDevY           float64           `json:"std_dev_y"`
	Regression        Regression        `json:"regression"`
	ResidualSSE       float64           `json:"residual_sse"`
	Residuals         ResidualQuantiles `json:"residuals"`
}

// Text renders the one-line summary for the given mode and displayed line.
//
//	r = 0.874 (target 0.90), n = 50 · baseline y = 5.12
//	r = 0.874 (target 0.90), n = 50 · fit y = 0.81x + 1.02, R² = 0.764, SSE = 31.40
func (s Summary) Text(mode sample.DisplayMode, displayed Line) string {
	var b strings.Builder
	fmt.Fprintf(&b, "r = %.3f (target %.2f), n = %d", s.Correlation, s.TargetCorrelation, s.N)
	switch mode {
	case sample.Fitted:
		fmt.Fprintf(&b, " · fit %s, R² = %.3f, SSE = %.2f", displayed.Equation(), s.RSquared, s.ResidualSSE)
	default:
		fmt.Fprintf(&b, " · baseline %s", displayed.Equation())
	}
	return b.String()
}
