package sample

import (
	"encoding/json"
	"fmt"
	"strings"

	"corrlab/domain/core"
)

// Point is one observation of a bivariate sample
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sample is an ordered sequence of points. Order is generation order and
// pairs each point with its residual segment; statistics ignore it.
//
// A Sample is never modified after construction. Regeneration builds a new one.
type Sample struct {
	points []Point
}

// New builds a sample from points. The slice is copied.
func New(points []Point) Sample {
	cp := make([]Point, len(points))
	copy(cp, points)
	return Sample{points: cp}
}

// FromColumns zips parallel coordinate slices into a sample, truncating to the shorter one
func FromColumns(xs, ys []float64) Sample {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	points := make([]Point, n)
	for i := 0; i < n; i++ {
		points[i] = Point{X: xs[i], Y: ys[i]}
	}
	return Sample{points: points}
}

// Len returns the number of points
func (s Sample) Len() int {
	return len(s.points)
}

// At returns the i-th point
func (s Sample) At(i int) Point {
	return s.points[i]
}

// Points returns a copy of the points
func (s Sample) Points() []Point {
	cp := make([]Point, len(s.points))
	copy(cp, s.points)
	return cp
}

// Xs returns a copy of the x coordinates
func (s Sample) Xs() []float64 {
	xs := make([]float64, len(s.points))
	for i, p := range s.points {
		xs[i] = p.X
	}
	return xs
}

// Ys returns a copy of the y coordinates
func (s Sample) Ys() []float64 {
	ys := make([]float64, len(s.points))
	for i, p := range s.points {
		ys[i] = p.Y
	}
	return ys
}

// Fingerprint hashes the exact coordinates, in order
func (s Sample) Fingerprint() core.Hash {
	values := make([]float64, 0, 2*len(s.points))
	for _, p := range s.points {
		values = append(values, p.X, p.Y)
	}
	return core.ComputeFloatHash("sample", values...)
}

// MarshalJSON encodes the sample as an array of points
func (s Sample) MarshalJSON() ([]byte, error) {
	if s.points == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.points)
}

// UnmarshalJSON decodes an array of points
func (s *Sample) UnmarshalJSON(data []byte) error {
	var points []Point
	if err := json.Unmarshal(data, &points); err != nil {
		return err
	}
	s.points = points
	return nil
}

// Parameters are the user-adjustable generation settings
type Parameters struct {
	TargetCorrelation float64 `json:"target_correlation"`
	SampleSize        int     `json:"sample_size"`
}

// DisplayMode selects which line the presentation shows
type DisplayMode int

const (
	// Baseline shows the horizontal reference line and hides residuals
	Baseline DisplayMode = iota
	// Fitted shows the least-squares line and every residual segment
	Fitted
)

// String returns the lowercase mode name
func (m DisplayMode) String() string {
	switch m {
	case Baseline:
		return "baseline"
	case Fitted:
		return "fitted"
	default:
		return fmt.Sprintf("DisplayMode(%d)", int(m))
	}
}

// ParseDisplayMode parses "baseline" or "fitted"
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "baseline":
		return Baseline, nil
	case "fitted":
		return Fitted, nil
	default:
		return Baseline, fmt.Errorf("%w: %q", core.ErrUnknownDisplayMode, s)
	}
}

// MarshalJSON encodes the mode by name
func (m DisplayMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a mode name
func (m *DisplayMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDisplayMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// BaselineMode chooses where the pre-fit reference line sits
type BaselineMode int

const (
	// BaselineMeanY places the reference line at the sample mean of y
	BaselineMeanY BaselineMode = iota
	// BaselineZero places the reference line at y = 0
	BaselineZero
)

// String returns the config spelling of the mode
func (m BaselineMode) String() string {
	switch m {
	case BaselineMeanY:
		return "mean"
	case BaselineZero:
		return "zero"
	default:
		return fmt.Sprintf("BaselineMode(%d)", int(m))
	}
}

// ParseBaselineMode accepts "mean" (also "meany", "mean_y") or "zero"
func ParseBaselineMode(s string) (BaselineMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mean", "meany", "mean_y":
		return BaselineMeanY, nil
	case "zero", "0":
		return BaselineZero, nil
	default:
		return BaselineMeanY, fmt.Errorf("%w: %q", core.ErrUnknownBaselineMode, s)
	}
}

// ResidualSegment joins an observed point to its prediction on the fitted line
type ResidualSegment struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Residual returns the signed vertical distance, observed minus predicted
func (r ResidualSegment) Residual() float64 {
	return r.From.Y - r.To.Y
}
