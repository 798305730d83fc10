package explorer

import (
	"fmt"
	"math"
	"strings"

	"corrlab/domain/core"
	"corrlab/domain/sample"
)

// InputPolicy decides what happens to out-of-range user input
type InputPolicy int

const (
	// Clamp pulls out-of-range values to the nearest bound
	Clamp InputPolicy = iota
	// Reject refuses out-of-range values and leaves state unchanged
	Reject
)

// String returns the config spelling of the policy
func (p InputPolicy) String() string {
	switch p {
	case Clamp:
		return "clamp"
	case Reject:
		return "reject"
	default:
		return fmt.Sprintf("InputPolicy(%d)", int(p))
	}
}

// ParseInputPolicy accepts "clamp" or "reject"
func ParseInputPolicy(s string) (InputPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clamp":
		return Clamp, nil
	case "reject":
		return Reject, nil
	default:
		return Clamp, fmt.Errorf("%w: %q", core.ErrUnknownInputPolicy, s)
	}
}

// Correlation bounds are fixed by definition
const (
	MinCorrelation = -1.0
	MaxCorrelation = 1.0
)

// Config holds the explorer's bounds and defaults
type Config struct {
	DefaultCorrelation float64
	InitialSampleSize  int
	MinSampleSize      int
	MaxSampleSize      int
	RangeMin           float64
	RangeMax           float64
	BaselineMode       sample.BaselineMode
	InputPolicy        InputPolicy
}

// DefaultConfig returns the stock bounds: n in [10, 200] starting at 50,
// display range [0, 10], baseline at mean y, clamping input
func DefaultConfig() Config {
	return Config{
		DefaultCorrelation: 0.5,
		InitialSampleSize:  50,
		MinSampleSize:      10,
		MaxSampleSize:      200,
		RangeMin:           0,
		RangeMax:           10,
		BaselineMode:       sample.BaselineMeanY,
		InputPolicy:        Clamp,
	}
}

// Validate checks the bounds are usable
func (c Config) Validate() error {
	if math.IsNaN(c.DefaultCorrelation) || c.DefaultCorrelation < MinCorrelation || c.DefaultCorrelation > MaxCorrelation {
		return core.NewCorrelationError(c.DefaultCorrelation)
	}
	if c.MinSampleSize < 1 {
		return fmt.Errorf("%w: minimum sample size must be >= 1, got %d", core.ErrInvalidBounds, c.MinSampleSize)
	}
	if c.MinSampleSize > c.MaxSampleSize {
		return fmt.Errorf("%w: minimum sample size %d exceeds maximum %d", core.ErrInvalidBounds, c.MinSampleSize, c.MaxSampleSize)
	}
	if c.InitialSampleSize < c.MinSampleSize || c.InitialSampleSize > c.MaxSampleSize {
		return core.NewSampleSizeError(c.InitialSampleSize, c.MinSampleSize, c.MaxSampleSize)
	}
	if !(c.RangeMin < c.RangeMax) || math.IsInf(c.RangeMin, 0) || math.IsInf(c.RangeMax, 0) {
		return fmt.Errorf("%w: display range [%g, %g] is empty or unbounded", core.ErrInvalidBounds, c.RangeMin, c.RangeMax)
	}
	switch c.BaselineMode {
	case sample.BaselineMeanY, sample.BaselineZero:
	default:
		return fmt.Errorf("%w: %d", core.ErrUnknownBaselineMode, int(c.BaselineMode))
	}
	switch c.InputPolicy {
	case Clamp, Reject:
	default:
		return fmt.Errorf("%w: %d", core.ErrUnknownInputPolicy, int(c.InputPolicy))
	}
	return nil
}

// normalizeCorrelation applies the input policy to r
func (c Config) normalizeCorrelation(r float64) (float64, error) {
	if math.IsNaN(r) {
		return 0, core.ErrCorrelationNotANumber
	}
	if r >= MinCorrelation && r <= MaxCorrelation {
		return r, nil
	}
	if c.InputPolicy == Reject {
		return 0, core.NewCorrelationError(r)
	}
	return math.Max(MinCorrelation, math.Min(MaxCorrelation, r)), nil
}

// normalizeSampleSize applies the input policy to n
func (c Config) normalizeSampleSize(n int) (int, error) {
	if n >= c.MinSampleSize && n <= c.MaxSampleSize {
		return n, nil
	}
	if c.InputPolicy == Reject {
		return 0, core.NewSampleSizeError(n, c.MinSampleSize, c.MaxSampleSize)
	}
	if n < c.MinSampleSize {
		return c.MinSampleSize, nil
	}
	return c.MaxSampleSize, nil
}
