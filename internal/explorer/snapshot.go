package explorer

import (
	"corrlab/adapters/stats/engine"
	"corrlab/domain/core"
	"corrlab/domain/sample"
	"corrlab/domain/stats"
)

// Snapshot is one committed, immutable view of the explorer. Every field is
// derived from the same sample, so readers never see a regression that
// belongs to a different set of points.
type Snapshot struct {
	Revision     uint64              `json:"revision"`
	Parameters   sample.Parameters   `json:"parameters"`
	Mode         sample.DisplayMode  `json:"mode"`
	BaselineMode sample.BaselineMode `json:"-"`
	RangeMin     float64             `json:"range_min"`
	RangeMax     float64             `json:"range_max"`
	Sample       sample.Sample       `json:"points"`
	Correlation  float64             `json:"correlation"`
	Regression   stats.Regression    `json:"regression"`
	Summary      stats.Summary       `json:"summary"`
	GeneratedAt  core.Timestamp      `json:"generated_at"`
}

// DisplayedLine is the fitted line in Fitted mode, otherwise the horizontal
// baseline chosen by BaselineMode
func (s Snapshot) DisplayedLine() stats.Line {
	if s.Mode == sample.Fitted {
		return s.Regression.Line()
	}
	if s.BaselineMode == sample.BaselineZero {
		return stats.Line{}
	}
	return stats.Line{Intercept: s.Regression.MeanY}
}

// Residuals are always measured against the fitted line, whatever is on screen
func (s Snapshot) Residuals() []sample.ResidualSegment {
	return engine.Residuals(s.Sample, s.Regression)
}

// VisibleResiduals returns the residual segments to draw, nil in Baseline mode
func (s Snapshot) VisibleResiduals() []sample.ResidualSegment {
	if s.Mode != sample.Fitted {
		return nil
	}
	return s.Residuals()
}

// SummaryText is the one-line caption for the current view
func (s Snapshot) SummaryText() string {
	return s.Summary.Text(s.Mode, s.DisplayedLine())
}

// Fingerprint identifies the sample behind this snapshot
func (s Snapshot) Fingerprint() core.Hash {
	return s.Sample.Fingerprint()
}
