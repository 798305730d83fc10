package ui

import (
	"corrlab/domain/sample"
	"corrlab/domain/stats"
	"corrlab/internal/explorer"
)

// lineView is a displayed line with its printable equation
type lineView struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Equation  string  `json:"equation"`
}

// boundsView tells the page how to configure its sliders
type boundsView struct {
	MinCorrelation float64 `json:"min_correlation"`
	MaxCorrelation float64 `json:"max_correlation"`
	MinSampleSize  int     `json:"min_sample_size"`
	MaxSampleSize  int     `json:"max_sample_size"`
	RangeMin       float64 `json:"range_min"`
	RangeMax       float64 `json:"range_max"`
	InputPolicy    string  `json:"input_policy"`
}

// stateView is the JSON shape of /api/state and every mutating endpoint
type stateView struct {
	Revision      uint64                   `json:"revision"`
	Parameters    sample.Parameters        `json:"parameters"`
	Mode          sample.DisplayMode       `json:"mode"`
	BaselineMode  string                   `json:"baseline_mode"`
	Bounds        boundsView               `json:"bounds"`
	Points        sample.Sample            `json:"points"`
	Correlation   float64                  `json:"correlation"`
	Regression    stats.Regression         `json:"regression"`
	DisplayedLine lineView                 `json:"displayed_line"`
	Residuals     []sample.ResidualSegment `json:"residuals"`
	Summary       stats.Summary            `json:"summary"`
	SummaryText   string                   `json:"summary_text"`
	Fingerprint   string                   `json:"fingerprint"`
}

func newStateView(snap explorer.Snapshot, cfg explorer.Config) stateView {
	line := snap.DisplayedLine()
	residuals := snap.VisibleResiduals()
	if residuals == nil {
		residuals = []sample.ResidualSegment{}
	}
	return stateView{
		Revision:     snap.Revision,
		Parameters:   snap.Parameters,
		Mode:         snap.Mode,
		BaselineMode: snap.BaselineMode.String(),
		Bounds: boundsView{
			MinCorrelation: explorer.MinCorrelation,
			MaxCorrelation: explorer.MaxCorrelation,
			MinSampleSize:  cfg.MinSampleSize,
			MaxSampleSize:  cfg.MaxSampleSize,
			RangeMin:       cfg.RangeMin,
			RangeMax:       cfg.RangeMax,
			InputPolicy:    cfg.InputPolicy.String(),
		},
		Points:      snap.Sample,
		Correlation: snap.Correlation,
		Regression:  snap.Regression,
		DisplayedLine: lineView{
			Slope:     line.Slope,
			Intercept: line.Intercept,
			Equation:  line.Equation(),
		},
		Residuals:   residuals,
		Summary:     snap.Summary,
		SummaryText: snap.SummaryText(),
		Fingerprint: snap.Fingerprint().Short(),
	}
}
