package render

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/sync/semaphore"

	"corrlab/domain/core"
	"corrlab/domain/sample"
	"corrlab/internal"
	"corrlab/internal/errors"
	"corrlab/internal/explorer"
)

// Format is an output image format
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat accepts "svg" or "png"
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnsupportedRenderFormat, s)
	}
}

// ContentType returns the MIME type for the format
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

var (
	pointColor    = chart.ColorBlue
	fitColor      = chart.ColorOrange
	baselineColor = chart.ColorAlternateGray
	residualColor = drawing.Color{R: 217, G: 0, B: 116, A: 160}
)

// Renderer draws snapshots as scatter charts. Concurrent renders are capped
// because rasterizing is CPU-bound.
type Renderer struct {
	width  int
	height int
	sem    *semaphore.Weighted
	logger *internal.Logger
}

// NewRenderer creates a renderer producing width x height images with at
// most maxConcurrent renders in flight
func NewRenderer(width, height, maxConcurrent int, logger *internal.Logger) *Renderer {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Renderer{
		width:  width,
		height: height,
		sem:    semaphore.NewWeighted(int64(maxConcurrent)),
		logger: logger.WithComponent("render"),
	}
}

// Render writes snap in the given format to w. Residual segments are drawn
// only in Fitted mode.
func (r *Renderer) Render(ctx context.Context, snap explorer.Snapshot, format Format, w io.Writer) error {
	var provider chart.RendererProvider
	switch format {
	case FormatSVG:
		provider = chart.SVG
	case FormatPNG:
		provider = chart.PNG
	default:
		return errors.Wrap(fmt.Errorf("%w: %q", core.ErrUnsupportedRenderFormat, format), "render chart")
	}

	if err := r.sem.Acquire(ctx, 1); err != nil {
		return errors.RenderError(string(format), err)
	}
	defer r.sem.Release(1)

	c := r.build(snap)
	if err := c.Render(provider, w); err != nil {
		r.logger.Error("rev %d %s render failed: %v", snap.Revision, format, err)
		return errors.RenderError(string(format), err)
	}
	r.logger.Trace("rev %d rendered as %s", snap.Revision, format)
	return nil
}

// build lays out the chart: residuals first so points and the line sit on top
func (r *Renderer) build(snap explorer.Snapshot) chart.Chart {
	lo, hi := snap.RangeMin, snap.RangeMax
	line := snap.DisplayedLine()
	yLo, yHi := lo, hi
	for _, y := range []float64{line.At(lo), line.At(hi)} {
		yLo = math.Min(yLo, y)
		yHi = math.Max(yHi, y)
	}

	var series []chart.Series
	for _, seg := range snap.VisibleResiduals() {
		series = append(series, chart.ContinuousSeries{
			XValues: []float64{seg.From.X, seg.To.X},
			YValues: []float64{seg.From.Y, seg.To.Y},
			Style: chart.Style{
				StrokeColor:     residualColor,
				StrokeWidth:     1,
				StrokeDashArray: []float64{3, 2},
				DotWidth:        chart.Disabled,
			},
		})
	}

	if snap.Sample.Len() > 0 {
		series = append(series, chart.ContinuousSeries{
			Name:    "points",
			XValues: snap.Sample.Xs(),
			YValues: snap.Sample.Ys(),
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    3,
				DotColor:    pointColor,
			},
		})
	}

	lineName, lineColor := "baseline", baselineColor
	if snap.Mode == sample.Fitted {
		lineName, lineColor = "fit", fitColor
	}
	series = append(series, chart.ContinuousSeries{
		Name:    lineName,
		XValues: []float64{lo, hi},
		YValues: []float64{line.At(lo), line.At(hi)},
		Style: chart.Style{
			StrokeColor: lineColor,
			StrokeWidth: 2,
			DotWidth:    chart.Disabled,
		},
	})

	return chart.Chart{
		Title:  snap.SummaryText(),
		Width:  r.width,
		Height: r.height,
		TitleStyle: chart.Style{
			FontSize: 11,
		},
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:  "x",
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		YAxis: chart.YAxis{
			Name:  "y",
			Range: &chart.ContinuousRange{Min: yLo, Max: yHi},
		},
		Series: series,
	}
}
