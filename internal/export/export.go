package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"corrlab/internal/errors"
	"corrlab/internal/explorer"
)

// Columns is the header shared by every export format
var Columns = []string{"x", "y", "y_predicted", "residual"}

const (
	pointsSheet  = "Points"
	summarySheet = "Summary"
)

// Row is one exported point with its fitted prediction and residual
type Row struct {
	X         float64
	Y         float64
	Predicted float64
	Residual  float64
}

// Rows lists the snapshot's points against the fitted line. Residuals are
// exported in every display mode.
func Rows(snap explorer.Snapshot) []Row {
	segments := snap.Residuals()
	rows := make([]Row, len(segments))
	for i, seg := range segments {
		rows[i] = Row{
			X:         seg.From.X,
			Y:         seg.From.Y,
			Predicted: seg.To.Y,
			Residual:  seg.Residual(),
		}
	}
	return rows
}

// WriteCSV writes the snapshot's rows as CSV with a header line
func WriteCSV(w io.Writer, snap explorer.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return errors.ExportError("csv", err)
	}
	for _, r := range Rows(snap) {
		record := []string{fToStr(r.X), fToStr(r.Y), fToStr(r.Predicted), fToStr(r.Residual)}
		if err := cw.Write(record); err != nil {
			return errors.ExportError("csv", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.ExportError("csv", err)
	}
	return nil
}

// WriteXLSX writes a workbook with a Points sheet and a Summary sheet
func WriteXLSX(w io.Writer, snap explorer.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", pointsSheet); err != nil {
		return errors.ExportError("xlsx", err)
	}
	if err := writePoints(f, snap); err != nil {
		return errors.ExportError("xlsx", err)
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return errors.ExportError("xlsx", err)
	}
	if err := writeSummary(f, snap); err != nil {
		return errors.ExportError("xlsx", err)
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return errors.ExportError("xlsx", err)
	}
	return nil
}

func writePoints(f *excelize.File, snap explorer.Snapshot) error {
	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(pointsSheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range Rows(snap) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.X, r.Y, r.Predicted, r.Residual}
		if err := f.SetSheetRow(pointsSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(pointsSheet, "A", "D", 14)
}

func writeSummary(f *excelize.File, snap explorer.Snapshot) error {
	s := snap.Summary
	line := snap.DisplayedLine()
	entries := [][]interface{}{
		{"metric", "value"},
		{"target_correlation", snap.Parameters.TargetCorrelation},
		{"sample_size", snap.Parameters.SampleSize},
		{"correlation", s.Correlation},
		{"slope", snap.Regression.Slope},
		{"intercept", snap.Regression.Intercept},
		{"mean_x", s.MeanX},
		{"mean_y", s.MeanY},
		{"std_dev_x", s.StdDevX},
		{"std_dev_y", s.StdDevY},
		{"r_squared", s.RSquared},
		{"residual_sse", s.ResidualSSE},
		{"residual_p50", s.Residuals.P50},
		{"residual_p90", s.Residuals.P90},
		{"residual_max", s.Residuals.Max},
		{"display_mode", snap.Mode.String()},
		{"displayed_line", line.Equation()},
		{"sample_fingerprint", snap.Fingerprint().Short()},
	}
	for i, entry := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := entry
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("summary row %d: %w", i, err)
		}
	}
	return f.SetColWidth(summarySheet, "A", "A", 22)
}

func fToStr(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
