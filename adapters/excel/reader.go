package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"corrlab/domain/sample"
	"corrlab/internal"
)

// DataReader loads a paired x/y dataset from an Excel or CSV file
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// Table is the raw header and rows of the first sheet
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		logger:   internal.DefaultLogger.WithComponent("DataReader"),
	}
}

// ReadSample reads the file and returns its x/y columns as a sample
func (r *DataReader) ReadSample() (sample.Sample, error) {
	table, err := r.ReadTable()
	if err != nil {
		return sample.Sample{}, err
	}
	return TableSample(table)
}

// ReadTable reads the header and data rows without interpreting them
func (r *DataReader) ReadTable() (*Table, error) {
	r.logger.Debug("reading %s file: %s", r.fileType, r.filePath)

	file, err := os.Open(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
		}
		return nil, fmt.Errorf("failed to open %s file: %w", r.fileType, err)
	}
	defer file.Close()

	switch r.fileType {
	case "csv":
		return ReadCSV(file)
	case "xlsx":
		return ReadXLSX(file)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// ReadCSV reads a CSV stream into a table
func ReadCSV(src io.Reader) (*Table, error) {
	rows, err := csv.NewReader(src).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return newTable(rows, "CSV")
}

// ReadXLSX reads the first sheet of a workbook stream into a table
func ReadXLSX(src io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}
	return newTable(rows, "Excel")
}

func newTable(rows [][]string, kind string) (*Table, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have at least a header row and one data row", kind)
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return &Table{Headers: headers, Rows: rows[1:]}, nil
}

// DetectColumns picks the x and y columns: headers named "x" and "y" when
// present, otherwise the first two columns whose cells all parse as numbers
func DetectColumns(t *Table) (xCol, yCol int, err error) {
	xCol, yCol = -1, -1
	for i, h := range t.Headers {
		switch strings.ToLower(h) {
		case "x":
			if xCol < 0 {
				xCol = i
			}
		case "y":
			if yCol < 0 {
				yCol = i
			}
		}
	}
	if xCol >= 0 && yCol >= 0 {
		return xCol, yCol, nil
	}

	var numeric []int
	for i := range t.Headers {
		if isNumericColumn(t, i) {
			numeric = append(numeric, i)
		}
	}
	if len(numeric) < 2 {
		return -1, -1, fmt.Errorf("could not detect two numeric columns in %v", t.Headers)
	}
	return numeric[0], numeric[1], nil
}

// TableSample converts the detected x/y columns to a sample. Rows where
// either value is blank are skipped; other unparseable cells are errors.
func TableSample(t *Table) (sample.Sample, error) {
	xCol, yCol, err := DetectColumns(t)
	if err != nil {
		return sample.Sample{}, err
	}

	points := make([]sample.Point, 0, len(t.Rows))
	for i, row := range t.Rows {
		xs, ys := cell(row, xCol), cell(row, yCol)
		if xs == "" || ys == "" {
			continue
		}
		x, err := parseFinite(xs)
		if err != nil {
			return sample.Sample{}, fmt.Errorf("row %d column %q: %w", i+2, t.Headers[xCol], err)
		}
		y, err := parseFinite(ys)
		if err != nil {
			return sample.Sample{}, fmt.Errorf("row %d column %q: %w", i+2, t.Headers[yCol], err)
		}
		points = append(points, sample.Point{X: x, Y: y})
	}
	if len(points) == 0 {
		return sample.Sample{}, fmt.Errorf("no complete x/y rows found")
	}
	return sample.New(points), nil
}

func isNumericColumn(t *Table, col int) bool {
	seen := 0
	for _, row := range t.Rows {
		v := cell(row, col)
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
		seen++
	}
	return seen > 0
}

// parseFinite parses a cell and rejects NaN and infinities
func parseFinite(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %q", v)
	}
	return f, nil
}

func cell(row []string, col int) string {
	if col < len(row) {
		return strings.TrimSpace(row[col])
	}
	return ""
}
