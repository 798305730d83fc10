package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerate(t *testing.T) {
	out, err := run(t, "generate", "-r", "0.8", "-n", "30", "--seed", "7")
	require.NoError(t, err)
	assert.Equal(t, int64(30), gjson.Get(out, "#").Int())

	again, err := run(t, "generate", "-r", "0.8", "-n", "30", "--seed", "7")
	require.NoError(t, err)
	assert.Equal(t, out, again, "same seed gives the same sample")

	out, err = run(t, "generate", "-n", "12", "--format", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 13)
	assert.Equal(t, "x,y,y_predicted,residual", lines[0])
}

func TestGenerate_RejectsOutOfRangeInput(t *testing.T) {
	_, err := run(t, "generate", "-r", "1.5")
	assert.Error(t, err)

	_, err = run(t, "generate", "-n", "0")
	assert.Error(t, err)

	_, err = run(t, "generate", "--format", "yaml")
	assert.Error(t, err)
}

func TestFit_Synthetic(t *testing.T) {
	out, err := run(t, "fit", "-r", "-0.6", "-n", "80", "--json")
	require.NoError(t, err)
	assert.Equal(t, "synthetic", gjson.Get(out, "source").String())
	assert.Equal(t, int64(80), gjson.Get(out, "summary.n").Int())
	assert.Equal(t, -0.6, gjson.Get(out, "summary.target_correlation").Float())
	assert.Contains(t, gjson.Get(out, "text").String(), "fit y =")
}

func TestFit_InputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "line.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,y\n0,1\n1,3\n2,5\n3,7\n"), 0o644))

	out, err := run(t, "fit", "--input", path, "--json")
	require.NoError(t, err)
	assert.Equal(t, path, gjson.Get(out, "source").String())
	assert.InDelta(t, 2.0, gjson.Get(out, "summary.regression.slope").Float(), 1e-9)
	assert.InDelta(t, 1.0, gjson.Get(out, "summary.regression.intercept").Float(), 1e-9)
	assert.InDelta(t, 1.0, gjson.Get(out, "summary.correlation").Float(), 1e-9)

	_, err = run(t, "fit", "--input", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestFit_InputFileRejectsNonFinite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,y\n1,2\n2,NaN\n3,5\n4,Inf\n"), 0o644))

	out, err := run(t, "fit", "--input", path, "--json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-finite")
	assert.NotContains(t, out, "NaN")
}

func TestExport(t *testing.T) {
	dir := t.TempDir()

	xlsxPath := filepath.Join(dir, "sample.xlsx")
	out, err := run(t, "export", "-n", "25", "--out", xlsxPath)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 25 rows")

	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Points")
	require.NoError(t, err)
	assert.Len(t, rows, 26)

	_, err = run(t, "export", "--out", filepath.Join(dir, "sample.txt"))
	assert.Error(t, err)

	_, err = run(t, "export")
	assert.Error(t, err, "--out is required")
}

func TestChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fit.svg")
	out, err := run(t, "chart", "-n", "15", "--fitted", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "fit y =")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 15, strings.Count(string(data), "<circle"))
	assert.Contains(t, string(data), "stroke-dasharray")

	_, err = run(t, "chart", "--out", filepath.Join(t.TempDir(), "fit.gif"))
	assert.Error(t, err)
}

func TestChart_RejectsNonPositiveSize(t *testing.T) {
	dir := t.TempDir()
	for _, args := range [][]string{
		{"--width", "0"},
		{"--height", "-5"},
	} {
		path := filepath.Join(dir, "bad.svg")
		_, err := run(t, append([]string{"chart", "--out", path}, args...)...)
		require.Error(t, err, "args %v", args)
		assert.Contains(t, err.Error(), "must be positive")
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr), "no file written for %v", args)
	}
}
