package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"corrlab/adapters/excel"
	"corrlab/adapters/rng"
	"corrlab/adapters/stats/engine"
	"corrlab/adapters/synth"
	"corrlab/domain/sample"
	domainstats "corrlab/domain/stats"
	"corrlab/internal"
	"corrlab/internal/explorer"
	"corrlab/internal/export"
	"corrlab/internal/render"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "corrlab",
		Short:         "Generate correlated samples, fit them, and export the results",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newGenerateCmd(),
		newFitCmd(),
		newExportCmd(),
		newChartCmd(),
	)
	return rootCmd
}

// sampleFlags are shared by every command that synthesizes a sample
type sampleFlags struct {
	correlation float64
	n           int
	seed        int64
	rangeMin    float64
	rangeMax    float64
}

func (f *sampleFlags) register(cmd *cobra.Command) {
	defaults := explorer.DefaultConfig()
	cmd.Flags().Float64VarP(&f.correlation, "correlation", "r", defaults.DefaultCorrelation, "Target correlation in [-1, 1]")
	cmd.Flags().IntVarP(&f.n, "n", "n", defaults.InitialSampleSize, "Number of points")
	cmd.Flags().Int64Var(&f.seed, "seed", 42, "Random seed; 0 seeds from the clock")
	cmd.Flags().Float64Var(&f.rangeMin, "range-min", defaults.RangeMin, "Lower bound of both axes")
	cmd.Flags().Float64Var(&f.rangeMax, "range-max", defaults.RangeMax, "Upper bound of both axes")
}

// explorer builds a single-use explorer. The CLI rejects rather than clamps
// so typos surface as errors.
func (f *sampleFlags) explorer() (*explorer.Explorer, error) {
	seed := f.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cfg := explorer.Config{
		DefaultCorrelation: f.correlation,
		InitialSampleSize:  f.n,
		MinSampleSize:      1,
		MaxSampleSize:      1_000_000,
		RangeMin:           f.rangeMin,
		RangeMax:           f.rangeMax,
		BaselineMode:       sample.BaselineMeanY,
		InputPolicy:        explorer.Reject,
	}
	return explorer.New(cfg, synth.NewSynthesizer(rng.NewStream("cli", seed)),
		explorer.WithLogger(internal.DefaultLogger.WithComponent("cli")))
}

func newGenerateCmd() *cobra.Command {
	var flags sampleFlags
	var format string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a synthesized sample",
		Long: `Synthesize a sample with the requested correlation and print its points.

Example: corrlab generate -r 0.8 -n 30 --seed 7 --format csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := flags.explorer()
			if err != nil {
				return err
			}
			snap := exp.Snapshot()
			out := cmd.OutOrStdout()

			switch strings.ToLower(format) {
			case "json":
				return writeJSON(out, snap.Sample)
			case "csv":
				return export.WriteCSV(out, snap)
			default:
				return fmt.Errorf("unknown format %q (want json or csv)", format)
			}
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or csv")
	return cmd
}

func newFitCmd() *cobra.Command {
	var flags sampleFlags
	var input string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a least-squares line and summarize the residuals",
		Long: `Fit a least-squares line to a synthesized sample, or to the x/y columns of
a CSV or Excel file passed with --input.

Example: corrlab fit -r -0.6 -n 80
Example: corrlab fit --input measurements.xlsx --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var summary fitResult
			if input != "" {
				s, err := excel.NewDataReader(input).ReadSample()
				if err != nil {
					return err
				}
				reg := engine.Regress(s)
				described := engine.Describe(s, reg)
				summary = fitResult{
					Source:  input,
					Summary: described,
					Text: fmt.Sprintf("r = %.3f, n = %d · fit %s, R² = %.3f, SSE = %.2f",
						described.Correlation, described.N, reg.Line().Equation(), described.RSquared, described.ResidualSSE),
				}
			} else {
				exp, err := flags.explorer()
				if err != nil {
					return err
				}
				snap := exp.Fit()
				summary = fitResult{Source: "synthetic", Summary: snap.Summary, Text: snap.SummaryText()}
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary.Text)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&input, "input", "", "CSV or XLSX file with x and y columns")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full summary as JSON")
	return cmd
}

type fitResult struct {
	Source  string              `json:"source"`
	Text    string              `json:"text"`
	Summary domainstats.Summary `json:"summary"`
}

func newExportCmd() *cobra.Command {
	var flags sampleFlags
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a fitted sample to CSV or XLSX",
		Long: `Synthesize and fit a sample, then write x, y, y_predicted and residual columns.
The format follows the file extension.

Example: corrlab export -r 0.9 -n 50 --out sample.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := flags.explorer()
			if err != nil {
				return err
			}
			snap := exp.Fit()

			var write func(io.Writer, explorer.Snapshot) error
			switch strings.ToLower(filepath.Ext(outPath)) {
			case ".csv":
				write = export.WriteCSV
			case ".xlsx":
				write = export.WriteXLSX
			default:
				return fmt.Errorf("unsupported export extension for %q (want .csv or .xlsx)", outPath)
			}
			if err := writeFile(outPath, func(w io.Writer) error { return write(w, snap) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", snap.Sample.Len(), outPath)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (.csv or .xlsx)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newChartCmd() *cobra.Command {
	var flags sampleFlags
	var outPath string
	var fitted bool
	var width, height int

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render a sample as an SVG or PNG scatter chart",
		Long: `Render the baseline view of a sample, or the fitted view with residuals
when --fitted is set. The format follows the file extension.

Example: corrlab chart -r 0.4 --fitted --out fit.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if width <= 0 || height <= 0 {
				return fmt.Errorf("chart dimensions must be positive, got %dx%d", width, height)
			}
			format, err := render.ParseFormat(strings.TrimPrefix(filepath.Ext(outPath), "."))
			if err != nil {
				return err
			}
			exp, err := flags.explorer()
			if err != nil {
				return err
			}
			snap := exp.Snapshot()
			if fitted {
				snap = exp.Fit()
			}

			renderer := render.NewRenderer(width, height, 1, internal.DefaultLogger)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := writeFile(outPath, func(w io.Writer) error { return renderer.Render(ctx, snap, format, w) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\nwrote %s\n", snap.SummaryText(), outPath)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (.svg or .png)")
	cmd.Flags().BoolVar(&fitted, "fitted", false, "Draw the fitted line and residuals")
	cmd.Flags().IntVar(&width, "width", 640, "Image width in pixels")
	cmd.Flags().IntVar(&height, "height", 480, "Image height in pixels")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
