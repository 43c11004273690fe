package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dev-bhaskar8/lp-data/internal/export"
	"github.com/dev-bhaskar8/lp-data/internal/pipeline"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "전체 상관관계 스캔 1회 실행",
	Long: `Runs one full scan and prints the report.

Steps:
  1. Universe   - top assets by market cap (CoinGecko), listing check (Binance)
  2. Acquire    - daily closes, Binance first then CoinGecko for the rest
  3. Correlate  - pairwise |pearson| of daily returns per timeframe
  4. Export     - correlations_<label>.csv per timeframe (EXPORT_DIR)

Example:
  go run ./cmd/corrscan run
  go run ./cmd/corrscan run --top 10 --export-dir ./out`,
	RunE: runScan,
}

var (
	runTopN      int
	runExportDir string
	runNoExport  bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runTopN, "top", 0, "pairs shown per timeframe (default: TOP_N)")
	runCmd.Flags().StringVar(&runExportDir, "export-dir", "", "CSV output directory (default: EXPORT_DIR)")
	runCmd.Flags().BoolVar(&runNoExport, "no-export", false, "skip CSV export")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	opts := a.options
	if runTopN > 0 {
		opts.TopN = runTopN
	}
	if runExportDir != "" {
		opts.ExportDir = runExportDir
	}
	if runNoExport {
		opts.ExportDir = ""
	}
	runner := a.newRunner(opts)

	PrintHeader("Correlation Scan",
		[2]string{"Universe", fmt.Sprintf("top %d", a.cfg.Universe.MaxSize)},
		[2]string{"Lookback", fmt.Sprintf("%d days", opts.LookbackDays)},
		[2]string{"Timeframes", timeframeLabels(a)},
	)

	report, err := runner.Run(ctx)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	printReport(report)
	return nil
}

// printReport prints the console view of a completed run
func printReport(report *pipeline.Report) {
	out := os.Stdout

	export.PrintUniverse(out, report.Universe)
	export.PrintAcquisition(out, report.AcquisitionSummary())
	for _, tf := range report.Timeframes {
		export.PrintTimeframe(out, tf.Timeframe.Label, tf.Top, tf.Errors)
	}

	fmt.Println()
	for _, path := range report.Exported {
		PrintSuccess("Results saved to " + path)
	}
	PrintSuccess(fmt.Sprintf("Run %s completed in %s", report.RunID, report.Duration.Round(time.Millisecond)))
}
