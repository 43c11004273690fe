package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
	"github.com/dev-bhaskar8/lp-data/internal/returns"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <SYMBOL>",
	Short: "단일 심볼 시계열 수집 (fallback 체인 확인용)",
	Long: `Acquires one symbol through the same candidate chain as a full run and
prints where the series came from.

Example:
  go run ./cmd/corrscan fetch ETH
  go run ./cmd/corrscan fetch USDT
  go run ./cmd/corrscan fetch PEPE --id pepe --days 90`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

var (
	fetchID   string
	fetchDays int
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchID, "id", "", "CoinGecko id hint for the fallback source")
	fetchCmd.Flags().IntVar(&fetchDays, "days", 0, "lookback days (default: LOOKBACK_DAYS)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	days := a.cfg.Acquisition.LookbackDays
	if fetchDays > 0 {
		days = fetchDays
	}

	asset := contracts.Asset{Symbol: strings.ToUpper(args[0]), CanonicalID: fetchID}
	end := contracts.TruncateDay(time.Now())
	start := end.AddDate(0, 0, -days)

	PrintHeader("Fetch "+asset.Symbol,
		[2]string{"Period", fmt.Sprintf("%s ~ %s", start.Format("2006-01-02"), end.Format("2006-01-02"))},
	)

	series, err := a.acquirer.Acquire(ctx, asset, start, end)
	if err != nil {
		var noData *contracts.NoDataAvailableError
		if errors.As(err, &noData) {
			for _, attempt := range noData.Attempts {
				reason := "no series"
				if attempt.Err != nil {
					reason = attempt.Err.Error()
				}
				PrintKeyValue(attempt.Source+" "+attempt.Query, reason, 28)
			}
		}
		PrintError(err.Error())
		return err
	}

	rets := returns.Compute(series)

	PrintKeyValue("Source", series.Source, 10)
	PrintKeyValue("Query", series.Query, 10)
	PrintKeyValue("Points", fmt.Sprintf("%d", series.Len()), 10)
	PrintKeyValue("Returns", fmt.Sprintf("%d", rets.Len()), 10)
	if n := series.Len(); n > 0 {
		first, last := series.Points[0], series.Points[n-1]
		PrintKeyValue("First", fmt.Sprintf("%s %.6f", first.Date.Format("2006-01-02"), first.Close), 10)
		PrintKeyValue("Last", fmt.Sprintf("%s %.6f", last.Date.Format("2006-01-02"), last.Close), 10)
	}
	if change, ok := returns.TotalChangePct(rets.Points); ok {
		PrintKeyValue("Change", fmt.Sprintf("%.2f%%", change), 10)
	}

	fmt.Println()
	PrintSuccess("Series acquired")
	return nil
}
