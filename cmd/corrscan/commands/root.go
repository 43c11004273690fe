package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	timeframesFile string
	verbose        bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "corrscan",
	Short:         "Crypto pairwise return-correlation scanner",
	SilenceUsage:  true,
	SilenceErrors: false,
	Long: `corrscan builds a market-cap ranked crypto universe, fetches daily
history from Binance with CoinGecko as fallback, and ranks pairwise
return correlations over several lookback windows.

Usage:
  go run ./cmd/corrscan [command]

Examples:
  go run ./cmd/corrscan run
  go run ./cmd/corrscan universe
  go run ./cmd/corrscan fetch ETH
  go run ./cmd/corrscan serve --schedule "0 5 0 * * *"`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&timeframesFile, "timeframes", "", "timeframe set YAML (default: TIMEFRAMES_FILE or built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
