package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dev-bhaskar8/lp-data/internal/export"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "유니버스 생성 (수집/계산 없음)",
	Long: `Builds the symbol universe only and prints admitted and excluded assets.

Example:
  go run ./cmd/corrscan universe
  UNIVERSE_MAX_SIZE=25 go run ./cmd/corrscan universe --show-excluded`,
	RunE: runUniverse,
}

var showExcluded bool

func init() {
	rootCmd.AddCommand(universeCmd)

	universeCmd.Flags().BoolVar(&showExcluded, "show-excluded", false, "list excluded candidates with reasons")
}

func runUniverse(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	PrintHeader("Universe",
		[2]string{"Max size", fmt.Sprintf("%d", a.cfg.Universe.MaxSize)},
		[2]string{"Min mcap", export.FormatMarketCap(a.cfg.Universe.MinMarketCap)},
	)

	u, err := a.builder.Build(ctx)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	export.PrintUniverse(os.Stdout, u)

	if showExcluded && len(u.Excluded) > 0 {
		symbols := make([]string, 0, len(u.Excluded))
		for symbol := range u.Excluded {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)

		fmt.Println()
		PrintSeparator()
		for _, symbol := range symbols {
			PrintKeyValue(symbol, u.Excluded[symbol], 8)
		}
	}

	return nil
}
