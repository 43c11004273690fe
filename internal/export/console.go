package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
	"github.com/dev-bhaskar8/lp-data/internal/ranking"
)

// PrintUniverse lists the admitted assets with formatted market caps
func PrintUniverse(w io.Writer, u *contracts.Universe) {
	fmt.Fprintf(w, "\nUniverse (%d of %d scanned):\n", u.Count(), u.Scanned)
	for i, a := range u.Assets {
		fmt.Fprintf(w, "  %2d. %-8s %s\n", i+1, a.Symbol, FormatMarketCap(a.MarketCap))
	}
	if len(u.Excluded) > 0 {
		fmt.Fprintf(w, "  excluded: %d\n", len(u.Excluded))
	}
}

// AcquisitionSummary is the subset of an acquisition result shown on the console
type AcquisitionSummary struct {
	ViaPrimary  []string
	ViaFallback []string
	ViaCache    []string
	Failed      []string
	Duration    time.Duration
}

// PrintAcquisition prints how each symbol was resolved
func PrintAcquisition(w io.Writer, s AcquisitionSummary) {
	fmt.Fprintf(w, "\nAcquisition (%s):\n", s.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  primary:  %d %s\n", len(s.ViaPrimary), joinSymbols(s.ViaPrimary))
	fmt.Fprintf(w, "  fallback: %d %s\n", len(s.ViaFallback), joinSymbols(s.ViaFallback))
	if len(s.ViaCache) > 0 {
		fmt.Fprintf(w, "  cache:    %d %s\n", len(s.ViaCache), joinSymbols(s.ViaCache))
	}
	fmt.Fprintf(w, "  failed:   %d %s\n", len(s.Failed), joinSymbols(s.Failed))
}

// PrintTimeframe prints the top pairs and the error summary of one timeframe
func PrintTimeframe(w io.Writer, label string, top []contracts.PairResult, summary []ranking.TagCount) {
	fmt.Fprintf(w, "\n[%s] top %d pairs:\n", label, len(top))
	fmt.Fprintf(w, "  %-14s %-12s %-14s %s\n", "PAIR", "CORRELATION", "MARKET CAP", "CHANGE %")
	for _, r := range top {
		fmt.Fprintf(w, "  %-14s %-12s %-14s %s\n",
			r.Pair.String(), FormatCorrelation(r), FormatMarketCap(r.CombinedMarketCap), FormatChange(r.CombinedChangePct))
	}

	if len(summary) == 0 {
		return
	}
	parts := make([]string, len(summary))
	for i, tc := range summary {
		parts[i] = fmt.Sprintf("%s=%d", tc.Prefix, tc.Count)
	}
	fmt.Fprintf(w, "  errors: %s\n", strings.Join(parts, " "))
}

func joinSymbols(symbols []string) string {
	if len(symbols) == 0 {
		return ""
	}
	return "(" + strings.Join(symbols, ", ") + ")"
}
