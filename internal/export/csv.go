package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
)

// Header is the column layout of every exported file
var Header = []string{"Pair", "Correlation", "Combined Market Cap", "Combined Change %"}

// FileName returns the export file name for a timeframe label
func FileName(label string) string {
	return fmt.Sprintf("correlations_%s.csv", label)
}

// WriteCSV writes ranked results, one row per pair
func WriteCSV(w io.Writer, results []contracts.PairResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range results {
		row := []string{
			r.Pair.String(),
			FormatCorrelation(r),
			FormatMarketCap(r.CombinedMarketCap),
			FormatChange(r.CombinedChangePct),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", r.Pair, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTimeframe writes correlations_<label>.csv under dir and returns its path
func WriteTimeframe(dir, label string, results []contracts.PairResult) (string, error) {
	name := FileName(label)
	if strings.ContainsAny(label, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid timeframe label %q for export", label)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	if err := WriteCSV(f, results); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}
