package export

import (
	"fmt"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
)

// FormatMarketCap renders a USD amount as $1.23T, $4.56B, $7.89M or $12.34
func FormatMarketCap(value float64) string {
	switch {
	case value >= 1e12:
		return fmt.Sprintf("$%sT", round(value/1e12, 2))
	case value >= 1e9:
		return fmt.Sprintf("$%sB", round(value/1e9, 2))
	case value >= 1e6:
		return fmt.Sprintf("$%sM", round(value/1e6, 2))
	default:
		return fmt.Sprintf("$%s", round(value, 2))
	}
}

// FormatCorrelation returns the correlation rounded to 4dp, or the error tag
func FormatCorrelation(r contracts.PairResult) string {
	if !r.IsNumeric() {
		return r.Tag
	}
	return round(r.Correlation, 4)
}

// FormatChange returns the combined change rounded to 2dp, or "" when null
func FormatChange(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return round(v.Float64, 2)
}

// round uses half-away-from-zero rounding with a fixed number of places
func round(v float64, places int32) string {
	return decimal.NewFromFloat(v).Round(places).StringFixed(places)
}
