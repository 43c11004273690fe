package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
	"github.com/dev-bhaskar8/lp-data/internal/ranking"
)

func sampleResults() []contracts.PairResult {
	return []contracts.PairResult{
		{
			Pair:              contracts.NewPairKey("BTC", "ETH"),
			Kind:              contracts.KindNumeric,
			Correlation:       0.87654,
			CombinedMarketCap: 1.5e12,
			CombinedChangePct: null.FloatFrom(12.345),
		},
		{
			Pair:              contracts.NewPairKey("SOL", "BTC"),
			Kind:              contracts.KindOverlap,
			Tag:               contracts.OverlapTag(3, 25),
			CombinedMarketCap: 9.1e11,
		},
	}
}

func TestFormatMarketCap(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{1.234e12, "$1.23T"},
		{4.565e9, "$4.57B"},
		{7.891e6, "$7.89M"},
		{999999, "$999999.00"},
		{12.345, "$12.35"},
		{0, "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMarketCap(tt.value))
		})
	}
}

func TestFormatCorrelationAndChange(t *testing.T) {
	results := sampleResults()
	assert.Equal(t, "0.8765", FormatCorrelation(results[0]))
	assert.Equal(t, "overlap(3/25)", FormatCorrelation(results[1]))

	assert.Equal(t, "12.35", FormatChange(null.FloatFrom(12.345)))
	assert.Equal(t, "-0.50", FormatChange(null.FloatFrom(-0.5)))
	assert.Equal(t, "", FormatChange(null.Float{}))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResults()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"BTC-ETH", "0.8765", "$1.50T", "12.35"}, rows[1])
	assert.Equal(t, []string{"BTC-SOL", "overlap(3/25)", "$910.00B", ""}, rows[2])
}

func TestWriteTimeframe(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := WriteTimeframe(dir, "30d", sampleResults())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "correlations_30d.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Pair,Correlation,Combined Market Cap,Combined Change %\n"))
}

func TestWriteTimeframe_RejectsPathLabels(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "out")

	for _, label := range []string{"../x", "a/b", `a\b`} {
		_, err := WriteTimeframe(dir, label, sampleResults())
		assert.Error(t, err, label)
	}

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing written outside or inside the export dir")
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer

	PrintUniverse(&buf, &contracts.Universe{
		Assets:   []contracts.Asset{{Symbol: "BTC", MarketCap: 1.2e12}, {Symbol: "ETH", MarketCap: 3e11}},
		Excluded: map[string]string{"XYZ": "not listed (XYZUSDT)"},
		Scanned:  3,
	})
	PrintAcquisition(&buf, AcquisitionSummary{
		ViaPrimary: []string{"BTC"},
		Failed:     []string{"ETH"},
		Duration:   1500 * time.Millisecond,
	})
	results := sampleResults()
	PrintTimeframe(&buf, "30d", results[:1], ranking.ErrorSummary(results))

	out := buf.String()
	assert.Contains(t, out, "Universe (2 of 3 scanned)")
	assert.Contains(t, out, "$1.20T")
	assert.Contains(t, out, "failed:   1 (ETH)")
	assert.Contains(t, out, "[30d] top 1 pairs")
	assert.Contains(t, out, "BTC-ETH")
	assert.Contains(t, out, "errors: overlap=1")
}
