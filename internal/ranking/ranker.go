package ranking

import (
	"sort"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
)

// TagCount is the number of results sharing an error-tag prefix
type TagCount struct {
	Prefix string `json:"prefix"`
	Count  int    `json:"count"`
}

// Rank returns a stably sorted copy: numeric results by descending correlation,
// then error-tagged results in arrival order.
// ⭐ SSOT: 결과 정렬은 여기서만
func Rank(results []contracts.PairResult) []contracts.PairResult {
	ranked := make([]contracts.PairResult, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		switch {
		case a.IsNumeric() && b.IsNumeric():
			return a.Correlation > b.Correlation
		case a.IsNumeric():
			return true
		default:
			return false
		}
	})
	return ranked
}

// TopN returns at most n numeric results from a ranked sequence
func TopN(ranked []contracts.PairResult, n int) []contracts.PairResult {
	if n <= 0 {
		return nil
	}
	out := make([]contracts.PairResult, 0, n)
	for _, r := range ranked {
		if len(out) >= n || !r.IsNumeric() {
			break
		}
		out = append(out, r)
	}
	return out
}

// ErrorSummary counts error-tagged results by tag prefix, sorted by prefix
func ErrorSummary(results []contracts.PairResult) []TagCount {
	counts := make(map[string]int)
	for _, r := range results {
		if r.IsNumeric() {
			continue
		}
		counts[r.TagPrefix()]++
	}

	out := make([]TagCount, 0, len(counts))
	for prefix, n := range counts {
		out = append(out, TagCount{Prefix: prefix, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Prefix < out[j].Prefix })
	return out
}

// NumericCount returns how many results carry a correlation
func NumericCount(results []contracts.PairResult) int {
	n := 0
	for _, r := range results {
		if r.IsNumeric() {
			n++
		}
	}
	return n
}
