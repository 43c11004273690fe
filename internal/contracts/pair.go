package contracts

import (
	"fmt"
	"strings"

	"github.com/guregu/null/v6"
)

// ResultKind discriminates PairResult variants
type ResultKind string

const (
	KindNumeric    ResultKind = "numeric"
	KindIneligible ResultKind = "insufficient_data"
	KindOverlap    ResultKind = "overlap"
	KindCalc       ResultKind = "calc"
)

// maxCalcMessage bounds calc(...) messages for display
const maxCalcMessage = 80

// PairKey is an unordered pair stored with A < B
type PairKey struct {
	A string `json:"a"`
	B string `json:"b"`
}

// NewPairKey orders the two symbols lexicographically
func NewPairKey(x, y string) PairKey {
	if y < x {
		x, y = y, x
	}
	return PairKey{A: x, B: y}
}

// String renders the pair as "A-B"
func (k PairKey) String() string {
	return k.A + "-" + k.B
}

// PairResult is one pair's outcome for one timeframe
// ⭐ SSOT: Numeric | Ineligible | Overlap | Calc
type PairResult struct {
	Pair              PairKey    `json:"pair"`
	Kind              ResultKind `json:"kind"`
	Correlation       float64    `json:"correlation,omitempty"` // Kind == numeric 일 때만 유효, [0, 1]
	Tag               string     `json:"tag,omitempty"`         // Kind != numeric 일 때 에러 태그
	CombinedMarketCap float64    `json:"combined_market_cap"`
	CombinedChangePct null.Float `json:"combined_change_pct"` // 에러 태그일 때 null
	Points            int        `json:"points,omitempty"`    // aligned return points used
}

// IsNumeric reports whether a correlation was computed
func (r PairResult) IsNumeric() bool {
	return r.Kind == KindNumeric
}

// Display returns the correlation formatted to 4dp or the error tag
func (r PairResult) Display() string {
	if r.IsNumeric() {
		return fmt.Sprintf("%.4f", r.Correlation)
	}
	return r.Tag
}

// TagPrefix returns the tag up to its first "(", or "" for numeric results
func (r PairResult) TagPrefix() string {
	if r.IsNumeric() {
		return ""
	}
	if i := strings.IndexByte(r.Tag, '('); i >= 0 {
		return r.Tag[:i]
	}
	return r.Tag
}

// InsufficientDataTag formats a per-symbol coverage deficit
func InsufficientDataTag(have, need int) string {
	return fmt.Sprintf("insufficient_data(%d/%d)", have, need)
}

// OverlapTag formats a per-pair alignment deficit
func OverlapTag(have, need int) string {
	return fmt.Sprintf("overlap(%d/%d)", have, need)
}

// CalcTag formats an arithmetic failure, truncating long messages
func CalcTag(msg string) string {
	msg = strings.TrimSpace(msg)
	if r := []rune(msg); len(r) > maxCalcMessage {
		msg = string(r[:maxCalcMessage-3]) + "..."
	}
	return fmt.Sprintf("calc(%s)", msg)
}
