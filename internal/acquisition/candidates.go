package acquisition

import (
	"fmt"
	"strings"

	"github.com/dev-bhaskar8/lp-data/pkg/config"
)

// CandidateKind names how a candidate query maps to the wanted symbol
type CandidateKind string

const (
	KindDirect    CandidateKind = "direct"    // SYMBOL/QUOTE
	KindInverse   CandidateKind = "inverse"   // QUOTE/SYMBOL, 역수
	KindCross     CandidateKind = "cross"     // SYMBOL/CROSS × CROSS/QUOTE
	KindReference CandidateKind = "reference" // 기준 통화: 기준 페어 역수
	KindFallback  CandidateKind = "fallback"  // 2차 소스 id 조회
)

// Leg is one primary-source trading pair; Invert means close := 1/close
type Leg struct {
	Pair   string
	Invert bool
}

// Candidate is one primary-source query, evaluated in order
type Candidate struct {
	Kind CandidateKind
	Legs []Leg // cross 는 두 개, 나머지는 한 개
}

// Label renders the candidate for attempts and stored series
func (c Candidate) Label() string {
	parts := make([]string, len(c.Legs))
	for i, leg := range c.Legs {
		if leg.Invert {
			parts[i] = "1/" + leg.Pair
		} else {
			parts[i] = leg.Pair
		}
	}
	return fmt.Sprintf("%s:%s", c.Kind, strings.Join(parts, "*"))
}

// Market describes the quote currency conventions of the primary market
type Market struct {
	Quote           string // USDT
	Cross           string // BTC
	ReferenceSymbol string // USDT
	ReferencePair   string // USDCUSDT
}

// MarketFrom builds the market conventions from the process config
func MarketFrom(cfg *config.Config) Market {
	return Market{
		Quote:           cfg.Market.QuoteAsset,
		Cross:           cfg.Market.CrossQuoteAsset,
		ReferenceSymbol: cfg.Market.ReferenceSymbol,
		ReferencePair:   cfg.Market.ReferencePair,
	}
}

// Plan returns the ordered primary-source candidates for symbol.
// The reference symbol has no series against itself and is derived only from the inverted reference pair.
func (m Market) Plan(symbol string) []Candidate {
	symbol = strings.ToUpper(symbol)

	if symbol == m.ReferenceSymbol && m.ReferencePair != "" {
		return []Candidate{
			{Kind: KindReference, Legs: []Leg{{Pair: m.ReferencePair, Invert: true}}},
		}
	}

	candidates := []Candidate{
		{Kind: KindDirect, Legs: []Leg{{Pair: symbol + m.Quote}}},
		{Kind: KindInverse, Legs: []Leg{{Pair: m.Quote + symbol, Invert: true}}},
	}

	if m.Cross != "" && symbol != m.Cross && m.Cross != m.Quote {
		candidates = append(candidates, Candidate{
			Kind: KindCross,
			Legs: []Leg{{Pair: symbol + m.Cross}, {Pair: m.Cross + m.Quote}},
		})
	}

	return candidates
}
