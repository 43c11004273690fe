package contracts

import "time"

// Asset is a ranked candidate admitted to the universe
// ⭐ SSOT: 심볼 + 시가총액, 유니버스 생성 후 불변
type Asset struct {
	Symbol      string  `json:"symbol"`                 // 대문자 티커
	MarketCap   float64 `json:"market_cap"`             // USD
	CanonicalID string  `json:"canonical_id,omitempty"` // fallback source id hint
	Name        string  `json:"name,omitempty"`
}

// Universe is the ordered working set of assets for one run
// ⭐ SSOT: UniverseBuilder → Orchestrator 전달
type Universe struct {
	Date     time.Time         `json:"date"`
	Assets   []Asset           `json:"assets"`   // 시가총액 내림차순
	Excluded map[string]string `json:"excluded"` // 제외 심볼: 사유
	Scanned  int               `json:"scanned"`  // 검토한 후보 수
}

// Contains checks if a symbol is in the universe
func (u *Universe) Contains(symbol string) bool {
	for _, a := range u.Assets {
		if a.Symbol == symbol {
			return true
		}
	}
	return false
}

// IsExcluded checks if a symbol was excluded with reason
func (u *Universe) IsExcluded(symbol string) (bool, string) {
	reason, exists := u.Excluded[symbol]
	return exists, reason
}

// Count returns the number of admitted assets
func (u *Universe) Count() int {
	return len(u.Assets)
}

// Symbols returns the admitted symbols in rank order
func (u *Universe) Symbols() []string {
	out := make([]string, len(u.Assets))
	for i, a := range u.Assets {
		out[i] = a.Symbol
	}
	return out
}

// BySymbol indexes the admitted assets by symbol
func (u *Universe) BySymbol() map[string]Asset {
	out := make(map[string]Asset, len(u.Assets))
	for _, a := range u.Assets {
		out[a.Symbol] = a
	}
	return out
}
