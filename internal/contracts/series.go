package contracts

import (
	"fmt"
	"time"

	"github.com/guregu/null/v6"
)

// Sample is a raw upstream observation; Close is null when the upstream value is missing or malformed
type Sample struct {
	Time  time.Time  `json:"time"`
	Close null.Float `json:"close"`
}

// Point is one normalized daily close
type Point struct {
	Date  time.Time `json:"date"` // UTC midnight
	Close float64   `json:"close"`
}

// TimeSeries is a normalized daily close series for one symbol
// ⭐ SSOT: 정규화(역수/리샘플링) 이후 수정 금지
type TimeSeries struct {
	Symbol string  `json:"symbol"`
	Source string  `json:"source"` // binance, coingecko
	Query  string  `json:"query"`  // e.g. "BTCUSDT", "inverse:USDCUSDT", "id:bitcoin"
	Points []Point `json:"points"`
}

// Len returns the number of points
func (s *TimeSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// Closes returns the close column
func (s *TimeSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// Validate checks one point per UTC day with strictly increasing dates
func (s *TimeSeries) Validate() error {
	for i, p := range s.Points {
		if !p.Date.Equal(TruncateDay(p.Date)) {
			return fmt.Errorf("%s: point %d is not aligned to UTC midnight: %s", s.Symbol, i, p.Date)
		}
		if i > 0 && !p.Date.After(s.Points[i-1].Date) {
			return fmt.Errorf("%s: point %d is not after previous date %s", s.Symbol, i, s.Points[i-1].Date.Format("2006-01-02"))
		}
	}
	return nil
}

// ReturnPoint is one period-over-period change; Close is the close the change ends on
type ReturnPoint struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Change float64   `json:"change"` // fractional, 0.05 = +5%
}

// ReturnSeries is derived from a TimeSeries and has one point fewer
type ReturnSeries struct {
	Symbol string        `json:"symbol"`
	Points []ReturnPoint `json:"points"`
}

// Len returns the number of return points
func (r ReturnSeries) Len() int {
	return len(r.Points)
}

// Since returns the points dated at or after cutoff
func (r ReturnSeries) Since(cutoff time.Time) []ReturnPoint {
	for i, p := range r.Points {
		if !p.Date.Before(cutoff) {
			return r.Points[i:]
		}
	}
	return nil
}

// TruncateDay returns t's UTC calendar day at midnight
func TruncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
