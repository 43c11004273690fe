package contracts

import "math"

// Timeframe is a named lookback window with its own coverage threshold
type Timeframe struct {
	Label               string  `json:"label" yaml:"label"`
	WindowDays          int     `json:"window_days" yaml:"window_days"`
	MinCoverageFraction float64 `json:"min_coverage_fraction" yaml:"min_coverage_fraction"`
}

// RequiredPoints returns floor(window_days × min_coverage_fraction)
func (tf Timeframe) RequiredPoints() int {
	// 1e-9: 0.85*100 = 84.99999999999999 같은 부동소수 오차 보정
	return int(math.Floor(float64(tf.WindowDays)*tf.MinCoverageFraction + 1e-9))
}
