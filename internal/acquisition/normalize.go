package acquisition

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/guregu/null/v6"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
)

// dayClose is the last observation of one UTC day; Close is null when that day had no valid sample
type dayClose struct {
	Day   time.Time
	Close null.Float
}

// NullFraction returns the share of calendar days, from the first to the last observed day,
// without a valid close. Days missing from days count as null.
func NullFraction(days []dayClose) float64 {
	if len(days) == 0 {
		return 1
	}

	first, last := days[0].Day, days[0].Day
	valid := make(map[time.Time]struct{}, len(days))
	for _, d := range days {
		if d.Day.Before(first) {
			first = d.Day
		}
		if d.Day.After(last) {
			last = d.Day
		}
		if d.Close.Valid {
			valid[d.Day] = struct{}{}
		}
	}

	total := int(last.Sub(first).Hours()/24) + 1
	return float64(total-len(valid)) / float64(total)
}

// DailyLast resamples raw samples to one value per UTC day by taking the last valid observation of each day.
// Days whose samples are all null keep a null close.
func DailyLast(samples []contracts.Sample) []dayClose {
	sorted := make([]contracts.Sample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	out := make([]dayClose, 0, len(sorted))
	for _, s := range sorted {
		day := contracts.TruncateDay(s.Time)
		valid := s.Close.Valid && isFinite(s.Close.Float64)

		if n := len(out); n > 0 && out[n-1].Day.Equal(day) {
			if valid {
				out[n-1].Close = s.Close
			}
			continue
		}

		dc := dayClose{Day: day}
		if valid {
			dc.Close = s.Close
		}
		out = append(out, dc)
	}
	return out
}

// FillGaps lays days on a contiguous calendar from the first to the last valid close.
// A run of missing days no longer than maxGap is forward-filled; longer runs are left out entirely
// so they surface as fewer points downstream.
func FillGaps(days []dayClose, maxGap int) []contracts.Point {
	byDay := make(map[time.Time]float64, len(days))
	var first, last time.Time
	for _, d := range days {
		if !d.Close.Valid {
			continue
		}
		byDay[d.Day] = d.Close.Float64
		if first.IsZero() || d.Day.Before(first) {
			first = d.Day
		}
		if d.Day.After(last) {
			last = d.Day
		}
	}
	if first.IsZero() {
		return nil
	}

	points := make([]contracts.Point, 0, len(byDay))
	var gap []time.Time
	prev := 0.0

	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		v, ok := byDay[day]
		if !ok {
			gap = append(gap, day)
			continue
		}

		// 3일 이하 공백만 직전 종가로 채움
		if len(gap) > 0 && len(gap) <= maxGap {
			for _, g := range gap {
				points = append(points, contracts.Point{Date: g, Close: prev})
			}
		}
		gap = gap[:0]

		points = append(points, contracts.Point{Date: day, Close: v})
		prev = v
	}

	return points
}

// Invert returns a copy with close := 1/close
func Invert(points []contracts.Point) ([]contracts.Point, error) {
	out := make([]contracts.Point, len(points))
	for i, p := range points {
		if p.Close == 0 || !isFinite(p.Close) {
			return nil, fmt.Errorf("cannot invert close %v on %s", p.Close, p.Date.Format("2006-01-02"))
		}
		out[i] = contracts.Point{Date: p.Date, Close: 1 / p.Close}
	}
	return out, nil
}

// Multiply combines two legs on their common dates (SYMBOL/CROSS × CROSS/QUOTE = SYMBOL/QUOTE)
func Multiply(a, b []contracts.Point) []contracts.Point {
	rhs := make(map[time.Time]float64, len(b))
	for _, p := range b {
		rhs[p.Date] = p.Close
	}

	out := make([]contracts.Point, 0, len(a))
	for _, p := range a {
		if v, ok := rhs[p.Date]; ok {
			out = append(out, contracts.Point{Date: p.Date, Close: p.Close * v})
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
