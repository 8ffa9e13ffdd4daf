package collector

import (
	"errors"
	"math"
	"sort"
	"time"

	"SignalBench/internal/model"
)

// ErrNoBars is returned when no complete bar survives normalization.
var ErrNoBars = errors.New("no complete price bars")

// Normalize turns raw rows into a bar series sorted ascending by date.
// Rows missing a date or any of open/high/low/close are dropped, an unusable
// volume becomes 0, and for duplicate dates the later row wins.
func Normalize(raw []model.RawBar) ([]model.PriceBar, error) {
	byDate := make(map[int64]model.PriceBar, len(raw))
	for _, r := range raw {
		if r.Date.IsZero() || !usable(r.Open) || !usable(r.High) || !usable(r.Low) || !usable(r.Close) {
			continue
		}
		vol := 0.0
		if usable(r.Volume) && *r.Volume >= 0 {
			vol = *r.Volume
		}
		day := truncateDay(r.Date)
		byDate[day.Unix()] = model.PriceBar{
			Date:   day,
			Open:   *r.Open,
			High:   *r.High,
			Low:    *r.Low,
			Close:  *r.Close,
			Volume: vol,
		}
	}
	if len(byDate) == 0 {
		return nil, ErrNoBars
	}
	bars := make([]model.PriceBar, 0, len(byDate))
	for _, b := range byDate {
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func usable(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// truncateDay keeps the calendar date of t in its own location, at UTC midnight.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
