package collector

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"SignalBench/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData []model.RawBar
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, days int) ([]model.RawBar, error) {
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	return generateMockBars(m.Price, days), nil
}

// generateMockBars produces a drifting oscillation so both estimators have
// something to learn.
func generateMockBars(basePrice float64, count int) []model.RawBar {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	bars := make([]model.RawBar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + 0.05*math.Sin(float64(i)/5) + float64(i)*0.0005)
		vol := 1000000 + float64(i%10)*25000
		bars[i] = model.RawBar{
			Date:   end.AddDate(0, 0, -(count - i)),
			Open:   ptr(p * 0.999),
			High:   ptr(p * 1.005),
			Low:    ptr(p * 0.995),
			Close:  ptr(p),
			Volume: ptr(vol),
		}
	}
	return bars
}

func ptr(v float64) *float64 { return &v }

// Collector fetches and normalizes the bar series for one symbol.
type Collector struct {
	Fetcher Fetcher
	Symbol  string
	Days    int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol string, days int) *Collector {
	return &Collector{Fetcher: fetcher, Symbol: symbol, Days: days}
}

// Collect fetches raw rows and returns the normalized bar series, limited to
// the most recent Days bars when Days is positive.
func (c *Collector) Collect(ctx context.Context) ([]model.PriceBar, error) {
	raw, err := c.Fetcher.FetchDailyBars(ctx, c.Symbol, c.Days)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars from %s: %w", c.Fetcher.Name(), err)
	}
	bars, err := Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", c.Symbol, err)
	}
	if dropped := len(raw) - len(bars); dropped > 0 {
		log.Printf("[WARN] %s: dropped %d of %d rows (incomplete or duplicate)", c.Symbol, dropped, len(raw))
	}
	// Keep the most recent Days bars.
	if c.Days > 0 && len(bars) > c.Days {
		bars = bars[len(bars)-c.Days:]
	}
	return bars, nil
}
