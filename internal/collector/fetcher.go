package collector

import (
	"context"

	"SignalBench/internal/model"
)

// Fetcher defines the interface for fetching daily price history.
// Rows may be incomplete or out of order; Normalize cleans them up.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.RawBar, error)
	Name() string
}
