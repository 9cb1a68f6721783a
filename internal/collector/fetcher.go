package collector

import (
	"context"

	"StockCompare/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchRecent returns the most recent trading day for symbol.
	FetchRecent(ctx context.Context, symbol string) ([]model.OHLCV, error)
	// FetchHistory returns the daily bars in rng (inclusive) and the
	// instrument's descriptive attributes.
	FetchHistory(ctx context.Context, symbol string, rng model.DateRange) ([]model.OHLCV, model.InstrumentInfo, error)
	Name() string
}
