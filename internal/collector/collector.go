package collector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"StockCompare/internal/model"
)

// MockFetcher returns controllable synthetic data for development and testing.
type MockFetcher struct {
	Price float64
	// Unknown symbols fail every call, like a lookup error at the provider.
	Unknown map[string]bool
	// Empty symbols validate but have no bars in any history range.
	Empty map[string]bool
	// Failing maps symbols to the error FetchHistory returns.
	Failing map[string]error
	// Info overrides the generated attributes per symbol.
	Info map[string]model.InstrumentInfo
	// Calls records every provider call as "recent:SYM" or "history:SYM".
	Calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchRecent(ctx context.Context, symbol string) ([]model.OHLCV, error) {
	m.Calls = append(m.Calls, "recent:"+symbol)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Unknown[symbol] {
		return nil, fmt.Errorf("mock: no data for %s", symbol)
	}
	today := model.Day(time.Now())
	return generateMockBars(m.price(), today, today), nil
}

func (m *MockFetcher) FetchHistory(ctx context.Context, symbol string, rng model.DateRange) ([]model.OHLCV, model.InstrumentInfo, error) {
	m.Calls = append(m.Calls, "history:"+symbol)
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if m.Unknown[symbol] {
		return nil, nil, fmt.Errorf("mock: no data for %s", symbol)
	}
	if err, ok := m.Failing[symbol]; ok {
		return nil, nil, err
	}
	if m.Empty[symbol] {
		return nil, model.InstrumentInfo{}, nil
	}
	info, ok := m.Info[symbol]
	if !ok {
		info = model.InstrumentInfo{}
		info.Set(model.AttrSymbol, symbol)
		info.Set(model.AttrLongName, "Mock "+symbol)
	}
	return generateMockBars(m.price(), rng.Start, rng.End), info, nil
}

func (m *MockFetcher) price() float64 {
	if m.Price == 0 {
		return 100
	}
	return m.Price
}

// generateMockBars returns one bar per weekday in [from, to]. A single
// requested day always yields one bar.
func generateMockBars(basePrice float64, from, to time.Time) []model.OHLCV {
	var bars []model.OHLCV
	single := !to.After(from)
	for d, i := from, 0; !d.After(to); d = d.AddDate(0, 0, 1) {
		if !single && (d.Weekday() == time.Saturday || d.Weekday() == time.Sunday) {
			continue
		}
		p := basePrice * (1 + float64(i)*0.001)
		bars = append(bars, model.OHLCV{
			Time:   d,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
		i++
	}
	return bars
}

// SymbolValidator asks the provider whether a symbol has recent history.
type SymbolValidator struct {
	Fetcher Fetcher
	Logger  *zap.Logger
}

// NewSymbolValidator creates a new SymbolValidator.
func NewSymbolValidator(fetcher Fetcher, logger *zap.Logger) *SymbolValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SymbolValidator{Fetcher: fetcher, Logger: logger}
}

// IsValid reports whether the provider returns at least one recent bar for
// symbol. Every provider failure counts as invalid. Callers pass normalized
// symbols; an empty symbol is invalid without a provider call.
func (v *SymbolValidator) IsValid(ctx context.Context, symbol model.Ticker) bool {
	if symbol == "" {
		return false
	}
	bars, err := v.Fetcher.FetchRecent(ctx, symbol.String())
	if err != nil {
		v.Logger.Debug("symbol lookup failed", zap.String("symbol", symbol.String()),
			zap.String("provider", v.Fetcher.Name()), zap.Error(err))
		return false
	}
	return len(bars) > 0
}

// Collector retrieves price series and instrument info for validated tickers.
type Collector struct {
	Fetcher Fetcher
	Logger  *zap.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{Fetcher: fetcher, Logger: logger}
}

// Fetch returns the series and info for symbol over rng. On success the
// series and info are never nil, though the series may hold no bars.
func (c *Collector) Fetch(ctx context.Context, symbol model.Ticker, rng model.DateRange) (*model.PriceSeries, model.InstrumentInfo, error) {
	start := time.Now()
	bars, info, err := c.Fetcher.FetchHistory(ctx, symbol.String(), rng)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s %s: %w", symbol, rng, err)
	}
	if info == nil {
		info = model.InstrumentInfo{}
	}
	c.Logger.Debug("fetched history",
		zap.String("symbol", symbol.String()),
		zap.String("provider", c.Fetcher.Name()),
		zap.Int("bars", len(bars)),
		zap.Duration("took", time.Since(start)))
	return &model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: time.Now()}, info, nil
}
