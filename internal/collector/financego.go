package collector

import (
	"context"
	"fmt"
	"strconv"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"go.uber.org/zap"

	"StockCompare/internal/model"
)

// recentLookback covers weekends and holidays when asking for the latest day.
const recentLookback = 7 * 24 * time.Hour

// FinanceGoFetcher implements Fetcher on top of piquette/finance-go.
// The library does not expose sector, industry or beta, so those are always
// absent. Zero numerics from the library are reported as absent.
type FinanceGoFetcher struct {
	Logger *zap.Logger
}

// NewFinanceGoFetcher creates a finance-go backed fetcher.
func NewFinanceGoFetcher(logger *zap.Logger) *FinanceGoFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinanceGoFetcher{Logger: logger}
}

func (f *FinanceGoFetcher) Name() string { return "financego" }

func (f *FinanceGoFetcher) bars(symbol string, start, end time.Time) ([]model.OHLCV, error) {
	params := &chart.Params{
		Symbol:   symbol,
		Interval: datetime.OneDay,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
	}
	iter := chart.Get(params)

	var bars []model.OHLCV
	for iter.Next() {
		b := iter.Bar()
		bars = append(bars, barFromChart(b))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("finance-go chart: %w", err)
	}
	return bars, nil
}

func barFromChart(b *finance.ChartBar) model.OHLCV {
	return model.OHLCV{
		Time:   time.Unix(int64(b.Timestamp), 0),
		Open:   b.Open.InexactFloat64(),
		High:   b.High.InexactFloat64(),
		Low:    b.Low.InexactFloat64(),
		Close:  b.Close.InexactFloat64(),
		Volume: float64(b.Volume),
	}
}

func (f *FinanceGoFetcher) FetchRecent(ctx context.Context, symbol string) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	end := time.Now()
	bars, err := f.bars(symbol, end.Add(-recentLookback), end)
	if err != nil {
		return nil, err
	}
	if len(bars) > 1 {
		bars = bars[len(bars)-1:]
	}
	return bars, nil
}

func (f *FinanceGoFetcher) FetchHistory(ctx context.Context, symbol string, rng model.DateRange) ([]model.OHLCV, model.InstrumentInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	bars, err := f.bars(symbol, rng.Start, rng.End.AddDate(0, 0, 1))
	if err != nil {
		return nil, nil, err
	}

	info := model.InstrumentInfo{}
	eq, err := equity.Get(symbol)
	if err != nil || eq == nil {
		f.Logger.Warn("finance-go equity unavailable", zap.String("symbol", symbol), zap.Error(err))
		info.Set(model.AttrSymbol, symbol)
		return bars, info, nil
	}
	info.Set(model.AttrSymbol, eq.Symbol)
	info.Set(model.AttrLongName, eq.LongName)
	setInt(info, model.AttrMarketCap, eq.MarketCap)
	setFloat(info, model.AttrPreviousClose, eq.RegularMarketPreviousClose)
	setFloat(info, model.AttrOpen, eq.RegularMarketOpen)
	setFloat(info, model.AttrDayLow, eq.RegularMarketDayLow)
	setFloat(info, model.AttrDayHigh, eq.RegularMarketDayHigh)
	setFloat(info, model.AttrFiftyTwoWeekLow, eq.FiftyTwoWeekLow)
	setFloat(info, model.AttrFiftyTwoWeekHigh, eq.FiftyTwoWeekHigh)
	setInt(info, model.AttrVolume, int64(eq.RegularMarketVolume))
	setInt(info, model.AttrAverageVolume, int64(eq.AverageDailyVolume3Month))
	setFloat(info, model.AttrTrailingPE, eq.TrailingPE)
	setFloat(info, model.AttrDividendRate, eq.TrailingAnnualDividendRate)
	setFloat(info, model.AttrDividendYield, eq.TrailingAnnualDividendYield)
	return bars, info, nil
}

func setFloat(info model.InstrumentInfo, a model.Attribute, v float64) {
	if v != 0 {
		info.Set(a, strconv.FormatFloat(v, 'f', -1, 64))
	}
}

func setInt(info model.InstrumentInfo, a model.Attribute, v int64) {
	if v != 0 {
		info.Set(a, strconv.FormatInt(v, 10))
	}
}
