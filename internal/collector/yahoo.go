package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"StockCompare/internal/model"
)

const (
	yahooChartURL   = "https://query1.finance.yahoo.com/v8/finance/chart"
	yahooSummaryURL = "https://query2.finance.yahoo.com/v10/finance/quoteSummary"
	summaryModules  = "price,summaryProfile,summaryDetail"
)

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	Client     *http.Client
	ChartURL   string
	SummaryURL string
	SymbolMap  map[string]string // maps user symbol to Yahoo ticker
	Logger     *zap.Logger
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string, timeout time.Duration, logger *zap.Logger) *YahooFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		ChartURL:   yahooChartURL,
		SummaryURL: yahooSummaryURL,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
		Logger: logger,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// yahooMeta is the subset of the chart meta block used to seed InstrumentInfo.
type yahooMeta struct {
	Symbol               string              `json:"symbol"`
	LongName             string              `json:"longName"`
	RegularMarketDayHigh decimal.NullDecimal `json:"regularMarketDayHigh"`
	RegularMarketDayLow  decimal.NullDecimal `json:"regularMarketDayLow"`
	RegularMarketVolume  decimal.NullDecimal `json:"regularMarketVolume"`
	FiftyTwoWeekHigh     decimal.NullDecimal `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow      decimal.NullDecimal `json:"fiftyTwoWeekLow"`
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta       yahooMeta `json:"meta"`
			Timestamp  []int64   `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

// yahooField is a quoteSummary numeric; only the raw value is kept.
type yahooField struct {
	Raw decimal.NullDecimal `json:"raw"`
}

// yahooSummary is the response structure from Yahoo Finance quoteSummary API.
type yahooSummary struct {
	QuoteSummary struct {
		Result []struct {
			Price *struct {
				Symbol   string `json:"symbol"`
				LongName string `json:"longName"`
			} `json:"price"`
			SummaryProfile *struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"summaryProfile"`
			SummaryDetail *struct {
				MarketCap        yahooField `json:"marketCap"`
				PreviousClose    yahooField `json:"previousClose"`
				Open             yahooField `json:"open"`
				DayLow           yahooField `json:"dayLow"`
				DayHigh          yahooField `json:"dayHigh"`
				FiftyTwoWeekLow  yahooField `json:"fiftyTwoWeekLow"`
				FiftyTwoWeekHigh yahooField `json:"fiftyTwoWeekHigh"`
				Volume           yahooField `json:"volume"`
				AverageVolume    yahooField `json:"averageVolume"`
				TrailingPE       yahooField `json:"trailingPE"`
				DividendRate     yahooField `json:"dividendRate"`
				DividendYield    yahooField `json:"dividendYield"`
				Beta             yahooField `json:"beta"`
			} `json:"summaryDetail"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func setDecimal(info model.InstrumentInfo, a model.Attribute, d decimal.NullDecimal) {
	if d.Valid {
		info.Set(a, d.Decimal.String())
	}
}

func (f *YahooFetcher) getJSON(ctx context.Context, u string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

// fetchChart returns the bars and meta block for symbol. A result without
// timestamps yields no bars and no error.
func (f *YahooFetcher) fetchChart(ctx context.Context, symbol string, params url.Values) ([]model.OHLCV, yahooMeta, error) {
	u := fmt.Sprintf("%s/%s?%s", f.ChartURL, url.PathEscape(f.yahooSymbol(symbol)), params.Encode())

	var chart yahooChart
	if err := f.getJSON(ctx, u, &chart); err != nil {
		return nil, yahooMeta{}, err
	}
	if chart.Chart.Error != nil {
		return nil, yahooMeta{}, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, yahooMeta{}, fmt.Errorf("yahoo: no data returned")
	}

	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, result.Meta, nil
	}
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	at := func(vals []interface{}, i int) float64 {
		if i < len(vals) {
			return toFloat(vals[i])
		}
		return 0
	}
	for i, ts := range result.Timestamp {
		o := at(quote.Open, i)
		h := at(quote.High, i)
		l := at(quote.Low, i)
		c := at(quote.Close, i)
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // skip null bars (holidays etc.)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: at(quote.Volume, i),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, result.Meta, nil
}

func (f *YahooFetcher) fetchSummary(ctx context.Context, symbol string) (model.InstrumentInfo, error) {
	u := fmt.Sprintf("%s/%s?modules=%s", f.SummaryURL, url.PathEscape(f.yahooSymbol(symbol)), url.QueryEscape(summaryModules))

	var summary yahooSummary
	if err := f.getJSON(ctx, u, &summary); err != nil {
		return nil, err
	}
	if summary.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", summary.QuoteSummary.Error.Description)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no summary returned")
	}

	r := summary.QuoteSummary.Result[0]
	info := model.InstrumentInfo{}
	if p := r.Price; p != nil {
		info.Set(model.AttrSymbol, p.Symbol)
		info.Set(model.AttrLongName, p.LongName)
	}
	if p := r.SummaryProfile; p != nil {
		info.Set(model.AttrSector, p.Sector)
		info.Set(model.AttrIndustry, p.Industry)
	}
	if d := r.SummaryDetail; d != nil {
		setDecimal(info, model.AttrMarketCap, d.MarketCap.Raw)
		setDecimal(info, model.AttrPreviousClose, d.PreviousClose.Raw)
		setDecimal(info, model.AttrOpen, d.Open.Raw)
		setDecimal(info, model.AttrDayLow, d.DayLow.Raw)
		setDecimal(info, model.AttrDayHigh, d.DayHigh.Raw)
		setDecimal(info, model.AttrFiftyTwoWeekLow, d.FiftyTwoWeekLow.Raw)
		setDecimal(info, model.AttrFiftyTwoWeekHigh, d.FiftyTwoWeekHigh.Raw)
		setDecimal(info, model.AttrVolume, d.Volume.Raw)
		setDecimal(info, model.AttrAverageVolume, d.AverageVolume.Raw)
		setDecimal(info, model.AttrTrailingPE, d.TrailingPE.Raw)
		setDecimal(info, model.AttrDividendRate, d.DividendRate.Raw)
		setDecimal(info, model.AttrDividendYield, d.DividendYield.Raw)
		setDecimal(info, model.AttrBeta, d.Beta.Raw)
	}
	return info, nil
}

func (f *YahooFetcher) FetchRecent(ctx context.Context, symbol string) ([]model.OHLCV, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", "1d")
	bars, _, err := f.fetchChart(ctx, symbol, params)
	return bars, err
}

func (f *YahooFetcher) FetchHistory(ctx context.Context, symbol string, rng model.DateRange) ([]model.OHLCV, model.InstrumentInfo, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("period1", strconv.FormatInt(rng.Start.Unix(), 10))
	// period2 is exclusive; step past the end day so it is included
	params.Set("period2", strconv.FormatInt(rng.End.AddDate(0, 0, 1).Unix(), 10))
	bars, meta, err := f.fetchChart(ctx, symbol, params)
	if err != nil {
		return nil, nil, err
	}

	info := model.InstrumentInfo{}
	info.Set(model.AttrSymbol, meta.Symbol)
	info.Set(model.AttrLongName, meta.LongName)
	setDecimal(info, model.AttrDayLow, meta.RegularMarketDayLow)
	setDecimal(info, model.AttrDayHigh, meta.RegularMarketDayHigh)
	setDecimal(info, model.AttrVolume, meta.RegularMarketVolume)
	setDecimal(info, model.AttrFiftyTwoWeekLow, meta.FiftyTwoWeekLow)
	setDecimal(info, model.AttrFiftyTwoWeekHigh, meta.FiftyTwoWeekHigh)

	summary, err := f.fetchSummary(ctx, symbol)
	if err != nil {
		f.Logger.Warn("yahoo summary unavailable, using chart meta only",
			zap.String("symbol", symbol), zap.Error(err))
		return bars, info, nil
	}
	info.Merge(summary)
	return bars, info, nil
}
