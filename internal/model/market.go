package model

import (
	"strings"
	"time"
)

// Ticker is a normalized (trimmed, uppercased) instrument symbol.
type Ticker string

func (t Ticker) String() string { return string(t) }

// NormalizeSymbols splits a comma-separated list and returns one Ticker per
// token, trimmed and uppercased. Blank tokens are kept as empty Tickers so the
// result always has one entry per comma-separated token. It returns nil when
// no token holds a non-whitespace character.
func NormalizeSymbols(raw string) []Ticker {
	parts := strings.Split(raw, ",")
	tickers := make([]Ticker, 0, len(parts))
	blank := true
	for _, p := range parts {
		t := Ticker(strings.ToUpper(strings.TrimSpace(p)))
		if t != "" {
			blank = false
		}
		tickers = append(tickers, t)
	}
	if blank {
		return nil
	}
	return tickers
}

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the daily bars of one ticker, oldest first.
type PriceSeries struct {
	Symbol    Ticker
	Bars      []OHLCV
	FetchedAt time.Time
}

// Empty reports whether the series holds no bars.
func (s *PriceSeries) Empty() bool { return s == nil || len(s.Bars) == 0 }
