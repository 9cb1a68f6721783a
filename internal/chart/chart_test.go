package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"StockCompare/internal/model"
)

func testSeries(symbol string, closes ...float64) *model.PriceSeries {
	s := &model.PriceSeries{Symbol: model.Ticker(symbol)}
	day := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		s.Bars = append(s.Bars, model.OHLCV{Time: day.AddDate(0, 0, i), Close: c})
	}
	return s
}

func TestBuild(t *testing.T) {
	p, err := Build([]*model.PriceSeries{
		testSeries("AAPL", 125.07, 126.36, 125.02),
		testSeries("MSFT", 239.58, 229.1, 222.31),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Title.Text != "Stock Comparison" || p.X.Label.Text != "Date" || p.Y.Label.Text != "Price" {
		t.Errorf("unexpected labels: %q %q %q", p.Title.Text, p.X.Label.Text, p.Y.Label.Text)
	}
	if p.Y.Min > 125.02 || p.Y.Max < 239.58 {
		t.Errorf("y axis [%v, %v] should cover every close", p.Y.Min, p.Y.Max)
	}
}

func TestBuild_NoSeries(t *testing.T) {
	if _, err := Build(nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestPlotterSavesFile(t *testing.T) {
	for _, ext := range []string{"png", "svg"} {
		t.Run(ext, func(t *testing.T) {
			var out bytes.Buffer
			path := filepath.Join(t.TempDir(), "cmp."+ext)
			p := &Plotter{Output: path, Width: 6, Height: 4, Out: &out}
			if err := p.Plot([]*model.PriceSeries{testSeries("AAPL", 1, 2, 3)}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			st, err := os.Stat(path)
			if err != nil {
				t.Fatalf("chart not written: %v", err)
			}
			if st.Size() == 0 {
				t.Error("chart file is empty")
			}
			if !strings.Contains(out.String(), path) {
				t.Errorf("console should name the chart path, got %q", out.String())
			}
		})
	}
}

func TestPlotterUnknownFormat(t *testing.T) {
	p := &Plotter{Output: filepath.Join(t.TempDir(), "cmp.bogus"), Width: 6, Height: 4}
	if err := p.Plot([]*model.PriceSeries{testSeries("AAPL", 1, 2)}); err == nil {
		t.Error("expected error for an unsupported extension")
	}
}
