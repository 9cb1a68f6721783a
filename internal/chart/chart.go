// Package chart draws the closing-price comparison chart.
package chart

import (
	"errors"
	"fmt"
	"io"

	"github.com/pkg/browser"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"StockCompare/internal/model"
)

const (
	Title  = "Stock Comparison"
	XLabel = "Date"
	YLabel = "Price"
)

// Plotter renders one closing-price line per series and exports the chart.
type Plotter struct {
	Output string  // file path; the extension selects the format
	Width  float64 // inches
	Height float64 // inches
	Open   bool    // open the exported file in the system viewer
	Out    io.Writer
	Logger *zap.Logger
}

// Build returns the comparison plot for series.
func Build(series []*model.PriceSeries) (*plot.Plot, error) {
	if len(series) == 0 {
		return nil, errors.New("no series to plot")
	}
	p := plot.New()
	p.Title.Text = Title
	p.X.Label.Text = XLabel
	p.Y.Label.Text = YLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: model.DateFormat}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	lines := make([]interface{}, 0, 2*len(series))
	for _, s := range series {
		xys := make(plotter.XYs, len(s.Bars))
		for i, b := range s.Bars {
			xys[i].X = float64(b.Time.Unix())
			xys[i].Y = b.Close
		}
		lines = append(lines, s.Symbol.String(), xys)
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return nil, fmt.Errorf("add lines: %w", err)
	}
	return p, nil
}

// Plot builds the chart and saves it to Output.
func (c *Plotter) Plot(series []*model.PriceSeries) error {
	p, err := Build(series)
	if err != nil {
		return err
	}
	if err := p.Save(vg.Length(c.Width)*vg.Inch, vg.Length(c.Height)*vg.Inch, c.Output); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	c.logger().Info("chart saved", zap.String("path", c.Output), zap.Int("series", len(series)))
	if c.Out != nil {
		fmt.Fprintf(c.Out, "Chart saved to %s\n", c.Output)
	}
	if c.Open {
		if err := browser.OpenFile(c.Output); err != nil {
			c.logger().Warn("open chart viewer", zap.String("path", c.Output), zap.Error(err))
		}
	}
	return nil
}

func (c *Plotter) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
