// Package report renders the per-ticker text summary.
package report

import (
	"fmt"
	"io"
	"strings"

	"StockCompare/internal/model"
)

// labelWidth is the column width labels are padded to.
const labelWidth = 17

// Field is one line of the summary block.
type Field struct {
	Label string
	Value func(info model.InstrumentInfo) string
}

func attr(a model.Attribute) func(model.InstrumentInfo) string {
	return func(info model.InstrumentInfo) string { return info.Value(a) }
}

func span(low, high model.Attribute) func(model.InstrumentInfo) string {
	return func(info model.InstrumentInfo) string {
		return info.Value(low) + " - " + info.Value(high)
	}
}

// Fields lists the summary lines in display order.
var Fields = []Field{
	{"Symbol", attr(model.AttrSymbol)},
	{"Company Name", attr(model.AttrLongName)},
	{"Sector", attr(model.AttrSector)},
	{"Industry", attr(model.AttrIndustry)},
	{"Market Cap", attr(model.AttrMarketCap)},
	{"Previous Close", attr(model.AttrPreviousClose)},
	{"Open", attr(model.AttrOpen)},
	{"Day Range", span(model.AttrDayLow, model.AttrDayHigh)},
	{"52-Week Range", span(model.AttrFiftyTwoWeekLow, model.AttrFiftyTwoWeekHigh)},
	{"Volume", attr(model.AttrVolume)},
	{"Average Volume", attr(model.AttrAverageVolume)},
	{"P/E Ratio", attr(model.AttrTrailingPE)},
	{"Dividend Rate", attr(model.AttrDividendRate)},
	{"Dividend Yield", attr(model.AttrDividendYield)},
	{"Beta", attr(model.AttrBeta)},
}

// FormatSummary formats the summary of every ticker, in order.
func FormatSummary(infos []model.TickerInfo) string {
	var b strings.Builder
	b.WriteString("\nStock Summary:\n")
	for _, ti := range infos {
		b.WriteString(fmt.Sprintf("\nStock: %s\n", ti.Ticker))
		for _, f := range Fields {
			b.WriteString(fmt.Sprintf("%-*s %s\n", labelWidth, f.Label, f.Value(ti.Info)))
		}
	}
	b.WriteString("\n")
	return b.String()
}

// Console writes summaries to a console.
type Console struct {
	W io.Writer
}

// Report writes the summary of infos to the console.
func (c *Console) Report(infos []model.TickerInfo) error {
	_, err := io.WriteString(c.W, FormatSummary(infos))
	return err
}
