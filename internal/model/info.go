package model

import (
	"github.com/guregu/null/v5"
)

// NotAvailable is rendered for every absent attribute.
const NotAvailable = "N/A"

// Attribute names a descriptive field reported by the market-data provider.
type Attribute string

const (
	AttrSymbol           Attribute = "symbol"
	AttrLongName         Attribute = "longName"
	AttrSector           Attribute = "sector"
	AttrIndustry         Attribute = "industry"
	AttrMarketCap        Attribute = "marketCap"
	AttrPreviousClose    Attribute = "previousClose"
	AttrOpen             Attribute = "open"
	AttrDayLow           Attribute = "dayLow"
	AttrDayHigh          Attribute = "dayHigh"
	AttrFiftyTwoWeekLow  Attribute = "fiftyTwoWeekLow"
	AttrFiftyTwoWeekHigh Attribute = "fiftyTwoWeekHigh"
	AttrVolume           Attribute = "volume"
	AttrAverageVolume    Attribute = "averageVolume"
	AttrTrailingPE       Attribute = "trailingPE"
	AttrDividendRate     Attribute = "dividendRate"
	AttrDividendYield    Attribute = "dividendYield"
	AttrBeta             Attribute = "beta"
)

// InstrumentInfo maps attributes to provider values. Values are kept as the
// provider's textual representation; an invalid null.String means absent.
type InstrumentInfo map[Attribute]null.String

// Set stores v under a. Empty strings are stored as absent.
func (i InstrumentInfo) Set(a Attribute, v string) {
	i[a] = null.NewString(v, v != "")
}

// Value returns the attribute's text, or NotAvailable when it is absent.
func (i InstrumentInfo) Value(a Attribute) string {
	v, ok := i[a]
	if !ok || !v.Valid {
		return NotAvailable
	}
	return v.String
}

// Merge copies every present attribute of other into i.
func (i InstrumentInfo) Merge(other InstrumentInfo) {
	for a, v := range other {
		if v.Valid {
			i[a] = v
		}
	}
}
