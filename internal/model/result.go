package model

// Entry is the data collected for one ticker during a run.
type Entry struct {
	Ticker Ticker
	Series *PriceSeries
	Info   InstrumentInfo
}

// TickerInfo pairs a ticker with its descriptive attributes.
type TickerInfo struct {
	Ticker Ticker
	Info   InstrumentInfo
}

// RunResult aggregates the entries of one session in first-insertion order.
// Only tickers with a non-empty series are ever added.
type RunResult struct {
	entries []Entry
	index   map[Ticker]int
}

// Add records the entry and reports whether it was kept. Entries with an
// empty series are refused. A repeated ticker replaces the earlier entry in
// place.
func (r *RunResult) Add(e Entry) bool {
	if e.Series.Empty() {
		return false
	}
	if e.Info == nil {
		e.Info = InstrumentInfo{}
	}
	if r.index == nil {
		r.index = make(map[Ticker]int)
	}
	if i, ok := r.index[e.Ticker]; ok {
		r.entries[i] = e
		return true
	}
	r.index[e.Ticker] = len(r.entries)
	r.entries = append(r.entries, e)
	return true
}

// Len returns the number of tickers held.
func (r *RunResult) Len() int { return len(r.entries) }

// Tickers returns the held tickers in order.
func (r *RunResult) Tickers() []Ticker {
	out := make([]Ticker, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Ticker
	}
	return out
}

// Infos returns the info aggregate in order.
func (r *RunResult) Infos() []TickerInfo {
	out := make([]TickerInfo, len(r.entries))
	for i, e := range r.entries {
		out[i] = TickerInfo{Ticker: e.Ticker, Info: e.Info}
	}
	return out
}

// Series returns the series aggregate in order.
func (r *RunResult) Series() []*PriceSeries {
	out := make([]*PriceSeries, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Series
	}
	return out
}
