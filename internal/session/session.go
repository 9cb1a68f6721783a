// Package session drives one interactive comparison run: it collects
// symbols and a date range from the console, fetches data for every ticker,
// prints the summary and draws the comparison chart.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"StockCompare/internal/model"
	"StockCompare/internal/recorder"
)

// ErrInputClosed is returned when the console input ends mid-session.
var ErrInputClosed = errors.New("console input closed")

// State is a step of the session.
type State int

const (
	StateCollectSymbols State = iota
	StateCollectStartDate
	StateCollectEndDate
	StateFetch
	StateReport
	StateDone
)

func (s State) String() string {
	switch s {
	case StateCollectSymbols:
		return "CollectSymbols"
	case StateCollectStartDate:
		return "CollectStartDate"
	case StateCollectEndDate:
		return "CollectEndDate"
	case StateFetch:
		return "Fetch"
	case StateReport:
		return "Report/Plot"
	case StateDone:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// SymbolValidator reports whether the provider knows a ticker.
type SymbolValidator interface {
	IsValid(ctx context.Context, symbol model.Ticker) bool
}

// DataFetcher retrieves the series and info of one ticker.
type DataFetcher interface {
	Fetch(ctx context.Context, symbol model.Ticker, rng model.DateRange) (*model.PriceSeries, model.InstrumentInfo, error)
}

// Reporter renders the per-ticker summary.
type Reporter interface {
	Report(infos []model.TickerInfo) error
}

// Plotter renders the comparison chart.
type Plotter interface {
	Plot(series []*model.PriceSeries) error
}

// Session holds everything one run needs and produces.
type Session struct {
	Validator SymbolValidator
	Fetcher   DataFetcher
	Reporter  Reporter
	Plotter   Plotter
	Recorder  recorder.Recorder
	Logger    *zap.Logger
	// Now is the session clock; dates after Now's calendar day are rejected.
	Now func() time.Time
	// ChartPath is journaled with the run when the chart is drawn.
	ChartPath string

	in    *bufio.Scanner
	lines chan inputLine
	out   io.Writer

	state   State
	symbols []model.Ticker
	start   time.Time
	rng     model.DateRange
	result  model.RunResult
	dropped []model.Ticker
}

// New creates a Session reading answers from in and writing prompts and
// messages to out.
func New(in io.Reader, out io.Writer, v SymbolValidator, f DataFetcher, rep Reporter, plt Plotter) *Session {
	return &Session{
		Validator: v,
		Fetcher:   f,
		Reporter:  rep,
		Plotter:   plt,
		Recorder:  recorder.NewNoopRecorder(),
		Logger:    zap.NewNop(),
		Now:       time.Now,
		in:        bufio.NewScanner(in),
		out:       out,
	}
}

// State returns the current step.
func (s *Session) State() State { return s.state }

// Symbols returns the validated tickers.
func (s *Session) Symbols() []model.Ticker { return s.symbols }

// Range returns the accepted date range.
func (s *Session) Range() model.DateRange { return s.rng }

// Result returns the data collected so far.
func (s *Session) Result() *model.RunResult { return &s.result }

// Run executes the session until Done. It only fails when the console input
// ends, ctx is cancelled, or the summary or chart cannot be rendered.
func (s *Session) Run(ctx context.Context) error {
	for s.state != StateDone {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch s.state {
		case StateCollectSymbols:
			err = s.collectSymbols(ctx)
		case StateCollectStartDate:
			err = s.collectStartDate(ctx)
		case StateCollectEndDate:
			err = s.collectEndDate(ctx)
		case StateFetch:
			err = s.fetch(ctx)
		case StateReport:
			err = s.report()
		default:
			err = fmt.Errorf("unknown state %s", s.state)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type inputLine struct {
	text string
	err  error
}

// scan feeds console lines to s.lines until the input ends. It is started
// once, on the first prompt, and outlives a cancelled session.
func (s *Session) scan() {
	defer close(s.lines)
	for s.in.Scan() {
		s.lines <- inputLine{text: s.in.Text()}
	}
	if err := s.in.Err(); err != nil {
		s.lines <- inputLine{err: err}
	}
}

// prompt writes text and waits for the next line or for ctx to end.
func (s *Session) prompt(ctx context.Context, text string) (string, error) {
	fmt.Fprint(s.out, text)
	if s.lines == nil {
		s.lines = make(chan inputLine)
		go s.scan()
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-s.lines:
		if !ok {
			return "", ErrInputClosed
		}
		if l.err != nil {
			return "", fmt.Errorf("read input: %w", l.err)
		}
		return l.text, nil
	}
}

func (s *Session) say(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format+"\n", args...)
}

func (s *Session) transition(next State) {
	s.Logger.Debug("session transition", zap.Stringer("from", s.state), zap.Stringer("to", next))
	s.state = next
}

// collectSymbols accepts a list only when every entry validates in the same
// attempt.
func (s *Session) collectSymbols(ctx context.Context) error {
	line, err := s.prompt(ctx, "Enter stock symbols (comma-separated): ")
	if err != nil {
		return err
	}
	symbols := model.NormalizeSymbols(line)
	if len(symbols) == 0 {
		s.say("Please enter at least one stock symbol.")
		return nil
	}
	for _, sym := range symbols {
		if !s.Validator.IsValid(ctx, sym) {
			// a cancelled lookup says nothing about the symbol
			if err := ctx.Err(); err != nil {
				return err
			}
			if sym == "" {
				s.say("Invalid stock symbol: (empty). Please re-enter.")
			} else {
				s.say("Invalid stock symbol: %s. Please re-enter.", sym)
			}
			return nil
		}
	}
	s.symbols = symbols
	s.transition(StateCollectStartDate)
	return nil
}

func (s *Session) collectStartDate(ctx context.Context) error {
	line, err := s.prompt(ctx, "Enter start date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}
	start, err := model.ParseDate(strings.TrimSpace(line))
	if err != nil {
		s.Logger.Debug("bad start date", zap.Error(err))
		s.say("Invalid start date format. Please re-enter.")
		return nil
	}
	if start.After(model.Day(s.Now())) {
		s.say("Invalid input - start date %s cannot be in the future. Please re-enter.", start.Format(model.DateFormat))
		return nil
	}
	s.start = start
	s.transition(StateCollectEndDate)
	return nil
}

func (s *Session) collectEndDate(ctx context.Context) error {
	line, err := s.prompt(ctx, "Enter end date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}
	end, err := model.ParseDate(strings.TrimSpace(line))
	if err != nil {
		s.Logger.Debug("bad end date", zap.Error(err))
		s.say("Invalid end date format. Please re-enter.")
		return nil
	}
	rng, err := model.NewDateRange(s.start, end, s.Now())
	if err != nil {
		s.Logger.Debug("end date rejected", zap.Error(err))
		s.say("Invalid input - end date %s cannot be before the start date or in the future. Please re-enter.", end.Format(model.DateFormat))
		return nil
	}
	s.rng = rng
	s.transition(StateFetch)
	return nil
}

// fetch collects every ticker independently; failures and empty series are
// excluded from the result.
func (s *Session) fetch(ctx context.Context) error {
	for _, sym := range s.symbols {
		series, info, err := s.Fetcher.Fetch(ctx, sym, s.rng)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.Logger.Warn("fetch failed", zap.String("symbol", sym.String()), zap.Error(err))
			s.say("No data found for stock symbol: %s.", sym)
			s.dropped = append(s.dropped, sym)
			continue
		}
		if !s.result.Add(model.Entry{Ticker: sym, Series: series, Info: info}) {
			s.Logger.Warn("no bars in range", zap.String("symbol", sym.String()), zap.Stringer("range", s.rng))
			s.dropped = append(s.dropped, sym)
		}
	}
	s.transition(StateReport)
	return nil
}

func (s *Session) report() error {
	var firstErr error
	plotted := s.result.Len() > 0
	if plotted {
		if err := s.Reporter.Report(s.result.Infos()); err != nil {
			s.Logger.Error("render summary", zap.Error(err))
			firstErr = fmt.Errorf("render summary: %w", err)
		}
		if err := s.Plotter.Plot(s.result.Series()); err != nil {
			s.Logger.Error("render chart", zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("render chart: %w", err)
			}
			plotted = false
		}
	} else {
		s.say("No valid data found for any stock symbols. Exiting the program.")
	}
	s.record(plotted)
	s.transition(StateDone)
	return firstErr
}

func (s *Session) record(plotted bool) {
	evt := &recorder.RunEvent{
		At:      s.Now(),
		Symbols: tickerStrings(s.symbols),
		Start:   s.rng.Start,
		End:     s.rng.End,
		Plotted: tickerStrings(s.result.Tickers()),
		Dropped: tickerStrings(s.dropped),
	}
	if plotted {
		evt.ChartPath = s.ChartPath
	}
	if err := s.Recorder.RecordRun(evt); err != nil {
		s.Logger.Error("record run", zap.Error(err))
	}
}

func tickerStrings(ts []model.Ticker) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}
