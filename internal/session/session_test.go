package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"StockCompare/internal/collector"
	"StockCompare/internal/model"
	"StockCompare/internal/recorder"
)

// fixedNow is 2023-06-15 in local time.
var fixedNow = time.Date(2023, 6, 15, 12, 0, 0, 0, time.Local)

// trace records reporter and plotter calls in execution order.
type trace struct {
	calls   []string
	infos   []model.TickerInfo
	series  []*model.PriceSeries
	plotErr error
}

func (tr *trace) Report(infos []model.TickerInfo) error {
	tr.calls = append(tr.calls, "report")
	tr.infos = infos
	return nil
}

func (tr *trace) Plot(series []*model.PriceSeries) error {
	tr.calls = append(tr.calls, "plot")
	tr.series = series
	return tr.plotErr
}

type memRecorder struct{ events []*recorder.RunEvent }

func (m *memRecorder) RecordRun(evt *recorder.RunEvent) error {
	m.events = append(m.events, evt)
	return nil
}
func (m *memRecorder) Close() error { return nil }

type harness struct {
	sess  *Session
	mock  *collector.MockFetcher
	trace *trace
	rec   *memRecorder
	out   *bytes.Buffer
}

func newHarness(mock *collector.MockFetcher, lines ...string) *harness {
	h := &harness{mock: mock, trace: &trace{}, rec: &memRecorder{}, out: &bytes.Buffer{}}
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	h.sess = New(in, h.out,
		collector.NewSymbolValidator(mock, nil),
		collector.NewCollector(mock, nil),
		h.trace, h.trace)
	h.sess.Recorder = h.rec
	h.sess.ChartPath = "cmp.png"
	h.sess.Now = func() time.Time { return fixedNow }
	return h
}

func (h *harness) plottedTickers() []string {
	var out []string
	for _, s := range h.trace.series {
		out = append(out, s.Symbol.String())
	}
	return out
}

func TestRun_TwoSymbols(t *testing.T) {
	h := newHarness(&collector.MockFetcher{}, "aapl, msft", "2023-01-01", "2023-01-10")
	if err := h.sess.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.sess.State() != StateDone {
		t.Errorf("expected Done, got %s", h.sess.State())
	}
	if got := strings.Join(h.trace.calls, ","); got != "report,plot" {
		t.Errorf("expected summary before chart, got %s", got)
	}
	if got := strings.Join(h.plottedTickers(), ","); got != "AAPL,MSFT" {
		t.Errorf("expected AAPL,MSFT series, got %s", got)
	}
	if len(h.trace.infos) != 2 || h.trace.infos[0].Ticker != "AAPL" || h.trace.infos[1].Ticker != "MSFT" {
		t.Errorf("unexpected infos: %+v", h.trace.infos)
	}
	rng := h.sess.Range()
	if rng.Start.Format(model.DateFormat) != "2023-01-01" || rng.End.Format(model.DateFormat) != "2023-01-10" {
		t.Errorf("unexpected range %s", rng)
	}
	want := []string{"recent:AAPL", "recent:MSFT", "history:AAPL", "history:MSFT"}
	if strings.Join(h.mock.Calls, " ") != strings.Join(want, " ") {
		t.Errorf("expected provider calls %v, got %v", want, h.mock.Calls)
	}
	if len(h.rec.events) != 1 || h.rec.events[0].ChartPath != "cmp.png" {
		t.Errorf("expected one journaled run with chart path, got %+v", h.rec.events)
	}
}

func TestRun_InvalidSymbolRestartsWholeList(t *testing.T) {
	mock := &collector.MockFetcher{Unknown: map[string]bool{"ZZZZZ": true}}
	h := newHarness(mock, "AAPL,ZZZZZ", "MSFT", "2023-01-01", "2023-01-10")
	if err := h.sess.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := h.out.String()
	if !strings.Contains(out, "Invalid stock symbol: ZZZZZ. Please re-enter.") {
		t.Errorf("expected invalid symbol message, got:\n%s", out)
	}
	if n := strings.Count(out, "Enter stock symbols"); n != 2 {
		t.Errorf("expected the symbol prompt twice, got %d", n)
	}
	syms := h.sess.Symbols()
	if len(syms) != 1 || syms[0] != "MSFT" {
		t.Errorf("AAPL from the failed attempt must not be retained, got %v", syms)
	}
	if got := strings.Join(h.plottedTickers(), ","); got != "MSFT" {
		t.Errorf("expected only MSFT plotted, got %s", got)
	}
}

func TestRun_InvalidSymbolDoesNotAdvance(t *testing.T) {
	mock := &collector.MockFetcher{Unknown: map[string]bool{"ZZZZZ": true}}
	h := newHarness(mock, "ZZZZZ")
	err := h.sess.Run(context.Background())
	if !errors.Is(err, ErrInputClosed) {
		t.Fatalf("expected ErrInputClosed, got %v", err)
	}
	if h.sess.State() != StateCollectSymbols {
		t.Errorf("expected to stay in CollectSymbols, got %s", h.sess.State())
	}
	if strings.Contains(h.out.String(), "Enter start date") {
		t.Error("start date must not be prompted")
	}
}

func TestRun_EmptySymbolInput(t *testing.T) {
	h := newHarness(&collector.MockFetcher{}, "", " , ", "AAPL,,MSFT", "AAPL", "2023-01-01", "2023-01-10")
	if err := h.sess.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := h.out.String()
	if n := strings.Count(out, "Please enter at least one stock symbol."); n != 2 {
		t.Errorf("expected two empty-list messages, got %d:\n%s", n, out)
	}
	if !strings.Contains(out, "Invalid stock symbol: (empty). Please re-enter.") {
		t.Errorf("expected blank entry to be rejected:\n%s", out)
	}
	for _, c := range h.mock.Calls {
		if c == "recent:" {
			t.Error("blank entry must not reach the provider")
		}
	}
}

func TestRun_StartDateValidation(t *testing.T) {
	h := newHarness(&collector.MockFetcher{}, "AAPL", "2023/01/01", "2023-06-16", "2023-06-15", "2023-06-15")
	if err := h.sess.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := h.out.String()
	if !strings.Contains(out, "Invalid start date format. Please re-enter.") {
		t.Error("expected format message")
	}
	if !strings.Contains(out, "start date 2023-06-16 cannot be in the future") {
		t.Errorf("expected future message naming the date:\n%s", out)
	}
	if n := strings.Count(out, "Enter start date"); n != 3 {
		t.Errorf("expected three start date prompts, got %d", n)
	}
	if got := h.sess.Range().Start.Format(model.DateFormat); got != "2023-06-15" {
		t.Errorf("today must be accepted as start, got %s", got)
	}
}

func TestRun_EndDateValidation(t *testing.T) {
	h := newHarness(&collector.MockFetcher{},
		"AAPL", "2023-03-01",
		"tomorrow", "2023-02-28", "2023-06-16", "2023-03-01")
	if err := h.sess.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := h.out.String()
	if !strings.Contains(out, "Invalid end date format. Please re-enter.") {
		t.Error("expected format message")
	}
	if !strings.Contains(out, "end date 2023-02-28 cannot be before the start date or in the future") {
		t.Errorf("expected before-start message:\n%s", out)
	}
	if !strings.Contains(out, "end date 2023-06-16 cannot be before the start date or in the future") {
		t.Errorf("expected future message:\n%s", out)
	}
	if n := strings.Count(out, "Enter end date"); n != 4 {
		t.Errorf("expected four end date prompts, got %d", n)
	}
	rng := h.sess.Range()
	if !rng.Start.Equal(rng.End) {
		t.Errorf("start == end must be accepted, got %s", rng)
	}
}

func TestRun_ExcludedTickersNeverReported(t *testing.T) {
	mock := &collector.MockFetcher{
		Empty:   map[string]bool{"EMPTY": true},
		Failing: map[string]error{"FAIL": errors.New("provider down")},
	}
	h := newHarness(mock, "AAPL,EMPTY,FAIL,MSFT", "2023-01-01", "2023-01-10")
	if err := h.sess.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(h.plottedTickers(), ","); got != "AAPL,MSFT" {
		t.Errorf("expected AAPL,MSFT plotted, got %s", got)
	}
	for _, ti := range h.trace.infos {
		if ti.Ticker == "EMPTY" || ti.Ticker == "FAIL" {
			t.Errorf("excluded ticker %s reached the reporter", ti.Ticker)
		}
	}
	out := h.out.String()
	if !strings.Contains(out, "No data found for stock symbol: FAIL.") {
		t.Errorf("expected message naming the failed ticker:\n%s", out)
	}
	if strings.Contains(out, "EMPTY") {
		t.Errorf("empty series should be dropped silently:\n%s", out)
	}
	evt := h.rec.events[0]
	if strings.Join(evt.Dropped, ",") != "EMPTY,FAIL" {
		t.Errorf("expected dropped EMPTY,FAIL, got %v", evt.Dropped)
	}
}

func TestRun_NoDataAnywhere(t *testing.T) {
	mock := &collector.MockFetcher{Empty: map[string]bool{"AAPL": true, "MSFT": true}}
	h := newHarness(mock, "AAPL,MSFT", "2023-01-01", "2023-01-10")
	if err := h.sess.Run(context.Background()); err != nil {
		t.Fatalf("total data absence is not an error: %v", err)
	}
	if len(h.trace.calls) != 0 {
		t.Errorf("neither reporter nor plotter should run, got %v", h.trace.calls)
	}
	if !strings.Contains(h.out.String(), "No valid data found for any stock symbols. Exiting the program.") {
		t.Errorf("expected terminal message:\n%s", h.out.String())
	}
	if h.sess.State() != StateDone {
		t.Errorf("expected Done, got %s", h.sess.State())
	}
	if h.rec.events[0].ChartPath != "" {
		t.Error("no chart path should be journaled without a chart")
	}
}

func TestRun_DuplicateTickerCollapses(t *testing.T) {
	mock := &collector.MockFetcher{}
	h := newHarness(mock, "AAPL,MSFT,aapl", "2023-01-01", "2023-01-10")
	if err := h.sess.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(h.plottedTickers(), ","); got != "AAPL,MSFT" {
		t.Errorf("expected AAPL,MSFT, got %s", got)
	}
	history := 0
	for _, c := range mock.Calls {
		if c == "history:AAPL" {
			history++
		}
	}
	if history != 2 {
		t.Errorf("each occurrence is fetched, expected 2 AAPL history calls, got %d", history)
	}
}

func TestRun_PlotFailureIsReturned(t *testing.T) {
	h := newHarness(&collector.MockFetcher{}, "AAPL", "2023-01-01", "2023-01-10")
	h.trace.plotErr = errors.New("disk full")
	err := h.sess.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected chart error, got %v", err)
	}
	if h.rec.events[0].ChartPath != "" {
		t.Error("failed chart must not be journaled")
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := newHarness(&collector.MockFetcher{}, "AAPL", "2023-01-01", "2023-01-10")
	if err := h.sess.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(h.mock.Calls) != 0 {
		t.Errorf("no provider calls expected, got %v", h.mock.Calls)
	}
}

func TestRun_CancelWhileWaitingForInput(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	mock := &collector.MockFetcher{}
	out := &bytes.Buffer{}
	sess := New(pr, out, collector.NewSymbolValidator(mock, nil), collector.NewCollector(mock, nil), &trace{}, &trace{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run still blocked on input after cancel")
	}
	if sess.State() != StateCollectSymbols {
		t.Errorf("expected to stop in CollectSymbols, got %s", sess.State())
	}
	if len(mock.Calls) != 0 {
		t.Errorf("no provider calls expected, got %v", mock.Calls)
	}
}

// cancelingValidator cancels the session context mid-lookup, like an
// interrupt arriving while the provider is queried.
type cancelingValidator struct{ cancel context.CancelFunc }

func (v cancelingValidator) IsValid(ctx context.Context, _ model.Ticker) bool {
	v.cancel()
	return false
}

func TestRun_CancelDuringValidationIsNotReportedInvalid(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newHarness(&collector.MockFetcher{}, "AAPL")
	h.sess.Validator = cancelingValidator{cancel: cancel}

	if err := h.sess.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if strings.Contains(h.out.String(), "Invalid stock symbol") {
		t.Errorf("cancelled lookup must not be reported as invalid:\n%s", h.out.String())
	}
	if h.sess.State() != StateCollectSymbols {
		t.Errorf("expected to stay in CollectSymbols, got %s", h.sess.State())
	}
}

func TestRun_EmptyRangeLoggedAtWarn(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	mock := &collector.MockFetcher{Empty: map[string]bool{"EMPTY": true}}
	h := newHarness(mock, "AAPL,EMPTY", "2023-01-02", "2023-01-06")
	h.sess.Logger = zap.New(core)

	if err := h.sess.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := logs.FilterMessage("no bars in range").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning for EMPTY, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["symbol"]; got != "EMPTY" {
		t.Errorf("expected warning to name EMPTY, got %v", got)
	}
	if strings.Contains(h.out.String(), "EMPTY") {
		t.Errorf("console must stay silent about EMPTY:\n%s", h.out.String())
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateCollectSymbols:   "CollectSymbols",
		StateCollectStartDate: "CollectStartDate",
		StateCollectEndDate:   "CollectEndDate",
		StateFetch:            "Fetch",
		StateReport:           "Report/Plot",
		StateDone:             "Done",
		State(42):             "State(42)",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("expected %q, got %q", want, s.String())
		}
	}
}
