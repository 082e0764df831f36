package yahoo

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"StockSight/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestDailyCandles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/AAPL" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("interval"); got != "1d" {
			t.Fatalf("expected interval 1d, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"chart":{"result":[{
			"timestamp":[1704153600,1704240000,1704326400],
			"indicators":{"quote":[{
				"open":[184.2,183.9,null],
				"high":[186.0,185.1,null],
				"low":[183.0,182.7,null],
				"close":[185.6,184.2,null],
				"volume":[52000000,47000000,null]
			}]}
		}],"error":null}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, testLogger(t))
	candles, err := c.DailyCandles(context.Background(), "AAPL", time.Unix(1704067200, 0), time.Unix(1704412800, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The null bar is skipped.
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	if candles[0].Close != 185.6 || candles[0].Symbol != "AAPL" {
		t.Fatalf("unexpected first candle: %+v", candles[0])
	}
	if !candles[0].Bucket.Before(candles[1].Bucket) {
		t.Fatalf("candles must ascend by time")
	}
}

func TestDailyCandlesEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, testLogger(t))
	candles, err := c.DailyCandles(context.Background(), "NODATA", time.Now().AddDate(0, -1, 0), time.Now())
	if err != nil {
		t.Fatalf("empty result should not error: %v", err)
	}
	if len(candles) != 0 {
		t.Fatalf("expected empty series, got %d candles", len(candles))
	}
}

func TestDailyCandlesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, testLogger(t))
	if _, err := c.DailyCandles(context.Background(), "BOGUS", time.Now().AddDate(0, -1, 0), time.Now()); err == nil {
		t.Fatalf("expected upstream error")
	}
}

func TestFundamentals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v10/finance/quoteSummary/MSFT" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"quoteSummary":{"result":[{
			"financialData":{
				"totalRevenue":{"raw":245000000000},
				"operatingCashflow":{"raw":118000000000},
				"currentPrice":{"raw":425.5}
			},
			"defaultKeyStatistics":{
				"netIncomeToCommon":{"raw":88000000000},
				"sharesOutstanding":{"raw":7430000000}
			},
			"cashflowStatementHistory":{"cashflowStatements":[
				{"capitalExpenditures":{"raw":-44000000000}}
			]}
		}],"error":null}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, testLogger(t))
	f, err := c.Fundamentals(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.OperatingCashFlow != 118000000000 {
		t.Fatalf("unexpected OCF: %.0f", f.OperatingCashFlow)
	}
	// Capex outflow is normalized to a positive magnitude.
	if f.CapEx != 44000000000 {
		t.Fatalf("unexpected capex: %.0f", f.CapEx)
	}
	if f.CurrentPrice != 425.5 || f.SharesOutstanding != 7430000000 {
		t.Fatalf("unexpected fundamentals: %+v", f)
	}
}

func TestFundamentalsMissingModules(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":[{"financialData":{"currentPrice":{"raw":10}}}],"error":null}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, testLogger(t))
	f, err := c.Fundamentals(context.Background(), "TINY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(f.OperatingCashFlow) || !math.IsNaN(f.NetIncome) || !math.IsNaN(f.CapEx) {
		t.Fatalf("missing figures must be NaN: %+v", f)
	}
	if f.CurrentPrice != 10 {
		t.Fatalf("present figure lost: %+v", f)
	}
}
