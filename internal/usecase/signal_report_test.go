package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"StockSight/internal/domain/models"
	apimetrics "StockSight/internal/service/metrics"
	"StockSight/internal/services/signals"
	"StockSight/pkg/logger"
)

type fakePriceStore struct {
	candles []models.Candle
	err     error
}

func (f *fakePriceStore) GetCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	return f.candles, f.err
}

func (f *fakePriceStore) GetLatestNCandles(ctx context.Context, symbol string, n int) ([]models.Candle, error) {
	if f.err != nil {
		return nil, f.err
	}
	if n < len(f.candles) {
		return f.candles[len(f.candles)-n:], nil
	}
	return f.candles, nil
}

func (f *fakePriceStore) StoreBatch(ctx context.Context, candles []models.Candle) error {
	return nil
}

type fakeAlertSink struct {
	events []models.AlertEvent
	err    error
}

func (f *fakeAlertSink) PublishAlert(ctx context.Context, ev models.AlertEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeAlertSink) Close() error { return nil }

func mustLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func testCandles(closes ...float64) []models.Candle {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{Bucket: base.AddDate(0, 0, i), Symbol: "TEST", Close: c, Volume: 1}
	}
	return out
}

func TestGetSignalsPublishesLastBarAlert(t *testing.T) {
	// Short MA overtakes the long MA exactly on the final bar.
	store := &fakePriceStore{candles: testCandles(10, 11, 9, 12, 14)}
	sink := &fakeAlertSink{}
	uc := NewSignalReportUseCase(store, sink, mustLogger(t))

	published := testutil.ToFloat64(apimetrics.AlertsPublished.WithLabelValues(string(models.BuyCrossing), "ok"))

	rep, err := uc.GetSignals(context.Background(), GetSignalsParams{Symbol: "TEST", Short: 2, Long: 3, N: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rep.Candles) != 5 || rep.Candles[4].Close != 14 {
		t.Fatalf("report must carry the candle series, got %d candles", len(rep.Candles))
	}
	if !rep.Alert.Active {
		t.Fatalf("expected active alert, got %+v", rep.Alert)
	}
	if rep.Recommendation.Action != models.ActionBuy {
		t.Fatalf("expected buy recommendation, got %s", rep.Recommendation.Action)
	}
	if len(sink.events) != 1 {
		t.Fatalf("expected 1 published alert, got %d", len(sink.events))
	}
	ev := sink.events[0]
	if ev.Symbol != "TEST" || ev.Type != models.BuyCrossing || ev.ShortWindow != 2 || ev.LongWindow != 3 {
		t.Fatalf("unexpected alert event: %+v", ev)
	}
	after := testutil.ToFloat64(apimetrics.AlertsPublished.WithLabelValues(string(models.BuyCrossing), "ok"))
	if after != published+1 {
		t.Fatalf("expected published counter to advance by 1, got %v -> %v", published, after)
	}
}

func TestGetSignalsNoAlertForOldCrossing(t *testing.T) {
	// The buy crossing happens one bar before the end; the
	// recommendation stands but nothing is published.
	store := &fakePriceStore{candles: testCandles(10, 11, 9, 12, 14, 14)}
	sink := &fakeAlertSink{}
	uc := NewSignalReportUseCase(store, sink, mustLogger(t))

	rep, err := uc.GetSignals(context.Background(), GetSignalsParams{Symbol: "TEST", Short: 2, Long: 3, N: 6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Alert.Active {
		t.Fatalf("expected inactive alert, got %+v", rep.Alert)
	}
	if rep.Recommendation.Action != models.ActionBuy {
		t.Fatalf("standing recommendation should remain buy, got %s", rep.Recommendation.Action)
	}
	if len(sink.events) != 0 {
		t.Fatalf("expected no published alerts, got %d", len(sink.events))
	}
}

func TestGetSignalsAlertPublishFailureIsNotFatal(t *testing.T) {
	store := &fakePriceStore{candles: testCandles(10, 11, 9, 12, 14)}
	sink := &fakeAlertSink{err: errors.New("broker down")}
	uc := NewSignalReportUseCase(store, sink, mustLogger(t))

	rep, err := uc.GetSignals(context.Background(), GetSignalsParams{Symbol: "TEST", Short: 2, Long: 3, N: 5})
	if err != nil {
		t.Fatalf("publish failure must not fail the report: %v", err)
	}
	if !rep.Alert.Active {
		t.Fatalf("alert state should still be reported")
	}
}

func TestGetSignalsWindowErrors(t *testing.T) {
	store := &fakePriceStore{candles: testCandles(10, 11, 9)}
	uc := NewSignalReportUseCase(store, nil, mustLogger(t))

	_, err := uc.GetSignals(context.Background(), GetSignalsParams{Symbol: "TEST", Short: 5, Long: 3, N: 3})
	if !errors.Is(err, signals.ErrInvalidWindowOrder) {
		t.Fatalf("expected ErrInvalidWindowOrder, got %v", err)
	}

	_, err = uc.GetSignals(context.Background(), GetSignalsParams{Symbol: "TEST", Short: 2, Long: 10, N: 3})
	if !errors.Is(err, signals.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow for short history, got %v", err)
	}
}

func TestGetSignalsRequiresSymbol(t *testing.T) {
	uc := NewSignalReportUseCase(&fakePriceStore{}, nil, mustLogger(t))
	if _, err := uc.GetSignals(context.Background(), GetSignalsParams{}); err == nil {
		t.Fatalf("expected error for missing symbol")
	}
}
