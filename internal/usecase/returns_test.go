package usecase

import (
	"context"
	"math"
	"testing"
)

func TestGetReturns(t *testing.T) {
	store := &fakePriceStore{candles: testCandles(100, 110, 99)}
	uc := NewReturnsUseCase(store)

	rep, err := uc.GetReturns(context.Background(), GetReturnsParams{Symbol: "TEST", N: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rep.Daily) != 2 || len(rep.Cumulative) != 2 {
		t.Fatalf("expected 2 entries each, got %d/%d", len(rep.Daily), len(rep.Cumulative))
	}
	if math.Abs(float64(rep.Daily[0])-10) > 1e-9 {
		t.Fatalf("expected first daily return 10%%, got %.4f", float64(rep.Daily[0]))
	}
	if math.Abs(float64(rep.Cumulative[1])+0.01) > 1e-9 {
		t.Fatalf("expected final cumulative -1%%, got %.4f", float64(rep.Cumulative[1]))
	}
}

func TestGetReturnsShortHistory(t *testing.T) {
	store := &fakePriceStore{candles: testCandles(100)}
	uc := NewReturnsUseCase(store)
	if _, err := uc.GetReturns(context.Background(), GetReturnsParams{Symbol: "TEST"}); err == nil {
		t.Fatalf("expected error for single-candle history")
	}
}

func TestGetCorrelation(t *testing.T) {
	store := &fakePriceStore{candles: testCandles(100, 110, 121, 133.1)}
	uc := NewReturnsUseCase(store)

	rep, err := uc.GetCorrelation(context.Background(), GetCorrelationParams{Symbols: []string{"A", "B"}, N: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rep.Matrix) != 2 || len(rep.Matrix[0]) != 2 {
		t.Fatalf("expected 2x2 matrix, got %v", rep.Matrix)
	}
	if rep.Matrix[0][0] != 1 || rep.Matrix[1][1] != 1 {
		t.Fatalf("diagonal must be 1, got %v", rep.Matrix)
	}
}

func TestGetCorrelationNeedsTwoSymbols(t *testing.T) {
	uc := NewReturnsUseCase(&fakePriceStore{})
	if _, err := uc.GetCorrelation(context.Background(), GetCorrelationParams{Symbols: []string{"A"}}); err == nil {
		t.Fatalf("expected error for single symbol")
	}
}
