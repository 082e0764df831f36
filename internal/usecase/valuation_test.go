package usecase

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"StockSight/internal/domain/models"
	"StockSight/internal/services/valuation"
)

type fakeMarketData struct {
	fundamentals models.Fundamentals
	candles      []models.Candle
	err          error
}

func (f *fakeMarketData) DailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	return f.candles, f.err
}

func (f *fakeMarketData) Fundamentals(ctx context.Context, symbol string) (models.Fundamentals, error) {
	return f.fundamentals, f.err
}

type fakeNarrator struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeNarrator) Summarize(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

func solidFundamentals() models.Fundamentals {
	return models.Fundamentals{
		Symbol:            "MSFT",
		Revenue:           245e9,
		NetIncome:         88e9,
		OperatingCashFlow: 118e9,
		CapEx:             44e9,
		SharesOutstanding: 7.43e9,
		CurrentPrice:      425.5,
	}
}

func defaultParams() ValuationParams {
	return ValuationParams{
		Symbol:          "MSFT",
		GrowthRate:      0.05,
		DiscountRate:    0.10,
		TerminalGrowth:  0.02,
		ProjectionYears: 5,
		Narrative:       true,
	}
}

func TestValuateHappyPath(t *testing.T) {
	narrator := &fakeNarrator{text: "solid cash machine"}
	uc := NewValuationUseCase(&fakeMarketData{fundamentals: solidFundamentals()}, narrator, mustLogger(t))

	res, err := uc.Valuate(context.Background(), defaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FreeCashFlow != 74e9 || res.FCFFromFallback {
		t.Fatalf("expected FCF 74e9 from OCF-CapEx, got %.0f fallback=%v", res.FreeCashFlow, res.FCFFromFallback)
	}
	if len(res.CashFlows) != 5 {
		t.Fatalf("expected 5 projected years, got %d", len(res.CashFlows))
	}
	if res.EnterpriseValue <= 0 || math.IsNaN(float64(res.IntrinsicPerShare)) {
		t.Fatalf("expected positive valuation, got %+v", res)
	}
	if res.Narrative != "solid cash machine" || res.NarrativeError != "" {
		t.Fatalf("expected narrative attached, got %+v", res)
	}
	if len(narrator.prompts) != 1 || !strings.Contains(narrator.prompts[0], "MSFT") {
		t.Fatalf("prompt should reference the symbol: %v", narrator.prompts)
	}
}

func TestValuateNarrativeFailureIsIsolated(t *testing.T) {
	narrator := &fakeNarrator{err: errors.New("llm timeout")}
	uc := NewValuationUseCase(&fakeMarketData{fundamentals: solidFundamentals()}, narrator, mustLogger(t))

	res, err := uc.Valuate(context.Background(), defaultParams())
	if err != nil {
		t.Fatalf("narrator failure must not fail the valuation: %v", err)
	}
	if res.Narrative != "" {
		t.Fatalf("expected no narrative, got %q", res.Narrative)
	}
	if !strings.Contains(res.NarrativeError, "llm timeout") {
		t.Fatalf("expected narrative error recorded, got %q", res.NarrativeError)
	}
	if res.EnterpriseValue <= 0 {
		t.Fatalf("numeric result must survive, got %+v", res)
	}
}

func TestValuateNarrativeSkipped(t *testing.T) {
	narrator := &fakeNarrator{text: "should not be called"}
	uc := NewValuationUseCase(&fakeMarketData{fundamentals: solidFundamentals()}, narrator, mustLogger(t))

	p := defaultParams()
	p.Narrative = false
	res, err := uc.Valuate(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Narrative != "" || len(narrator.prompts) != 0 {
		t.Fatalf("narrator should not run when narrative is off")
	}
}

func TestValuateFallbackFCF(t *testing.T) {
	f := solidFundamentals()
	f.OperatingCashFlow = math.NaN()
	f.CapEx = math.NaN()
	uc := NewValuationUseCase(&fakeMarketData{fundamentals: f}, nil, mustLogger(t))

	p := defaultParams()
	p.Narrative = false
	res, err := uc.Valuate(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FreeCashFlow != 88e9 || !res.FCFFromFallback {
		t.Fatalf("expected net income fallback, got %.0f fallback=%v", res.FreeCashFlow, res.FCFFromFallback)
	}
}

func TestValuateDegenerateAssumptions(t *testing.T) {
	uc := NewValuationUseCase(&fakeMarketData{fundamentals: solidFundamentals()}, nil, mustLogger(t))

	p := defaultParams()
	p.TerminalGrowth = p.DiscountRate
	if _, err := uc.Valuate(context.Background(), p); !errors.Is(err, valuation.ErrDegenerateTerminal) {
		t.Fatalf("expected ErrDegenerateTerminal, got %v", err)
	}

	p = defaultParams()
	p.ProjectionYears = 0
	if _, err := uc.Valuate(context.Background(), p); !errors.Is(err, valuation.ErrInvalidHorizon) {
		t.Fatalf("expected ErrInvalidHorizon, got %v", err)
	}
}

func TestValuateUpstreamFailure(t *testing.T) {
	uc := NewValuationUseCase(&fakeMarketData{err: errors.New("upstream 502")}, nil, mustLogger(t))
	if _, err := uc.Valuate(context.Background(), defaultParams()); err == nil {
		t.Fatalf("expected upstream error to propagate")
	}
}
