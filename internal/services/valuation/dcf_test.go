package valuation

import (
	"errors"
	"math"
	"testing"

	"StockSight/internal/domain/models"
)

func TestProjectSingleYear(t *testing.T) {
	a := Assumptions{
		GrowthRate:         0.10,
		DiscountRate:       0.10,
		TerminalGrowthRate: 0.02,
		ProjectionYears:    1,
	}
	p, err := Project(100, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.CashFlows) != 1 {
		t.Fatalf("expected 1 projected year, got %d", len(p.CashFlows))
	}
	// 100 grows to 110, discounted by 1.1 back to 100.
	cf := p.CashFlows[0]
	if math.Abs(cf.FCF-110) > 1e-9 || math.Abs(cf.Discounted-100) > 1e-9 {
		t.Fatalf("year 1: expected fcf 110 discounted 100, got %+v", cf)
	}
	// Terminal: 110*1.02/0.08 = 1402.5, discounted by 1.1 = 1275.
	if math.Abs(p.TerminalValue-1275) > 1e-6 {
		t.Fatalf("expected terminal value 1275, got %.6f", p.TerminalValue)
	}
	if math.Abs(p.EnterpriseValue-1375) > 1e-6 {
		t.Fatalf("expected enterprise value 1375, got %.6f", p.EnterpriseValue)
	}
}

func TestProjectGrowthBeforeDiscount(t *testing.T) {
	a := Assumptions{
		GrowthRate:         0.05,
		DiscountRate:       0.10,
		TerminalGrowthRate: 0.02,
		ProjectionYears:    3,
	}
	p, err := Project(1000, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, cf := range p.CashFlows {
		t1 := float64(i + 1)
		wantFCF := 1000 * math.Pow(1.05, t1)
		wantDisc := wantFCF / math.Pow(1.10, t1)
		if math.Abs(cf.FCF-wantFCF) > 1e-6 {
			t.Fatalf("year %d: expected fcf %.6f, got %.6f", cf.Year, wantFCF, cf.FCF)
		}
		if math.Abs(cf.Discounted-wantDisc) > 1e-6 {
			t.Fatalf("year %d: expected discounted %.6f, got %.6f", cf.Year, wantDisc, cf.Discounted)
		}
	}
}

func TestProjectInvalidAssumptions(t *testing.T) {
	base := Assumptions{
		GrowthRate:         0.05,
		DiscountRate:       0.10,
		TerminalGrowthRate: 0.02,
		ProjectionYears:    5,
	}

	a := base
	a.ProjectionYears = 0
	if _, err := Project(100, a); !errors.Is(err, ErrInvalidHorizon) {
		t.Fatalf("expected ErrInvalidHorizon, got %v", err)
	}

	a = base
	a.TerminalGrowthRate = a.DiscountRate
	if _, err := Project(100, a); !errors.Is(err, ErrDegenerateTerminal) {
		t.Fatalf("expected ErrDegenerateTerminal, got %v", err)
	}
}

func TestPerShareAndUpside(t *testing.T) {
	if v := PerShare(1000, 100); math.Abs(v-10) > 1e-9 {
		t.Fatalf("expected 10 per share, got %.4f", v)
	}
	if v := PerShare(1000, 0); !math.IsNaN(v) {
		t.Fatalf("zero shares should yield NaN, got %.4f", v)
	}
	if v := Upside(12, 10); math.Abs(v-20) > 1e-9 {
		t.Fatalf("expected 20%% upside, got %.4f", v)
	}
	if v := Upside(12, math.NaN()); !math.IsNaN(v) {
		t.Fatalf("missing market price should yield NaN, got %.4f", v)
	}
}

func TestDeriveFreeCashFlow(t *testing.T) {
	nan := math.NaN()

	f := models.Fundamentals{OperatingCashFlow: 500, CapEx: 120, NetIncome: 300}
	fcf, fallback := DeriveFreeCashFlow(f)
	if fcf != 380 || fallback {
		t.Fatalf("expected OCF-CapEx 380 without fallback, got %.2f fallback=%v", fcf, fallback)
	}

	f = models.Fundamentals{OperatingCashFlow: nan, CapEx: nan, NetIncome: 300}
	fcf, fallback = DeriveFreeCashFlow(f)
	if fcf != 300 || !fallback {
		t.Fatalf("expected net income fallback 300, got %.2f fallback=%v", fcf, fallback)
	}

	f = models.Fundamentals{OperatingCashFlow: nan, CapEx: nan, NetIncome: nan}
	fcf, fallback = DeriveFreeCashFlow(f)
	if fcf != defaultFreeCashFlow || !fallback {
		t.Fatalf("expected default fcf, got %.2f fallback=%v", fcf, fallback)
	}

	// CapEx alone missing also falls through to net income.
	f = models.Fundamentals{OperatingCashFlow: 500, CapEx: nan, NetIncome: 300}
	fcf, fallback = DeriveFreeCashFlow(f)
	if fcf != 300 || !fallback {
		t.Fatalf("partial cash-flow data should fall back, got %.2f fallback=%v", fcf, fallback)
	}
}
