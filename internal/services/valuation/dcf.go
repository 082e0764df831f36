package valuation

import (
	"errors"
	"fmt"
	"math"

	"StockSight/internal/domain/models"
)

var (
	ErrInvalidHorizon     = errors.New("projection horizon must be at least one year")
	ErrDegenerateTerminal = errors.New("discount rate equals terminal growth rate")
)

// Assumptions drive a discounted-cash-flow projection. Rates are
// fractions (0.05 == 5%).
type Assumptions struct {
	GrowthRate         float64
	DiscountRate       float64
	TerminalGrowthRate float64
	ProjectionYears    int
}

func (a Assumptions) Validate() error {
	if a.ProjectionYears < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidHorizon, a.ProjectionYears)
	}
	if a.DiscountRate == a.TerminalGrowthRate {
		return fmt.Errorf("%w: %.4f", ErrDegenerateTerminal, a.DiscountRate)
	}
	return nil
}

// Projection is the numeric core of a valuation: per-year projected
// and discounted cash flows, the discounted terminal value, and their
// sum.
type Projection struct {
	CashFlows       []models.YearlyCashFlow
	TerminalValue   float64
	EnterpriseValue float64
}

// Project grows freeCashFlow year by year and discounts each flow
// back to present value. Year t's flow is FCF*(1+g)^t discounted by
// (1+r)^t; growth is applied before discounting. The terminal value
// is a perpetuity on the final projected flow, discounted from year N.
func Project(freeCashFlow float64, a Assumptions) (Projection, error) {
	if err := a.Validate(); err != nil {
		return Projection{}, err
	}

	flows := make([]models.YearlyCashFlow, a.ProjectionYears)
	fcf := freeCashFlow
	sum := 0.0
	for t := 1; t <= a.ProjectionYears; t++ {
		fcf *= 1 + a.GrowthRate
		discounted := fcf / math.Pow(1+a.DiscountRate, float64(t))
		flows[t-1] = models.YearlyCashFlow{Year: t, FCF: fcf, Discounted: discounted}
		sum += discounted
	}

	terminal := fcf * (1 + a.TerminalGrowthRate) / (a.DiscountRate - a.TerminalGrowthRate)
	terminal /= math.Pow(1+a.DiscountRate, float64(a.ProjectionYears))

	return Projection{
		CashFlows:       flows,
		TerminalValue:   terminal,
		EnterpriseValue: sum + terminal,
	}, nil
}

// PerShare divides enterprise value across shares outstanding. A
// missing or non-positive share count yields NaN rather than an
// error; the caller reports it as unavailable.
func PerShare(enterpriseValue, sharesOutstanding float64) float64 {
	if sharesOutstanding <= 0 || math.IsNaN(sharesOutstanding) {
		return math.NaN()
	}
	return enterpriseValue / sharesOutstanding
}

// Upside is the percent gap between intrinsic and market price.
func Upside(intrinsic, marketPrice float64) float64 {
	if marketPrice <= 0 || math.IsNaN(marketPrice) || math.IsNaN(intrinsic) {
		return math.NaN()
	}
	return (intrinsic - marketPrice) / marketPrice * 100
}

// defaultFreeCashFlow stands in when a company reports neither cash
// flow figures nor net income.
const defaultFreeCashFlow = 1e9

// DeriveFreeCashFlow picks a base FCF from reported fundamentals:
// operating cash flow minus capex when both are present, net income
// as a fallback, then a flat default. The bool reports whether a
// fallback was used.
func DeriveFreeCashFlow(f models.Fundamentals) (float64, bool) {
	if !math.IsNaN(f.OperatingCashFlow) && !math.IsNaN(f.CapEx) {
		return f.OperatingCashFlow - f.CapEx, false
	}
	if !math.IsNaN(f.NetIncome) {
		return f.NetIncome, true
	}
	return defaultFreeCashFlow, true
}
