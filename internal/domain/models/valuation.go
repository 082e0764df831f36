package models

import "time"

// Fundamentals are the raw inputs fetched from the data provider for a
// DCF model. Missing values are NaN, not zero, so that a genuine zero
// stays distinguishable from absent data.
type Fundamentals struct {
	Symbol            string
	Revenue           float64
	NetIncome         float64
	OperatingCashFlow float64
	CapEx             float64
	SharesOutstanding float64
	CurrentPrice      float64
}

// YearlyCashFlow is one projected year of the DCF model.
type YearlyCashFlow struct {
	Year       int     `json:"year"`
	FCF        float64 `json:"fcf"`
	Discounted float64 `json:"discounted"`
}

// ValuationResult is the full DCF output for one symbol. The narrative
// fields are best-effort: a summarizer failure is recorded in
// NarrativeError and never invalidates the numbers.
type ValuationResult struct {
	Symbol            string           `json:"symbol"`
	Timestamp         time.Time        `json:"timestamp"`
	FreeCashFlow      float64          `json:"free_cash_flow"`
	FCFFromFallback   bool             `json:"fcf_from_fallback"`
	GrowthRate        float64          `json:"growth_rate"`
	DiscountRate      float64          `json:"discount_rate"`
	TerminalGrowth    float64          `json:"terminal_growth"`
	ProjectionYears   int              `json:"projection_years"`
	CashFlows         []YearlyCashFlow `json:"cash_flows"`
	TerminalValue     float64          `json:"terminal_value"`
	EnterpriseValue   float64          `json:"enterprise_value"`
	IntrinsicPerShare NullableFloat    `json:"intrinsic_per_share"`
	CurrentPrice      NullableFloat    `json:"current_price,omitempty"`
	UpsidePercent     NullableFloat    `json:"upside_percent,omitempty"`
	Narrative         string           `json:"narrative,omitempty"`
	NarrativeError    string           `json:"narrative_error,omitempty"`
}
