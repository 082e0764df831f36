package models

// Requests for the insights HTTP endpoints. Defined in domain for
// consistency and reuse.

type SignalsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Short  int    `query:"short" json:"short" default:"20" validate:"gte=1,lte=500"`
	Long   int    `query:"long" json:"long" default:"50" validate:"gte=1,lte=500"`
	N      int    `query:"n" json:"n" default:"250" validate:"gte=2,lte=5000"`
}

type ReturnsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"250" validate:"gte=2,lte=5000"`
}

type CorrelationRequest struct {
	Symbols string `query:"symbols" json:"symbols" validate:"required"` // comma-separated
	N       int    `query:"n" json:"n" default:"250" validate:"gte=2,lte=5000"`
}

type CandlesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" default:"10000" validate:"gte=1,lte=50000"`
}

type ValuationRequest struct {
	Symbol          string  `json:"symbol" validate:"required"`
	GrowthRate      float64 `json:"growth_rate" default:"0.05" validate:"gte=0,lte=0.2"`
	DiscountRate    float64 `json:"discount_rate" default:"0.1" validate:"gt=0,lte=0.15"`
	TerminalGrowth  float64 `json:"terminal_growth" default:"0.02" validate:"gte=0,lte=0.05"`
	ProjectionYears int     `json:"projection_years" default:"5" validate:"gte=1,lte=10"`
	Narrative       bool    `json:"narrative" default:"true"`
}
