package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"StockSight/internal/domain/models"
	domrepo "StockSight/internal/domain/repository"
	domsvc "StockSight/internal/domain/service"
	"StockSight/internal/services/valuation"
	"StockSight/pkg/logger"
)

// ValuationUseCase runs a DCF valuation over fetched fundamentals and
// optionally attaches narrator commentary. The numeric result never
// depends on the narrator: its failures land in NarrativeError only.
type ValuationUseCase struct {
	data     domrepo.MarketData
	narrator domsvc.Narrator
	logger   *logger.Logger
	timeout  time.Duration
}

func NewValuationUseCase(data domrepo.MarketData, narrator domsvc.Narrator, log *logger.Logger) *ValuationUseCase {
	return &ValuationUseCase{data: data, narrator: narrator, logger: log, timeout: 60 * time.Second}
}

type ValuationParams struct {
	Symbol          string
	GrowthRate      float64
	DiscountRate    float64
	TerminalGrowth  float64
	ProjectionYears int
	Narrative       bool
}

func (uc *ValuationUseCase) Valuate(ctx context.Context, p ValuationParams) (*models.ValuationResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	fundamentals, err := uc.data.Fundamentals(ctx, p.Symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch fundamentals: %w", err)
	}

	fcf, fromFallback := valuation.DeriveFreeCashFlow(fundamentals)
	assumptions := valuation.Assumptions{
		GrowthRate:         p.GrowthRate,
		DiscountRate:       p.DiscountRate,
		TerminalGrowthRate: p.TerminalGrowth,
		ProjectionYears:    p.ProjectionYears,
	}
	projection, err := valuation.Project(fcf, assumptions)
	if err != nil {
		return nil, err
	}

	intrinsic := valuation.PerShare(projection.EnterpriseValue, fundamentals.SharesOutstanding)
	res := &models.ValuationResult{
		Symbol:            p.Symbol,
		Timestamp:         time.Now(),
		FreeCashFlow:      fcf,
		FCFFromFallback:   fromFallback,
		GrowthRate:        p.GrowthRate,
		DiscountRate:      p.DiscountRate,
		TerminalGrowth:    p.TerminalGrowth,
		ProjectionYears:   p.ProjectionYears,
		CashFlows:         projection.CashFlows,
		TerminalValue:     projection.TerminalValue,
		EnterpriseValue:   projection.EnterpriseValue,
		IntrinsicPerShare: models.NullableFloat(intrinsic),
		CurrentPrice:      models.NullableFloat(fundamentals.CurrentPrice),
		UpsidePercent:     models.NullableFloat(valuation.Upside(intrinsic, fundamentals.CurrentPrice)),
	}

	if p.Narrative && uc.narrator != nil {
		uc.attachNarrative(ctx, res)
	}
	return res, nil
}

func (uc *ValuationUseCase) attachNarrative(ctx context.Context, res *models.ValuationResult) {
	text, err := uc.narrator.Summarize(ctx, valuationPrompt(res))
	if err != nil {
		res.NarrativeError = err.Error()
		uc.logger.Warn("narrative generation failed",
			logger.String("symbol", res.Symbol),
			logger.Error(err),
		)
		return
	}
	res.Narrative = text
}

func valuationPrompt(res *models.ValuationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize this discounted cash flow valuation of %s in two short paragraphs for a retail investor.\n\n", res.Symbol)
	fmt.Fprintf(&b, "Base free cash flow: %.0f", res.FreeCashFlow)
	if res.FCFFromFallback {
		b.WriteString(" (estimated, incomplete cash-flow data)")
	}
	fmt.Fprintf(&b, "\nAssumptions: growth %.1f%%, discount %.1f%%, terminal growth %.1f%%, horizon %d years.\n",
		res.GrowthRate*100, res.DiscountRate*100, res.TerminalGrowth*100, res.ProjectionYears)
	fmt.Fprintf(&b, "Enterprise value: %.0f (terminal component %.0f).\n", res.EnterpriseValue, res.TerminalValue)
	if !math.IsNaN(float64(res.IntrinsicPerShare)) {
		fmt.Fprintf(&b, "Intrinsic value per share: %.2f.\n", float64(res.IntrinsicPerShare))
	}
	if !math.IsNaN(float64(res.UpsidePercent)) {
		fmt.Fprintf(&b, "Current price %.2f, implied upside %.1f%%.\n",
			float64(res.CurrentPrice), float64(res.UpsidePercent))
	}
	b.WriteString("Mention the key risks of these assumptions. Do not give financial advice.")
	return b.String()
}
