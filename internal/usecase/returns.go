package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StockSight/internal/domain/models"
	domrepo "StockSight/internal/domain/repository"
	"StockSight/internal/services/signals"
)

// ReturnsUseCase computes return series and portfolio correlations
// from stored daily candles.
type ReturnsUseCase struct {
	store   domrepo.PriceStore
	timeout time.Duration
}

func NewReturnsUseCase(store domrepo.PriceStore) *ReturnsUseCase {
	return &ReturnsUseCase{store: store, timeout: 10 * time.Second}
}

type GetReturnsParams struct {
	Symbol string
	N      int
}

func (uc *ReturnsUseCase) GetReturns(ctx context.Context, p GetReturnsParams) (*models.ReturnsReport, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.N <= 0 {
		p.N = 250
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	candles, err := uc.store.GetLatestNCandles(ctx, p.Symbol, p.N)
	if err != nil {
		return nil, fmt.Errorf("load candles: %w", err)
	}
	if len(candles) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 candles, have %d", signals.ErrInvalidWindow, len(candles))
	}

	return &models.ReturnsReport{
		Symbol:     p.Symbol,
		Timestamp:  time.Now(),
		Daily:      models.Floats(signals.DailyReturns(candles)),
		Cumulative: models.Floats(signals.CumulativeReturns(candles)),
	}, nil
}

type GetCorrelationParams struct {
	Symbols []string
	N       int
}

// GetCorrelation builds the pairwise daily-return correlation matrix
// for a set of symbols. Candle loads run concurrently; any failed
// load fails the whole matrix since a partial matrix is misleading.
func (uc *ReturnsUseCase) GetCorrelation(ctx context.Context, p GetCorrelationParams) (*models.CorrelationReport, error) {
	if len(p.Symbols) < 2 {
		return nil, fmt.Errorf("need at least 2 symbols, have %d", len(p.Symbols))
	}
	if p.N <= 0 {
		p.N = 250
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	series := make([][]float64, len(p.Symbols))
	errs := make([]error, len(p.Symbols))
	var wg sync.WaitGroup
	for i, symbol := range p.Symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			candles, err := uc.store.GetLatestNCandles(ctx, symbol, p.N)
			if err != nil {
				errs[i] = fmt.Errorf("load %s: %w", symbol, err)
				return
			}
			if len(candles) < 3 {
				errs[i] = fmt.Errorf("%w: %s has %d candles", signals.ErrInvalidWindow, symbol, len(candles))
				return
			}
			series[i] = signals.DailyReturns(candles)
		}(i, symbol)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	// Trim to the shortest series so rows stay comparable.
	minLen := len(series[0])
	for _, s := range series[1:] {
		if len(s) < minLen {
			minLen = len(s)
		}
	}
	for i := range series {
		series[i] = series[i][len(series[i])-minLen:]
	}

	return &models.CorrelationReport{
		Symbols:   p.Symbols,
		Timestamp: time.Now(),
		Matrix:    models.FloatMatrix(signals.CorrelationMatrix(series)),
	}, nil
}
