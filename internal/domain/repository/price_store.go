package repository

import (
	"context"
	"time"

	"StockSight/internal/domain/models"
)

// PriceStore provides read/write access to daily candle history.
type PriceStore interface {
	GetCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error)
	GetLatestNCandles(ctx context.Context, symbol string, n int) ([]models.Candle, error)
	StoreBatch(ctx context.Context, candles []models.Candle) error
}
