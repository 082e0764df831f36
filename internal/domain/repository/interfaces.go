package repository

import (
	"context"
	"time"

	"StockSight/internal/domain/models"
)

// MarketStream is a live trade feed (WebSocket-backed).
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// MarketData fetches historical candles and fundamentals for a symbol.
type MarketData interface {
	DailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error)
	Fundamentals(ctx context.Context, symbol string) (models.Fundamentals, error)
}

// Publisher pushes live ticks to the message backend.
type Publisher interface {
	Publish(ctx context.Context, t *models.Tick) error
	PublishBatch(ctx context.Context, ticks []*models.Tick) error
	Close() error
}

// AlertSink receives last-bar crossing alerts for dispatch.
type AlertSink interface {
	PublishAlert(ctx context.Context, ev models.AlertEvent) error
	Close() error
}

// Storage persists raw ticks.
type Storage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, t *models.Tick) error
	StoreBatch(ctx context.Context, ticks []*models.Tick) error
	Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.Tick, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordMessageSent(backend, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
