package usecase

import (
	"context"
	"fmt"
	"time"

	domrepo "StockSight/internal/domain/repository"
	"StockSight/pkg/logger"
	"StockSight/pkg/queue"
)

const RefreshCandlesMsgType = "candles.refresh"

// RefreshCandlesPayload asks for a symbol's recent daily history to be
// re-fetched and stored.
type RefreshCandlesPayload struct {
	Symbol string `json:"symbol"`
	Days   int    `json:"days"`
}

// RefreshCandlesJob pulls daily candles from the market data provider
// and stores them. It runs on the queue workers so a slow provider
// never blocks the enqueue side.
type RefreshCandlesJob struct {
	data   domrepo.MarketData
	store  domrepo.PriceStore
	logger *logger.Logger
}

func NewRefreshCandlesJob(data domrepo.MarketData, store domrepo.PriceStore, log *logger.Logger) *RefreshCandlesJob {
	return &RefreshCandlesJob{data: data, store: store, logger: log}
}

func (j *RefreshCandlesJob) Name() string { return "refresh_candles" }
func (j *RefreshCandlesJob) Type() string { return RefreshCandlesMsgType }

func (j *RefreshCandlesJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[RefreshCandlesPayload](payload)
	if err != nil {
		return fmt.Errorf("parse refresh payload: %w", err)
	}
	if p.Symbol == "" {
		return fmt.Errorf("refresh payload missing symbol")
	}
	days := p.Days
	if days <= 0 {
		days = 400
	}

	to := time.Now()
	from := to.AddDate(0, 0, -days)
	candles, err := j.data.DailyCandles(ctx, p.Symbol, from, to)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", p.Symbol, err)
	}
	if len(candles) == 0 {
		j.logger.Warn("refresh fetched no candles", logger.String("symbol", p.Symbol))
		return nil
	}
	if err := j.store.StoreBatch(ctx, candles); err != nil {
		return fmt.Errorf("store %s: %w", p.Symbol, err)
	}

	j.logger.Info("candles refreshed",
		logger.String("symbol", p.Symbol),
		logger.Int("count", len(candles)),
	)
	return nil
}

var _ queue.Job = (*RefreshCandlesJob)(nil)

// WatchlistRefresher enqueues a refresh message per watchlist symbol
// on a fixed interval, and once at startup.
type WatchlistRefresher struct {
	publisher queue.QueueService
	symbols   []string
	interval  time.Duration
	days      int
	logger    *logger.Logger
	stop      chan struct{}
}

func NewWatchlistRefresher(publisher queue.QueueService, symbols []string, interval time.Duration, days int, log *logger.Logger) *WatchlistRefresher {
	if interval <= 0 {
		interval = time.Hour
	}
	return &WatchlistRefresher{
		publisher: publisher,
		symbols:   symbols,
		interval:  interval,
		days:      days,
		logger:    log,
		stop:      make(chan struct{}),
	}
}

func (w *WatchlistRefresher) Start(ctx context.Context) {
	go func() {
		w.enqueueAll(ctx)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stop:
				return
			case <-ticker.C:
				w.enqueueAll(ctx)
			}
		}
	}()
}

func (w *WatchlistRefresher) Stop() { close(w.stop) }

func (w *WatchlistRefresher) enqueueAll(ctx context.Context) {
	for _, symbol := range w.symbols {
		payload := RefreshCandlesPayload{Symbol: symbol, Days: w.days}
		if err := w.publisher.PublishMessage(ctx, RefreshCandlesMsgType, payload); err != nil {
			w.logger.Error("enqueue refresh failed",
				logger.String("symbol", symbol),
				logger.Error(err),
			)
		}
	}
	w.logger.Debug("watchlist refresh enqueued", logger.Int("symbols", len(w.symbols)))
}
