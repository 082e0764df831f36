package usecase

import (
	"context"
	"fmt"
	"time"

	"StockSight/internal/domain/models"
	domrepo "StockSight/internal/domain/repository"
	apimetrics "StockSight/internal/service/metrics"
	"StockSight/internal/services/signals"
	"StockSight/pkg/logger"
)

// SignalReportUseCase computes crossover signals for a symbol from
// stored daily candles and publishes an alert event when a crossing
// lands on the most recent bar.
type SignalReportUseCase struct {
	store   domrepo.PriceStore
	alerts  domrepo.AlertSink
	logger  *logger.Logger
	timeout time.Duration
}

func NewSignalReportUseCase(store domrepo.PriceStore, alerts domrepo.AlertSink, log *logger.Logger) *SignalReportUseCase {
	return &SignalReportUseCase{store: store, alerts: alerts, logger: log, timeout: 10 * time.Second}
}

type GetSignalsParams struct {
	Symbol string
	Short  int
	Long   int
	N      int
}

func (uc *SignalReportUseCase) GetSignals(ctx context.Context, p GetSignalsParams) (*models.SignalReport, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.Short <= 0 {
		p.Short = 20
	}
	if p.Long <= 0 {
		p.Long = 50
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

	shortMA, err := signals.MovingAverage(candles, p.Short)
	if err != nil {
		return nil, err
	}
	longMA, err := signals.MovingAverage(candles, p.Long)
	if err != nil {
		return nil, err
	}
	states, crossings, err := signals.Crossovers(candles, p.Short, p.Long)
	if err != nil {
		return nil, err
	}

	rep := &models.SignalReport{
		Symbol:         p.Symbol,
		ShortWindow:    p.Short,
		LongWindow:     p.Long,
		Timestamp:      time.Now(),
		Candles:        candles,
		ShortMA:        shortMA,
		LongMA:         longMA,
		States:         states,
		Crossings:      crossings,
		Recommendation: signals.LatestRecommendation(crossings),
		Alert:          signals.LastBarAlert(crossings, len(candles)),
	}

	if rep.Alert.Active {
		uc.publishAlert(ctx, rep)
	}
	return rep, nil
}

// publishAlert pushes the alert event to the sink. Delivery failures
// are logged and counted only; the report is already complete.
func (uc *SignalReportUseCase) publishAlert(ctx context.Context, rep *models.SignalReport) {
	if uc.alerts == nil {
		return
	}
	ev := models.AlertEvent{
		Symbol:      rep.Symbol,
		Type:        rep.Alert.Type,
		Price:       rep.Alert.Price,
		Time:        rep.Alert.Time,
		ShortWindow: rep.ShortWindow,
		LongWindow:  rep.LongWindow,
	}
	if err := uc.alerts.PublishAlert(ctx, ev); err != nil {
		apimetrics.AlertsPublished.WithLabelValues(string(ev.Type), "error").Inc()
		uc.logger.Error("alert publish failed",
			logger.String("symbol", rep.Symbol),
			logger.String("type", string(rep.Alert.Type)),
			logger.Error(err),
		)
		return
	}
	apimetrics.AlertsPublished.WithLabelValues(string(ev.Type), "ok").Inc()
	uc.logger.Info("alert published",
		logger.String("symbol", rep.Symbol),
		logger.String("type", string(rep.Alert.Type)),
	)
}
