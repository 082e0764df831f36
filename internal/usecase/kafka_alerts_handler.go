package usecase

import (
	"context"
	"encoding/json"

	"StockSight/internal/domain/models"
	domrepo "StockSight/internal/domain/repository"
	pkgkafka "StockSight/pkg/kafka"
	"StockSight/pkg/logger"
)

// KafkaAlertsHandler consumes crossing alert events and dispatches
// them. Dispatch is a structured log plus metrics; downstream
// notifiers subscribe to the same topic.
type KafkaAlertsHandler struct {
	topic   string
	metrics domrepo.Metrics
	logger  *logger.Logger
}

func NewKafkaAlertsHandler(topic string, metrics domrepo.Metrics, log *logger.Logger) *KafkaAlertsHandler {
	return &KafkaAlertsHandler{topic: topic, metrics: metrics, logger: log}
}

func (h *KafkaAlertsHandler) Topic() string { return h.topic }

func (h *KafkaAlertsHandler) Handle(ctx context.Context, b []byte) error {
	var ev models.AlertEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		h.metrics.RecordError("alert_unmarshal")
		return err
	}

	h.logger.Info("crossover alert",
		logger.String("symbol", ev.Symbol),
		logger.String("type", string(ev.Type)),
		logger.Any("price", ev.Price),
		logger.Int("short_window", ev.ShortWindow),
		logger.Int("long_window", ev.LongWindow),
	)
	h.metrics.RecordMessageSent("alerts", ev.Symbol)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaAlertsHandler)(nil)
