package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"StockSight/internal/domain/repository"
	domsvc "StockSight/internal/domain/service"
	"StockSight/internal/handler/api"
	mid "StockSight/internal/middleware"
	internalrepo "StockSight/internal/repository"
	icache "StockSight/internal/service/cache"
	"StockSight/internal/service/finnhub"
	"StockSight/internal/service/yahoo"
	"StockSight/internal/services/narrative"
	"StockSight/internal/usecase"
	pkgcache "StockSight/pkg/cache"
	pkgch "StockSight/pkg/clickhouse"
	"StockSight/pkg/config"
	xhttp "StockSight/pkg/http"
	pkgkafka "StockSight/pkg/kafka"
	applogger "StockSight/pkg/logger"
	"StockSight/pkg/metrics"
	"StockSight/pkg/queue"
	"StockSight/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" {
		level = "debug"
		format = "console"
	}
	l, err := applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client and initializes
// the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS stocksight",
		`CREATE TABLE IF NOT EXISTS stocksight.ticks_raw (
            ts DateTime64(3), symbol String, price Float64, volume Float64,
            source String, event_id String, seq UInt64
        ) ENGINE=MergeTree ORDER BY (symbol, ts)`,
		`CREATE TABLE IF NOT EXISTS stocksight.daily_candles (
            bucket Date, symbol String, open Float64, high Float64,
            low Float64, close Float64, vol Float64
        ) ENGINE=ReplacingMergeTree ORDER BY (symbol, bucket)`,
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideTickStorage creates ClickHouse storage repository.
func ProvideTickStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	return internalrepo.NewClickHouseStorage(chClient.DB(), cfg.ClickHouse.Database+".ticks_raw")
}

// ProvideTickPublisher creates Kafka publisher repository.
func ProvideTickPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideAlertSink creates the Kafka alert sink.
func ProvideAlertSink(producer *pkgkafka.Producer, cfg *config.Config) repository.AlertSink {
	return internalrepo.NewKafkaAlertSink(producer, cfg.Kafka.AlertsTopic)
}

func newConsumer(cfg *config.Config, groupSuffix string) (*pkgkafka.Consumer, error) {
	return pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID+groupSuffix),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
}

// ProvideConsumers creates the ticks and alerts Kafka consumers.
func ProvideConsumers(cfg *config.Config) (*server.Consumers, error) {
	ticks, err := newConsumer(cfg, "")
	if err != nil {
		return nil, fmt.Errorf("ticks consumer: %w", err)
	}
	ticks.WithConsumerHook(pkgkafka.NoopHook{})

	alerts, err := newConsumer(cfg, "-alerts")
	if err != nil {
		return nil, fmt.Errorf("alerts consumer: %w", err)
	}
	return &server.Consumers{Ticks: ticks, Alerts: alerts}, nil
}

// ProvideKafkaTicksHandler registers the handler for the ticks topic.
func ProvideKafkaTicksHandler(store repository.Storage, m repository.Metrics, cfg *config.Config) *usecase.KafkaTicksHandler {
	return usecase.NewKafkaTicksHandler(cfg.Kafka.Topic, store, m)
}

// ProvideKafkaAlertsHandler registers the handler for the alerts topic.
func ProvideKafkaAlertsHandler(m repository.Metrics, cfg *config.Config, l *applogger.Logger) *usecase.KafkaAlertsHandler {
	return usecase.NewKafkaAlertsHandler(cfg.Kafka.AlertsTopic, m, l)
}

// ProvideFinnhubStream creates the Finnhub WebSocket stream.
func ProvideFinnhubStream(cfg *config.Config, l *applogger.Logger) repository.MarketStream {
	return finnhub.New(
		cfg.Finnhub.APIKey,
		cfg.Finnhub.WebSocketURL,
		cfg.Finnhub.Symbols,
		cfg.Finnhub.ReconnectDelay,
		cfg.Finnhub.PingInterval,
		l,
	)
}

// ProvideTickProcessor creates the tick processor use case.
func ProvideTickProcessor(
	pub repository.Publisher,
	store repository.Storage,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.TickProcessor {
	return usecase.NewTickProcessor(
		pub,
		store,
		m,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideTickCollector creates the tick collector use case.
func ProvideTickCollector(
	stream repository.MarketStream,
	processor *usecase.TickProcessor,
	m repository.Metrics,
) *usecase.TickCollector {
	// Build middleware pipeline between WebSocket and the backend
	pipe := mid.NewRealtimePipeline(processor, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewTickCollector(stream, processor, m, pipe)
}

// ProvideYahooClient creates the Yahoo Finance market data client.
func ProvideYahooClient(cfg *config.Config, l *applogger.Logger) repository.MarketData {
	return yahoo.NewClient(yahoo.Config{
		BaseURL: cfg.Yahoo.BaseURL,
		Timeout: cfg.Yahoo.Timeout,
	}, l)
}

// ProvidePriceStore creates the daily candle store.
func ProvidePriceStore(chClient *pkgch.Client, l *applogger.Logger) repository.PriceStore {
	store := internalrepo.NewCHPriceStore(chClient)
	store.SetLogger(l)
	return store
}

// ProvideNarrator creates the Claude narrator, or nil when no API key
// is configured (valuations then run without commentary).
func ProvideNarrator(cfg *config.Config, l *applogger.Logger) domsvc.Narrator {
	if cfg.LLM.APIKey == "" {
		return nil
	}
	return narrative.NewClaude(narrative.Config{
		APIKey:    cfg.LLM.APIKey,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.Timeout,
	}, l)
}

// ProvideRedisCache builds the shared Redis connection, or nil when
// Redis is disabled (the HTTP layer then falls back to an in-process
// cache and the refresh queue is skipped).
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}
	return pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
}

// ProvideBytesCache builds the HTTP response cache: layered
// memory+Redis when Redis is up, in-process TTL map otherwise.
func ProvideBytesCache(rc *pkgcache.RedisCache) icache.BytesCache {
	if rc != nil {
		return icache.NewServiceCache(pkgcache.NewLayeredCache(rc))
	}
	return icache.NewTTLCache()
}

// ProvideRefreshQueue creates the watchlist refresh worker queue.
func ProvideRefreshQueue(
	l *applogger.Logger,
	cfg *config.Config,
	rc *pkgcache.RedisCache,
	data repository.MarketData,
	store repository.PriceStore,
) *queue.RedisQueue {
	if rc == nil {
		return nil
	}
	workers := cfg.Watchlist.Workers
	if workers <= 0 {
		workers = 2
	}
	job := usecase.NewRefreshCandlesJob(data, store, l)
	return queue.NewRedisConsumer(l, &queue.QueueConfig{
		Workers:    workers,
		QueueSize:  1000,
		RetryLimit: 3,
		RetryDelay: 30 * time.Second,
	}, rc.Client(), []queue.Job{job})
}

// ProvideWatchlistRefresher schedules periodic refreshes.
func ProvideWatchlistRefresher(q *queue.RedisQueue, cfg *config.Config, l *applogger.Logger) *usecase.WatchlistRefresher {
	if q == nil {
		return nil
	}
	return usecase.NewWatchlistRefresher(
		q,
		cfg.Watchlist.Symbols,
		cfg.Watchlist.RefreshInterval,
		cfg.Watchlist.HistoryDays,
		l,
	)
}

// ProvideSignalReportUseCase creates the crossover signals use case.
func ProvideSignalReportUseCase(store repository.PriceStore, alerts repository.AlertSink, l *applogger.Logger) *usecase.SignalReportUseCase {
	return usecase.NewSignalReportUseCase(store, alerts, l)
}

// ProvideReturnsUseCase creates the returns/correlation use case.
func ProvideReturnsUseCase(store repository.PriceStore) *usecase.ReturnsUseCase {
	return usecase.NewReturnsUseCase(store)
}

// ProvideCandlesUseCase creates the candles use case.
func ProvideCandlesUseCase(store repository.PriceStore) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(store)
}

// ProvideValuationUseCase creates the DCF valuation use case.
func ProvideValuationUseCase(data repository.MarketData, narrator domsvc.Narrator, l *applogger.Logger) *usecase.ValuationUseCase {
	return usecase.NewValuationUseCase(data, narrator, l)
}

// ProvideHTTPHandler builds the Echo handler for the insight routes.
func ProvideHTTPHandler(
	l *applogger.Logger,
	signalsUC *usecase.SignalReportUseCase,
	returnsUC *usecase.ReturnsUseCase,
	candlesUC *usecase.CandlesUseCase,
	valuationUC *usecase.ValuationUseCase,
	cache icache.BytesCache,
) xhttp.Handler {
	h := api.NewInsightsHandler(l, signalsUC, returnsUC, candlesUC, valuationUC)
	h.SetCache(cache)
	return h
}

// kafkaLogSink publishes aggregated log batches to a Kafka topic.
type kafkaLogSink struct {
	producer *pkgkafka.Producer
}

func (s kafkaLogSink) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return s.producer.Publish(ctx, topic, nil, payload)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	producer *pkgkafka.Producer,
	collector *usecase.TickCollector,
	consumers *server.Consumers,
	ticksHandler *usecase.KafkaTicksHandler,
	alertsHandler *usecase.KafkaAlertsHandler,
	chClient *pkgch.Client,
	refreshQueue *queue.RedisQueue,
	refresher *usecase.WatchlistRefresher,
	httpHandler xhttp.Handler,
) *server.App {
	// Duplicate-heavy error logs get aggregated onto Kafka instead of
	// flooding stdout.
	l.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   30 * time.Second,
		CountThreshold: 100,
		Topic:          "stocksight.logs",
		Publisher:      kafkaLogSink{producer},
	})

	app := server.New(cfg, l, collector, consumers, ticksHandler, alertsHandler, chClient, refreshQueue, refresher, httpHandler)
	// attach tick processor to app for closing resources via collector
	if collector != nil {
		app.TickProc = collector.Processor()
	}
	return app
}
