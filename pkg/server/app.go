package server

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"StockSight/internal/usecase"
	pkgch "StockSight/pkg/clickhouse"
	"StockSight/pkg/config"
	xhttp "StockSight/pkg/http"
	pkgkafka "StockSight/pkg/kafka"
	applogger "StockSight/pkg/logger"
	"StockSight/pkg/queue"
)

// Consumers groups the Kafka consumers by topic role.
type Consumers struct {
	Ticks  *pkgkafka.Consumer
	Alerts *pkgkafka.Consumer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg           *config.Config
	logger        *applogger.Logger
	collector     *usecase.TickCollector
	consumers     *Consumers
	ticksHandler  *usecase.KafkaTicksHandler
	alertsHandler *usecase.KafkaAlertsHandler
	chClient      *pkgch.Client
	refreshQueue  *queue.RedisQueue
	refresher     *usecase.WatchlistRefresher
	httpServer    *xhttp.Server
	httpHandler   xhttp.Handler
	TickProc      *usecase.TickProcessor
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.TickCollector,
	consumers *Consumers,
	ticksHandler *usecase.KafkaTicksHandler,
	alertsHandler *usecase.KafkaAlertsHandler,
	chClient *pkgch.Client,
	refreshQueue *queue.RedisQueue,
	refresher *usecase.WatchlistRefresher,
	httpHandler xhttp.Handler,
) *App {
	return &App{
		cfg:           cfg,
		logger:        log,
		collector:     collector,
		consumers:     consumers,
		ticksHandler:  ticksHandler,
		alertsHandler: alertsHandler,
		chClient:      chClient,
		refreshQueue:  refreshQueue,
		refresher:     refresher,
		httpHandler:   httpHandler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start tick collector
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("collector started", applogger.Strings("symbols", a.cfg.Finnhub.Symbols))

	// Start Kafka consumers if configured
	if a.consumers != nil {
		if a.consumers.Ticks != nil && a.ticksHandler != nil {
			a.consumers.Ticks.RegisterHandler(a.ticksHandler)
			go func() {
				if err := a.consumers.Ticks.Start(); err != nil {
					l.Error("ticks consumer error", applogger.Error(err))
				}
			}()
			l.Info("ticks consumer started", applogger.String("topic", a.ticksHandler.Topic()))
		}
		if a.consumers.Alerts != nil && a.alertsHandler != nil {
			a.consumers.Alerts.RegisterHandler(a.alertsHandler)
			go func() {
				if err := a.consumers.Alerts.Start(); err != nil {
					l.Error("alerts consumer error", applogger.Error(err))
				}
			}()
			l.Info("alerts consumer started", applogger.String("topic", a.alertsHandler.Topic()))
		}
	}

	// Start watchlist refresh workers
	if a.refreshQueue != nil {
		if err := a.refreshQueue.Start(); err != nil {
			l.Error("refresh queue start error", applogger.Error(err))
		} else {
			a.refreshQueue.StartRetryProcessor()
			l.Info("refresh queue started", applogger.Int("symbols", len(a.cfg.Watchlist.Symbols)))
		}
	}
	if a.refresher != nil {
		a.refresher.Start(ctx)
		l.Info("watchlist refresher started",
			applogger.Duration("interval", a.cfg.Watchlist.RefreshInterval))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger
	if l == nil {
		var err error
		if l, err = applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"}); err != nil {
			log.Printf("failed to create logger: %v", err)
			return err
		}
	}
	l.Info("shutting down...")

	// Stop collector (pipeline + stream)
	if err := a.collector.Shutdown(ctx); err != nil {
		l.Warn("collector stop error", applogger.Error(err))
	}

	// Stop watchlist refresher and queue workers
	if a.refresher != nil {
		a.refresher.Stop()
	}
	if a.refreshQueue != nil {
		if err := a.refreshQueue.Stop(ctx); err != nil {
			l.Warn("refresh queue stop error", applogger.Error(err))
		}
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop consumers
	if a.consumers != nil {
		if a.consumers.Ticks != nil {
			if err := a.consumers.Ticks.Stop(ctx); err != nil {
				l.Warn("ticks consumer stop error", applogger.Error(err))
			}
		}
		if a.consumers.Alerts != nil {
			if err := a.consumers.Alerts.Stop(ctx); err != nil {
				l.Warn("alerts consumer stop error", applogger.Error(err))
			}
		}
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	// Close tick processor resources (publisher/storage)
	if a.TickProc != nil {
		a.TickProc.Close()
	}

	l.Info("shutdown complete")
	return nil
}
