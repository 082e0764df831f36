package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"StockSight/internal/domain/models"
	icache "StockSight/internal/service/cache"
	"StockSight/internal/service/metrics"
	"StockSight/internal/service/ratelimit"
	"StockSight/internal/services/signals"
	"StockSight/internal/services/valuation"
	"StockSight/internal/usecase"
	xhttp "StockSight/pkg/http"
	xlogger "StockSight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// InsightsHandler exposes the signal, returns, correlation, candle and
// valuation endpoints over Echo.
type InsightsHandler struct {
	logger    *xlogger.Logger
	signals   *usecase.SignalReportUseCase
	returns   *usecase.ReturnsUseCase
	candles   *usecase.CandlesUseCase
	valuation *usecase.ValuationUseCase
	cache     icache.BytesCache
	rl        *ratelimit.Limiter
}

func NewInsightsHandler(
	log *xlogger.Logger,
	signalsUC *usecase.SignalReportUseCase,
	returnsUC *usecase.ReturnsUseCase,
	candlesUC *usecase.CandlesUseCase,
	valuationUC *usecase.ValuationUseCase,
) *InsightsHandler {
	metrics.Register()
	return &InsightsHandler{
		logger:    log,
		signals:   signalsUC,
		returns:   returnsUC,
		candles:   candlesUC,
		valuation: valuationUC,
		rl:        ratelimit.New(),
	}
}

// SetCache injects the response cache.
func (h *InsightsHandler) SetCache(c icache.BytesCache) { h.cache = c }

func (h *InsightsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signals", h.Signals)
	g.GET("/returns", h.Returns)
	g.GET("/correlation", h.Correlation)
	g.GET("/candles", h.Candles)
	g.POST("/valuation", h.Valuation)
	g.GET("/health", h.Health)
}

func (h *InsightsHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

func (h *InsightsHandler) Signals(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.EndpointLatency.WithLabelValues("signals").Observe(time.Since(start).Seconds()) }()

	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":signals", 5, 2) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limited", 429))
	}

	cacheKey := fmt.Sprintf("signals:%s:%d:%d:%d", req.Symbol, req.Short, req.Long, req.N)
	if b, ok := h.cached(cacheKey); ok {
		return c.JSONBlob(200, b)
	}

	res, err := h.signals.GetSignals(c.Request().Context(), usecase.GetSignalsParams{
		Symbol: req.Symbol,
		Short:  req.Short,
		Long:   req.Long,
		N:      req.N,
	})
	if err != nil {
		metrics.EndpointErrors.WithLabelValues("signals").Inc()
		h.logger.Error("signals usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapEngineError(err))
	}

	h.store(cacheKey, res, 30*time.Second)
	return xhttp.SuccessResponse(c, res)
}

func (h *InsightsHandler) Returns(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.EndpointLatency.WithLabelValues("returns").Observe(time.Since(start).Seconds()) }()

	req := &models.ReturnsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":returns", 5, 2) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limited", 429))
	}

	cacheKey := fmt.Sprintf("returns:%s:%d", req.Symbol, req.N)
	if b, ok := h.cached(cacheKey); ok {
		return c.JSONBlob(200, b)
	}

	res, err := h.returns.GetReturns(c.Request().Context(), usecase.GetReturnsParams{Symbol: req.Symbol, N: req.N})
	if err != nil {
		metrics.EndpointErrors.WithLabelValues("returns").Inc()
		h.logger.Error("returns usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapEngineError(err))
	}

	h.store(cacheKey, res, 30*time.Second)
	return xhttp.SuccessResponse(c, res)
}

func (h *InsightsHandler) Correlation(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.EndpointLatency.WithLabelValues("correlation").Observe(time.Since(start).Seconds()) }()

	req := &models.CorrelationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbols := splitSymbols(req.Symbols)
	if len(symbols) < 2 {
		return xhttp.BadRequestResponse(c, "need at least 2 symbols")
	}
	if !h.rl.Allow(c.RealIP()+":correlation", 3, 1) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limited", 429))
	}

	cacheKey := fmt.Sprintf("corr:%s:%d", strings.Join(symbols, ","), req.N)
	if b, ok := h.cached(cacheKey); ok {
		return c.JSONBlob(200, b)
	}

	res, err := h.returns.GetCorrelation(c.Request().Context(), usecase.GetCorrelationParams{Symbols: symbols, N: req.N})
	if err != nil {
		metrics.EndpointErrors.WithLabelValues("correlation").Inc()
		h.logger.Error("correlation usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapEngineError(err))
	}

	h.store(cacheKey, res, 60*time.Second)
	return xhttp.SuccessResponse(c, res)
}

func (h *InsightsHandler) Candles(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.EndpointLatency.WithLabelValues("candles").Observe(time.Since(start).Seconds()) }()

	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}

	res, err := h.candles.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
		Symbol: req.Symbol,
		From:   from,
		To:     to,
		Limit:  req.Limit,
	})
	if err != nil {
		metrics.EndpointErrors.WithLabelValues("candles").Inc()
		h.logger.Error("candles usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *InsightsHandler) Valuation(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.EndpointLatency.WithLabelValues("valuation").Observe(time.Since(start).Seconds()) }()

	req := &models.ValuationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":valuation", 2, 0.5) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limited", 429))
	}

	res, err := h.valuation.Valuate(c.Request().Context(), usecase.ValuationParams{
		Symbol:          req.Symbol,
		GrowthRate:      req.GrowthRate,
		DiscountRate:    req.DiscountRate,
		TerminalGrowth:  req.TerminalGrowth,
		ProjectionYears: req.ProjectionYears,
		Narrative:       req.Narrative,
	})
	if err != nil {
		metrics.EndpointErrors.WithLabelValues("valuation").Inc()
		h.logger.Error("valuation usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapValuationError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *InsightsHandler) cached(key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		h.logger.Warn("cache get error", xlogger.String("key", key), xlogger.Error(err))
		return nil, false
	}
	return b, ok
}

func (h *InsightsHandler) store(key string, v interface{}, ttl time.Duration) {
	if h.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := h.cache.SetBytes(key, b, ttl); err != nil {
		h.logger.Warn("cache set error", xlogger.String("key", key), xlogger.Error(err))
	}
}

// mapEngineError turns engine validation failures into 400s and
// everything else into 502s (the data path sits behind upstreams).
func mapEngineError(err error) error {
	if errors.Is(err, signals.ErrInvalidWindow) || errors.Is(err, signals.ErrInvalidWindowOrder) {
		return xhttp.BadRequestError(err.Error()).WithError(err)
	}
	return xhttp.NewAppError("ERR_UPSTREAM", "", err.Error(), 502).WithError(err)
}

func mapValuationError(err error) error {
	if errors.Is(err, valuation.ErrInvalidHorizon) || errors.Is(err, valuation.ErrDegenerateTerminal) {
		return xhttp.BadRequestError(err.Error()).WithError(err)
	}
	return xhttp.NewAppError("ERR_UPSTREAM", "", err.Error(), 502).WithError(err)
}

func splitSymbols(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseRange parses from/to as RFC3339 or YYYY-MM-DD, defaulting to
// the trailing year.
func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.AddDate(-1, 0, 0)
	var err error
	if toStr != "" {
		if to, err = parseDay(toStr); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to: %w", err)
		}
	}
	if fromStr != "" {
		if from, err = parseDay(fromStr); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from: %w", err)
		}
	}
	return from, to, nil
}

func parseDay(s string) (time.Time, error) {
	if t, ok := xhttp.ParseTime(s); ok {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
