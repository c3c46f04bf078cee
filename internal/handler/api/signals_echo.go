package api

import (
	"context"
	"errors"
	"time"

	models "FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/internal/usecase"
	xhttp "FinSignal/pkg/http"
	xlogger "FinSignal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SignalService is the scanner surface used by the handlers.
type SignalService interface {
	Analyze(ctx context.Context, symbol string) models.Outcome
	Snapshot(ctx context.Context, symbol string, tf domrepo.Timeframe) (models.Snapshot, error)
	Symbols() []string
}

// Enqueuer schedules background jobs.
type Enqueuer interface {
	Enqueue(ctx context.Context, msgType string, payload interface{}) error
}

// SignalsEchoHandler serves the signal, scan, candle and indicator endpoints.
type SignalsEchoHandler struct {
	logger  *xlogger.Logger
	signals SignalService
	latest  domrepo.LatestSignals
	history domrepo.SignalStore
	candles *usecase.CandlesUseCase
	jobs    Enqueuer
	now     func() time.Time
}

func NewSignalsEchoHandler(
	logger *xlogger.Logger,
	signals SignalService,
	latest domrepo.LatestSignals,
	history domrepo.SignalStore,
	candles *usecase.CandlesUseCase,
	jobs Enqueuer,
) *SignalsEchoHandler {
	return &SignalsEchoHandler{
		logger:  logger,
		signals: signals,
		latest:  latest,
		history: history,
		candles: candles,
		jobs:    jobs,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signal", h.Analyze)
	g.GET("/signals/latest", h.Latest)
	g.GET("/signals", h.History)
	g.POST("/scan", h.Scan)
	g.GET("/candles", h.Candles)
	g.GET("/indicators/:timeframe", h.Indicators)
}

// Analyze runs the engine for one symbol right now.
func (h *SignalsEchoHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	out := h.signals.Analyze(c.Request().Context(), req.Symbol)
	return xhttp.SuccessResponse(c, out)
}

// Latest returns the result of the last scan, or an empty list before the first.
func (h *SignalsEchoHandler) Latest(c echo.Context) error {
	sigs, err := h.latest.Load(c.Request().Context())
	if errors.Is(err, domrepo.ErrNoSignals) {
		return xhttp.ListResponse(c, []models.Signal{}, 0)
	}
	if err != nil {
		h.logger.Error("load latest signals", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, sigs, int64(len(sigs)))
}

func (h *SignalsEchoHandler) History(c echo.Context) error {
	req := &models.SignalHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	sigs, err := h.history.QuerySignals(c.Request().Context(), req.Symbol, req.Limit)
	if err != nil {
		h.logger.Error("query signals", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, sigs, int64(len(sigs)))
}

// Scan queues a scan and returns immediately.
func (h *SignalsEchoHandler) Scan(c echo.Context) error {
	req := &models.ScanRequest{}
	if c.Request().ContentLength != 0 {
		if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
			return xhttp.BadRequestResponse(c, verr)
		}
	}
	symbols := req.Symbols
	if len(symbols) == 0 {
		symbols = h.signals.Symbols()
	}
	if err := h.jobs.Enqueue(c.Request().Context(), usecase.ScanJobType, usecase.ScanPayload{Symbols: symbols}); err != nil {
		h.logger.Error("enqueue scan", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ConflictError("scan could not be queued").WithError(err))
	}
	return xhttp.AcceptedResponse(c, models.ScanAccepted{
		Status:    "scan_started",
		Symbols:   symbols,
		Timestamp: h.now(),
	})
}

// Candles proxies raw candles from the configured source.
func (h *SignalsEchoHandler) Candles(c echo.Context) error {
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf, _ := domrepo.ParseTimeframe(req.Interval)
	res, err := h.candles.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
		Symbol:    req.Symbol,
		Timeframe: tf,
		Limit:     req.Limit,
	})
	if err != nil {
		h.logger.Warn("get candles", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("candle source unavailable").WithError(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

// Indicators returns the on-demand snapshot of one timeframe.
func (h *SignalsEchoHandler) Indicators(c echo.Context) error {
	req := &models.IndicatorsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf, _ := domrepo.ParseTimeframe(req.Timeframe)
	snap, err := h.signals.Snapshot(c.Request().Context(), req.Symbol, tf)
	if err != nil {
		h.logger.Warn("indicator snapshot", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("candle source unavailable").WithError(err))
	}
	return xhttp.SuccessResponse(c, snap)
}
