package api

import (
	"time"

	models "VolumeScope/internal/domain/models"
	domrepo "VolumeScope/internal/domain/repository"
	"VolumeScope/internal/usecase"
	xhttp "VolumeScope/pkg/http"
	xlogger "VolumeScope/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalysisHandler implements Echo-based HTTP handlers following Clean Architecture.
type AnalysisHandler struct {
	logger  *xlogger.Logger
	svc     *usecase.AnalysisService
	candles *usecase.CandlesUseCase // nil when the candle store is disabled
	tf      domrepo.Timeframe
}

func NewAnalysisHandler(logger *xlogger.Logger, svc *usecase.AnalysisService, candles *usecase.CandlesUseCase, tf domrepo.Timeframe) *AnalysisHandler {
	return &AnalysisHandler{logger: logger, svc: svc, candles: candles, tf: tf}
}

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/profile", h.Profile)
	g.GET("/indicators", h.Indicators)
	g.GET("/signals", h.Signals)
	g.GET("/candles", h.Candles)
	g.GET("/settings", h.Settings)
	g.PUT("/settings", h.UpdateSettings)
}

// ProfileResponse carries the latest volume profile with its derived levels.
type ProfileResponse struct {
	Symbol     string                     `json:"symbol"`
	Profile    *models.VolumeProfile      `json:"profile"`
	Levels     models.LevelClassification `json:"levels"`
	Confidence float64                    `json:"confidence"`
}

func (h *AnalysisHandler) Profile(c echo.Context) error {
	req := &models.ProfileRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, ok := h.svc.Latest(req.Symbol)
	if !ok {
		return xhttp.NotFoundResponse(c, "no analysis for symbol")
	}
	return xhttp.SuccessResponse(c, &ProfileResponse{
		Symbol:     req.Symbol,
		Profile:    res.Profile,
		Levels:     res.Levels,
		Confidence: res.Confidence,
	})
}

// IndicatorsResponse carries the latest moving-average state.
type IndicatorsResponse struct {
	Symbol     string                `json:"symbol"`
	Indicators models.IndicatorState `json:"indicators"`
}

func (h *AnalysisHandler) Indicators(c echo.Context) error {
	req := &models.IndicatorsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, ok := h.svc.Latest(req.Symbol)
	if !ok {
		return xhttp.NotFoundResponse(c, "no analysis for symbol")
	}
	return xhttp.SuccessResponse(c, &IndicatorsResponse{
		Symbol:     req.Symbol,
		Indicators: res.Indicators,
	})
}

// SignalsResponse carries the current signals plus recent history.
type SignalsResponse struct {
	Symbol     string          `json:"symbol"`
	Current    []models.Signal `json:"current"`
	History    []models.Signal `json:"history"`
	Confidence float64         `json:"confidence"`
}

func (h *AnalysisHandler) Signals(c echo.Context) error {
	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, ok := h.svc.Latest(req.Symbol)
	if !ok {
		return xhttp.NotFoundResponse(c, "no analysis for symbol")
	}
	return xhttp.SuccessResponse(c, &SignalsResponse{
		Symbol:     req.Symbol,
		Current:    res.Signals,
		History:    h.svc.History(req.Symbol, req.Limit),
		Confidence: res.Confidence,
	})
}

// CandlesResponse carries a window of OHLCV history.
type CandlesResponse struct {
	Symbol  string          `json:"symbol"`
	Count   int             `json:"count"`
	Candles []models.Candle `json:"candles"`
}

// Candles serves the live window; when a symbol has no live series yet it
// falls back to the candle store. Optional from/to query params narrow the
// window, aligned to timeframe boundaries.
func (h *AnalysisHandler) Candles(c echo.Context) error {
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	candles := h.svc.Candles(req.Symbol, req.N)
	if len(candles) == 0 && h.candles != nil {
		res, err := h.candles.GetLatest(c.Request().Context(), usecase.GetCandlesParams{
			Symbol:    req.Symbol,
			N:         req.N,
			Timeframe: h.tf,
		})
		if err != nil {
			h.logger.Error("candles usecase error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		candles = res.Candles
	}

	if from, ok := xhttp.ParseTime(c.QueryParam("from")); ok {
		to := xhttp.ParseTimeDefault(c.QueryParam("to"), time.Now())
		from, to = xhttp.AlignRange(from, to, string(h.tf))
		candles = filterRange(candles, from, to)
	}

	return xhttp.SuccessResponse(c, &CandlesResponse{
		Symbol:  req.Symbol,
		Count:   len(candles),
		Candles: candles,
	})
}

// filterRange keeps candles with from <= ts <= to. The input is ascending,
// so the result is a contiguous subslice.
func filterRange(candles []models.Candle, from, to time.Time) []models.Candle {
	lo := 0
	for lo < len(candles) && candles[lo].Timestamp.Before(from) {
		lo++
	}
	hi := len(candles)
	for hi > lo && candles[hi-1].Timestamp.After(to) {
		hi--
	}
	return candles[lo:hi]
}

// SettingsResponse carries the effective settings for a symbol.
type SettingsResponse struct {
	Symbol   string          `json:"symbol"`
	Settings models.Settings `json:"settings"`
}

func (h *AnalysisHandler) Settings(c echo.Context) error {
	req := &models.SettingsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, &SettingsResponse{
		Symbol:   req.Symbol,
		Settings: h.svc.Settings(c.Request().Context(), req.Symbol),
	})
}

func (h *AnalysisHandler) UpdateSettings(c echo.Context) error {
	req := &models.UpdateSettingsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if err := h.svc.UpdateSettings(c.Request().Context(), req.Symbol, req.Settings); err != nil {
		h.logger.Error("settings update error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.BadRequestResponse(c, err.Error())
	}
	return xhttp.SuccessResponse(c, &SettingsResponse{
		Symbol:   req.Symbol,
		Settings: h.svc.Settings(c.Request().Context(), req.Symbol),
	})
}
