package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/voiceweather/weather-agent/internal/lookup"
	"github.com/voiceweather/weather-agent/internal/server/utils"
	"go.uber.org/zap"
)

// LookupRecorder records the outcome of upstream lookup calls for the
// metrics endpoint.
type LookupRecorder interface {
	RecordLookup(service string, err error)
}

type WeatherHandler struct {
	service      lookup.Service
	recorder     LookupRecorder
	defaultUnits string
	logger       *zap.Logger
}

func NewWeatherHandler(service lookup.Service, recorder LookupRecorder, defaultUnits string, logger *zap.Logger) *WeatherHandler {
	return &WeatherHandler{
		service:      service,
		recorder:     recorder,
		defaultUnits: defaultUnits,
		logger:       logger,
	}
}

func (h *WeatherHandler) GetWeather(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	requestID := utils.GetRequestIDFromGinContext(c)

	reqLogger := h.logger.With(zap.String("request_id", requestID))

	var req WeatherQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		reqLogger.Warn("Invalid request parameters", zap.Error(err))
		resp := ErrorResponse{
			Error: "Invalid request parameters",
			Code:  "INVALID_PARAMS",
		}
		if _, ok := err.(validator.ValidationErrors); ok {
			resp.Details = utils.FormatValidationErrors(err)
		}
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	if req.Units == "" {
		req.Units = h.defaultUnits
	}

	reqLogger.Info("Processing weather request",
		zap.String("city", req.City),
		zap.String("units", req.Units))

	result, err := h.service.Lookup(ctx, lookup.Request{City: req.City, Units: req.Units})
	if h.recorder != nil {
		h.recorder.RecordLookup(h.service.Name(), err)
	}
	if err != nil {
		kind := lookup.KindOf(err)
		status, body := failureResponse(kind, err)
		reqLogger.Warn("Weather lookup failed",
			zap.String("city", req.City),
			zap.String("kind", string(kind)),
			zap.Error(err))
		c.JSON(status, body)
		return
	}

	reqLogger.Info("Weather request completed successfully",
		zap.String("city", result.City),
		zap.String("description", result.Description),
		zap.Int("forecast_days", len(result.Forecast)))

	c.JSON(http.StatusOK, result)
}

// failureResponse maps the lookup failure taxonomy onto HTTP. Only the
// user-safe message crosses the wire.
func failureResponse(kind lookup.FailureKind, err error) (int, ErrorResponse) {
	switch kind {
	case lookup.KindCityNotFound:
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: string(kind)}
	case lookup.KindLocationServiceUnavailable, lookup.KindWeatherServiceUnavailable:
		return http.StatusBadGateway, ErrorResponse{Error: err.Error(), Code: string(kind)}
	case lookup.KindNetworkUnreachable:
		return http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Code: string(kind)}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error: "Something went wrong. Please try again later.",
			Code:  "INTERNAL_ERROR",
		}
	}
}
