package handlers

import (
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/voiceweather/weather-agent/internal/lookup"
	"github.com/voiceweather/weather-agent/internal/server/middlewares"
	"go.uber.org/zap"
)

// LookupMetrics holds counters for upstream lookup calls, broken down by
// failure kind.
type LookupMetrics struct {
	mutex        sync.RWMutex
	lookupCalls  map[string]int64
	lookupErrors map[string]int64
	failureKinds map[string]int64
}

type MetricsHandler struct {
	logger      *zap.Logger
	httpMetrics *middlewares.HTTPMetrics
	app         *LookupMetrics
}

func NewMetricsHandler(logger *zap.Logger, httpMetrics *middlewares.HTTPMetrics) *MetricsHandler {
	return &MetricsHandler{
		logger:      logger,
		httpMetrics: httpMetrics,
		app: &LookupMetrics{
			lookupCalls:  make(map[string]int64),
			lookupErrors: make(map[string]int64),
			failureKinds: make(map[string]int64),
		},
	}
}

// RecordLookup records one upstream lookup call and its outcome.
func (h *MetricsHandler) RecordLookup(service string, err error) {
	h.app.mutex.Lock()
	defer h.app.mutex.Unlock()

	h.app.lookupCalls[service]++
	if err != nil {
		h.app.lookupErrors[service]++
		if kind := lookup.KindOf(err); kind != "" {
			h.app.failureKinds[string(kind)]++
		}
	}
}

// ServeMetrics exposes the counters in Prometheus text format.
func (h *MetricsHandler) ServeMetrics(c *gin.Context) {
	response := ""

	if h.httpMetrics != nil {
		requests, avgDuration, active := h.httpMetrics.Snapshot()

		response += "# HELP http_requests_total Total number of HTTP requests\n"
		response += "# TYPE http_requests_total counter\n"
		for key, count := range requests {
			response += "http_requests_total{route_status=\"" + key + "\"} " + strconv.FormatInt(count, 10) + "\n"
		}

		response += "\n# HELP http_request_duration_seconds_avg Average duration of HTTP requests\n"
		response += "# TYPE http_request_duration_seconds_avg gauge\n"
		response += "http_request_duration_seconds_avg " + strconv.FormatFloat(avgDuration, 'f', 6, 64) + "\n"

		response += "\n# HELP http_active_requests Number of active HTTP requests\n"
		response += "# TYPE http_active_requests gauge\n"
		response += "http_active_requests " + strconv.FormatInt(active, 10) + "\n"
	}

	h.app.mutex.RLock()
	defer h.app.mutex.RUnlock()

	response += "\n# HELP weather_lookup_calls_total Total weather lookup calls\n"
	response += "# TYPE weather_lookup_calls_total counter\n"
	for service, count := range h.app.lookupCalls {
		response += "weather_lookup_calls_total{service=\"" + service + "\"} " + strconv.FormatInt(count, 10) + "\n"
	}

	response += "\n# HELP weather_lookup_errors_total Total failed weather lookups\n"
	response += "# TYPE weather_lookup_errors_total counter\n"
	for service, count := range h.app.lookupErrors {
		response += "weather_lookup_errors_total{service=\"" + service + "\"} " + strconv.FormatInt(count, 10) + "\n"
	}

	response += "\n# HELP weather_lookup_failures_total Failed lookups by failure kind\n"
	response += "# TYPE weather_lookup_failures_total counter\n"
	for kind, count := range h.app.failureKinds {
		response += "weather_lookup_failures_total{kind=\"" + kind + "\"} " + strconv.FormatInt(count, 10) + "\n"
	}

	c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	c.String(200, response)
}
