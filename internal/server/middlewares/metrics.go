package middlewares

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/voiceweather/weather-agent/pkg/telemetry"
	"go.uber.org/zap"
)

// HTTPMetrics holds in-process HTTP request counters.
type HTTPMetrics struct {
	mutex            sync.RWMutex
	requestsTotal    map[string]int64
	requestDurations []float64
	activeRequests   int64
}

// Snapshot returns a copy of the counters, the average request duration in
// seconds, and the number of in-flight requests.
func (m *HTTPMetrics) Snapshot() (map[string]int64, float64, int64) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	requests := make(map[string]int64, len(m.requestsTotal))
	for k, v := range m.requestsTotal {
		requests[k] = v
	}

	var avgDuration float64
	if len(m.requestDurations) > 0 {
		sum := 0.0
		for _, d := range m.requestDurations {
			sum += d
		}
		avgDuration = sum / float64(len(m.requestDurations))
	}

	return requests, avgDuration, m.activeRequests
}

type MetricsMiddleware struct {
	logger  *zap.Logger
	tele    *telemetry.Telemetry
	metrics *HTTPMetrics
}

func NewMetricsMiddleware(logger *zap.Logger, tele *telemetry.Telemetry) *MetricsMiddleware {
	return &MetricsMiddleware{
		logger: logger,
		tele:   tele,
		metrics: &HTTPMetrics{
			requestsTotal:    make(map[string]int64),
			requestDurations: make([]float64, 0),
		},
	}
}

func (m *MetricsMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.metrics.mutex.Lock()
		m.metrics.activeRequests++
		m.metrics.mutex.Unlock()

		c.Next()

		duration := time.Since(start).Seconds()

		statusCode := strconv.Itoa(c.Writer.Status())
		route := c.FullPath()
		method := c.Request.Method
		key := method + " " + route + "_" + statusCode

		m.metrics.mutex.Lock()
		m.metrics.requestsTotal[key]++
		m.metrics.requestDurations = append(m.metrics.requestDurations, duration)
		m.metrics.activeRequests--

		// Keep only last 1000 durations to prevent memory leak
		if len(m.metrics.requestDurations) > 1000 {
			m.metrics.requestDurations = m.metrics.requestDurations[len(m.metrics.requestDurations)-1000:]
		}
		m.metrics.mutex.Unlock()

		if m.tele.IsEnabled() {
			m.logger.Debug("HTTP metrics recorded",
				zap.String("method", method),
				zap.String("route", route),
				zap.Int("status", c.Writer.Status()),
				zap.Float64("duration", duration))
		}
	}
}

// GetHTTPMetrics returns the HTTP metrics for the metrics handler to expose
func (m *MetricsMiddleware) GetHTTPMetrics() *HTTPMetrics {
	return m.metrics
}
