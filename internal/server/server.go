package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/voiceweather/weather-agent/internal/config"
	"github.com/voiceweather/weather-agent/internal/lookup"
	"github.com/voiceweather/weather-agent/internal/server/handlers"
	"github.com/voiceweather/weather-agent/internal/server/middlewares"
	"github.com/voiceweather/weather-agent/internal/tool"
	"github.com/voiceweather/weather-agent/pkg/telemetry"
	"go.uber.org/zap"
)

// Server is the HTTP host surface standing in for the voice session: it
// advertises the tool schemas and invokes lookups on behalf of callers.
type Server struct {
	engine   *gin.Engine
	server   *http.Server
	service  lookup.Service
	registry *tool.Registry
	logger   *zap.Logger
	tele     *telemetry.Telemetry
}

var (
	instance *Server
	once     sync.Once
)

func NewServer(logger *zap.Logger, tele *telemetry.Telemetry) *Server {
	once.Do(func() {
		cfg := config.GetConfig()

		var svc lookup.Service = lookup.NewClientWithConfig(cfg.Lookup, logger, tele)
		if cfg.Lookup.RateLimit.Enabled {
			svc = lookup.NewRateLimitedService(svc, cfg.Lookup.RateLimit.RPS, cfg.Lookup.RateLimit.Burst)
			logger.Info("Rate limiting enabled for weather lookups",
				zap.Float64("rps", cfg.Lookup.RateLimit.RPS),
				zap.Int("burst", cfg.Lookup.RateLimit.Burst))
		}

		registry := tool.NewRegistry()
		if err := registry.Register(tool.NewWeatherTool(svc, logger)); err != nil {
			logger.Warn("Failed to register weather tool", zap.Error(err))
		}

		gin.SetMode(gin.ReleaseMode)
		engine := gin.New()

		engine.Use(middlewares.RequestIDMiddleware(logger))
		engine.Use(middlewares.LoggingMiddleware(logger, time.RFC3339, true))
		engine.Use(middlewares.RecoveryMiddleware(logger, true))
		engine.Use(middlewares.TelemetryMiddleware(logger, tele))

		instance = &Server{
			engine:   engine,
			service:  svc,
			registry: registry,
			logger:   logger,
			tele:     tele,
		}

		instance.setupRoutes(cfg)
	})

	return instance
}

func (s *Server) setupRoutes(cfg *config.Config) {
	metricsMW := middlewares.NewMetricsMiddleware(s.logger, s.tele)
	s.engine.Use(metricsMW.Handler())

	metricsHandler := handlers.NewMetricsHandler(s.logger, metricsMW.GetHTTPMetrics())
	weatherHandler := handlers.NewWeatherHandler(s.service, metricsHandler, cfg.Lookup.DefaultUnits, s.logger)
	toolsHandler := handlers.NewToolsHandler(s.registry, metricsHandler, s.logger)

	// Business endpoints
	s.engine.GET("/weather", weatherHandler.GetWeather)

	// Tool discovery and invocation for the voice-session host
	s.engine.GET("/tools", toolsHandler.ListTools)
	s.engine.POST("/tools/:name", toolsHandler.InvokeTool)

	// Health endpoints (Kubernetes friendly)
	s.engine.GET("/health", handlers.NewHealthHandler(s.logger).Health)
	s.engine.GET("/health/live", handlers.NewHealthHandler(s.logger).Liveness)
	s.engine.GET("/health/ready", handlers.NewHealthHandler(s.logger).Readiness)

	// Monitoring endpoints
	s.engine.GET("/metrics", metricsHandler.ServeMetrics)
}

func (s *Server) Start() error {
	cfg := config.GetConfig()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}
