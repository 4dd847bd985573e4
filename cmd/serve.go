package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/voiceweather/weather-agent/internal/config"
	"github.com/voiceweather/weather-agent/internal/server"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the weather tool host",
	Long:  `Start the HTTP server that exposes the weather lookup tool, health checks, and metrics.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()

	log.Info("Starting weather tool host",
		zap.String("config_path", configPath),
		zap.Bool("telemetry_enabled", cfg.Telemetry.Enabled),
		zap.Int("server_port", cfg.Server.Port))

	srv := server.NewServer(log.Logger, tele)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		log.Error("Server error", zap.Error(err))
		return err
	case <-cmd.Context().Done():
		log.Info("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(); err != nil {
			log.Error("Error during server shutdown", zap.Error(err))
			return err
		}

		if err := tele.Shutdown(shutdownCtx); err != nil {
			log.Warn("Error during telemetry shutdown", zap.Error(err))
		}

		log.Info("Server shutdown complete")
		return nil
	}
}
