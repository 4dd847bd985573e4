package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/voiceweather/weather-agent/internal/config"
	"github.com/voiceweather/weather-agent/pkg/logger"
	"github.com/voiceweather/weather-agent/pkg/telemetry"
	"go.uber.org/zap"
)

var (
	configPath string
	log        *logger.Logger
	tele       *telemetry.Telemetry
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weather-agent",
		Short: "Voice weather lookup service",
		Long:  `A weather lookup backend for a voice assistant: it resolves a city name to coordinates, fetches current conditions and a short forecast, and exposes the lookup as an agent tool.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeServices()
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default: ./config.yaml)")

	cmd.AddCommand(serveCmd)
	cmd.AddCommand(lookupCmd)

	return cmd
}

func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		if log != nil {
			log.Info("Received shutdown signal", zap.String("signal", sig.String()))
		}
		cancel()
	}()

	return rootCmd().ExecuteContext(ctx)
}

func initializeServices() error {
	// 1. Load config (fails fast on a broken or incomplete configuration)
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Set config
	// Having config in atomic allows changing it during runtime
	config.SetConfig(cfg)

	// 3. Initialize logger
	log, err = logger.New(cfg.Logging)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	tele, err = telemetry.New(context.Background(), cfg.Telemetry)
	if err != nil {
		log.Warn("Failed to initialize telemetry", zap.Error(err))
	}

	return nil
}
