package logger

import (
	"github.com/voiceweather/weather-agent/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	*zap.Logger
}

func New(cfg config.LoggingConfig) (*Logger, error) {
	var zcfg zap.Config
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	if cfg.OutputPath != "" {
		zcfg.OutputPaths = []string{cfg.OutputPath}
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{logger}, nil
}

func NewDevelopment() *Logger {
	logger, _ := zap.NewDevelopment()
	return &Logger{logger}
}

func NewProduction() *Logger {
	logger, _ := zap.NewProduction()
	return &Logger{logger}
}

func (l *Logger) Sync() error {
	return l.Logger.Sync()
}
