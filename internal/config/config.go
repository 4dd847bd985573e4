package config

import (
	"sync/atomic"
)

var configValue atomic.Value

func GetConfig() *Config {
	return configValue.Load().(*Config)
}

func SetConfig(cfg *Config) {
	configValue.Store(cfg)
}

type Config struct {
	Version     string          `mapstructure:"version"`
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Lookup      LookupConfig    `mapstructure:"lookup"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port" validate:"min=1,max=65535"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
}

// LookupConfig configures the two upstream calls behind a weather lookup.
// Timeout (seconds) applies uniformly to both the geocoding and the
// forecast call.
type LookupConfig struct {
	GeocodingBaseURL string          `mapstructure:"geocoding_base_url" validate:"required,url"`
	ForecastBaseURL  string          `mapstructure:"forecast_base_url" validate:"required,url"`
	Timeout          int             `mapstructure:"timeout" validate:"min=1"`
	ForecastDays     int             `mapstructure:"forecast_days" validate:"min=0,max=16"`
	DefaultUnits     string          `mapstructure:"default_units" validate:"oneof=metric imperial"`
	RateLimit        RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Version:     "1.0.0",
		Environment: "development",
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  60,
		},
		Lookup: LookupConfig{
			GeocodingBaseURL: "https://geocoding-api.open-meteo.com/v1",
			ForecastBaseURL:  "https://api.open-meteo.com/v1",
			Timeout:          10,
			ForecastDays:     5,
			DefaultUnits:     "metric",
			RateLimit: RateLimitConfig{
				Enabled: false,
				RPS:     1.0,
				Burst:   5,
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "",
		},
		Telemetry: TelemetryConfig{
			Enabled:  false,
			Endpoint: "tempo:4317",
		},
	}
}
