package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/voiceweather/weather-agent/internal/lookup"
	"go.uber.org/zap"
)

// WeatherTool exposes weather lookups as the "lookup_weather" tool. The
// reasoning layer extracts the city (and optionally units) from user
// speech and passes them here.
type WeatherTool struct {
	service lookup.Service
	logger  *zap.Logger
}

func NewWeatherTool(service lookup.Service, logger *zap.Logger) *WeatherTool {
	return &WeatherTool{
		service: service,
		logger:  logger,
	}
}

func (t *WeatherTool) Name() string {
	return "lookup_weather"
}

func (t *WeatherTool) Description() string {
	return "Look up current weather conditions and a short daily forecast for a city."
}

func (t *WeatherTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"city": map[string]any{
				"type":        "string",
				"description": "Name of the city to get weather for, e.g. \"London\" or \"Tokyo\".",
			},
			"units": map[string]any{
				"type":        "string",
				"enum":        []string{lookup.UnitsMetric, lookup.UnitsImperial},
				"description": "Temperature units: metric for Celsius (default), imperial for Fahrenheit.",
			},
		},
		"required": []string{"city"},
	}
}

func (t *WeatherTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	city, ok := args["city"].(string)
	if !ok || strings.TrimSpace(city) == "" {
		return nil, errors.New("Please tell me which city you'd like the weather for.")
	}

	units := lookup.UnitsMetric
	if raw, present := args["units"]; present {
		s, ok := raw.(string)
		if !ok || (s != lookup.UnitsMetric && s != lookup.UnitsImperial) {
			return nil, errors.New("Units must be either 'metric' or 'imperial'.")
		}
		units = s
	}

	t.logger.Debug("Executing weather tool",
		zap.String("city", city),
		zap.String("units", units))

	result, err := t.service.Lookup(ctx, lookup.Request{City: city, Units: units})
	if err != nil {
		// Lookup failures already carry user-safe messages.
		t.logger.Warn("Weather tool failed",
			zap.String("city", city),
			zap.String("kind", string(lookup.KindOf(err))),
			zap.Error(err))
		return nil, err
	}

	return resultToMap(result)
}

func resultToMap(result *lookup.Result) (map[string]any, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encoding tool result: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding tool result: %w", err)
	}
	return out, nil
}
