package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/voiceweather/weather-agent/internal/config"
	"github.com/voiceweather/weather-agent/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

// Request is a single weather lookup. Units defaults to metric when empty.
type Request struct {
	City  string `json:"city" validate:"required"`
	Units string `json:"units" validate:"omitempty,oneof=metric imperial"`
}

// GeoResult is the first match of a geocoding query. Transient; never
// persisted or cached.
type GeoResult struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Country   string  `json:"country"`
}

type DailyForecastEntry struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	MaxTemp     float64 `json:"max_temp"`
	MinTemp     float64 `json:"min_temp"`
}

// Result is the sole output of a lookup. Units is "Celsius" or
// "Fahrenheit", fully determined by the request units.
type Result struct {
	City        string               `json:"city"`
	Country     string               `json:"country"`
	Temperature float64              `json:"temperature"`
	FeelsLike   float64              `json:"feels_like"`
	Humidity    int                  `json:"humidity"`
	Description string               `json:"description"`
	Units       string               `json:"units"`
	Forecast    []DailyForecastEntry `json:"forecast"`
}

type Service interface {
	Lookup(ctx context.Context, req Request) (*Result, error)
	Name() string
}

var validate = validator.New()

// Client resolves a city to coordinates via the geocoding endpoint, then
// fetches current conditions and a short daily forecast. The two calls are
// strictly sequential and share one HTTP client with a fixed timeout.
type Client struct {
	geocodingBaseURL string
	forecastBaseURL  string
	forecastDays     int
	client           *http.Client
	logger           *zap.Logger
	tele             *telemetry.Telemetry
}

func NewClientWithConfig(cfg config.LookupConfig, logger *zap.Logger, tele *telemetry.Telemetry) *Client {
	return &Client{
		geocodingBaseURL: cfg.GeocodingBaseURL,
		forecastBaseURL:  cfg.ForecastBaseURL,
		forecastDays:     cfg.ForecastDays,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		logger: logger,
		tele:   tele,
	}
}

func (c *Client) Name() string {
	return "open-meteo"
}

func (c *Client) Lookup(ctx context.Context, req Request) (*Result, error) {
	tracer := c.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "lookup.Lookup")
	defer span.End()

	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid lookup request: %w", err)
	}

	units := req.Units
	if units == "" {
		units = UnitsMetric
	}

	span.SetAttributes(
		attribute.String("city", req.City),
		attribute.String("units", units),
	)

	geo, err := c.geocode(ctx, req.City)
	if err != nil {
		span.SetAttributes(attribute.Bool("success", false))
		c.tele.RecordError(ctx, err, nil)
		return nil, err
	}

	c.logger.Debug("Resolved city",
		zap.String("city", req.City),
		zap.String("resolved_name", geo.Name),
		zap.String("country", geo.Country),
		zap.Float64("lat", geo.Latitude),
		zap.Float64("lon", geo.Longitude))

	fc, err := c.fetchForecast(ctx, geo, units)
	if err != nil {
		span.SetAttributes(attribute.Bool("success", false))
		c.tele.RecordError(ctx, err, nil)
		return nil, err
	}

	result := &Result{
		City:        geo.Name,
		Country:     geo.Country,
		Temperature: fc.Current.Temperature,
		FeelsLike:   fc.Current.ApparentTemperature,
		Humidity:    fc.Current.RelativeHumidity,
		Description: DescribeWeatherCode(fc.Current.WeatherCode),
		Units:       unitLabel(units),
		Forecast:    buildForecast(fc.Daily, c.forecastDays),
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.String("description", result.Description),
		attribute.Int("forecast_days", len(result.Forecast)),
	)

	c.logger.Info("Weather lookup completed",
		zap.String("city", result.City),
		zap.String("description", result.Description),
		zap.Float64("temperature", result.Temperature),
		zap.Int("forecast_days", len(result.Forecast)))

	return result, nil
}

// geocode asks for exactly one match; the provider's own ranking decides
// which. First match wins even for ambiguous names.
func (c *Client) geocode(ctx context.Context, city string) (*GeoResult, error) {
	tracer := c.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "lookup.geocode")
	defer span.End()

	u, err := url.Parse(fmt.Sprintf("%s/search", c.geocodingBaseURL))
	if err != nil {
		return nil, newLocationServiceUnavailable(err)
	}

	q := u.Query()
	q.Set("name", city)
	q.Set("count", "1")
	q.Set("language", "en")
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, newLocationServiceUnavailable(err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Warn("Geocoding call failed", zap.String("city", city), zap.Error(err))
		return nil, classifyTransportError(err, newLocationServiceUnavailable(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Geocoding returned non-OK status",
			zap.String("city", city),
			zap.Int("status", resp.StatusCode))
		return nil, newLocationServiceUnavailable(fmt.Errorf("geocoding request failed with status: %d", resp.StatusCode))
	}

	var decoded geocodingResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, newLocationServiceUnavailable(fmt.Errorf("decoding geocoding response: %w", err))
	}

	if len(decoded.Results) == 0 {
		return nil, newCityNotFound(city)
	}

	first := decoded.Results[0]
	name := first.Name
	if name == "" {
		name = city
	}

	span.SetAttributes(
		attribute.String("resolved_name", name),
		attribute.String("country", first.Country),
	)

	return &GeoResult{
		Latitude:  first.Latitude,
		Longitude: first.Longitude,
		Name:      name,
		Country:   first.Country,
	}, nil
}

func (c *Client) fetchForecast(ctx context.Context, geo *GeoResult, units string) (*forecastResponse, error) {
	tracer := c.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "lookup.fetchForecast")
	defer span.End()

	u, err := url.Parse(fmt.Sprintf("%s/forecast", c.forecastBaseURL))
	if err != nil {
		return nil, newWeatherServiceUnavailable(err)
	}

	// The upstream converts temperatures; no client-side unit math ever.
	q := u.Query()
	q.Set("latitude", fmt.Sprintf("%.6f", geo.Latitude))
	q.Set("longitude", fmt.Sprintf("%.6f", geo.Longitude))
	q.Set("current", "temperature_2m,apparent_temperature,weather_code,relative_humidity_2m")
	q.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min")
	q.Set("timezone", "auto")
	q.Set("temperature_unit", temperatureUnit(units))
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, newWeatherServiceUnavailable(err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Warn("Forecast call failed",
			zap.Float64("lat", geo.Latitude),
			zap.Float64("lon", geo.Longitude),
			zap.Error(err))
		return nil, classifyTransportError(err, newWeatherServiceUnavailable(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Forecast returned non-OK status",
			zap.Float64("lat", geo.Latitude),
			zap.Float64("lon", geo.Longitude),
			zap.Int("status", resp.StatusCode))
		return nil, newWeatherServiceUnavailable(fmt.Errorf("forecast request failed with status: %d", resp.StatusCode))
	}

	var decoded forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, newWeatherServiceUnavailable(fmt.Errorf("decoding forecast response: %w", err))
	}

	span.SetAttributes(attribute.Int("daily_entries", len(decoded.Daily.Time)))

	return &decoded, nil
}

// buildForecast pairs the parallel daily arrays into entries. The arrays
// carry no length guarantee, so they are truncated to the shortest before
// indexing, then capped at maxDays.
func buildForecast(daily forecastDaily, maxDays int) []DailyForecastEntry {
	n := len(daily.Time)
	if len(daily.WeatherCode) < n {
		n = len(daily.WeatherCode)
	}
	if len(daily.TemperatureMax) < n {
		n = len(daily.TemperatureMax)
	}
	if len(daily.TemperatureMin) < n {
		n = len(daily.TemperatureMin)
	}
	if n > maxDays {
		n = maxDays
	}

	forecast := make([]DailyForecastEntry, 0, n)
	for i := 0; i < n; i++ {
		forecast = append(forecast, DailyForecastEntry{
			Date:        daily.Time[i],
			Description: DescribeWeatherCode(daily.WeatherCode[i]),
			MaxTemp:     daily.TemperatureMax[i],
			MinTemp:     daily.TemperatureMin[i],
		})
	}
	return forecast
}

// classifyTransportError distinguishes "the network itself is down" from
// "the service did not answer". Timeouts count as the service being
// unavailable, not the network.
func classifyTransportError(err error, fallback *Error) *Error {
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return newNetworkUnreachable(err)
	}
	return fallback
}

func temperatureUnit(units string) string {
	if units == UnitsImperial {
		return "fahrenheit"
	}
	return "celsius"
}

func unitLabel(units string) string {
	if units == UnitsImperial {
		return "Fahrenheit"
	}
	return "Celsius"
}

type geocodingResponse struct {
	Results []geocodingMatch `json:"results"`
}

type geocodingMatch struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Country   string  `json:"country"`
}

type forecastResponse struct {
	Current forecastCurrent `json:"current"`
	Daily   forecastDaily   `json:"daily"`
}

type forecastCurrent struct {
	Temperature         float64 `json:"temperature_2m"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	WeatherCode         int     `json:"weather_code"`
	RelativeHumidity    int     `json:"relative_humidity_2m"`
}

type forecastDaily struct {
	Time           []string  `json:"time"`
	WeatherCode    []int     `json:"weather_code"`
	TemperatureMax []float64 `json:"temperature_2m_max"`
	TemperatureMin []float64 `json:"temperature_2m_min"`
}
