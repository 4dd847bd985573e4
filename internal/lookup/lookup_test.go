package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/voiceweather/weather-agent/internal/config"
	"github.com/voiceweather/weather-agent/pkg/telemetry"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, geo, forecast http.HandlerFunc) (*Client, func()) {
	t.Helper()

	geoSrv := httptest.NewServer(geo)
	fcSrv := httptest.NewServer(forecast)

	cfg := config.LookupConfig{
		GeocodingBaseURL: geoSrv.URL,
		ForecastBaseURL:  fcSrv.URL,
		Timeout:          10,
		ForecastDays:     5,
		DefaultUnits:     "metric",
	}

	client := NewClientWithConfig(cfg, zaptest.NewLogger(t), &telemetry.Telemetry{})

	return client, func() {
		geoSrv.Close()
		fcSrv.Close()
	}
}

func geoLondon(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, `{"results":[{"latitude":51.50853,"longitude":-0.12574,"name":"London","country":"United Kingdom"}]}`)
}

func forecastBody(currentCode int, days int) string {
	times := make([]string, 0, days)
	codes := make([]string, 0, days)
	maxTemps := make([]string, 0, days)
	minTemps := make([]string, 0, days)
	for i := 0; i < days; i++ {
		times = append(times, fmt.Sprintf("\"2026-08-%02d\"", 25+i))
		codes = append(codes, "61")
		maxTemps = append(maxTemps, "21.4")
		minTemps = append(minTemps, "12.9")
	}
	return fmt.Sprintf(`{
		"current": {"temperature_2m": 18.3, "apparent_temperature": 17.1, "weather_code": %d, "relative_humidity_2m": 72},
		"daily": {
			"time": [%s],
			"weather_code": [%s],
			"temperature_2m_max": [%s],
			"temperature_2m_min": [%s]
		}
	}`, currentCode,
		strings.Join(times, ","),
		strings.Join(codes, ","),
		strings.Join(maxTemps, ","),
		strings.Join(minTemps, ","))
}

func TestLookupMetricUnits(t *testing.T) {
	forecast := func(w http.ResponseWriter, r *http.Request) {
		if unit := r.URL.Query().Get("temperature_unit"); unit != "celsius" {
			t.Errorf("Expected temperature_unit=celsius, got %q", unit)
		}
		fmt.Fprint(w, forecastBody(2, 3))
	}

	client, cleanup := newTestClient(t, geoLondon, forecast)
	defer cleanup()

	result, err := client.Lookup(context.Background(), Request{City: "London", Units: "metric"})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if result.Units != "Celsius" {
		t.Errorf("Expected units Celsius, got %q", result.Units)
	}
	if result.City != "London" {
		t.Errorf("Expected city London, got %q", result.City)
	}
	if result.Country != "United Kingdom" {
		t.Errorf("Expected country United Kingdom, got %q", result.Country)
	}
	if result.Temperature != 18.3 {
		t.Errorf("Expected temperature 18.3, got %v", result.Temperature)
	}
	if result.FeelsLike != 17.1 {
		t.Errorf("Expected feels_like 17.1, got %v", result.FeelsLike)
	}
	if result.Humidity < 0 || result.Humidity > 100 {
		t.Errorf("Humidity out of range: %d", result.Humidity)
	}
	if result.Description != "partly cloudy" {
		t.Errorf("Expected description 'partly cloudy', got %q", result.Description)
	}
	if len(result.Forecast) != 3 {
		t.Fatalf("Expected 3 forecast entries, got %d", len(result.Forecast))
	}
	if result.Forecast[0].Date != "2026-08-25" {
		t.Errorf("Expected first forecast date 2026-08-25, got %q", result.Forecast[0].Date)
	}
	if result.Forecast[0].Description != "slight rain" {
		t.Errorf("Expected forecast description 'slight rain', got %q", result.Forecast[0].Description)
	}
}

func TestLookupImperialUnits(t *testing.T) {
	forecast := func(w http.ResponseWriter, r *http.Request) {
		if unit := r.URL.Query().Get("temperature_unit"); unit != "fahrenheit" {
			t.Errorf("Expected temperature_unit=fahrenheit, got %q", unit)
		}
		fmt.Fprint(w, forecastBody(0, 1))
	}

	client, cleanup := newTestClient(t, geoLondon, forecast)
	defer cleanup()

	result, err := client.Lookup(context.Background(), Request{City: "London", Units: "imperial"})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if result.Units != "Fahrenheit" {
		t.Errorf("Expected units Fahrenheit, got %q", result.Units)
	}
}

func TestLookupDefaultsToMetric(t *testing.T) {
	forecast := func(w http.ResponseWriter, r *http.Request) {
		if unit := r.URL.Query().Get("temperature_unit"); unit != "celsius" {
			t.Errorf("Expected temperature_unit=celsius for empty units, got %q", unit)
		}
		fmt.Fprint(w, forecastBody(0, 1))
	}

	client, cleanup := newTestClient(t, geoLondon, forecast)
	defer cleanup()

	result, err := client.Lookup(context.Background(), Request{City: "London"})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if result.Units != "Celsius" {
		t.Errorf("Expected units Celsius, got %q", result.Units)
	}
}

func TestLookupGeocodingQuery(t *testing.T) {
	geo := func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("name") != "London" {
			t.Errorf("Expected name=London, got %q", q.Get("name"))
		}
		if q.Get("count") != "1" {
			t.Errorf("Expected count=1, got %q", q.Get("count"))
		}
		if q.Get("language") != "en" {
			t.Errorf("Expected language=en, got %q", q.Get("language"))
		}
		if q.Get("format") != "json" {
			t.Errorf("Expected format=json, got %q", q.Get("format"))
		}
		geoLondon(w, r)
	}
	forecast := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, forecastBody(0, 1))
	}

	client, cleanup := newTestClient(t, geo, forecast)
	defer cleanup()

	if _, err := client.Lookup(context.Background(), Request{City: "London"}); err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
}

func TestLookupCityNotFound(t *testing.T) {
	geo := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	}
	forecast := func(w http.ResponseWriter, r *http.Request) {
		t.Error("Forecast endpoint should not be called when geocoding finds nothing")
	}

	client, cleanup := newTestClient(t, geo, forecast)
	defer cleanup()

	_, err := client.Lookup(context.Background(), Request{City: "Zzzznotarealplace"})
	if err == nil {
		t.Fatal("Expected an error for an unknown city")
	}

	if KindOf(err) != KindCityNotFound {
		t.Errorf("Expected kind %q, got %q", KindCityNotFound, KindOf(err))
	}
	if !strings.Contains(err.Error(), "Zzzznotarealplace") {
		t.Errorf("Expected message to echo the input city, got %q", err.Error())
	}
}

func TestLookupGeocodingServerError(t *testing.T) {
	geo := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}

	client, cleanup := newTestClient(t, geo, nil)
	defer cleanup()

	_, err := client.Lookup(context.Background(), Request{City: "London"})
	if KindOf(err) != KindLocationServiceUnavailable {
		t.Errorf("Expected kind %q, got %q (err=%v)", KindLocationServiceUnavailable, KindOf(err), err)
	}
}

func TestLookupForecastServerError(t *testing.T) {
	forecast := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}

	client, cleanup := newTestClient(t, geoLondon, forecast)
	defer cleanup()

	_, err := client.Lookup(context.Background(), Request{City: "London"})
	if KindOf(err) != KindWeatherServiceUnavailable {
		t.Errorf("Expected kind %q, got %q (err=%v)", KindWeatherServiceUnavailable, KindOf(err), err)
	}
}

func TestLookupMalformedForecastBody(t *testing.T) {
	forecast := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"current": not-json`)
	}

	client, cleanup := newTestClient(t, geoLondon, forecast)
	defer cleanup()

	_, err := client.Lookup(context.Background(), Request{City: "London"})
	if KindOf(err) != KindWeatherServiceUnavailable {
		t.Errorf("Expected kind %q for malformed body, got %q (err=%v)", KindWeatherServiceUnavailable, KindOf(err), err)
	}
}

func TestLookupConnectionRefused(t *testing.T) {
	geoSrv := httptest.NewServer(http.HandlerFunc(geoLondon))
	geoSrv.Close() // nothing listens on the address anymore

	cfg := config.LookupConfig{
		GeocodingBaseURL: geoSrv.URL,
		ForecastBaseURL:  geoSrv.URL,
		Timeout:          10,
		ForecastDays:     5,
	}
	client := NewClientWithConfig(cfg, zaptest.NewLogger(t), &telemetry.Telemetry{})

	_, err := client.Lookup(context.Background(), Request{City: "London"})
	if err == nil {
		t.Fatal("Expected an error when the geocoding service is unreachable")
	}

	kind := KindOf(err)
	if kind != KindNetworkUnreachable && kind != KindLocationServiceUnavailable {
		t.Errorf("Expected a transport failure kind, got %q (err=%v)", kind, err)
	}
}

func TestLookupForecastCappedAtFiveDays(t *testing.T) {
	forecast := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, forecastBody(0, 7))
	}

	client, cleanup := newTestClient(t, geoLondon, forecast)
	defer cleanup()

	result, err := client.Lookup(context.Background(), Request{City: "London"})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if len(result.Forecast) != 5 {
		t.Errorf("Expected forecast capped at 5 entries, got %d", len(result.Forecast))
	}
}

func TestLookupRaggedDailyArrays(t *testing.T) {
	// Shorter weather_code array than time array; must truncate, not panic.
	forecast := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"current": {"temperature_2m": 10, "apparent_temperature": 9, "weather_code": 0, "relative_humidity_2m": 50},
			"daily": {
				"time": ["2026-08-25","2026-08-26","2026-08-27","2026-08-28"],
				"weather_code": [0, 1],
				"temperature_2m_max": [20, 21, 22, 23],
				"temperature_2m_min": [10, 11, 12, 13]
			}
		}`)
	}

	client, cleanup := newTestClient(t, geoLondon, forecast)
	defer cleanup()

	result, err := client.Lookup(context.Background(), Request{City: "London"})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if len(result.Forecast) != 2 {
		t.Errorf("Expected forecast truncated to 2 entries, got %d", len(result.Forecast))
	}
}

func TestLookupMissingDailyBlock(t *testing.T) {
	forecast := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"current": {"temperature_2m": 10, "apparent_temperature": 9, "weather_code": 0, "relative_humidity_2m": 50}}`)
	}

	client, cleanup := newTestClient(t, geoLondon, forecast)
	defer cleanup()

	result, err := client.Lookup(context.Background(), Request{City: "London"})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if len(result.Forecast) != 0 {
		t.Errorf("Expected empty forecast without a daily block, got %d entries", len(result.Forecast))
	}
}

func TestLookupUnknownWeatherCode(t *testing.T) {
	forecast := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, forecastBody(999, 1))
	}

	client, cleanup := newTestClient(t, geoLondon, forecast)
	defer cleanup()

	result, err := client.Lookup(context.Background(), Request{City: "London"})
	if err != nil {
		t.Fatalf("Unknown weather code must not fail the lookup: %v", err)
	}

	if result.Description != UnknownConditions {
		t.Errorf("Expected description %q, got %q", UnknownConditions, result.Description)
	}
}

func TestLookupEmptyCityRejected(t *testing.T) {
	client, cleanup := newTestClient(t, geoLondon, nil)
	defer cleanup()

	_, err := client.Lookup(context.Background(), Request{City: ""})
	if err == nil {
		t.Fatal("Expected an error for an empty city")
	}

	var le *Error
	if errors.As(err, &le) {
		t.Errorf("Empty city should be a validation error, not a lookup failure (got kind %q)", le.Kind)
	}
}

func TestBuildForecastTruncation(t *testing.T) {
	daily := forecastDaily{
		Time:           []string{"2026-08-25", "2026-08-26", "2026-08-27"},
		WeatherCode:    []int{0, 2, 95},
		TemperatureMax: []float64{20, 21, 22},
		TemperatureMin: []float64{10, 11, 12},
	}

	forecast := buildForecast(daily, 2)
	if len(forecast) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(forecast))
	}
	if forecast[1].Description != "partly cloudy" {
		t.Errorf("Expected 'partly cloudy', got %q", forecast[1].Description)
	}
	if forecast[1].MaxTemp != 21 || forecast[1].MinTemp != 11 {
		t.Errorf("Unexpected temps: max=%v min=%v", forecast[1].MaxTemp, forecast[1].MinTemp)
	}
}
