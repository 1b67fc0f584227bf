package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const sampleResponse = `{
	"latitude": 52.52,
	"longitude": 13.41,
	"current": {
		"temperature_2m": 18.3,
		"apparent_temperature": 17.1,
		"relative_humidity_2m": 72,
		"wind_speed_10m": 11.5,
		"weather_code": 2
	},
	"daily": {
		"time": ["2026-08-29", "2026-08-30"],
		"temperature_2m_max": [21.4, 19.8],
		"temperature_2m_min": [12.1, 11.3],
		"precipitation_probability_max": [10, 55],
		"weather_code": [2, 61]
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := New(zaptest.NewLogger(t), Config{
		BaseURL:   srv.URL,
		Timeout:   5 * time.Second,
		UserAgent: "execbox-test/1.0",
	})
	return client, srv
}

func TestForecastMapsResponse(t *testing.T) {
	var gotQuery map[string]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"latitude":      r.URL.Query().Get("latitude"),
			"longitude":     r.URL.Query().Get("longitude"),
			"forecast_days": r.URL.Query().Get("forecast_days"),
			"user_agent":    r.Header.Get("User-Agent"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	})

	f, err := client.Forecast(context.Background(), Query{Latitude: 52.52, Longitude: 13.41, Days: 2})
	require.NoError(t, err)

	assert.Equal(t, "52.52", gotQuery["latitude"])
	assert.Equal(t, "13.41", gotQuery["longitude"])
	assert.Equal(t, "2", gotQuery["forecast_days"])
	assert.Equal(t, "execbox-test/1.0", gotQuery["user_agent"])

	assert.InDelta(t, 52.52, f.Latitude, 0.001)
	assert.InDelta(t, 18.3, f.Current.TemperatureC, 0.001)
	assert.InDelta(t, 72.0, f.Current.HumidityPercent, 0.001)
	assert.Equal(t, 2, f.Current.WeatherCode)
	assert.Equal(t, "partly cloudy", f.Current.Description)

	require.Len(t, f.Days, 2)
	assert.Equal(t, "2026-08-29", f.Days[0].Date)
	assert.InDelta(t, 12.1, f.Days[0].MinTemperatureC, 0.001)
	assert.InDelta(t, 21.4, f.Days[0].MaxTemperatureC, 0.001)
	assert.Equal(t, "slight rain", f.Days[1].Description)
	assert.InDelta(t, 55.0, f.Days[1].PrecipitationChancePct, 0.001)
}

func TestForecastDaysClamping(t *testing.T) {
	tests := []struct {
		name     string
		days     int
		expected string
	}{
		{"ZeroUsesDefault", 0, "3"},
		{"NegativeClampsToOne", -2, "1"},
		{"AboveMaxClampsToSeven", 14, "7"},
		{"InRangePassesThrough", 5, "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				got = r.URL.Query().Get("forecast_days")
				w.Write([]byte(sampleResponse))
			})

			_, err := client.Forecast(context.Background(), Query{Latitude: 1, Longitude: 1, Days: tt.days})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestForecastRejectsBadCoordinates(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be sent for invalid coordinates")
	})

	_, err := client.Forecast(context.Background(), Query{Latitude: 91, Longitude: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude")

	_, err = client.Forecast(context.Background(), Query{Latitude: 0, Longitude: -181})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "longitude")
}

func TestForecastBackendError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Forecast(context.Background(), Query{Latitude: 1, Longitude: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestForecastMalformedBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := client.Forecast(context.Background(), Query{Latitude: 1, Longitude: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding forecast response")
}

func TestDescribeWeatherCode(t *testing.T) {
	assert.Equal(t, "clear sky", DescribeWeatherCode(0))
	assert.Equal(t, "thunderstorm", DescribeWeatherCode(95))
	assert.Contains(t, DescribeWeatherCode(42), "unknown")
}
