package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultDays = 3
	maxDays     = 7
)

// Config holds the forecast client settings.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client fetches forecasts from an Open-Meteo compatible endpoint. It is
// stateless; one GET request per call, no retries, no caching.
type Client struct {
	logger     *zap.Logger
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// Query identifies the place and horizon of a forecast request.
type Query struct {
	Latitude  float64
	Longitude float64
	Days      int
}

// Current describes the conditions at request time.
type Current struct {
	TemperatureC         float64 `json:"temperature_c"`
	ApparentTemperatureC float64 `json:"apparent_temperature_c"`
	HumidityPercent      float64 `json:"humidity_percent"`
	WindSpeedKmh         float64 `json:"wind_speed_kmh"`
	WeatherCode          int     `json:"weather_code"`
	Description          string  `json:"description"`
}

// Day summarizes one forecast day.
type Day struct {
	Date                   string  `json:"date"`
	MinTemperatureC        float64 `json:"min_temperature_c"`
	MaxTemperatureC        float64 `json:"max_temperature_c"`
	PrecipitationChancePct float64 `json:"precipitation_chance_percent"`
	WeatherCode            int     `json:"weather_code"`
	Description            string  `json:"description"`
}

// Forecast is the structured result returned to the caller.
type Forecast struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Current   Current `json:"current"`
	Days      []Day   `json:"days"`
}

// New creates a forecast client.
func New(logger *zap.Logger, cfg Config) *Client {
	return &Client{
		logger:    logger,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// apiResponse mirrors the Open-Meteo forecast JSON.
type apiResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Current   struct {
		Temperature         float64 `json:"temperature_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		RelativeHumidity    float64 `json:"relative_humidity_2m"`
		WindSpeed           float64 `json:"wind_speed_10m"`
		WeatherCode         int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		Time                     []string  `json:"time"`
		TemperatureMax           []float64 `json:"temperature_2m_max"`
		TemperatureMin           []float64 `json:"temperature_2m_min"`
		PrecipitationProbability []float64 `json:"precipitation_probability_max"`
		WeatherCode              []int     `json:"weather_code"`
	} `json:"daily"`
}

// Forecast fetches current conditions and daily summaries for a coordinate.
func (c *Client) Forecast(ctx context.Context, q Query) (*Forecast, error) {
	if q.Latitude < -90 || q.Latitude > 90 {
		return nil, fmt.Errorf("latitude must be between -90 and 90, got: %g", q.Latitude)
	}
	if q.Longitude < -180 || q.Longitude > 180 {
		return nil, fmt.Errorf("longitude must be between -180 and 180, got: %g", q.Longitude)
	}

	days := q.Days
	if days == 0 {
		days = defaultDays
	}
	if days < 1 {
		days = 1
	}
	if days > maxDays {
		days = maxDays
	}

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%g", q.Latitude))
	params.Set("longitude", fmt.Sprintf("%g", q.Longitude))
	params.Set("current", "temperature_2m,apparent_temperature,relative_humidity_2m,wind_speed_10m,weather_code")
	params.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_probability_max,weather_code")
	params.Set("forecast_days", fmt.Sprintf("%d", days))
	params.Set("timezone", "auto")

	reqURL := c.baseURL + "/v1/forecast?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating forecast request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug("fetching forecast",
		zap.Float64("latitude", q.Latitude),
		zap.Float64("longitude", q.Longitude),
		zap.Int("days", days))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather backend returned status %d", resp.StatusCode)
	}

	var ar apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("decoding forecast response: %w", err)
	}

	return mapForecast(&ar), nil
}

func mapForecast(ar *apiResponse) *Forecast {
	f := &Forecast{
		Latitude:  ar.Latitude,
		Longitude: ar.Longitude,
		Current: Current{
			TemperatureC:         ar.Current.Temperature,
			ApparentTemperatureC: ar.Current.ApparentTemperature,
			HumidityPercent:      ar.Current.RelativeHumidity,
			WindSpeedKmh:         ar.Current.WindSpeed,
			WeatherCode:          ar.Current.WeatherCode,
			Description:          DescribeWeatherCode(ar.Current.WeatherCode),
		},
	}

	for i, date := range ar.Daily.Time {
		day := Day{Date: date}
		if i < len(ar.Daily.TemperatureMin) {
			day.MinTemperatureC = ar.Daily.TemperatureMin[i]
		}
		if i < len(ar.Daily.TemperatureMax) {
			day.MaxTemperatureC = ar.Daily.TemperatureMax[i]
		}
		if i < len(ar.Daily.PrecipitationProbability) {
			day.PrecipitationChancePct = ar.Daily.PrecipitationProbability[i]
		}
		if i < len(ar.Daily.WeatherCode) {
			day.WeatherCode = ar.Daily.WeatherCode[i]
			day.Description = DescribeWeatherCode(ar.Daily.WeatherCode[i])
		}
		f.Days = append(f.Days, day)
	}

	return f
}

// wmoDescriptions maps WMO weather interpretation codes to short text.
var wmoDescriptions = map[int]string{
	0:  "clear sky",
	1:  "mainly clear",
	2:  "partly cloudy",
	3:  "overcast",
	45: "fog",
	48: "depositing rime fog",
	51: "light drizzle",
	53: "moderate drizzle",
	55: "dense drizzle",
	56: "light freezing drizzle",
	57: "dense freezing drizzle",
	61: "slight rain",
	63: "moderate rain",
	65: "heavy rain",
	66: "light freezing rain",
	67: "heavy freezing rain",
	71: "slight snowfall",
	73: "moderate snowfall",
	75: "heavy snowfall",
	77: "snow grains",
	80: "slight rain showers",
	81: "moderate rain showers",
	82: "violent rain showers",
	85: "slight snow showers",
	86: "heavy snow showers",
	95: "thunderstorm",
	96: "thunderstorm with slight hail",
	99: "thunderstorm with heavy hail",
}

// DescribeWeatherCode translates a WMO code into a short description.
func DescribeWeatherCode(code int) string {
	if desc, ok := wmoDescriptions[code]; ok {
		return desc
	}
	return fmt.Sprintf("unknown conditions (code %d)", code)
}
