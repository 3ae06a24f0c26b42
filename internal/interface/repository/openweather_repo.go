package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"silentskies-service/internal/domain/entity"
	"silentskies-service/pkg/logger"
	"silentskies-service/pkg/metrics"
)

const openWeatherProvider = "openweathermap"

// OpenWeatherRepository fetches current conditions from OpenWeatherMap
type OpenWeatherRepository struct {
	apiKey  string
	baseURL string
	client  *http.Client
	metrics *metrics.Metrics
	logger  logger.Logger
}

// NewOpenWeatherRepository creates a new OpenWeatherMap repository
func NewOpenWeatherRepository(apiKey, baseURL string, timeout time.Duration, metrics *metrics.Metrics, logger logger.Logger) *OpenWeatherRepository {
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenWeatherRepository{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		metrics: metrics,
		logger:  logger,
	}
}

type openWeatherResponse struct {
	Main *struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind *struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// GetCurrent returns the current weather at lat/lon in metric units
func (r *OpenWeatherRepository) GetCurrent(ctx context.Context, lat, lon float64) (*entity.WeatherSnapshot, error) {
	snapshot, err := r.getCurrent(ctx, lat, lon)
	if err != nil {
		r.metrics.FetchErrors.WithLabelValues(openWeatherProvider).Inc()
		r.logger.Warn("Failed to fetch weather", "lat", lat, "lon", lon, "error", err)
		return nil, &entity.FetchError{Provider: openWeatherProvider, Err: err}
	}
	return snapshot, nil
}

func (r *OpenWeatherRepository) getCurrent(ctx context.Context, lat, lon float64) (*entity.WeatherSnapshot, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("appid", r.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/data/2.5/weather?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorBody map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errorBody)
		return nil, fmt.Errorf("OpenWeatherMap returned status %d: %v", resp.StatusCode, errorBody)
	}

	var data openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if data.Main == nil || data.Wind == nil || len(data.Weather) == 0 {
		return nil, errors.New("response lacks main, wind or weather fields")
	}

	return &entity.WeatherSnapshot{
		Temperature: data.Main.Temp,
		WindSpeed:   data.Wind.Speed,
		Description: capitalize(data.Weather[0].Description),
		Humidity:    data.Main.Humidity,
	}, nil
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
