package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"silentskies-service/internal/domain/entity"
	"silentskies-service/internal/domain/repository"
	"silentskies-service/pkg/logger"
	"silentskies-service/pkg/metrics"
)

const aeroDataBoxProvider = "aerodatabox"

// AeroDataBoxConfig carries the credentials and endpoint of the provider
type AeroDataBoxConfig struct {
	APIKey  string
	Host    string
	BaseURL string
	Timeout time.Duration
}

// AeroDataBoxRepository fetches scheduled arrivals from the AeroDataBox API
type AeroDataBoxRepository struct {
	cfg      AeroDataBoxConfig
	client   *http.Client
	airports repository.AirportRepository
	metrics  *metrics.Metrics
	logger   logger.Logger
}

// NewAeroDataBoxRepository creates a new AeroDataBox repository. airports
// supplies coordinates for arrivals the provider returns without a location.
func NewAeroDataBoxRepository(
	cfg AeroDataBoxConfig,
	airports repository.AirportRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *AeroDataBoxRepository {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Host == "" {
		cfg.Host = "aerodatabox.p.rapidapi.com"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://" + cfg.Host
	}
	return &AeroDataBoxRepository{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		airports: airports,
		metrics:  metrics,
		logger:   logger,
	}
}

type aeroLocation struct {
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type aeroAirport struct {
	ICAO     string        `json:"icao"`
	Name     string        `json:"name"`
	Location *aeroLocation `json:"location"`
}

type aeroMovement struct {
	Airport       aeroAirport `json:"airport"`
	ScheduledTime struct {
		UTC   string `json:"utc"`
		Local string `json:"local"`
	} `json:"scheduledTime"`
}

type aeroFlight struct {
	Number    string       `json:"number"`
	Departure aeroMovement `json:"departure"`
	Arrival   aeroMovement `json:"arrival"`
	Aircraft  struct {
		Model string `json:"model"`
	} `json:"aircraft"`
}

type aeroArrivalsResponse struct {
	Arrivals []aeroFlight `json:"arrivals"`
}

// GetArrivals returns the arrivals scheduled at icao on day (UTC). The day is
// fetched as two windows; a failed window is logged and skipped, and only a
// day where every window failed is an error.
func (r *AeroDataBoxRepository) GetArrivals(ctx context.Context, icao string, day time.Time) ([]*entity.ArrivalRecord, error) {
	dayStr := day.Format("2006-01-02")
	windows := [][2]string{
		{dayStr + "T00:00", dayStr + "T12:00"},
		{dayStr + "T12:00", dayStr + "T23:59"},
	}

	// the windows share their boundary minute
	seen := map[string]bool{}
	var records []*entity.ArrivalRecord
	var errs []error
	for _, w := range windows {
		flights, err := r.fetchWindow(ctx, icao, w[0], w[1])
		if err != nil {
			r.metrics.FetchErrors.WithLabelValues(aeroDataBoxProvider).Inc()
			r.logger.Warn("Failed to fetch arrivals window",
				"icao", icao,
				"from", w[0],
				"to", w[1],
				"error", err)
			errs = append(errs, err)
			continue
		}
		for _, f := range flights {
			rec := r.toRecord(ctx, icao, dayStr, f)
			if seen[rec.ArrivalKey] {
				continue
			}
			seen[rec.ArrivalKey] = true
			records = append(records, rec)
		}
	}

	if len(errs) == len(windows) {
		return nil, &entity.FetchError{Provider: aeroDataBoxProvider, Err: errors.Join(errs...)}
	}

	r.logger.Info("Fetched arrivals", "icao", icao, "day", dayStr, "count", len(records))
	return records, nil
}

func (r *AeroDataBoxRepository) fetchWindow(ctx context.Context, icao, from, to string) ([]aeroFlight, error) {
	endpoint := fmt.Sprintf("%s/flights/airports/icao/%s/%s/%s",
		strings.TrimRight(r.cfg.BaseURL, "/"), url.PathEscape(icao), from, to)

	params := url.Values{}
	params.Set("withLeg", "true")
	params.Set("direction", "Arrival")
	params.Set("withCancelled", "false")
	params.Set("withCodeshared", "false")
	params.Set("withCargo", "false")
	params.Set("withPrivate", "false")
	params.Set("withLocation", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", r.cfg.APIKey)
	req.Header.Set("x-rapidapi-host", r.cfg.Host)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		var errorBody map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errorBody)
		return nil, fmt.Errorf("AeroDataBox returned status %d: %v", resp.StatusCode, errorBody)
	}

	var response aeroArrivalsResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return response.Arrivals, nil
}

func (r *AeroDataBoxRepository) toRecord(ctx context.Context, icao, day string, f aeroFlight) *entity.ArrivalRecord {
	rec := &entity.ArrivalRecord{
		AirportCode:   icao,
		ArrivalDay:    day,
		FlightNumber:  strings.TrimSpace(f.Number),
		Origin:        f.Departure.Airport.Name,
		AircraftModel: f.Aircraft.Model,
		CreatedAt:     time.Now().UTC(),
	}
	if rec.Origin == "" {
		rec.Origin = "Unknown"
	}
	if at, ok := parseProviderTime(f.Arrival.ScheduledTime.UTC); ok {
		rec.ScheduledArrivalUTC = &at
	}

	if loc := f.Arrival.Airport.Location; loc != nil {
		rec.Latitude = firstNonNil(loc.Latitude, loc.Lat)
		rec.Longitude = firstNonNil(loc.Longitude, loc.Lon)
	}
	if rec.Latitude == nil || rec.Longitude == nil {
		if a, err := r.airports.GetByICAO(ctx, icao); err == nil {
			lat, lon := a.Latitude, a.Longitude
			if rec.Latitude == nil {
				rec.Latitude = &lat
			}
			if rec.Longitude == nil {
				rec.Longitude = &lon
			}
		}
	}

	rec.ArrivalKey = rec.Key()
	return rec
}

// parseProviderTime reads "2025-07-01 10:05Z" and RFC 3339 values as UTC.
func parseProviderTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02 15:04Z07:00", time.RFC3339, "2006-01-02T15:04Z07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func firstNonNil(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil && *v != 0 {
			return v
		}
	}
	return nil
}
