package usecase

import (
	"context"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"silentskies-service/internal/domain/entity"
	"silentskies-service/internal/domain/repository"
	"silentskies-service/pkg/logger"
	"silentskies-service/pkg/table"
)

// WeatherEnricher attaches current weather to tables and airports
type WeatherEnricher struct {
	weather  repository.WeatherRepository
	airports repository.AirportRepository
	logger   logger.Logger
}

// NewWeatherEnricher creates a new weather enricher
func NewWeatherEnricher(weather repository.WeatherRepository, airports repository.AirportRepository, logger logger.Logger) *WeatherEnricher {
	return &WeatherEnricher{
		weather:  weather,
		airports: airports,
		logger:   logger,
	}
}

// EnrichWithWeather returns a copy of t with the current weather at lat/lon
// repeated on every row.
func (e *WeatherEnricher) EnrichWithWeather(ctx context.Context, t *table.Table, lat, lon float64) (*table.Table, error) {
	snapshot, err := e.weather.GetCurrent(ctx, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("failed to enrich with weather: %w", err)
	}

	out := t.Clone()
	out.SetColumn(entity.TemperatureColumn, func(int) any { return snapshot.Temperature })
	out.SetColumn(entity.WindSpeedColumn, func(int) any { return snapshot.WindSpeed })
	out.SetColumn(entity.ConditionsColumn, func(int) any { return snapshot.Description })
	out.SetColumn(entity.HumidityColumn, func(int) any { return snapshot.Humidity })
	return out, nil
}

// AirportWeather summarizes the current weather of each airport. Airports
// that cannot be resolved or fetched are skipped with a warning.
func (e *WeatherEnricher) AirportWeather(ctx context.Context, icaos []string) ([]entity.AirportWeather, []string) {
	title := cases.Title(language.Und)
	var rows []entity.AirportWeather
	var warnings []string

	for _, icao := range icaos {
		airport, err := e.airports.GetByICAO(ctx, icao)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("No reference data for %s: %v", icao, err))
			continue
		}
		snapshot, err := e.weather.GetCurrent(ctx, airport.Latitude, airport.Longitude)
		if err != nil {
			e.logger.Warn("Skipping airport weather", "icao", icao, "error", err)
			warnings = append(warnings, fmt.Sprintf("Weather fetch failed for %s: %v", icao, err))
			continue
		}
		rows = append(rows, entity.AirportWeather{
			ICAO:        airport.ICAO,
			City:        airport.City,
			Conditions:  title.String(snapshot.Description),
			Temperature: snapshot.Temperature,
			WindSpeed:   snapshot.WindSpeed,
			Humidity:    snapshot.Humidity,
		})
	}
	return rows, warnings
}
