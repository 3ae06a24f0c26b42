package repository

import (
	"context"

	"silentskies-service/internal/domain/entity"
)

// WeatherRepository defines the interface for a current-weather provider
type WeatherRepository interface {
	GetCurrent(ctx context.Context, lat, lon float64) (*entity.WeatherSnapshot, error)
}
