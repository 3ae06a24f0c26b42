package repository

import (
	"context"

	"silentskies-service/internal/domain/entity"
)

// AirportRepository defines the interface for airport reference data
type AirportRepository interface {
	GetByICAO(ctx context.Context, icao string) (*entity.Airport, error)
	List(ctx context.Context) ([]*entity.Airport, error)
}
