package repository

import (
	"context"
	"time"

	"silentskies-service/internal/domain/entity"
)

// ArrivalRepository defines the interface for a flight arrival provider
type ArrivalRepository interface {
	GetArrivals(ctx context.Context, icao string, day time.Time) ([]*entity.ArrivalRecord, error)
}

// ArrivalArchiveRepository defines the interface for stored arrival lists of past days
type ArrivalArchiveRepository interface {
	FindByAirportDay(ctx context.Context, icao, day string) ([]*entity.ArrivalRecord, error)
	SaveAll(ctx context.Context, records []*entity.ArrivalRecord) error
}
