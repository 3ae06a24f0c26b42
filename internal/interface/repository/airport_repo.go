package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"silentskies-service/internal/domain/entity"
	"silentskies-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormAirportRepository implements the AirportRepository interface
type GormAirportRepository struct {
	db *gorm.DB
}

// NewGormAirportRepository creates a new GORM airport repository
func NewGormAirportRepository(db *gorm.DB) repository.AirportRepository {
	return &GormAirportRepository{
		db: db,
	}
}

// Airportlist GORM model for database mapping
type Airportlist struct {
	ID        uint           `gorm:"primaryKey"`
	ICAO      string         `gorm:"column:icao;unique"`
	IATA      string         `gorm:"column:iata"`
	Name      string         `gorm:"column:name"`
	City      string         `gorm:"column:city"`
	Latitude  float64        `gorm:"column:latitude"`
	Longitude float64        `gorm:"column:longitude"`
	TzName    string         `gorm:"column:tzname"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (Airportlist) TableName() string {
	return "m_airports"
}

func (a *Airportlist) toEntity() *entity.Airport {
	return &entity.Airport{
		ID:        a.ID,
		ICAO:      a.ICAO,
		IATA:      a.IATA,
		Name:      a.Name,
		City:      a.City,
		Latitude:  a.Latitude,
		Longitude: a.Longitude,
		TzName:    a.TzName,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		DeletedAt: a.DeletedAt,
	}
}

// GetByICAO finds an airport by its ICAO code
func (r *GormAirportRepository) GetByICAO(ctx context.Context, icao string) (*entity.Airport, error) {
	var airport Airportlist
	result := r.db.WithContext(ctx).Where("icao = ?", icao).First(&airport)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", entity.ErrAirportNotFound, icao)
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return airport.toEntity(), nil
}

// List returns every airport ordered by ICAO code
func (r *GormAirportRepository) List(ctx context.Context) ([]*entity.Airport, error) {
	var rows []Airportlist
	if err := r.db.WithContext(ctx).Order("icao").Find(&rows).Error; err != nil {
		return nil, err
	}

	airports := make([]*entity.Airport, 0, len(rows))
	for i := range rows {
		airports = append(airports, rows[i].toEntity())
	}
	return airports, nil
}
