package entity

import (
	"time"

	"gorm.io/gorm"
)

// Airport holds the reference data of one monitored airport
type Airport struct {
	ID        uint           `yaml:"-"`
	ICAO      string         `gorm:"column:icao" yaml:"icao"`
	IATA      string         `gorm:"column:iata" yaml:"iata"`
	Name      string         `yaml:"name"`
	City      string         `yaml:"city"`
	Latitude  float64        `yaml:"latitude"`
	Longitude float64        `yaml:"longitude"`
	TzName    string         `yaml:"tz_name"`
	CreatedAt time.Time      `yaml:"-"`
	UpdatedAt time.Time      `yaml:"-"`
	DeletedAt gorm.DeletedAt `yaml:"-"`
}

// Location loads the airport's IANA zone, UTC when unknown.
func (a *Airport) Location() *time.Location {
	if a.TzName == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.TzName)
	if err != nil {
		return time.UTC
	}
	return loc
}
