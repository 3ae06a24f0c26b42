// internal/domain/entity/arrival.go
package entity

import (
	"time"
)

// Column names of the arrival table.
const (
	TimestampColumn         = "timestamp"
	FlightNumberColumn      = "flight_number"
	ArrivalScheduledColumn  = "arrival_scheduled_utc"
	ArrivalLatitudeColumn   = "arrival_latitude"
	ArrivalLongitudeColumn  = "arrival_longitude"
	AircraftModelColumn     = "model"
	AirportICAOColumn       = "icao"
	OriginAirportNameColumn = "origin_airport_name"
)

// ArrivalColumns is the column order of an arrival table.
var ArrivalColumns = []string{
	FlightNumberColumn,
	ArrivalScheduledColumn,
	ArrivalLatitudeColumn,
	ArrivalLongitudeColumn,
	AircraftModelColumn,
	AirportICAOColumn,
	OriginAirportNameColumn,
}

type ArrivalRecord struct {
	ID                  string     `bson:"_id,omitempty" json:"-"`
	ArrivalKey          string     `bson:"arrivalKey" json:"-"` // {icao}:{day}:{flightNumber}:{scheduledUtc} - unique index
	AirportCode         string     `bson:"icao" json:"icao"`
	ArrivalDay          string     `bson:"arrivalDay" json:"-"` // YYYY-MM-DD
	FlightNumber        string     `bson:"flightNumber" json:"flight_number"`
	ScheduledArrivalUTC *time.Time `bson:"scheduledArrivalUtc,omitempty" json:"arrival_scheduled_utc"`
	Origin              string     `bson:"origin" json:"origin_airport_name"`
	AircraftModel       string     `bson:"aircraftModel" json:"model"`
	Latitude            *float64   `bson:"latitude,omitempty" json:"arrival_latitude"`
	Longitude           *float64   `bson:"longitude,omitempty" json:"arrival_longitude"`
	CreatedAt           time.Time  `bson:"createdAt" json:"-"`
}

// Key builds the archive key of the record.
func (a *ArrivalRecord) Key() string {
	scheduled := ""
	if a.ScheduledArrivalUTC != nil {
		scheduled = a.ScheduledArrivalUTC.UTC().Format(time.RFC3339)
	}
	return a.AirportCode + ":" + a.ArrivalDay + ":" + a.FlightNumber + ":" + scheduled
}
