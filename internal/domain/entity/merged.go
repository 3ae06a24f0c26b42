package entity

import (
	"time"
)

// MergedRecord is a noise reading with at most one arrival paired to it.
type MergedRecord struct {
	Noise NoiseReading
	// Complete is false when the noise row lacked a timestamp or a numeric level.
	Complete bool
	Arrival  *ArrivalRecord
}

// Matched reports whether an arrival was paired with the reading.
func (m *MergedRecord) Matched() bool {
	return m.Arrival != nil
}

// FlightNoise aggregates the readings paired with one arrival.
type FlightNoise struct {
	FlightNumber        string     `json:"flight_number"`
	AirportCode         string     `json:"icao"`
	ScheduledArrivalUTC *time.Time `json:"arrival_scheduled_utc"`
	Readings            int        `json:"readings"`
	MaxNoiseDB          float64    `json:"max_noise_db"`
	AvgNoiseDB          float64    `json:"avg_noise_db"`
}
