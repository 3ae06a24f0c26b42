package entity

import (
	"time"
)

// Candidate names of the noise-level and airport columns of an uploaded file.
var (
	NoiseLevelColumns  = []string{"noise_db", "noise_level", "NoiseLevel", "dB"}
	AirportCodeColumns = []string{"airport_code", "icao", "airport"}
)

// NoiseReading is one measurement of a noise sensor.
type NoiseReading struct {
	Timestamp   time.Time
	NoiseLevel  float64
	AirportCode string
	Extra       map[string]any
}
