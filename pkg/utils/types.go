package utils

// Constants
const (
	DATE_LAYOUT = "2006-01-02"

	// Upper bound of the merge tolerance accepted from user input, in minutes.
	MAX_TOLERANCE_MINUTES = 60
)

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}
