package entity

// Weather columns appended to an enriched table.
const (
	TemperatureColumn = "Temperature (°C)"
	WindSpeedColumn   = "Wind Speed (m/s)"
	ConditionsColumn  = "Conditions"
	HumidityColumn    = "Humidity (%)"
)

// WeatherSnapshot is the current weather at one coordinate.
type WeatherSnapshot struct {
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"wind_speed"`
	Description string  `json:"description"`
	Humidity    float64 `json:"humidity"`
}

// AirportWeather is one row of the airport weather summary.
type AirportWeather struct {
	ICAO        string  `json:"icao"`
	City        string  `json:"city"`
	Conditions  string  `json:"conditions"`
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"wind_speed"`
	Humidity    float64 `json:"humidity"`
}
