package entity

// HourlyStat aggregates one airport over one clock hour (UTC).
type HourlyStat struct {
	AirportCode  string  `json:"icao"`
	Hour         string  `json:"hour"` // 2006-01-02T15:00:00Z
	AvgNoiseDB   float64 `json:"avg_noise_db"`
	Readings     int     `json:"readings"`
	ArrivalCount int     `json:"arrival_count"`
}

// HourOfDayStat aggregates all days by hour of day, for histograms.
type HourOfDayStat struct {
	Hour         int     `json:"hour"`
	AvgNoiseDB   float64 `json:"avg_noise_db"`
	ArrivalCount int     `json:"arrival_count"`
}
