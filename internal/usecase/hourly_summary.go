package usecase

import (
	"sort"
	"time"

	"silentskies-service/internal/domain/entity"
	"silentskies-service/pkg/table"
)

// HourlyReport holds the per-airport hourly series and the hour-of-day histogram
type HourlyReport struct {
	Hourly    []entity.HourlyStat    `json:"hourly"`
	HourOfDay []entity.HourOfDayStat `json:"hour_of_day"`
}

type hourKey struct {
	icao string
	hour time.Time
}

type hourAcc struct {
	noiseSum float64
	readings int
	arrivals int
}

// HourlySummary averages noise levels and counts arrivals per airport and UTC
// hour. Hours with only one of the two carry zero for the other.
func HourlySummary(noise, arrivals *table.Table, noiseTimeColumn, arrivalTimeColumn string) (*HourlyReport, error) {
	readings, _, err := NoiseReadings(noise, noiseTimeColumn)
	if err != nil {
		return nil, err
	}

	buckets := map[hourKey]*hourAcc{}
	var byHour [24]hourAcc
	get := func(k hourKey) *hourAcc {
		acc, ok := buckets[k]
		if !ok {
			acc = &hourAcc{}
			buckets[k] = acc
		}
		return acc
	}

	for _, r := range readings {
		h := r.Timestamp.UTC().Truncate(time.Hour)
		acc := get(hourKey{icao: r.AirportCode, hour: h})
		acc.noiseSum += r.NoiseLevel
		acc.readings++
		byHour[h.Hour()].noiseSum += r.NoiseLevel
		byHour[h.Hour()].readings++
	}

	if arrivals != nil && arrivals.HasColumn(arrivalTimeColumn) {
		for i := 0; i < arrivals.Len(); i++ {
			ts, ok := arrivals.Value(i, arrivalTimeColumn).(table.Timestamp)
			if !ok {
				continue
			}
			icao, _ := arrivals.Value(i, entity.AirportICAOColumn).(string)
			h := ts.Time.UTC().Truncate(time.Hour)
			get(hourKey{icao: icao, hour: h}).arrivals++
			byHour[h.Hour()].arrivals++
		}
	}

	report := &HourlyReport{
		Hourly:    make([]entity.HourlyStat, 0, len(buckets)),
		HourOfDay: make([]entity.HourOfDayStat, 24),
	}
	for k, acc := range buckets {
		report.Hourly = append(report.Hourly, entity.HourlyStat{
			AirportCode:  k.icao,
			Hour:         k.hour.Format(time.RFC3339),
			AvgNoiseDB:   mean(acc.noiseSum, acc.readings),
			Readings:     acc.readings,
			ArrivalCount: acc.arrivals,
		})
	}
	sort.Slice(report.Hourly, func(i, j int) bool {
		a, b := report.Hourly[i], report.Hourly[j]
		if a.AirportCode != b.AirportCode {
			return a.AirportCode < b.AirportCode
		}
		return a.Hour < b.Hour
	})
	for h := range byHour {
		report.HourOfDay[h] = entity.HourOfDayStat{
			Hour:         h,
			AvgNoiseDB:   mean(byHour[h].noiseSum, byHour[h].readings),
			ArrivalCount: byHour[h].arrivals,
		}
	}
	return report, nil
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
