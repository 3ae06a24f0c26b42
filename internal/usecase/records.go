package usecase

import (
	"silentskies-service/internal/domain/entity"
	"silentskies-service/pkg/table"
	"silentskies-service/pkg/timemerge"
)

// ArrivalTable lays arrival records out in the arrival table columns.
// Scheduled times are zone-aware UTC.
func ArrivalTable(records []*entity.ArrivalRecord) *table.Table {
	t := table.MustNew(entity.ArrivalColumns...)
	for _, rec := range records {
		var scheduled, lat, lon any
		if rec.ScheduledArrivalUTC != nil {
			scheduled = table.Aware(rec.ScheduledArrivalUTC.UTC())
		}
		if rec.Latitude != nil {
			lat = *rec.Latitude
		}
		if rec.Longitude != nil {
			lon = *rec.Longitude
		}
		_ = t.AppendRow(
			nullable(rec.FlightNumber),
			scheduled,
			lat,
			lon,
			nullable(rec.AircraftModel),
			nullable(rec.AirportCode),
			nullable(rec.Origin),
		)
	}
	return t
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// findColumn returns the first candidate present in t.
func findColumn(t *table.Table, candidates []string) (string, bool) {
	for _, c := range candidates {
		if t.HasColumn(c) {
			return c, true
		}
	}
	return "", false
}

// noiseColumns are the columns a noise table is read through.
type noiseColumns struct {
	time, level, airport string
	hasAirport           bool
}

func resolveNoiseColumns(t *table.Table, timeColumn string) (noiseColumns, error) {
	if !t.HasColumn(timeColumn) {
		return noiseColumns{}, &table.MissingColumnError{Column: timeColumn, Table: timemerge.NoiseTableName}
	}
	level, ok := findColumn(t, entity.NoiseLevelColumns)
	if !ok {
		return noiseColumns{}, &table.MissingColumnError{Column: entity.NoiseLevelColumns[0], Table: timemerge.NoiseTableName}
	}
	airport, hasAirport := findColumn(t, entity.AirportCodeColumns)
	return noiseColumns{time: timeColumn, level: level, airport: airport, hasAirport: hasAirport}, nil
}

// readingAt reads row i; ok is false when the timestamp or the level is missing.
func readingAt(t *table.Table, i int, cols noiseColumns) (entity.NoiseReading, bool) {
	ts, okTime := t.Value(i, cols.time).(table.Timestamp)
	level, okLevel := t.Value(i, cols.level).(float64)
	reading := entity.NoiseReading{
		Timestamp:  ts.Time,
		NoiseLevel: level,
		Extra:      map[string]any{},
	}
	for _, c := range t.Columns() {
		if c == cols.time || c == cols.level {
			continue
		}
		v := t.Value(i, c)
		if cols.hasAirport && c == cols.airport {
			if code, ok := v.(string); ok {
				reading.AirportCode = code
			}
			continue
		}
		if v != nil {
			reading.Extra[c] = v
		}
	}
	return reading, okTime && okLevel
}

// NoiseReadings extracts validated readings from a noise table. Rows without a
// timestamp or a numeric noise level are skipped and counted.
func NoiseReadings(t *table.Table, timeColumn string) ([]entity.NoiseReading, int, error) {
	cols, err := resolveNoiseColumns(t, timeColumn)
	if err != nil {
		return nil, 0, err
	}

	readings := make([]entity.NoiseReading, 0, t.Len())
	skipped := 0
	for i := 0; i < t.Len(); i++ {
		reading, ok := readingAt(t, i, cols)
		if !ok {
			skipped++
			continue
		}
		readings = append(readings, reading)
	}
	return readings, skipped, nil
}

// arrivalAt reads row i of an arrival table. Absent columns stay empty.
func arrivalAt(t *table.Table, i int, timeColumn string) *entity.ArrivalRecord {
	text := func(column string) string {
		if !t.HasColumn(column) {
			return ""
		}
		return table.FormatCell(t.Value(i, column))
	}
	number := func(column string) *float64 {
		if f, ok := t.Value(i, column).(float64); ok {
			return &f
		}
		return nil
	}

	rec := &entity.ArrivalRecord{
		FlightNumber:  text(entity.FlightNumberColumn),
		AircraftModel: text(entity.AircraftModelColumn),
		AirportCode:   text(entity.AirportICAOColumn),
		Origin:        text(entity.OriginAirportNameColumn),
		Latitude:      number(entity.ArrivalLatitudeColumn),
		Longitude:     number(entity.ArrivalLongitudeColumn),
	}
	if ts, ok := t.Value(i, timeColumn).(table.Timestamp); ok {
		at := ts.Time.UTC()
		rec.ScheduledArrivalUTC = &at
	}
	return rec
}

// MergedRecords turns a merge result into one record per output row, in
// output order. Rows paired with the same arrival share its record.
func MergedRecords(noise, arrivals *table.Table, res *timemerge.Result, noiseTimeColumn, arrivalTimeColumn string) ([]entity.MergedRecord, error) {
	cols, err := resolveNoiseColumns(noise, noiseTimeColumn)
	if err != nil {
		return nil, err
	}

	byRow := map[int]*entity.ArrivalRecord{}
	records := make([]entity.MergedRecord, len(res.NoiseRows))
	for i, nr := range res.NoiseRows {
		reading, complete := readingAt(noise, nr, cols)
		records[i] = entity.MergedRecord{Noise: reading, Complete: complete}

		match := res.Matches[i]
		if match < 0 {
			continue
		}
		rec, ok := byRow[match]
		if !ok {
			rec = arrivalAt(arrivals, match, arrivalTimeColumn)
			byRow[match] = rec
		}
		records[i].Arrival = rec
	}
	return records, nil
}

// FlightNoiseSummary aggregates the complete readings of every matched arrival,
// in the order the arrivals first appear.
func FlightNoiseSummary(records []entity.MergedRecord) []entity.FlightNoise {
	index := map[*entity.ArrivalRecord]int{}
	out := []entity.FlightNoise{}
	for _, r := range records {
		if !r.Matched() || !r.Complete {
			continue
		}
		i, ok := index[r.Arrival]
		if !ok {
			i = len(out)
			index[r.Arrival] = i
			out = append(out, entity.FlightNoise{
				FlightNumber:        r.Arrival.FlightNumber,
				AirportCode:         r.Arrival.AirportCode,
				ScheduledArrivalUTC: r.Arrival.ScheduledArrivalUTC,
				MaxNoiseDB:          r.Noise.NoiseLevel,
			})
		}
		fn := &out[i]
		fn.AvgNoiseDB = (fn.AvgNoiseDB*float64(fn.Readings) + r.Noise.NoiseLevel) / float64(fn.Readings+1)
		fn.Readings++
		if r.Noise.NoiseLevel > fn.MaxNoiseDB {
			fn.MaxNoiseDB = r.Noise.NoiseLevel
		}
	}
	return out
}
