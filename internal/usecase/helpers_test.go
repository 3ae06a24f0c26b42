package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"silentskies-service/internal/domain/entity"
	"silentskies-service/internal/interface/tabular"
	"silentskies-service/pkg/logger"
	"silentskies-service/pkg/metrics"
	"silentskies-service/pkg/table"
)

type testRouter struct {
	loaders []TabularLoader
}

func (r *testRouter) Register(loader TabularLoader) { r.loaders = append(r.loaders, loader) }

func (r *testRouter) GetLoader(filename string) TabularLoader {
	for _, l := range r.loaders {
		if l.CanHandle(filename) {
			return l
		}
	}
	return nil
}

func newTestLoader() (*TableLoader, *metrics.Metrics) {
	r := &testRouter{}
	r.Register(tabular.NewCSVLoader())
	r.Register(tabular.NewXLSXLoader())
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	return NewTableLoader(r, "", "", m, logger.NewNopLogger()), m
}

func at(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2025-07-01 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func arrival(icao, flight, hhmm string) *entity.ArrivalRecord {
	t := at(hhmm)
	return &entity.ArrivalRecord{AirportCode: icao, ArrivalDay: "2025-07-01", FlightNumber: flight, ScheduledArrivalUTC: &t}
}

type fakeArrivals struct {
	mu      sync.Mutex
	records map[string][]*entity.ArrivalRecord
	fail    map[string]error
	calls   []string
}

func (f *fakeArrivals) GetArrivals(ctx context.Context, icao string, day time.Time) ([]*entity.ArrivalRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, icao)
	f.mu.Unlock()
	if err := f.fail[icao]; err != nil {
		return nil, err
	}
	return f.records[icao], nil
}

type fakeArchive struct {
	mu     sync.Mutex
	stored map[string][]*entity.ArrivalRecord
	saves  int
}

func (f *fakeArchive) FindByAirportDay(ctx context.Context, icao, day string) ([]*entity.ArrivalRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stored[icao+":"+day], nil
}

func (f *fakeArchive) SaveAll(ctx context.Context, records []*entity.ArrivalRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stored == nil {
		f.stored = map[string][]*entity.ArrivalRecord{}
	}
	for _, r := range records {
		k := r.AirportCode + ":" + r.ArrivalDay
		f.stored[k] = append(f.stored[k], r)
	}
	f.saves++
	return nil
}

type fakeWeather struct {
	snapshot *entity.WeatherSnapshot
	err      error
}

func (f *fakeWeather) GetCurrent(ctx context.Context, lat, lon float64) (*entity.WeatherSnapshot, error) {
	if f.err != nil {
		return nil, &entity.FetchError{Provider: "openweathermap", Err: f.err}
	}
	s := *f.snapshot
	return &s, nil
}

type fakeAirports struct{}

func (fakeAirports) GetByICAO(ctx context.Context, icao string) (*entity.Airport, error) {
	switch icao {
	case "EDDB":
		return &entity.Airport{ICAO: "EDDB", City: "Berlin", Latitude: 52.3667, Longitude: 13.5033}, nil
	case "LFPG":
		return &entity.Airport{ICAO: "LFPG", City: "Paris", Latitude: 49.0097, Longitude: 2.5479}, nil
	}
	return nil, entity.ErrAirportNotFound
}

func (fakeAirports) List(ctx context.Context) ([]*entity.Airport, error) {
	return nil, errors.New("not implemented")
}

type fakeExporter struct {
	title string
	rows  int
	err   error
}

func (f *fakeExporter) Export(ctx context.Context, title string, t *table.Table) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.title = title
	f.rows = t.Len()
	return title + "!A1:Z99", nil
}
