package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"silentskies-service/internal/domain/entity"
	"silentskies-service/internal/domain/repository"
	"silentskies-service/pkg/logger"
	"silentskies-service/pkg/metrics"
	"silentskies-service/pkg/table"
	"silentskies-service/pkg/timemerge"
	"silentskies-service/pkg/utils"
)

// Upload is a named file handed in by a caller
type Upload struct {
	Filename string
	Body     io.Reader
}

// DashboardRequest describes one dashboard run
type DashboardRequest struct {
	Noise     Upload
	Arrivals  *Upload // optional; fetched from the provider when nil
	Airports  []string
	Day       time.Time
	Tolerance time.Duration // inclusive; zero requires exact matches
	Location  *utils.Coordinate // enables weather enrichment of the noise rows
	Export    bool
}

// DashboardResult is everything the dashboard shows for a run
type DashboardResult struct {
	RunID          string                  `json:"run_id"`
	NoiseRows      int                     `json:"noise_rows"`
	ArrivalRows    int                     `json:"arrival_rows"`
	MatchedRows    int                     `json:"matched_rows"`
	Tolerance      string                  `json:"tolerance"`
	Merged         *table.Table            `json:"merged"`
	Arrivals       *table.Table            `json:"arrivals"`
	FlightNoise    []entity.FlightNoise    `json:"flight_noise"`
	Hourly         *HourlyReport           `json:"hourly,omitempty"`
	AirportWeather []entity.AirportWeather `json:"airport_weather,omitempty"`
	ExportRange    string                  `json:"export_range,omitempty"`
	Warnings       []string                `json:"warnings"`
}

// DashboardService runs the load, fetch, enrich, merge and summarize pipeline
type DashboardService struct {
	loader    *TableLoader
	collector *ArrivalCollector
	weather   *WeatherEnricher
	exporter  repository.MergeExporter
	noiseLoc  *time.Location
	options   timemerge.Options
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// NewDashboardService creates a new dashboard service. collector, weather and
// exporter may be nil when the matching provider is not configured.
func NewDashboardService(
	loader *TableLoader,
	collector *ArrivalCollector,
	weather *WeatherEnricher,
	exporter repository.MergeExporter,
	noiseLoc *time.Location,
	options timemerge.Options,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *DashboardService {
	if noiseLoc == nil {
		noiseLoc = time.UTC
	}
	return &DashboardService{
		loader:    loader,
		collector: collector,
		weather:   weather,
		exporter:  exporter,
		noiseLoc:  noiseLoc,
		options:   options,
		metrics:   metrics,
		logger:    logger,
	}
}

// Run executes one dashboard request. Provider problems become warnings;
// only unreadable input and merge failures are errors.
func (s *DashboardService) Run(ctx context.Context, req DashboardRequest) (*DashboardResult, error) {
	runID := uuid.New().String()
	log := s.logger.With("run_id", runID)
	result := &DashboardResult{RunID: runID, Warnings: []string{}}

	noise, err := s.loader.LoadNoiseDataInZone(ctx, req.Noise.Filename, req.Noise.Body, s.noiseLoc)
	if err != nil {
		return nil, err
	}
	result.NoiseRows = noise.Len()

	arrivals, err := s.arrivals(ctx, req, result)
	if err != nil {
		return nil, err
	}
	result.Arrivals = arrivals
	result.ArrivalRows = arrivals.Len()

	if req.Location != nil {
		noise = s.enrich(ctx, noise, *req.Location, result)
	}

	opts := s.options
	opts.Tolerance = req.Tolerance
	result.Tolerance = opts.Tolerance.String()

	merged, err := s.merge(noise, arrivals, opts)
	if err != nil {
		log.Error("Merge failed", "error", err)
		return nil, err
	}
	result.Merged = merged.Table
	result.MatchedRows = merged.Matched

	if records, err := MergedRecords(noise, arrivals, merged, opts.LeftOn, opts.RightOn); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Per-flight noise unavailable: %v", err))
	} else {
		result.FlightNoise = FlightNoiseSummary(records)
	}

	if hourly, err := HourlySummary(noise, arrivals, opts.LeftOn, opts.RightOn); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Hourly summary unavailable: %v", err))
	} else {
		result.Hourly = hourly
	}

	if s.weather != nil && len(req.Airports) > 0 {
		rows, warnings := s.weather.AirportWeather(ctx, req.Airports)
		result.AirportWeather = rows
		result.Warnings = append(result.Warnings, warnings...)
	}

	if req.Export {
		s.export(ctx, req, result)
	}

	log.Info("Dashboard run complete",
		"noiseRows", result.NoiseRows,
		"arrivalRows", result.ArrivalRows,
		"matched", result.MatchedRows,
		"warnings", len(result.Warnings))

	return result, nil
}

func (s *DashboardService) arrivals(ctx context.Context, req DashboardRequest, result *DashboardResult) (*table.Table, error) {
	if req.Arrivals != nil {
		return s.loader.LoadArrivalData(ctx, req.Arrivals.Filename, req.Arrivals.Body)
	}
	if len(req.Airports) == 0 {
		result.Warnings = append(result.Warnings, "No airports selected, merging without arrivals")
		return ArrivalTable(nil), nil
	}
	if s.collector == nil {
		result.Warnings = append(result.Warnings, "Arrival provider not configured, merging without arrivals")
		return ArrivalTable(nil), nil
	}

	collection, err := s.collector.Collect(ctx, req.Airports, req.Day)
	if err != nil {
		return nil, err
	}
	result.Warnings = append(result.Warnings, collection.Warnings...)
	return ArrivalTable(collection.Records), nil
}

func (s *DashboardService) enrich(ctx context.Context, noise *table.Table, at utils.Coordinate, result *DashboardResult) *table.Table {
	if s.weather == nil {
		result.Warnings = append(result.Warnings, "Weather provider not configured, skipping weather enrichment")
		return noise
	}
	enriched, err := s.weather.EnrichWithWeather(ctx, noise, at.Latitude, at.Longitude)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
		return noise
	}
	return enriched
}

func (s *DashboardService) merge(noise, arrivals *table.Table, opts timemerge.Options) (*timemerge.Result, error) {
	start := time.Now()
	merged, err := timemerge.Merge(noise, arrivals, opts)
	s.metrics.MergeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("merge").Inc()
		return nil, err
	}

	s.metrics.MergeRuns.Inc()
	s.metrics.MergedRows.Add(float64(merged.Table.Len()))
	s.metrics.MatchedRows.Add(float64(merged.Matched))
	return merged, nil
}

func (s *DashboardService) export(ctx context.Context, req DashboardRequest, result *DashboardResult) {
	if s.exporter == nil {
		result.Warnings = append(result.Warnings, "Google Sheets export not configured")
		return
	}
	title := "Merged " + req.Day.Format(utils.DATE_LAYOUT)
	rng, err := s.exporter.Export(ctx, title, result.Merged)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("export").Inc()
		result.Warnings = append(result.Warnings, fmt.Sprintf("Export failed: %v", err))
		return
	}
	result.ExportRange = rng
}
