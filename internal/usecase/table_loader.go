package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"silentskies-service/internal/domain/entity"
	"silentskies-service/pkg/logger"
	"silentskies-service/pkg/metrics"
	"silentskies-service/pkg/table"
)

// TableLoader turns uploaded files into typed tables
type TableLoader struct {
	router            FormatRouter
	noiseTimeColumn   string
	arrivalTimeColumn string
	metrics           *metrics.Metrics
	logger            logger.Logger
}

// NewTableLoader creates a new table loader. Empty column names default to
// "timestamp" and "arrival_scheduled_utc".
func NewTableLoader(
	router FormatRouter,
	noiseTimeColumn string,
	arrivalTimeColumn string,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *TableLoader {
	if noiseTimeColumn == "" {
		noiseTimeColumn = entity.TimestampColumn
	}
	if arrivalTimeColumn == "" {
		arrivalTimeColumn = entity.ArrivalScheduledColumn
	}
	return &TableLoader{
		router:            router,
		noiseTimeColumn:   noiseTimeColumn,
		arrivalTimeColumn: arrivalTimeColumn,
		metrics:           metrics,
		logger:            logger,
	}
}

// LoadNoiseData reads a CSV or XLSX noise file. Timestamps keep the zone
// information of the file.
func (l *TableLoader) LoadNoiseData(ctx context.Context, filename string, r io.Reader) (*table.Table, error) {
	t, err := l.load(ctx, filename, r, l.noiseTimeColumn)
	if err != nil {
		return nil, fmt.Errorf("failed to load file: %w", err)
	}
	return t, nil
}

// LoadNoiseDataInZone is LoadNoiseData with every timestamp converted to UTC.
// Naive timestamps are read as wall clock times of loc.
func (l *TableLoader) LoadNoiseDataInZone(ctx context.Context, filename string, r io.Reader, loc *time.Location) (*table.Table, error) {
	t, err := l.LoadNoiseData(ctx, filename, r)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	if _, ok := t.ColumnIndex(l.noiseTimeColumn); ok {
		normalizeColumn(t, l.noiseTimeColumn, loc)
	}
	return t, nil
}

// LoadArrivalData reads an arrivals file whose arrival column holds scheduled times.
func (l *TableLoader) LoadArrivalData(ctx context.Context, filename string, r io.Reader) (*table.Table, error) {
	t, err := l.load(ctx, filename, r, l.arrivalTimeColumn)
	if err != nil {
		return nil, fmt.Errorf("failed to load file: %w", err)
	}
	return t, nil
}

func (l *TableLoader) load(ctx context.Context, filename string, r io.Reader, timeColumn string) (*table.Table, error) {
	loader := l.router.GetLoader(filename)
	if loader == nil {
		l.metrics.ErrorsCount.WithLabelValues("load_file").Inc()
		return nil, &entity.UnsupportedFormatError{Ext: filepath.Ext(filename)}
	}

	grid, err := loader.Load(ctx, r)
	if err != nil {
		l.metrics.ErrorsCount.WithLabelValues("load_file").Inc()
		return nil, err
	}

	t, stats, err := table.Build(*grid, timeColumn)
	if err != nil {
		l.metrics.ErrorsCount.WithLabelValues("load_file").Inc()
		return nil, err
	}

	l.metrics.FilesLoaded.WithLabelValues(loader.Format()).Inc()
	if failed := stats.TotalParseFailures(); failed > 0 {
		l.metrics.ParseFailures.Add(float64(failed))
		l.logger.Warn("Unparseable timestamps stored as null",
			"file", filename,
			"column", timeColumn,
			"count", failed)
	}
	l.logger.Info("Loaded table",
		"file", filename,
		"format", loader.Format(),
		"rows", stats.Rows,
		"columns", len(t.Columns()))

	return t, nil
}

func normalizeColumn(t *table.Table, column string, loc *time.Location) {
	values, _ := t.Column(column)
	t.SetColumn(column, func(i int) any {
		ts, ok := values[i].(table.Timestamp)
		if !ok {
			return values[i]
		}
		return ts.Normalize(loc)
	})
}
