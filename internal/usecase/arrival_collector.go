package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"silentskies-service/internal/domain/entity"
	"silentskies-service/internal/domain/repository"
	"silentskies-service/pkg/logger"
	"silentskies-service/pkg/metrics"
	"silentskies-service/pkg/utils"
)

// ArrivalCollection is the outcome of a multi-airport fetch
type ArrivalCollection struct {
	Records    []*entity.ArrivalRecord
	PerAirport map[string]int
	Warnings   []string
}

// ArrivalCollector fetches the arrivals of several airports in parallel
type ArrivalCollector struct {
	provider    repository.ArrivalRepository
	archive     repository.ArrivalArchiveRepository
	concurrency int
	now         func() time.Time
	metrics     *metrics.Metrics
	logger      logger.Logger
}

// NewArrivalCollector creates a new collector. archive may be nil.
func NewArrivalCollector(
	provider repository.ArrivalRepository,
	archive repository.ArrivalArchiveRepository,
	concurrency int,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *ArrivalCollector {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ArrivalCollector{
		provider:    provider,
		archive:     archive,
		concurrency: concurrency,
		now:         time.Now,
		metrics:     metrics,
		logger:      logger,
	}
}

type airportResult struct {
	records []*entity.ArrivalRecord
	err     error
}

// Collect fetches the arrivals of every airport on day. A failing airport is
// recorded as a warning and never stops the others.
func (c *ArrivalCollector) Collect(ctx context.Context, icaos []string, day time.Time) (*ArrivalCollection, error) {
	results := make([]airportResult, len(icaos))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, icao := range icaos {
		g.Go(func() error {
			records, err := c.collectAirport(ctx, icao, day)
			results[i] = airportResult{records: records, err: err}
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	collection := &ArrivalCollection{PerAirport: make(map[string]int, len(icaos))}
	for i, icao := range icaos {
		res := results[i]
		if res.err != nil {
			c.metrics.ErrorsCount.WithLabelValues("collect_arrivals").Inc()
			collection.Warnings = append(collection.Warnings, fmt.Sprintf("Error fetching arrivals for %s: %v", icao, res.err))
			continue
		}
		collection.PerAirport[icao] = len(res.records)
		collection.Records = append(collection.Records, res.records...)
	}

	sort.SliceStable(collection.Records, func(a, b int) bool {
		ra, rb := collection.Records[a].ScheduledArrivalUTC, collection.Records[b].ScheduledArrivalUTC
		if ra == nil || rb == nil {
			return ra != nil
		}
		return ra.Before(*rb)
	})

	c.logger.Info("Collected arrivals",
		"airports", len(icaos),
		"records", len(collection.Records),
		"warnings", len(collection.Warnings))

	return collection, nil
}

func (c *ArrivalCollector) collectAirport(ctx context.Context, icao string, day time.Time) ([]*entity.ArrivalRecord, error) {
	dayStr := day.Format(utils.DATE_LAYOUT)
	archivable := c.archive != nil && utils.IsPastDay(day, c.now())

	if archivable {
		records, err := c.archive.FindByAirportDay(ctx, icao, dayStr)
		if err != nil {
			c.logger.Warn("Failed to read arrival archive", "icao", icao, "day", dayStr, "error", err)
		} else if len(records) > 0 {
			c.logger.Debug("Serving arrivals from archive", "icao", icao, "day", dayStr, "count", len(records))
			return records, nil
		}
	}

	records, err := c.provider.GetArrivals(ctx, icao, day)
	if err != nil {
		return nil, err
	}

	if archivable && len(records) > 0 {
		if err := c.archive.SaveAll(ctx, records); err != nil {
			c.logger.Warn("Failed to archive arrivals", "icao", icao, "day", dayStr, "error", err)
		}
	}
	return records, nil
}
