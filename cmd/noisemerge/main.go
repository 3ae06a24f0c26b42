// Command noisemerge merges a local noise file with arrivals from a file or
// from AeroDataBox and writes the merged table as CSV.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"silentskies-service/internal/domain/repository"
	"silentskies-service/internal/infrastructure/config"
	"silentskies-service/internal/infrastructure/router"
	repo "silentskies-service/internal/interface/repository"
	"silentskies-service/internal/interface/tabular"
	"silentskies-service/internal/usecase"
	"silentskies-service/pkg/logger"
	"silentskies-service/pkg/metrics"
	"silentskies-service/pkg/table"
	"silentskies-service/pkg/timemerge"
	"silentskies-service/pkg/utils"
	"silentskies-service/templates"
)

func main() {
	noisePath := flag.String("noise", "", "noise file (.csv or .xlsx)")
	arrivalsPath := flag.String("arrivals", "", "arrivals file; fetched from AeroDataBox when empty")
	airportList := flag.String("airports", "", "comma separated ICAO codes to fetch arrivals for")
	date := flag.String("date", "", "day to fetch, YYYY-MM-DD (default today, UTC)")
	tolerance := flag.String("tolerance", "", "merge tolerance in minutes (default MERGE_TOLERANCE)")
	tz := flag.String("tz", "", "zone of naive noise timestamps (default NOISE_TIMEZONE)")
	out := flag.String("out", "merged.csv", "output CSV path, - for stdout")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()

	if err := run(cfg, log, options{
		noise:     *noisePath,
		arrivals:  *arrivalsPath,
		airports:  *airportList,
		date:      *date,
		tolerance: *tolerance,
		tz:        *tz,
		out:       *out,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "noisemerge:", err)
		os.Exit(1)
	}
}

type options struct {
	noise, arrivals, airports, date, tolerance, tz, out string
}

func run(cfg *config.Config, log logger.Logger, opts options) error {
	if opts.noise == "" {
		return fmt.Errorf("-noise is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	req := usecase.DashboardRequest{}
	var err error
	if req.Airports, err = utils.SplitICAOList(opts.airports); err != nil {
		return err
	}
	if req.Day, err = utils.ParseDay(opts.date, time.Now()); err != nil {
		return err
	}
	if req.Tolerance, err = utils.ParseToleranceMinutes(opts.tolerance, cfg.MergeTolerance); err != nil {
		return err
	}

	noiseLoc := cfg.NoiseLocation()
	if opts.tz != "" {
		if noiseLoc, err = time.LoadLocation(opts.tz); err != nil {
			return fmt.Errorf("invalid zone %q: %w", opts.tz, err)
		}
	}

	noiseFile, err := os.Open(opts.noise)
	if err != nil {
		return err
	}
	defer noiseFile.Close()
	req.Noise = usecase.Upload{Filename: opts.noise, Body: noiseFile}

	source := "none"
	if opts.arrivals != "" {
		f, err := os.Open(opts.arrivals)
		if err != nil {
			return err
		}
		defer f.Close()
		req.Arrivals = &usecase.Upload{Filename: opts.arrivals, Body: f}
		source = opts.arrivals
	} else if len(req.Airports) > 0 {
		source = "AeroDataBox " + strings.Join(req.Airports, ",") + " " + req.Day.Format(utils.DATE_LAYOUT)
	}

	m := metrics.NewMetrics("noisemerge", prometheus.NewRegistry())

	formats := router.NewFormatRouter(log)
	formats.Register(tabular.NewCSVLoader())
	formats.Register(tabular.NewXLSXLoader())
	loader := usecase.NewTableLoader(formats, cfg.NoiseTimeColumn, cfg.ArrivalTimeColumn, m, log)

	var collector *usecase.ArrivalCollector
	if req.Arrivals == nil && cfg.AeroDataBoxAPIKey != "" {
		airports := loadAirports(cfg, log)
		aero := repo.NewAeroDataBoxRepository(repo.AeroDataBoxConfig{
			APIKey:  cfg.AeroDataBoxAPIKey,
			Host:    cfg.AeroDataBoxHost,
			BaseURL: cfg.AeroDataBoxBaseURL,
			Timeout: cfg.HTTPTimeout,
		}, airports, m, log)
		collector = usecase.NewArrivalCollector(aero, nil, cfg.FetchConcurrency, m, log)
	}

	mergeOpts := timemerge.DefaultOptions()
	mergeOpts.LeftOn = cfg.NoiseTimeColumn
	mergeOpts.RightOn = cfg.ArrivalTimeColumn

	dashboard := usecase.NewDashboardService(loader, collector, nil, nil, noiseLoc, mergeOpts, m, log)
	result, err := dashboard.Run(ctx, req)
	if err != nil {
		return err
	}

	output := opts.out
	if output == "-" {
		output = ""
		if err := writeCSV(os.Stdout, result.Merged); err != nil {
			return err
		}
	} else {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		if err := writeCSV(f, result.Merged); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	return templates.RenderMergeSummary(os.Stderr, templates.NewMergeSummary(result, source, output))
}

func loadAirports(cfg *config.Config, log logger.Logger) repository.AirportRepository {
	if cfg.AirportsFile == "" {
		return repo.NewStaticAirportRepository()
	}
	airports, err := repo.LoadStaticAirportRepository(cfg.AirportsFile)
	if err != nil {
		log.Warn("Falling back to built-in airports", "file", cfg.AirportsFile, "error", err)
		return repo.NewStaticAirportRepository()
	}
	return airports
}

func writeCSV(f *os.File, t *table.Table) error {
	w := csv.NewWriter(f)
	if err := w.Write(t.Columns()); err != nil {
		return err
	}
	if err := w.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
