package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"silentskies-service/internal/domain/repository"
	"silentskies-service/internal/infrastructure/config"
	"silentskies-service/internal/infrastructure/oauth"
	"silentskies-service/internal/infrastructure/persistence"
	"silentskies-service/internal/infrastructure/router"
	"silentskies-service/internal/interface/httpapi"
	repo "silentskies-service/internal/interface/repository"
	"silentskies-service/internal/interface/sheets"
	"silentskies-service/internal/interface/tabular"
	"silentskies-service/internal/usecase"
	"silentskies-service/pkg/logger"
	"silentskies-service/pkg/metrics"
	"silentskies-service/pkg/timemerge"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting SilentSkies Service", "version", cfg.AppVersion)

	m := metrics.NewMetrics("silentskies", prometheus.DefaultRegisterer)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Airport reference data: Postgres first, then the static catalog
	staticAirports := repo.NewStaticAirportRepository()
	if cfg.AirportsFile != "" {
		staticAirports, err = repo.LoadStaticAirportRepository(cfg.AirportsFile)
		if err != nil {
			log.Fatal("Failed to load airport catalog", "file", cfg.AirportsFile, "error", err)
		}
	}
	airportRepos := []repository.AirportRepository{}
	if cfg.PostgresDSN != "" {
		log.Info("Connecting to PostgreSQL")
		gormDB, err := persistence.NewPostgresDB(cfg.PostgresDSN)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		airportRepos = append(airportRepos, repo.NewGormAirportRepository(gormDB))
	}
	airportRepos = append(airportRepos, staticAirports)
	airports := repo.NewChainedAirportRepository(log, airportRepos...)

	// Arrival archive for past days
	var mongoClient *mongo.Client
	var archive repository.ArrivalArchiveRepository
	if cfg.MongoURI != "" {
		log.Info("Connecting to MongoDB")
		client, db, err := persistence.NewMongoClient(ctx, persistence.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDB,
			Username: cfg.MongoUser,
			Password: cfg.MongoPassword,
		})
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		mongoClient = client
		mongoArchive := repo.NewMongoArrivalArchiveRepository(db)
		if err := mongoArchive.EnsureIndexes(ctx); err != nil {
			log.Fatal("Failed to create archive indexes", "error", err)
		}
		archive = mongoArchive
	}

	// Providers
	var collector *usecase.ArrivalCollector
	if cfg.AeroDataBoxAPIKey != "" {
		aero := repo.NewAeroDataBoxRepository(repo.AeroDataBoxConfig{
			APIKey:  cfg.AeroDataBoxAPIKey,
			Host:    cfg.AeroDataBoxHost,
			BaseURL: cfg.AeroDataBoxBaseURL,
			Timeout: cfg.HTTPTimeout,
		}, airports, m, log)
		collector = usecase.NewArrivalCollector(aero, archive, cfg.FetchConcurrency, m, log)
	} else {
		log.Warn("AERODATABOX_API_KEY not set, arrivals must be uploaded")
	}

	var weather *usecase.WeatherEnricher
	if cfg.OpenWeatherAPIKey != "" {
		owm := repo.NewOpenWeatherRepository(cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL, cfg.HTTPTimeout, m, log)
		weather = usecase.NewWeatherEnricher(owm, airports, log)
	} else {
		log.Warn("OPENWEATHER_API_KEY not set, weather enrichment disabled")
	}

	// Google Sheets export
	var exporter repository.MergeExporter
	if cfg.SheetsEnabled() {
		sheetsOAuth := oauth.NewSheetsOAuth(
			cfg.SheetsClientID,
			cfg.SheetsClientSecret,
			cfg.SheetsRefreshToken,
			"",
			log,
		)
		sheetsExporter, err := sheets.NewSheetsExporter(ctx, sheetsOAuth.GetTokenSource(ctx), cfg.SheetsSpreadsheetID, log)
		if err != nil {
			log.Fatal("Failed to create Sheets exporter", "error", err)
		}
		exporter = sheetsExporter
	}

	// Loaders
	formats := router.NewFormatRouter(log)
	formats.Register(tabular.NewCSVLoader())
	formats.Register(tabular.NewXLSXLoader())
	loader := usecase.NewTableLoader(formats, cfg.NoiseTimeColumn, cfg.ArrivalTimeColumn, m, log)

	options := timemerge.DefaultOptions()
	options.LeftOn = cfg.NoiseTimeColumn
	options.RightOn = cfg.ArrivalTimeColumn
	options.Tolerance = cfg.MergeTolerance

	dashboard := usecase.NewDashboardService(loader, collector, weather, exporter, cfg.NoiseLocation(), options, m, log)
	api := httpapi.NewHandler(dashboard, airports, cfg.MergeTolerance, m, log)

	// Set up HTTP server
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})
	api.Register(mux)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop in-flight fetches

	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error("MongoDB disconnect error", "error", err)
		}
	}

	log.Info("SilentSkies Service stopped")
}
