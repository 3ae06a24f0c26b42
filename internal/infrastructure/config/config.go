// internal/infrastructure/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Merge
	NoiseTimezone     string
	MergeTolerance    time.Duration
	NoiseTimeColumn   string
	ArrivalTimeColumn string

	// Providers
	AeroDataBoxAPIKey  string
	AeroDataBoxHost    string
	AeroDataBoxBaseURL string
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	HTTPTimeout        time.Duration
	FetchConcurrency   int

	// Airports
	AirportsFile string
	PostgresDSN  string

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// Google Sheets
	SheetsClientID      string
	SheetsClientSecret  string
	SheetsRefreshToken  string
	SheetsSpreadsheetID string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 60)) * time.Second,

		NoiseTimezone:     getEnv("NOISE_TIMEZONE", "Europe/Berlin"),
		MergeTolerance:    getEnvAsDuration("MERGE_TOLERANCE", 5*time.Minute),
		NoiseTimeColumn:   getEnv("NOISE_TIME_COLUMN", "timestamp"),
		ArrivalTimeColumn: getEnv("ARRIVAL_TIME_COLUMN", "arrival_scheduled_utc"),

		AeroDataBoxAPIKey:  getEnv("AERODATABOX_API_KEY", ""),
		AeroDataBoxHost:    getEnv("AERODATABOX_HOST", "aerodatabox.p.rapidapi.com"),
		AeroDataBoxBaseURL: getEnv("AERODATABOX_BASE_URL", "https://aerodatabox.p.rapidapi.com"),
		OpenWeatherAPIKey:  getEnv("OPENWEATHER_API_KEY", ""),
		OpenWeatherBaseURL: getEnv("OPENWEATHER_BASE_URL", "https://api.openweathermap.org"),
		HTTPTimeout:        getEnvAsDuration("HTTP_TIMEOUT", 10*time.Second),
		FetchConcurrency:   getEnvAsInt("FETCH_CONCURRENCY", 4),

		AirportsFile: getEnv("AIRPORTS_FILE", ""),
		PostgresDSN:  getEnv("POSTGRES_DSN", ""),

		MongoURI:      getEnv("MONGODB_DSN", ""),
		MongoDB:       getEnv("MONGO_DB", "silentskies"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		SheetsClientID:      getEnv("SHEETS_CLIENT_ID", ""),
		SheetsClientSecret:  getEnv("SHEETS_CLIENT_SECRET", ""),
		SheetsRefreshToken:  getEnv("SHEETS_REFRESH_TOKEN", ""),
		SheetsSpreadsheetID: getEnv("SHEETS_SPREADSHEET_ID", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks values that cannot be defaulted sensibly.
func (c *Config) Validate() error {
	var errs []error
	if c.MergeTolerance < 0 {
		errs = append(errs, fmt.Errorf("MERGE_TOLERANCE must not be negative, got %s", c.MergeTolerance))
	}
	if c.FetchConcurrency < 1 {
		errs = append(errs, fmt.Errorf("FETCH_CONCURRENCY must be at least 1, got %d", c.FetchConcurrency))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout))
	}
	if _, err := time.LoadLocation(c.NoiseTimezone); err != nil {
		errs = append(errs, fmt.Errorf("NOISE_TIMEZONE: %w", err))
	}
	if c.SheetsEnabled() && (c.SheetsClientID == "" || c.SheetsClientSecret == "" || c.SheetsRefreshToken == "") {
		errs = append(errs, errors.New("SHEETS_SPREADSHEET_ID requires SHEETS_CLIENT_ID, SHEETS_CLIENT_SECRET and SHEETS_REFRESH_TOKEN"))
	}
	return errors.Join(errs...)
}

// SheetsEnabled reports whether merged tables can be exported to Google Sheets.
func (c *Config) SheetsEnabled() bool {
	return c.SheetsSpreadsheetID != ""
}

// NoiseLocation returns the zone naive noise timestamps are recorded in.
func (c *Config) NoiseLocation() *time.Location {
	loc, err := time.LoadLocation(c.NoiseTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90s", "5m") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
