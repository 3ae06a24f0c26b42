package usecase

import (
	"context"
	"io"

	"silentskies-service/pkg/table"
)

// TabularLoader defines the interface for file format loaders
type TabularLoader interface {
	// Format names the format for logs and metrics, e.g. "csv"
	Format() string

	// CanHandle determines if this loader reads the given file name
	CanHandle(filename string) bool

	// Load reads the header row and records of the file
	Load(ctx context.Context, r io.Reader) (*table.Grid, error)
}

// FormatRouter routes uploaded files to the appropriate loader based on their name
type FormatRouter interface {
	// Register registers a loader
	Register(loader TabularLoader)

	// GetLoader returns the loader for a file name, nil when none matches
	GetLoader(filename string) TabularLoader
}
