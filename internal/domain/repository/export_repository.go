package repository

import (
	"context"

	"silentskies-service/pkg/table"
)

// MergeExporter defines the interface for publishing a merged table
type MergeExporter interface {
	Export(ctx context.Context, title string, t *table.Table) (string, error)
}
