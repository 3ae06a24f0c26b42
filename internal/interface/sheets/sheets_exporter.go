package sheets

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"silentskies-service/pkg/logger"
	"silentskies-service/pkg/table"
)

// SheetsExporter writes merged tables into a Google spreadsheet
type SheetsExporter struct {
	service       *sheets.Service
	spreadsheetID string
	logger        logger.Logger
}

// NewSheetsExporter creates a new exporter authenticated with tokenSource
func NewSheetsExporter(ctx context.Context, tokenSource oauth2.TokenSource, spreadsheetID string, logger logger.Logger) (*SheetsExporter, error) {
	return NewSheetsExporterWithOptions(ctx, spreadsheetID, logger, option.WithTokenSource(tokenSource))
}

// NewSheetsExporterWithOptions creates an exporter from raw client options
func NewSheetsExporterWithOptions(ctx context.Context, spreadsheetID string, logger logger.Logger, opts ...option.ClientOption) (*SheetsExporter, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}

	return &SheetsExporter{
		service:       service,
		spreadsheetID: spreadsheetID,
		logger:        logger,
	}, nil
}

// Export writes the header and rows of t to {title}!A1 and returns the updated range
func (e *SheetsExporter) Export(ctx context.Context, title string, t *table.Table) (string, error) {
	values := make([][]interface{}, 0, t.Len()+1)

	header := make([]interface{}, 0, len(t.Columns()))
	for _, c := range t.Columns() {
		header = append(header, c)
	}
	values = append(values, header)

	for _, rec := range t.Records() {
		row := make([]interface{}, len(rec))
		for i, v := range rec {
			row[i] = v
		}
		values = append(values, row)
	}

	rng := fmt.Sprintf("%s!A1", title)
	resp, err := e.service.Spreadsheets.Values.Update(e.spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to export to sheet: %w", err)
	}

	e.logger.Info("Exported merged table",
		"spreadsheetID", e.spreadsheetID,
		"range", resp.UpdatedRange,
		"rows", resp.UpdatedRows)

	return resp.UpdatedRange, nil
}
