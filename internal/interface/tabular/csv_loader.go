package tabular

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"silentskies-service/pkg/table"
)

// CSVLoader reads comma separated files. Files whose header line holds
// semicolons but no commas are read with ';' as the separator.
type CSVLoader struct {
	extensionMatcher
}

// NewCSVLoader creates a new CSV loader
func NewCSVLoader() *CSVLoader {
	return &CSVLoader{extensionMatcher{extensions: []string{".csv"}}}
}

func (l *CSVLoader) Format() string { return "csv" }

// Load reads the header and every record of r.
func (l *CSVLoader) Load(ctx context.Context, r io.Reader) (*table.Grid, error) {
	br := bufio.NewReader(r)
	comma, err := sniffSeparator(br)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(br)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("no columns to parse from file")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	grid := &table.Grid{Header: header}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		grid.Records = append(grid.Records, record)
	}
	return grid, nil
}

func sniffSeparator(br *bufio.Reader) (rune, error) {
	line, err := br.Peek(br.Size())
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return 0, fmt.Errorf("failed to read csv: %w", err)
	}
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if bytes.IndexByte(line, ';') >= 0 && bytes.IndexByte(line, ',') < 0 {
		return ';', nil
	}
	return ',', nil
}
