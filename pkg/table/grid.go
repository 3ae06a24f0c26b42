package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// nullTokens are cell values read as missing, as spreadsheet exports and
// pandas write them.
var nullTokens = map[string]bool{
	"NA": true, "N/A": true, "n/a": true, "#N/A": true, "<NA>": true,
	"NaN": true, "nan": true, "-NaN": true, "-nan": true,
	"null": true, "NULL": true, "None": true,
}

// Grid is an untyped tabular source exactly as a file loader read it.
type Grid struct {
	Header  []string
	Records [][]string

	// SpreadsheetDates marks grids whose numeric time cells are serial dates.
	SpreadsheetDates bool
}

// BuildStats reports what Build did with the cells.
type BuildStats struct {
	Rows          int
	ParseFailures map[string]int // per time column, non-empty cells that did not parse
}

// TotalParseFailures sums the failures of every time column.
func (s BuildStats) TotalParseFailures() int {
	n := 0
	for _, v := range s.ParseFailures {
		n += v
	}
	return n
}

// Build turns a grid into a typed table. Cells of timeColumns become Timestamps
// (null when unparseable); every other column becomes float64 when all of its
// non-empty cells are numeric and stays string otherwise. Empty cells are null.
func Build(g Grid, timeColumns ...string) (*Table, BuildStats, error) {
	stats := BuildStats{ParseFailures: map[string]int{}}

	header := dedupeHeader(g.Header)
	t, err := New(header...)
	if err != nil {
		return nil, stats, err
	}

	isTime := make(map[string]bool, len(timeColumns))
	for _, c := range timeColumns {
		isTime[c] = true
	}

	rows := make([][]string, 0, len(g.Records))
	for n, rec := range g.Records {
		if blank(rec) {
			continue
		}
		if len(rec) > len(header) {
			return nil, stats, fmt.Errorf("record %d: expected %d fields, saw %d", n+1, len(header), len(rec))
		}
		rows = append(rows, rec)
	}

	cells := make([][]any, len(rows))
	for i := range cells {
		cells[i] = make([]any, len(header))
	}

	for c, name := range header {
		raw := make([]string, len(rows))
		for i, rec := range rows {
			if c < len(rec) {
				raw[i] = cleanCell(rec[c])
			}
		}

		var values []any
		if isTime[name] {
			var failed int
			values, failed = parseTimeColumn(raw, g.SpreadsheetDates)
			stats.ParseFailures[name] = failed
		} else {
			values = inferColumn(raw)
		}
		for i, v := range values {
			cells[i][c] = v
		}
	}

	t.rows = cells
	stats.Rows = len(cells)
	return t, stats, nil
}

func parseTimeColumn(raw []string, serialDates bool) ([]any, int) {
	out := make([]any, len(raw))
	failed := 0
	for i, s := range raw {
		if s == "" {
			continue
		}
		if ts, ok := ParseTimestamp(s); ok {
			out[i] = ts
			continue
		}
		if serialDates {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				if ts, ok := FromSpreadsheetSerial(f); ok {
					out[i] = ts
					continue
				}
			}
		}
		failed++
	}
	return out, failed
}

// cleanCell trims s and maps null tokens to the empty string.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if nullTokens[s] {
		return ""
	}
	return s
}

// inferColumn types a column as float64 when every non-empty cell is a finite
// number. Other NaN spellings count as null; infinities keep the column textual.
func inferColumn(raw []string) []any {
	out := make([]any, len(raw))
	nums := make([]float64, len(raw))
	numeric := true
	for i, s := range raw {
		if s == "" {
			continue
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(f, 0) {
			numeric = false
			break
		}
		nums[i] = f
	}
	for i, s := range raw {
		switch {
		case s == "":
		case numeric && math.IsNaN(nums[i]):
		case numeric:
			out[i] = nums[i]
		default:
			out[i] = s
		}
	}
	return out
}

// dedupeHeader names blank headers "Unnamed: N" and suffixes repeats with ".1", ".2".
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		if _, dup := seen[name]; dup {
			for n := seen[h] + 1; ; n++ {
				candidate := fmt.Sprintf("%s.%d", h, n)
				if _, taken := seen[candidate]; !taken {
					seen[h] = n
					name = candidate
					break
				}
			}
		}
		seen[name] = 0
		out[i] = name
	}
	return out
}

func blank(rec []string) bool {
	for _, s := range rec {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
