// Package timemerge pairs every noise reading with the temporally nearest
// flight arrival inside a tolerance window.
package timemerge

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"silentskies-service/pkg/table"
)

const (
	NoiseTableName  = "noise data"
	FlightTableName = "flight data"
)

var utc = time.UTC

// Options configures a merge.
type Options struct {
	LeftOn    string        // time column of the noise table
	RightOn   string        // time column of the arrival table
	Tolerance time.Duration // inclusive
	Suffixes  [2]string     // appended to overlapping column names; defaults to _x, _y
}

// DefaultOptions mirrors the dashboard defaults.
func DefaultOptions() Options {
	return Options{
		LeftOn:    "timestamp",
		RightOn:   "arrival_scheduled_utc",
		Tolerance: 5 * time.Minute,
		Suffixes:  [2]string{"_x", "_y"},
	}
}

// Result is a merged table plus the pairing that produced it.
type Result struct {
	Table *table.Table

	// NoiseRows[i] is the input noise row that became output row i.
	NoiseRows []int
	// Matches[i] is the input arrival row paired with output row i, or -1.
	Matches []int
	Matched int
}

type candidate struct {
	row int
	at  time.Time
}

// Merge aligns noise and arrivals by nearest time within opts.Tolerance.
//
// Both tables are stably sorted by their time columns (nulls last). Each noise
// row is paired with the closest arrival no further than the tolerance away;
// when two arrivals are equally close the earlier one wins, and arrivals with
// identical times resolve to the one that came first in the input. The output
// holds exactly one row per noise row, in sorted noise order, with null arrival
// cells where nothing matched.
func Merge(noise, arrivals *table.Table, opts Options) (*Result, error) {
	res, err := merge(noise, arrivals, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to merge data: %w", err)
	}
	return res, nil
}

func merge(noise, arrivals *table.Table, opts Options) (*Result, error) {
	if noise == nil || arrivals == nil {
		return nil, errors.New("noise and flight tables are required")
	}
	if opts.Tolerance < 0 {
		return nil, fmt.Errorf("tolerance must not be negative, got %s", opts.Tolerance)
	}
	if opts.Suffixes[0] == "" && opts.Suffixes[1] == "" {
		opts.Suffixes = DefaultOptions().Suffixes
	}

	adjusted, err := Reconcile(noise, arrivals, opts.LeftOn, opts.RightOn)
	if err != nil {
		return nil, err
	}
	noiseTimes, arrivalTimes, err := timeColumns(noise, adjusted, opts.LeftOn, opts.RightOn)
	if err != nil {
		return nil, err
	}

	noiseOrder := stableOrder(noiseTimes)
	arrivalOrder := stableOrder(arrivalTimes)

	candidates := make([]candidate, 0, len(arrivalOrder))
	for _, r := range arrivalOrder {
		if arrivalTimes[r] == nil {
			break // nulls sort last
		}
		candidates = append(candidates, candidate{row: r, at: arrivalTimes[r].Time})
	}

	columns, skip := layout(noise.Columns(), adjusted.Columns(), opts)
	out, err := table.New(columns...)
	if err != nil {
		return nil, err
	}

	arrivalWidth := len(adjusted.Columns())
	res := &Result{
		Table:     out,
		NoiseRows: noiseOrder,
		Matches:   make([]int, len(noiseOrder)),
	}
	for i, nr := range noiseOrder {
		match := -1
		if noiseTimes[nr] != nil {
			match = nearest(candidates, noiseTimes[nr].Time, opts.Tolerance)
		}
		res.Matches[i] = match

		values := noise.Row(nr)
		var right []any
		if match >= 0 {
			right = adjusted.Row(match)
			res.Matched++
		} else {
			right = make([]any, arrivalWidth)
		}
		for c, v := range right {
			if c == skip {
				continue
			}
			values = append(values, v)
		}
		if err := out.AppendRow(values...); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func timeColumns(noise, arrivals *table.Table, leftOn, rightOn string) ([]*table.Timestamp, []*table.Timestamp, error) {
	if !noise.HasColumn(leftOn) {
		return nil, nil, &table.MissingColumnError{Column: leftOn, Table: NoiseTableName}
	}
	if !arrivals.HasColumn(rightOn) {
		return nil, nil, &table.MissingColumnError{Column: rightOn, Table: FlightTableName}
	}
	noiseTimes, err := noise.TimeColumn(leftOn)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", NoiseTableName, err)
	}
	arrivalTimes, err := arrivals.TimeColumn(rightOn)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", FlightTableName, err)
	}
	return noiseTimes, arrivalTimes, nil
}

// stableOrder returns row indices sorted ascending by time, ties in input order,
// nulls last.
func stableOrder(times []*table.Timestamp) []int {
	order := make([]int, len(times))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ta, tb := times[order[a]], times[order[b]]
		if ta == nil {
			return false
		}
		if tb == nil {
			return true
		}
		return ta.Time.Before(tb.Time)
	})
	return order
}

// nearest returns the arrival row closest to target within tol, or -1.
// candidates must be sorted by time with ties in input order.
func nearest(candidates []candidate, target time.Time, tol time.Duration) int {
	idx := sort.Search(len(candidates), func(i int) bool {
		return !candidates[i].at.Before(target)
	})

	best := -1
	var bestDiff time.Duration

	if idx > 0 {
		// earliest candidate sharing the preceding time
		prev := candidates[idx-1].at
		first := sort.Search(idx, func(i int) bool {
			return !candidates[i].at.Before(prev)
		})
		best = first
		bestDiff = target.Sub(prev)
	}
	if idx < len(candidates) {
		diff := candidates[idx].at.Sub(target)
		if best < 0 || diff < bestDiff {
			best = idx
			bestDiff = diff
		}
	}

	if best < 0 || bestDiff > tol {
		return -1
	}
	return candidates[best].row
}

// layout names the output columns. When both time columns share a name only the
// noise one is kept and skip is its index among the arrival columns.
func layout(left, right []string, opts Options) ([]string, int) {
	skip := -1
	if opts.LeftOn == opts.RightOn {
		for i, c := range right {
			if c == opts.RightOn {
				skip = i
			}
		}
	}

	inLeft := make(map[string]bool, len(left))
	for _, c := range left {
		inLeft[c] = true
	}
	inRight := make(map[string]bool, len(right))
	for i, c := range right {
		if i != skip {
			inRight[c] = true
		}
	}

	columns := make([]string, 0, len(left)+len(right))
	for _, c := range left {
		if inRight[c] {
			c += opts.Suffixes[0]
		}
		columns = append(columns, c)
	}
	for i, c := range right {
		if i == skip {
			continue
		}
		if inLeft[c] {
			c += opts.Suffixes[1]
		}
		columns = append(columns, c)
	}
	return columns, skip
}
