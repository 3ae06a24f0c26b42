package timemerge

import (
	"fmt"

	"silentskies-service/pkg/table"
)

// awareness reports whether a time column is zone-aware. A column without any
// non-null value counts as naive.
func awareness(values []*table.Timestamp, column string) (bool, error) {
	seen := false
	aware := false
	for i, v := range values {
		if v == nil {
			continue
		}
		if !seen {
			seen = true
			aware = v.Aware
			continue
		}
		if v.Aware != aware {
			return false, fmt.Errorf("column %q mixes zone-aware and naive values (row %d)", column, i)
		}
	}
	return aware, nil
}

// reconcile aligns the arrival times with the awareness of the noise column:
//   - noise aware, arrivals naive: arrivals are read as UTC wall clocks
//   - noise naive, arrivals aware: arrivals are converted to UTC and the zone dropped
//
// The noise column is never touched. The returned slice is a copy.
func reconcile(noiseAware bool, arrivals []*table.Timestamp, arrivalAware bool) []*table.Timestamp {
	out := make([]*table.Timestamp, len(arrivals))
	for i, v := range arrivals {
		if v == nil {
			continue
		}
		ts := *v
		switch {
		case noiseAware && !arrivalAware:
			ts = ts.Localize(utc)
		case !noiseAware && arrivalAware:
			ts = ts.StripZone()
		}
		out[i] = &ts
	}
	return out
}

// Reconcile returns a copy of arrivals whose rightOn column has been aligned
// with the zone awareness of the noise table's leftOn column.
func Reconcile(noise, arrivals *table.Table, leftOn, rightOn string) (*table.Table, error) {
	noiseTimes, arrivalTimes, err := timeColumns(noise, arrivals, leftOn, rightOn)
	if err != nil {
		return nil, err
	}
	noiseAware, err := awareness(noiseTimes, leftOn)
	if err != nil {
		return nil, err
	}
	arrivalAware, err := awareness(arrivalTimes, rightOn)
	if err != nil {
		return nil, err
	}

	adjusted := reconcile(noiseAware, arrivalTimes, arrivalAware)
	out := arrivals.Clone()
	out.SetColumn(rightOn, func(i int) any {
		if adjusted[i] == nil {
			return nil
		}
		return *adjusted[i]
	})
	return out, nil
}
