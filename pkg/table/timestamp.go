package table

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Timestamp is an instant that remembers whether its source carried zone information.
// Naive timestamps keep their wall clock in time.UTC and compare by wall clock.
type Timestamp struct {
	time.Time // embed
	Aware     bool
}

const naiveLayout = "2006-01-02T15:04:05.999999999"

// Layouts carrying an explicit offset or Z.
var awareLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05-0700",
	"2006-01-02T15:04:05Z0700",
	time.RFC1123Z,
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
}

// Naive returns a zone-less timestamp with the wall clock of t.
func Naive(t time.Time) Timestamp {
	return Timestamp{
		Time: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC),
	}
}

// Aware returns a zone-aware timestamp for t.
func Aware(t time.Time) Timestamp {
	return Timestamp{Time: t, Aware: true}
}

// ParseTimestamp parses s with the supported layouts. It never fails loudly:
// unparseable input reports ok=false and the caller stores a null.
func ParseTimestamp(s string) (Timestamp, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, false
	}
	for _, layout := range awareLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Aware(t), true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Naive(t), true
		}
	}
	return Timestamp{}, false
}

// FromSpreadsheetSerial converts a spreadsheet serial date (days since 1899-12-30,
// 1900 date system) into a naive timestamp.
func FromSpreadsheetSerial(serial float64) (Timestamp, bool) {
	if serial <= 0 || math.IsInf(serial, 0) || math.IsNaN(serial) {
		return Timestamp{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return Timestamp{}, false
	}
	return Naive(t.Round(time.Millisecond)), true
}

// Localize attaches loc to a naive timestamp, keeping its wall clock.
// Aware timestamps are returned unchanged.
func (ts Timestamp) Localize(loc *time.Location) Timestamp {
	if ts.Aware {
		return ts
	}
	t := ts.Time
	return Aware(time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc))
}

// InUTC converts an aware timestamp to UTC. Naive timestamps are returned unchanged.
func (ts Timestamp) InUTC() Timestamp {
	if !ts.Aware {
		return ts
	}
	return Aware(ts.Time.UTC())
}

// Normalize localizes naive values to loc, then converts everything to UTC.
func (ts Timestamp) Normalize(loc *time.Location) Timestamp {
	return ts.Localize(loc).InUTC()
}

// StripZone converts to UTC and drops the zone.
func (ts Timestamp) StripZone() Timestamp {
	if !ts.Aware {
		return ts
	}
	return Naive(ts.Time.UTC())
}

// Sub returns ts - other. Both sides must share awareness for the result to be meaningful.
func (ts Timestamp) Sub(other Timestamp) time.Duration {
	return ts.Time.Sub(other.Time)
}

func (ts Timestamp) String() string {
	if ts.Aware {
		return ts.Time.Format(time.RFC3339Nano)
	}
	return ts.Time.Format(naiveLayout)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.String())
}
