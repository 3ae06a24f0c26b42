package table

import (
	"testing"
	"time"
)

func TestParseTimestampAwareLayouts(t *testing.T) {
	cases := map[string]time.Time{
		"2025-07-01T12:00:00+02:00":  time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC),
		"2025-07-01T12:00:00Z":       time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
		"2025-07-01 10:05Z":          time.Date(2025, 7, 1, 10, 5, 0, 0, time.UTC),
		"2025-07-01 12:05+02:00":     time.Date(2025, 7, 1, 10, 5, 0, 0, time.UTC),
		"2025-07-01T12:00:00.5+0200": time.Date(2025, 7, 1, 10, 0, 0, 500_000_000, time.UTC),
	}
	for in, want := range cases {
		ts, ok := ParseTimestamp(in)
		if !ok {
			t.Fatalf("expected %q to parse", in)
		}
		if !ts.Aware {
			t.Fatalf("expected %q to be zone-aware", in)
		}
		if !ts.Time.Equal(want) {
			t.Fatalf("%q: expected %s, got %s", in, want, ts.Time)
		}
	}
}

func TestParseTimestampNaiveLayouts(t *testing.T) {
	cases := map[string]time.Time{
		"2025-07-01T12:00:00": time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
		"2025-07-01 12:00:00": time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
		"2025-07-01 12:00":    time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
		"2025-07-01":          time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		"01.07.2025 12:00:00": time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
		"2025/07/01 12:00":    time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		ts, ok := ParseTimestamp(in)
		if !ok {
			t.Fatalf("expected %q to parse", in)
		}
		if ts.Aware {
			t.Fatalf("expected %q to be naive", in)
		}
		if !ts.Time.Equal(want) {
			t.Fatalf("%q: expected %s, got %s", in, want, ts.Time)
		}
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "not a date", "2025-13-45", "12:00"} {
		if _, ok := ParseTimestamp(in); ok {
			t.Fatalf("expected %q to be rejected", in)
		}
	}
}

func TestLocalizeKeepsWallClockAndSkipsAwareValues(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	naive := Naive(time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))
	got := naive.Normalize(berlin)
	if !got.Aware {
		t.Fatalf("expected normalized value to be aware")
	}
	if want := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC); !got.Time.Equal(want) || got.Time.Location() != time.UTC {
		t.Fatalf("expected %s in UTC, got %s", want, got.Time)
	}

	aware, _ := ParseTimestamp("2025-07-01T12:00:00+02:00")
	again := aware.Normalize(berlin)
	if want := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC); !again.Time.Equal(want) {
		t.Fatalf("aware value must not be localized twice: got %s", again.Time)
	}
}

func TestStripZoneConvertsToUTCWallClock(t *testing.T) {
	aware, _ := ParseTimestamp("2025-07-01T12:00:00+02:00")
	naive := aware.StripZone()
	if naive.Aware {
		t.Fatalf("expected naive result")
	}
	if naive.Hour() != 10 {
		t.Fatalf("expected UTC wall clock 10h, got %d", naive.Hour())
	}
	if naive.StripZone() != naive {
		t.Fatalf("stripping a naive value must be a no-op")
	}
}

func TestFromSpreadsheetSerial(t *testing.T) {
	ts, ok := FromSpreadsheetSerial(45839.5)
	if !ok {
		t.Fatalf("expected serial to convert")
	}
	if want := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC); !ts.Time.Equal(want) || ts.Aware {
		t.Fatalf("expected naive %s, got %s (aware=%v)", want, ts.Time, ts.Aware)
	}
	if _, ok := FromSpreadsheetSerial(-3); ok {
		t.Fatalf("negative serial must be rejected")
	}
}

func TestTimestampString(t *testing.T) {
	naive := Naive(time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))
	if got := naive.String(); got != "2025-07-01T12:00:00" {
		t.Fatalf("unexpected naive rendering %q", got)
	}
	aware := Aware(time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))
	if got := aware.String(); got != "2025-07-01T12:00:00Z" {
		t.Fatalf("unexpected aware rendering %q", got)
	}
}
