package timemerge

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"time"

	"silentskies-service/pkg/table"
)

func naiveAt(hhmmss string) table.Timestamp {
	t, err := time.Parse("2006-01-02 15:04:05", "2025-07-01 "+hhmmss)
	if err != nil {
		panic(err)
	}
	return table.Naive(t)
}

func awareAt(hhmmss string) table.Timestamp {
	return naiveAt(hhmmss).Localize(time.UTC)
}

func noiseTable(t *testing.T, times ...table.Timestamp) *table.Table {
	t.Helper()
	tbl := table.MustNew("timestamp", "noise_db")
	for i, ts := range times {
		if err := tbl.AppendRow(ts, float64(60+i)); err != nil {
			t.Fatalf("append noise: %v", err)
		}
	}
	return tbl
}

func arrivalTable(t *testing.T, rows ...any) *table.Table {
	t.Helper()
	tbl := table.MustNew("arrival_scheduled_utc", "flight_number")
	for i := 0; i < len(rows); i += 2 {
		if err := tbl.AppendRow(rows[i], rows[i+1]); err != nil {
			t.Fatalf("append arrival: %v", err)
		}
	}
	return tbl
}

func opts(tol time.Duration) Options {
	o := DefaultOptions()
	o.Tolerance = tol
	return o
}

func flights(res *Result) []any {
	out := make([]any, res.Table.Len())
	for i := range out {
		out[i] = res.Table.Value(i, "flight_number")
	}
	return out
}

func TestMergeMatchesNearestWithinTolerance(t *testing.T) {
	noise := noiseTable(t, naiveAt("10:00:00"), naiveAt("10:05:00"))
	arrivals := arrivalTable(t, naiveAt("10:01:00"), "AB123", naiveAt("10:07:00"), "CD456")

	res, err := Merge(noise, arrivals, opts(2*time.Minute))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got := flights(res); !reflect.DeepEqual(got, []any{"AB123", "CD456"}) {
		t.Fatalf("expected [AB123 CD456], got %v", got)
	}
	if res.Matched != 2 {
		t.Fatalf("expected 2 matches, got %d", res.Matched)
	}
}

func TestMergeZeroToleranceRequiresExactMatch(t *testing.T) {
	noise := noiseTable(t, naiveAt("10:00:00"), naiveAt("10:05:00"))
	arrivals := arrivalTable(t, naiveAt("10:01:00"), "AB123", naiveAt("10:07:00"), "CD456")

	res, err := Merge(noise, arrivals, opts(0))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got := flights(res); !reflect.DeepEqual(got, []any{nil, nil}) {
		t.Fatalf("expected no matches, got %v", got)
	}
	if res.Table.Value(0, "arrival_scheduled_utc") != nil {
		t.Fatalf("unmatched rows must carry null arrival cells")
	}

	exact := arrivalTable(t, naiveAt("10:05:00"), "EF789")
	res, err = Merge(noise, exact, opts(0))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got := flights(res); !reflect.DeepEqual(got, []any{nil, "EF789"}) {
		t.Fatalf("expected exact match on second row, got %v", got)
	}
}

func TestMergeToleranceBoundaryIsInclusive(t *testing.T) {
	noise := noiseTable(t, naiveAt("10:00:00"))
	arrivals := arrivalTable(t, naiveAt("10:02:00"), "AB123")

	res, err := Merge(noise, arrivals, opts(2*time.Minute))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if res.Table.Value(0, "flight_number") != "AB123" {
		t.Fatalf("arrival exactly at the tolerance must match")
	}

	res, err = Merge(noise, arrivals, opts(2*time.Minute-time.Second))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if res.Table.Value(0, "flight_number") != nil {
		t.Fatalf("arrival beyond the tolerance must not match")
	}
}

func TestMergeTieBreakPrefersEarlierArrival(t *testing.T) {
	noise := noiseTable(t, naiveAt("10:05:00"))
	arrivals := arrivalTable(t,
		naiveAt("10:07:00"), "LATE",
		naiveAt("10:03:00"), "EARLY",
	)

	for _, tol := range []time.Duration{2 * time.Minute, 10 * time.Minute, time.Hour} {
		res, err := Merge(noise, arrivals, opts(tol))
		if err != nil {
			t.Fatalf("merge: %v", err)
		}
		if got := res.Table.Value(0, "flight_number"); got != "EARLY" {
			t.Fatalf("tolerance %s: expected EARLY, got %v", tol, got)
		}
	}
}

func TestMergeIdenticalArrivalTimesPreferFirstInput(t *testing.T) {
	noise := noiseTable(t, naiveAt("10:00:00"), naiveAt("10:10:00"))
	arrivals := arrivalTable(t,
		naiveAt("10:01:00"), "FIRST",
		naiveAt("10:01:00"), "SECOND",
		naiveAt("10:09:00"), "THIRD",
		naiveAt("10:09:00"), "FOURTH",
	)

	res, err := Merge(noise, arrivals, opts(5*time.Minute))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got := flights(res); !reflect.DeepEqual(got, []any{"FIRST", "THIRD"}) {
		t.Fatalf("expected [FIRST THIRD], got %v", got)
	}
	if !reflect.DeepEqual(res.Matches, []int{0, 2}) {
		t.Fatalf("expected matches [0 2], got %v", res.Matches)
	}
}

func TestMergeSortsNoiseAndKeepsEveryRow(t *testing.T) {
	noise := noiseTable(t, naiveAt("10:05:00"), naiveAt("10:00:00"))
	if err := noise.AppendRow(nil, 99.0); err != nil {
		t.Fatalf("append: %v", err)
	}
	arrivals := arrivalTable(t, naiveAt("10:00:30"), "AB123", nil, "NOTIME")

	res, err := Merge(noise, arrivals, opts(time.Minute))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if res.Table.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", res.Table.Len())
	}
	if !reflect.DeepEqual(res.NoiseRows, []int{1, 0, 2}) {
		t.Fatalf("expected noise order [1 0 2], got %v", res.NoiseRows)
	}
	if got := flights(res); !reflect.DeepEqual(got, []any{"AB123", nil, nil}) {
		t.Fatalf("unexpected pairing %v", got)
	}
	if res.Table.Value(2, "noise_db") != 99.0 {
		t.Fatalf("null-time noise row must be kept last")
	}
}

func TestMergeEmptyArrivalsKeepsCardinality(t *testing.T) {
	noise := noiseTable(t, naiveAt("10:00:00"), naiveAt("10:05:00"), naiveAt("11:00:00"))
	arrivals := arrivalTable(t)

	res, err := Merge(noise, arrivals, opts(time.Hour))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if res.Table.Len() != noise.Len() || res.Matched != 0 {
		t.Fatalf("expected %d unmatched rows, got %d rows / %d matched", noise.Len(), res.Table.Len(), res.Matched)
	}
	want := []string{"timestamp", "noise_db", "arrival_scheduled_utc", "flight_number"}
	if !reflect.DeepEqual(res.Table.Columns(), want) {
		t.Fatalf("expected columns %v, got %v", want, res.Table.Columns())
	}
}

func TestMergeMissingColumns(t *testing.T) {
	noise := noiseTable(t, naiveAt("10:00:00"))
	arrivals := arrivalTable(t, naiveAt("10:00:00"), "AB123")

	o := opts(time.Minute)
	o.LeftOn = "time"
	_, err := Merge(noise, arrivals, o)
	var missing *table.MissingColumnError
	if !errors.As(err, &missing) || missing.Column != "time" || missing.Table != NoiseTableName {
		t.Fatalf("expected missing noise column error, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "failed to merge data:") {
		t.Fatalf("expected wrapped message, got %q", err)
	}

	o = opts(time.Minute)
	o.RightOn = "sta"
	_, err = Merge(noise, arrivals, o)
	if !errors.As(err, &missing) || missing.Table != FlightTableName {
		t.Fatalf("expected missing flight column error, got %v", err)
	}
	if !errors.Is(err, table.ErrMissingColumn) {
		t.Fatalf("expected errors.Is ErrMissingColumn")
	}
}

func TestMergeRejectsNonTemporalColumnsAndNegativeTolerance(t *testing.T) {
	noise := table.MustNew("timestamp")
	_ = noise.AppendRow("10:00")
	arrivals := arrivalTable(t, naiveAt("10:00:00"), "AB123")

	if _, err := Merge(noise, arrivals, opts(time.Minute)); !errors.Is(err, table.ErrNotTemporal) {
		t.Fatalf("expected ErrNotTemporal, got %v", err)
	}
	if _, err := Merge(noiseTable(t, naiveAt("10:00:00")), arrivals, opts(-time.Second)); err == nil {
		t.Fatalf("expected error for negative tolerance")
	}
}

func TestMergeNoiseAwareArrivalsNaive(t *testing.T) {
	// 12:00+02:00 is 10:00 UTC; naive arrival wall clocks are read as UTC.
	berlin := time.FixedZone("CEST", 2*3600)
	noiseTS := table.Aware(time.Date(2025, 7, 1, 12, 0, 0, 0, berlin))
	noise := noiseTable(t, noiseTS)
	arrivals := arrivalTable(t, naiveAt("10:01:00"), "AB123", naiveAt("12:00:00"), "WRONG")

	res, err := Merge(noise, arrivals, opts(2*time.Minute))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got := res.Table.Value(0, "flight_number"); got != "AB123" {
		t.Fatalf("expected AB123, got %v", got)
	}
	at, ok := res.Table.Value(0, "arrival_scheduled_utc").(table.Timestamp)
	if !ok || !at.Aware || at.Location() != time.UTC {
		t.Fatalf("expected arrival time localized to UTC, got %#v", res.Table.Value(0, "arrival_scheduled_utc"))
	}
	if ts := res.Table.Value(0, "timestamp").(table.Timestamp); ts != noiseTS {
		t.Fatalf("noise time must not be altered")
	}
	if orig := arrivals.Value(0, "arrival_scheduled_utc").(table.Timestamp); orig.Aware {
		t.Fatalf("input arrival table must not be mutated")
	}
}

func TestMergeNoiseNaiveArrivalsAware(t *testing.T) {
	noise := noiseTable(t, naiveAt("10:00:00"))
	plus2 := time.FixedZone("CEST", 2*3600)
	arrivals := arrivalTable(t,
		table.Aware(time.Date(2025, 7, 1, 12, 1, 0, 0, plus2)), "AB123",
		table.Aware(time.Date(2025, 7, 1, 10, 0, 0, 0, plus2)), "WRONG",
	)

	res, err := Merge(noise, arrivals, opts(2*time.Minute))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got := res.Table.Value(0, "flight_number"); got != "AB123" {
		t.Fatalf("expected AB123, got %v", got)
	}
	at := res.Table.Value(0, "arrival_scheduled_utc").(table.Timestamp)
	if at.Aware || at.Hour() != 10 || at.Minute() != 1 {
		t.Fatalf("expected naive 10:01 UTC wall clock, got %s", at)
	}
}

func TestMergeRejectsMixedAwarenessWithinColumn(t *testing.T) {
	noise := noiseTable(t, naiveAt("10:00:00"), awareAt("10:05:00"))
	arrivals := arrivalTable(t, naiveAt("10:00:00"), "AB123")
	if _, err := Merge(noise, arrivals, opts(time.Minute)); err == nil {
		t.Fatalf("expected error for mixed awareness")
	}
}

func TestMergeSharedKeyAndSuffixes(t *testing.T) {
	noise := table.MustNew("timestamp", "noise_db", "icao")
	_ = noise.AppendRow(naiveAt("10:00:00"), 65.0, "EDDB")
	arrivals := table.MustNew("timestamp", "flight_number", "icao")
	_ = arrivals.AppendRow(naiveAt("10:00:30"), "AB123", "EDDB")

	o := opts(time.Minute)
	o.RightOn = "timestamp"
	res, err := Merge(noise, arrivals, o)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	want := []string{"timestamp", "noise_db", "icao_x", "flight_number", "icao_y"}
	if !reflect.DeepEqual(res.Table.Columns(), want) {
		t.Fatalf("expected %v, got %v", want, res.Table.Columns())
	}
	if res.Table.Value(0, "timestamp").(table.Timestamp) != naiveAt("10:00:00") {
		t.Fatalf("shared key column must hold the noise time")
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	noise := noiseTable(t, awareAt("10:00:00"), awareAt("10:05:00"), awareAt("10:30:00"))
	arrivals := arrivalTable(t, naiveAt("10:01:00"), "AB123", naiveAt("10:07:00"), "CD456")

	once, err := Reconcile(noise, arrivals, "timestamp", "arrival_scheduled_utc")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	twice, err := Reconcile(noise, once, "timestamp", "arrival_scheduled_utc")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !reflect.DeepEqual(once.Records(), twice.Records()) {
		t.Fatalf("reconcile is not idempotent: %v vs %v", once.Records(), twice.Records())
	}

	first, err := Merge(noise, arrivals, opts(3*time.Minute))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	second, err := Merge(noise, once, opts(3*time.Minute))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !reflect.DeepEqual(first.Table.Records(), second.Table.Records()) {
		t.Fatalf("merge on reconciled input differs")
	}
}

func TestMergePropertiesOnRandomTables(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	for iter := 0; iter < 200; iter++ {
		noise := table.MustNew("timestamp", "noise_db")
		for i, n := 0, rng.Intn(30); i < n; i++ {
			_ = noise.AppendRow(table.Naive(base.Add(time.Duration(rng.Intn(7200))*time.Second)), float64(i))
		}
		arrivals := table.MustNew("arrival_scheduled_utc", "flight_number")
		for i, n := 0, rng.Intn(30); i < n; i++ {
			_ = arrivals.AppendRow(table.Naive(base.Add(time.Duration(rng.Intn(7200))*time.Second)), fmt.Sprintf("F%d", i))
		}
		tol := time.Duration(rng.Intn(600)) * time.Second

		res, err := Merge(noise, arrivals, opts(tol))
		if err != nil {
			t.Fatalf("iteration %d: %v", iter, err)
		}
		if res.Table.Len() != noise.Len() {
			t.Fatalf("iteration %d: expected %d rows, got %d", iter, noise.Len(), res.Table.Len())
		}

		var prev *table.Timestamp
		for i := 0; i < res.Table.Len(); i++ {
			nt := res.Table.Value(i, "timestamp").(table.Timestamp)
			if prev != nil && nt.Before(prev.Time) {
				t.Fatalf("iteration %d: output not sorted by noise time", iter)
			}
			prev = &nt

			at, ok := res.Table.Value(i, "arrival_scheduled_utc").(table.Timestamp)
			if !ok {
				continue
			}
			diff := nt.Sub(at)
			if diff < 0 {
				diff = -diff
			}
			if diff > tol {
				t.Fatalf("iteration %d: match %s away exceeds tolerance %s", iter, diff, tol)
			}
		}
	}
}
