package utils

import (
	"reflect"
	"testing"
	"time"
)

func TestParseCoordinate(t *testing.T) {
	cases := map[string]float64{
		"52,362250": 52.36225,
		"52.362250": 52.36225,
		" 13.5033 ": 13.5033,
		"-0,4543":   -0.4543,
	}
	for in, want := range cases {
		got, err := ParseCoordinate(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: expected %v, got %v", in, want, got)
		}
	}
	for _, in := range []string{"", "north", "1,2,3"} {
		if _, err := ParseCoordinate(in); err == nil {
			t.Fatalf("expected %q to fail", in)
		}
	}
}

func TestParseLatLonRange(t *testing.T) {
	if _, err := ParseLatLon("91", "0"); err == nil {
		t.Fatalf("expected latitude range error")
	}
	c, err := ParseLatLon("52,3667", "13,5033")
	if err != nil || c.Latitude != 52.3667 || c.Longitude != 13.5033 {
		t.Fatalf("unexpected %+v %v", c, err)
	}
}

func TestSplitICAOList(t *testing.T) {
	got, err := SplitICAOList("eddb, LFPG;EGLL eddb")
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if want := []string{"EDDB", "LFPG", "EGLL"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if _, err := SplitICAOList("EDDB,TXL"); err == nil {
		t.Fatalf("expected three-letter code to be rejected")
	}
}

func TestParseDay(t *testing.T) {
	now := time.Date(2025, 7, 1, 22, 30, 0, 0, time.FixedZone("X", -3*3600))
	day, err := ParseDay("", now)
	if err != nil || !day.Equal(time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected UTC today, got %s %v", day, err)
	}
	if _, err := ParseDay("01.07.2025", now); err == nil {
		t.Fatalf("expected invalid format error")
	}
	if !IsPastDay(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), now) {
		t.Fatalf("previous UTC day must be past")
	}
}

func TestParseToleranceMinutes(t *testing.T) {
	d, err := ParseToleranceMinutes("", 5*time.Minute)
	if err != nil || d != 5*time.Minute {
		t.Fatalf("expected fallback, got %s %v", d, err)
	}
	d, err = ParseToleranceMinutes("2", 0)
	if err != nil || d != 2*time.Minute {
		t.Fatalf("expected 2m, got %s %v", d, err)
	}
	for _, in := range []string{"-1", "61", "two"} {
		if _, err := ParseToleranceMinutes(in, 0); err == nil {
			t.Fatalf("expected %q to fail", in)
		}
	}
}
