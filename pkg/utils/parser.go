package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var icaoPattern = regexp.MustCompile(`^[A-Z]{4}$`)

// ParseCoordinate reads a decimal degree value. A decimal comma ("52,362250") is accepted.
func ParseCoordinate(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty coordinate")
	}
	if strings.Count(value, ",") == 1 && !strings.Contains(value, ".") {
		value = strings.Replace(value, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid coordinate %q", value)
	}
	return f, nil
}

// ParseLatLon parses and range-checks a coordinate pair.
func ParseLatLon(lat, lon string) (Coordinate, error) {
	la, err := ParseCoordinate(lat)
	if err != nil {
		return Coordinate{}, fmt.Errorf("latitude: %w", err)
	}
	lo, err := ParseCoordinate(lon)
	if err != nil {
		return Coordinate{}, fmt.Errorf("longitude: %w", err)
	}
	if la < -90 || la > 90 {
		return Coordinate{}, fmt.Errorf("latitude %v out of range", la)
	}
	if lo < -180 || lo > 180 {
		return Coordinate{}, fmt.Errorf("longitude %v out of range", lo)
	}
	return Coordinate{Latitude: la, Longitude: lo}, nil
}

// NormalizeICAO upper-cases and validates a four-letter ICAO code.
func NormalizeICAO(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !icaoPattern.MatchString(code) {
		return "", fmt.Errorf("invalid ICAO code %q", code)
	}
	return code, nil
}

// SplitICAOList parses "EDDB, lfpg;EGLL" into unique normalized codes, keeping order.
func SplitICAOList(value string) ([]string, error) {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})
	seen := make(map[string]bool, len(fields))
	codes := make([]string, 0, len(fields))
	for _, f := range fields {
		code, err := NormalizeICAO(f)
		if err != nil {
			return nil, err
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes, nil
}

// ParseDay parses a YYYY-MM-DD day; an empty value means today in UTC.
func ParseDay(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		n := now.UTC()
		return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	day, err := time.Parse(DATE_LAYOUT, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return day, nil
}

// ParseToleranceMinutes parses a whole number of minutes between 0 and MAX_TOLERANCE_MINUTES.
func ParseToleranceMinutes(value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	minutes, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid tolerance %q", value)
	}
	if minutes < 0 || minutes > MAX_TOLERANCE_MINUTES {
		return 0, fmt.Errorf("tolerance must be between 0 and %d minutes", MAX_TOLERANCE_MINUTES)
	}
	return time.Duration(minutes) * time.Minute, nil
}

// IsPastDay reports whether day lies strictly before the UTC day of now.
func IsPastDay(day, now time.Time) bool {
	n := now.UTC()
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	return day.Before(today)
}
