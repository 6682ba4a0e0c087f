// Package imagegen resolves loosely-typed generation requests and manages
// acquisition of the underlying Z-Image pipeline.
//
// atoms.go contains pure coercion helpers with no dependencies. All input
// coercion for the package happens through these; orchestration code never
// parses raw values itself.
package imagegen

import (
	"strconv"
	"strings"
)

// coercePositiveInt parses a raw value as an integer, falling back to def
// when the value is malformed or not strictly positive.
//
// The front end sends numbers as text, so this is the single place where
// "1024", "1024.0", "" and garbage are normalized.
func coercePositiveInt(raw string, def int) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// Tolerate a decimal point from numeric widgets ("1024.0").
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return def
		}
		v = int(f)
	}
	if v <= 0 {
		return def
	}
	return v
}

// coerceInt parses a raw value as an integer of any sign, falling back to
// def only when the value is malformed. Callers clamp the range themselves.
func coerceInt(raw string, def int) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return def
		}
		v = int(f)
	}
	return v
}

// coerceFloat parses a raw value as a float, falling back to def when
// malformed. Zero is a valid value (Turbo runs with guidance 0.0).
func coerceFloat(raw string, def float64) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

// clampMin returns v floored at min.
func clampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}
