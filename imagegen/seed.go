// Package imagegen resolves loosely-typed generation requests and manages
// acquisition of the underlying Z-Image pipeline.
//
// seed.go resolves a seed that arrives as text. Text transport is
// deliberate: JavaScript front ends lose precision for integers above 2^53,
// so the raw value is kept as a string until it reaches this boundary.
package imagegen

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	"strconv"
	"strings"
)

// MaxSeed is the inclusive upper bound of the random seed range.
const MaxSeed = math.MaxInt64

// ResolveSeed turns a raw seed string into a concrete seed integer.
//
// An empty string, anything that parses to zero ("0", "00", "+0", "-0"),
// or a non-parseable value means "no seed specified" and draws a fresh seed
// uniformly from [1, 2^63-1]; this path is not reproducible across calls.
// Any other parseable integer is returned verbatim with full 64-bit
// fidelity, making the reproducible path idempotent.
func ResolveSeed(raw string) int64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return randomSeed()
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v == 0 {
		return randomSeed()
	}
	return v
}

// randomSeed draws a uniform value from [1, MaxSeed] using crypto/rand.
// Masking the sign bit yields a uniform draw over [0, 2^63-1]; zero is
// rejected and redrawn so the result can never collide with the "random"
// sentinel.
func randomSeed() int64 {
	var buf [8]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			// crypto/rand failing is effectively unrecoverable; a fixed
			// seed beats crashing mid-request.
			return 1
		}
		seed := int64(binary.LittleEndian.Uint64(buf[:]) & math.MaxInt64)
		if seed != 0 {
			return seed
		}
	}
}
