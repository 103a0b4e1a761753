// Package utils provides small, generic helpers shared across layers. Nothing
// in here knows about calls, agents, or the pipeline.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or not a
// valid integer. Query-parameter parsing never needs to surface the parse
// error, only a usable value.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// Clamp bounds v to the inclusive range [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
