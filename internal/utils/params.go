// Package utils provides small parsing helpers for request parameters. They
// carry no domain knowledge.
package utils

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidID is returned by ParseID for anything that is not a positive
// integer.
var ErrInvalidID = errors.New("invalid id")

// AtoiDefault converts s with strconv.Atoi, returning def when s is empty or
// not an integer.
//
//	utils.AtoiDefault("42", 0) // 42
//	utils.AtoiDefault("x", 5)  // 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ParseID parses a path identifier. Zero, negatives, signs and values beyond
// the uint32 range are rejected.
func ParseID(s string) (uint, error) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] == '+' {
		return 0, ErrInvalidID
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == 0 {
		return 0, ErrInvalidID
	}
	return uint(n), nil
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
