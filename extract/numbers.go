package extract

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Default plausibility bounds. Monthly rents outside the wide band are
// treated as parsing artifacts (years, phone fragments, surface areas);
// per-square-metre prices use a much tighter band.
const (
	DefaultRentMin    = 100
	DefaultRentMax    = 20000
	DefaultPerAreaMin = 1
	DefaultPerAreaMax = 200
)

// numPat matches a Spanish-formatted number: optional dot-grouped
// thousands, optional decimal comma. Used inside the strategy regexps.
const numPat = `\d{1,3}(?:\.\d{3})+(?:,\d+)?|\d+(?:,\d+)?`

// ParseSpanishNumber converts locale-formatted text ("1.234,56") to a
// float. Thousands dots are stripped, the decimal comma becomes a point.
func ParseSpanishNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value from %q", s)
	}
	return v, nil
}

// Bounds is a plausibility window for parsed monetary values.
type Bounds struct {
	Min float64
	Max float64
}

func (b Bounds) Plausible(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// parseCurrency parses a matched token and applies the given bounds,
// returning ok=false for artifacts.
func parseCurrency(token string, b Bounds) (float64, bool) {
	v, err := ParseSpanishNumber(token)
	if err != nil {
		return 0, false
	}
	if !b.Plausible(v) {
		return 0, false
	}
	return v, true
}
