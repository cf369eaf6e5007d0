package extract

import (
	"regexp"
	"strconv"
)

var (
	intPattern   = regexp.MustCompile(`\d+`)
	floatPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	yearPattern  = regexp.MustCompile(`\d{4}`)
)

// LenientInt pulls the first run of digits out of a free-text value, so
// "xii, 240 p." parses to 240. Returns nil when nothing numeric is found.
func LenientInt(s string) *int {
	m := intPattern.FindString(s)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}

// LenientFloat tolerates currency prefixes and comma decimal separators,
// so "$12,50" parses to 12.5.
func LenientFloat(s string) *float64 {
	m := floatPattern.FindString(s)
	if m == "" {
		return nil
	}
	if i := len(m) - 3; i > 0 && m[i] == ',' {
		m = m[:i] + "." + m[i+1:]
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &f
}

// LenientYear pulls the first four-digit run, so "c1987." parses to 1987.
func LenientYear(s string) *int {
	m := yearPattern.FindString(s)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}
