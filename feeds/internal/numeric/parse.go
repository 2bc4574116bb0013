// Package numeric provides the permissive cell-to-number coercion the
// workbook loaders share, mirroring pandas' errors="coerce": a cell that
// does not parse is treated as missing rather than a hard failure.
package numeric

import "strconv"

// ParseInt parses s as an integer, truncating a float-formatted cell
// (e.g. "2030.0") the same way pd.to_numeric followed by int() would.
func ParseInt(s string) (int, bool) {
	f, ok := ParseFloat(s)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// ParseFloat parses s as a float64, reporting false for a blank or
// non-numeric cell instead of erroring.
func ParseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
