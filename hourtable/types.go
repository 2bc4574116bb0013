// Package hourtable implements the Input Assembler: it aligns the
// day-ahead price, hydrogen price, and PPA availability series on a
// common hourly UTC timeline and produces the dense columnar table the
// dispatch optimizer iterates over.
package hourtable

import "time"

// HourTable is a struct-of-slices, not a slice of row structs, so the
// optimizer's hot path never does a per-row map lookup (see the
// "wide-row tables → vector columns" design note this repo follows).
type HourTable struct {
	Instant   []time.Time // hour-aligned, strictly increasing, UTC
	Year      []int
	Month     []int
	DAPrice   []float64
	H2Price   []float64
	GPPAAvail []float64
	V         []int // admission flag, 0 or 1
}

// Len reports the number of assembled hours.
func (t *HourTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Instant)
}

// MonthSpan is a half-open range [Start, End) of row indices belonging to
// one (Year, Month) group, precomputed once so the monthly PPA constraint
// never rescans the table to find its members.
type MonthSpan struct {
	Year  int
	Month int
	Start int
	End   int
}

// MonthSpans groups contiguous rows of t by (year, month) in table order.
// It assumes t is already sorted ascending by Instant, which Assemble
// guarantees.
func MonthSpans(t *HourTable) []MonthSpan {
	n := t.Len()
	if n == 0 {
		return nil
	}
	spans := make([]MonthSpan, 0, 12)
	start := 0
	for i := 1; i <= n; i++ {
		if i == n || t.Year[i] != t.Year[start] || t.Month[i] != t.Month[start] {
			spans = append(spans, MonthSpan{Year: t.Year[start], Month: t.Month[start], Start: start, End: i})
			start = i
		}
	}
	return spans
}
