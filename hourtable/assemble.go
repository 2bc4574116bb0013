package hourtable

import (
	"math"
	"sort"
	"time"

	"github.com/ebp-rad/h2dispatch/admission"
)

// DAPoint is one (instant, day-ahead price) sample.
type DAPoint struct {
	Instant time.Time
	Price   float64
}

// PPAPoint is one (instant, PPA-available energy) sample. The upstream
// loader is responsible for remapping the weather year onto the
// optimization year and de-duplicating leap-day collisions; Assemble
// only validates the result.
type PPAPoint struct {
	Instant time.Time
	GAvail  float64
}

// YearMonth keys the monthly hydrogen price table.
type YearMonth struct {
	Year  int
	Month int
}

// Assemble aligns the three input streams on a common hourly UTC
// timeline by inner join, expands the monthly hydrogen price to hourly
// granularity, derives v(h) via policy, and returns a HourTable sorted
// ascending by instant. It is the Input Assembler of spec §4.1.
func Assemble(daSeries []DAPoint, h2Monthly map[YearMonth]float64, ppaSeries []PPAPoint, policy admission.Policy) (*HourTable, error) {
	if policy == nil {
		policy = admission.NewDAThreshold()
	}

	da := make(map[time.Time]float64, len(daSeries))
	for _, p := range daSeries {
		da[p.Instant.UTC().Truncate(time.Hour)] = p.Price
	}
	ppa := make(map[time.Time]float64, len(ppaSeries))
	for _, p := range ppaSeries {
		ppa[p.Instant.UTC().Truncate(time.Hour)] = p.GAvail
	}

	joined := make([]time.Time, 0, len(da))
	for instant := range da {
		if _, ok := ppa[instant]; !ok {
			continue
		}
		ym := YearMonth{Year: instant.Year(), Month: int(instant.Month())}
		if _, ok := h2Monthly[ym]; !ok {
			continue
		}
		joined = append(joined, instant)
	}
	sort.Slice(joined, func(i, j int) bool { return joined[i].Before(joined[j]) })

	t := &HourTable{
		Instant:   make([]time.Time, 0, len(joined)),
		Year:      make([]int, 0, len(joined)),
		Month:     make([]int, 0, len(joined)),
		DAPrice:   make([]float64, 0, len(joined)),
		H2Price:   make([]float64, 0, len(joined)),
		GPPAAvail: make([]float64, 0, len(joined)),
		V:         make([]int, 0, len(joined)),
	}

	for _, instant := range joined {
		daPrice := da[instant]
		gAvail := ppa[instant]
		ym := YearMonth{Year: instant.Year(), Month: int(instant.Month())}
		h2Price := h2Monthly[ym]

		if err := validateRow(len(t.Instant), daPrice, h2Price, gAvail); err != nil {
			return nil, err
		}

		t.Instant = append(t.Instant, instant)
		t.Year = append(t.Year, instant.Year())
		t.Month = append(t.Month, int(instant.Month()))
		t.DAPrice = append(t.DAPrice, daPrice)
		t.H2Price = append(t.H2Price, h2Price)
		t.GPPAAvail = append(t.GPPAAvail, gAvail)
		t.V = append(t.V, policy.Admit(instant, daPrice))
	}

	if err := checkMonotone(t); err != nil {
		return nil, err
	}

	return t, nil
}

func validateRow(index int, daPrice, h2Price, gAvail float64) error {
	if math.IsNaN(daPrice) || math.IsInf(daPrice, 0) {
		return &InputError{Reason: "DA_price not finite", Index: index}
	}
	if math.IsNaN(h2Price) || math.IsInf(h2Price, 0) {
		return &InputError{Reason: "h2_price not finite", Index: index}
	}
	if math.IsNaN(gAvail) || math.IsInf(gAvail, 0) {
		return &InputError{Reason: "G_PPA_avail not finite", Index: index}
	}
	if gAvail < 0 {
		return &InputError{Reason: "G_PPA_avail negative", Index: index, Detail: "must be >= 0"}
	}
	return nil
}

// checkMonotone enforces I2: the assembled hours form a strictly
// increasing sequence with a 1-hour stride over each contiguous year.
func checkMonotone(t *HourTable) error {
	for i := 1; i < t.Len(); i++ {
		if !t.Instant[i].After(t.Instant[i-1]) {
			return &InputError{Reason: "hour sequence not strictly increasing", Index: i}
		}
		gap := t.Instant[i].Sub(t.Instant[i-1])
		if t.Year[i] == t.Year[i-1] && gap != time.Hour {
			return &InputError{Reason: "non-hourly stride within a contiguous year", Index: i,
				Detail: gap.String()}
		}
	}
	return nil
}
