// Package result implements the Result Projector (spec §4.3): it takes
// the optimizer's raw primal, clips tiny negative artifacts, rounds to
// a fixed decimal precision, and attaches the objective value.
package result

import (
	"time"

	"github.com/ebp-rad/h2dispatch/dispatch"
	"github.com/shopspring/decimal"
)

// roundPlaces is the fixed decimal precision of spec §6.4.
const roundPlaces = 10

// Table is the final, rounded result table returned to callers
// (spec §6.3). Column order and names are part of the contract.
type Table struct {
	Datetime       []time.Time
	DAPrice        []float64
	H2Price        []float64
	GPPAAvail      []float64
	V              []int
	EEly           []float64
	GPPAUsed       []float64
	BGrid          []float64
	SSell          []float64
	HProd          []float64
	U              []int
	ObjectiveValue float64
}

// Project clips S(h) at zero, rounds every decision column to 10 decimal
// places, and attaches the objective value. It never alters the
// decisions beyond this cleanup (spec §4.3).
func Project(raw *dispatch.RawResult, objectiveValue float64) *Table {
	n := len(raw.Instant)
	t := &Table{
		Datetime:       raw.Instant,
		DAPrice:        round(raw.DAPrice),
		H2Price:        round(raw.H2Price),
		GPPAAvail:      round(raw.GPPAAvail),
		V:              append([]int(nil), raw.V...),
		EEly:           round(raw.E),
		GPPAUsed:       round(raw.GUsed),
		BGrid:          round(raw.B),
		SSell:          make([]float64, n),
		HProd:          round(raw.H),
		U:              append([]int(nil), raw.U...),
		ObjectiveValue: roundValue(objectiveValue),
	}
	for i, s := range raw.S {
		if s < 0 {
			s = 0
		}
		t.SSell[i] = roundValue(s)
	}
	return t
}

func round(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = roundValue(x)
	}
	return out
}

// roundValue rounds x to roundPlaces decimal places using decimal.Decimal
// so repeated runs on identical input are bit-for-bit reproducible
// regardless of host FPU rounding mode (P8).
func roundValue(x float64) float64 {
	d := decimal.NewFromFloat(x).Round(roundPlaces)
	f, _ := d.Float64()
	return f
}
