// Package admission implements the pluggable v(h) grid-purchase
// admission predicate (design note in spec §9): the optimizer never
// special-cases the rule, it only consumes the 0/1 flag a Policy emits.
package admission

import "time"

// Policy decides whether grid purchase is admitted in a given hour.
// Admit must return 0 or 1.
type Policy interface {
	Admit(instant time.Time, daPrice float64) int
}

// DAThreshold is the system-default rule: v(h) = 1 iff DA(h) < Threshold.
type DAThreshold struct {
	Threshold float64
}

// NewDAThreshold returns the default admission policy, DA(h) < 20.
func NewDAThreshold() DAThreshold {
	return DAThreshold{Threshold: 20}
}

func (p DAThreshold) Admit(_ time.Time, daPrice float64) int {
	if daPrice < p.Threshold {
		return 1
	}
	return 0
}

// CO2PriceThreshold is an alternative strategy admitting grid purchase
// when the hour's carbon price signal stays below a cap, for deployments
// that gate on emissions intensity rather than spot price.
type CO2PriceThreshold struct {
	Threshold float64
	PriceAt   func(instant time.Time) float64
}

func (p CO2PriceThreshold) Admit(instant time.Time, _ float64) int {
	if p.PriceAt == nil {
		return 0
	}
	if p.PriceAt(instant) < p.Threshold {
		return 1
	}
	return 0
}
