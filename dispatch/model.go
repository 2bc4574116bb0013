package dispatch

import (
	"fmt"
	"math"

	"github.com/ebp-rad/h2dispatch/hourtable"
	"github.com/ebp-rad/h2dispatch/milp"
)

// hourVars collects the six decision variables of one hour (spec §4.2.1).
type hourVars struct {
	E, G, B, S, H milp.VarRef
	U             milp.VarRef
}

// buildGroupProblem builds the MILP for one independently-solvable group
// of hours: either a single hour (hourly PPA regime, year >= PolicyYear)
// or a whole (year, month) span (monthly regime, year < PolicyYear).
//
// Because C1–C4 are strictly per-hour and C5 only ever couples hours
// within the same group, the sum of each group's optimum equals the
// optimum of the whole-horizon MILP — the global problem decomposes
// losslessly along these boundaries. The constant pay-as-produced PPA
// offset is split per group so the group objectives sum to the global
// objective exactly.
func buildGroupProblem(t *hourtable.HourTable, idx []int, theta Theta, hourlyRegime bool) (*milp.Problem, []hourVars) {
	p := milp.NewProblem()
	p.SetSense(milp.Maximize)

	vars := make([]hourVars, len(idx))
	pMaxDt := theta.PMax * theta.DeltaT
	pMinDt := theta.PMin * theta.DeltaT

	offset := 0.0
	for _, row := range idx {
		offset -= theta.PPPA * t.GPPAAvail[row]
	}
	p.SetOffset(offset)

	for k, row := range idx {
		e := p.AddVariable(fmt.Sprintf("E_%d", row), 0, pMaxDt, milp.Continuous)
		g := p.AddVariable(fmt.Sprintf("G_%d", row), 0, math.Inf(1), milp.Continuous)
		b := p.AddVariable(fmt.Sprintf("B_%d", row), 0, math.Inf(1), milp.Continuous)
		s := p.AddVariable(fmt.Sprintf("S_%d", row), 0, math.Inf(1), milp.Continuous)
		h := p.AddVariable(fmt.Sprintf("H_%d", row), 0, math.Inf(1), milp.Continuous)
		u := p.AddVariable(fmt.Sprintf("u_%d", row), 0, 1, milp.Binary)
		vars[k] = hourVars{E: e, G: g, B: b, S: s, H: h, U: u}

		// C1: energy balance, E(h) = G_used(h) + B(h).
		p.AddConstraint(fmt.Sprintf("balance_%d", row),
			[]milp.Term{{Var: e, Coef: 1}, {Var: g, Coef: -1}, {Var: b, Coef: -1}}, milp.EQ, 0)

		// C2: hydrogen conversion, H(h) = eta_ely * E(h).
		p.AddConstraint(fmt.Sprintf("conversion_%d", row),
			[]milp.Term{{Var: h, Coef: 1}, {Var: e, Coef: -theta.EtaEly}}, milp.EQ, 0)

		// C3: on/off load coupling.
		p.AddConstraint(fmt.Sprintf("min_load_%d", row),
			[]milp.Term{{Var: e, Coef: 1}, {Var: u, Coef: -pMinDt}}, milp.GE, 0)
		p.AddConstraint(fmt.Sprintf("max_load_%d", row),
			[]milp.Term{{Var: e, Coef: 1}, {Var: u, Coef: -pMaxDt}}, milp.LE, 0)

		// C4: grid-purchase admission.
		p.AddConstraint(fmt.Sprintf("admission_%d", row),
			[]milp.Term{{Var: b, Coef: 1}}, milp.LE, pMaxDt*float64(t.V[row]))

		if hourlyRegime {
			// C5 (hourly regime): G_used(h) + S(h) <= G_avail(h).
			p.AddConstraint(fmt.Sprintf("ppa_hourly_%d", row),
				[]milp.Term{{Var: g, Coef: 1}, {Var: s, Coef: 1}}, milp.LE, t.GPPAAvail[row])
		}

		// Objective: PH2(h)*H(h) + DA(h)*S(h) - (DA(h)+eps)*B(h).
		p.SetObjectiveCoef(h, t.H2Price[row])
		p.SetObjectiveCoef(s, t.DAPrice[row])
		p.SetObjectiveCoef(b, -(t.DAPrice[row] + TieBreakEpsilon))
	}

	if !hourlyRegime {
		// C5 (monthly regime): one aggregate constraint over the whole
		// group, sum(G_used + S) <= sum(G_avail).
		terms := make([]milp.Term, 0, 2*len(idx))
		var totalAvail float64
		for k, row := range idx {
			terms = append(terms, milp.Term{Var: vars[k].G, Coef: 1}, milp.Term{Var: vars[k].S, Coef: 1})
			totalAvail += t.GPPAAvail[row]
		}
		p.AddConstraint("ppa_monthly", terms, milp.LE, totalAvail)
	}

	return p, vars
}
