package dispatch

import (
	"fmt"
	"math"
	"time"

	"github.com/ebp-rad/h2dispatch/hourtable"
	"github.com/ebp-rad/h2dispatch/milp"
)

// Status reports how the whole-horizon solve concluded, mirroring the
// solver states of spec §4.2.4. Optimize returns Optimal on success and
// never returns Feasible: milp.Status has no feasible-incumbent state, and
// a group whose solve is not Optimal ends the run with a SolverError.
type Status int

const (
	Optimal Status = iota
	Feasible
)

func (s Status) String() string {
	if s == Optimal {
		return "OPTIMAL"
	}
	return "FEASIBLE"
}

// RawResult mirrors the hour row and adds the unprojected primal values
// of the decision vector (spec §3, "Result row"). It is consumed by
// package result, which clips and rounds it into the final ResultTable.
type RawResult struct {
	Instant   []time.Time
	DAPrice   []float64
	H2Price   []float64
	GPPAAvail []float64
	V         []int
	E         []float64
	GUsed     []float64
	B         []float64
	S         []float64
	H         []float64
	U         []int
}

// integrityTol bounds how far a readout primal may stray from I4–I6
// before Optimize raises SolutionIntegrityError (spec §4.2.5 / §7).
const integrityTol = 1e-6

// Optimize builds the MILP over the assembled hours and returns the raw
// per-hour decision vectors plus the objective value and solve status
// (spec §4.2). It decomposes the horizon into independently solvable
// groups (see buildGroupProblem) and solves each with solver.
func Optimize(t *hourtable.HourTable, theta Theta, solver milp.Solver) (*RawResult, float64, Status, error) {
	if err := theta.Validate(); err != nil {
		return nil, 0, 0, &hourtable.InputError{Reason: err.Error(), Index: -1}
	}
	if solver == nil {
		return nil, 0, 0, &SolverUnavailable{Err: fmt.Errorf("no MILP solver configured")}
	}

	n := t.Len()
	raw := &RawResult{
		Instant:   t.Instant,
		DAPrice:   t.DAPrice,
		H2Price:   t.H2Price,
		GPPAAvail: t.GPPAAvail,
		V:         t.V,
		E:         make([]float64, n),
		GUsed:     make([]float64, n),
		B:         make([]float64, n),
		S:         make([]float64, n),
		H:         make([]float64, n),
		U:         make([]int, n),
	}

	status := Optimal
	var totalObjective float64

	for _, span := range hourtable.MonthSpans(t) {
		hourlyRegime := span.Year >= theta.PolicyYear
		groups := spanGroups(span, hourlyRegime)

		for _, idx := range groups {
			problem, vars := buildGroupProblem(t, idx, theta, hourlyRegime)

			groupName := groupLabel(span, idx)

			sol, err := solver.Solve(problem)
			if err != nil {
				return nil, 0, 0, &SolverError{Status: "ERROR", Group: groupName}
			}

			switch sol.Status {
			case milp.Optimal:
				// proceeds below
			case milp.Infeasible:
				return nil, 0, 0, &SolverError{Status: "INFEASIBLE", Group: groupName}
			case milp.Unbounded:
				return nil, 0, 0, &SolverError{Status: "UNBOUNDED", Group: groupName}
			default:
				return nil, 0, 0, &SolverError{Status: "ERROR", Group: groupName}
			}

			totalObjective += sol.Objective

			for k, row := range idx {
				raw.E[row] = sol.Value(vars[k].E)
				raw.GUsed[row] = sol.Value(vars[k].G)
				raw.B[row] = sol.Value(vars[k].B)
				raw.S[row] = sol.Value(vars[k].S)
				raw.H[row] = sol.Value(vars[k].H)
				raw.U[row] = int(math.Round(sol.Value(vars[k].U)))
			}
		}
	}

	if err := verifyIntegrity(raw, theta); err != nil {
		return nil, 0, 0, err
	}

	return raw, totalObjective, status, nil
}

// spanGroups splits a month span into the independent solve groups: one
// group per hour in the hourly regime, or the whole span as one group in
// the monthly regime.
func spanGroups(span hourtable.MonthSpan, hourlyRegime bool) [][]int {
	if !hourlyRegime {
		idx := make([]int, 0, span.End-span.Start)
		for row := span.Start; row < span.End; row++ {
			idx = append(idx, row)
		}
		return [][]int{idx}
	}
	groups := make([][]int, 0, span.End-span.Start)
	for row := span.Start; row < span.End; row++ {
		groups = append(groups, []int{row})
	}
	return groups
}

func groupLabel(span hourtable.MonthSpan, idx []int) string {
	if len(idx) == 1 {
		return fmt.Sprintf("hour:%d", idx[0])
	}
	return fmt.Sprintf("%d-%02d", span.Year, span.Month)
}

// verifyIntegrity checks I4–I6 on the combined readout (spec §4.2.5).
func verifyIntegrity(raw *RawResult, theta Theta) error {
	pMaxDt := theta.PMax * theta.DeltaT
	for i := range raw.E {
		if r := math.Abs(raw.E[i] - raw.GUsed[i] - raw.B[i]); r > integrityTol {
			return &SolutionIntegrityError{Invariant: "I4", Index: i, Residual: r}
		}
		if r := math.Abs(raw.H[i] - theta.EtaEly*raw.E[i]); r > integrityTol {
			return &SolutionIntegrityError{Invariant: "I5", Index: i, Residual: r}
		}
		if raw.V[i] == 0 && raw.B[i] > integrityTol {
			return &SolutionIntegrityError{Invariant: "I6", Index: i, Residual: raw.B[i]}
		}
		if raw.B[i] > pMaxDt*float64(raw.V[i])+integrityTol {
			return &SolutionIntegrityError{Invariant: "I6", Index: i, Residual: raw.B[i] - pMaxDt*float64(raw.V[i])}
		}
	}
	return nil
}
