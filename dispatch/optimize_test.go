package dispatch

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/ebp-rad/h2dispatch/hourtable"
	"github.com/ebp-rad/h2dispatch/milp"
)

func hourlyTable(prices, h2, avail []float64, v []int, year int) *hourtable.HourTable {
	n := len(prices)
	t := &hourtable.HourTable{
		Instant:   make([]time.Time, n),
		Year:      make([]int, n),
		Month:     make([]int, n),
		DAPrice:   prices,
		H2Price:   h2,
		GPPAAvail: avail,
		V:         v,
	}
	base := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		inst := base.Add(time.Duration(i) * time.Hour)
		t.Instant[i] = inst
		t.Year[i] = inst.Year()
		t.Month[i] = int(inst.Month())
	}
	return t
}

func baseTheta(policyYear int) Theta {
	return Theta{PMax: 1, PMin: 0, DeltaT: 1, EtaEly: 0.7, PPPA: 30, PolicyYear: policyYear}
}

// Scenario: PPA available and cheap relative to H2 revenue, grid purchase
// blocked (v=0) -> electrolyzer should run entirely on PPA energy.
func TestOptimize_UsesAvailablePPAWhenProfitable(t *testing.T) {
	tbl := hourlyTable(
		[]float64{50, 50},
		[]float64{200, 200},
		[]float64{1, 1},
		[]int{0, 0},
		2030,
	)
	theta := baseTheta(2030) // hourly regime from the first year
	raw, _, status, err := Optimize(tbl, theta, &milp.BranchAndBound{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != Optimal {
		t.Fatalf("expected Optimal, got %v", status)
	}
	for i := range raw.E {
		if math.Abs(raw.GUsed[i]-1) > 1e-6 {
			t.Errorf("hour %d: expected G_used=1 (all available PPA used), got %v", i, raw.GUsed[i])
		}
		if raw.B[i] > 1e-6 {
			t.Errorf("hour %d: expected no grid purchase (v=0), got B=%v", i, raw.B[i])
		}
	}
}

// Scenario: grid purchase admitted and cheaper per unit than the tied-break
// adjusted PPA alternative's opportunity cost is irrelevant here since PPA
// energy is free marginally; the optimizer should still prefer PPA first
// via the tie-break epsilon, then use grid purchase to reach P_max.
func TestOptimize_GridPurchaseAdmittedFillsToMax(t *testing.T) {
	tbl := hourlyTable(
		[]float64{10},
		[]float64{200},
		[]float64{0.3},
		[]int{1},
		2030,
	)
	theta := baseTheta(2030)
	raw, _, status, err := Optimize(tbl, theta, &milp.BranchAndBound{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != Optimal {
		t.Fatalf("expected Optimal, got %v", status)
	}
	if math.Abs(raw.GUsed[0]-0.3) > 1e-6 {
		t.Errorf("expected G_used=0.3 (all available PPA consumed first), got %v", raw.GUsed[0])
	}
	if math.Abs(raw.E[0]-1) > 1e-6 {
		t.Errorf("expected E=1 (P_max reached via grid top-up), got %v", raw.E[0])
	}
	if math.Abs(raw.B[0]-0.7) > 1e-6 {
		t.Errorf("expected B=0.7 (remaining load from grid), got %v", raw.B[0])
	}
}

// Scenario: hydrogen price too low relative to the grid cost of a marginal
// MWh for the optimizer to want to run at all beyond free PPA energy.
func TestOptimize_UnprofitableGridPurchaseSkipped(t *testing.T) {
	tbl := hourlyTable(
		[]float64{1000}, // very expensive grid power
		[]float64{1},    // hydrogen nearly worthless
		[]float64{0},    // no PPA energy available
		[]int{1},
		2030,
	)
	theta := baseTheta(2030)
	raw, _, status, err := Optimize(tbl, theta, &milp.BranchAndBound{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != Optimal {
		t.Fatalf("expected Optimal, got %v", status)
	}
	if raw.E[0] > 1e-6 {
		t.Errorf("expected electrolyzer off, got E=%v", raw.E[0])
	}
	if raw.U[0] != 0 {
		t.Errorf("expected u=0, got %v", raw.U[0])
	}
}

// Scenario: pre-policy-year monthly PPA regime pools availability across
// the whole month instead of capping it hour by hour.
func TestOptimize_MonthlyRegimePoolsAvailability(t *testing.T) {
	tbl := hourlyTable(
		[]float64{20, 20},
		[]float64{200, 200},
		[]float64{2, 0}, // all PPA energy concentrated in hour 0
		[]int{0, 0},
		2025,
	)
	theta := baseTheta(2030) // 2025 < policy year -> monthly regime
	raw, _, status, err := Optimize(tbl, theta, &milp.BranchAndBound{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != Optimal {
		t.Fatalf("expected Optimal, got %v", status)
	}
	total := raw.GUsed[0] + raw.GUsed[1]
	if math.Abs(total-2) > 1e-6 {
		t.Errorf("expected G_used to sum to the monthly budget of 2, got %v", total)
	}
	if raw.GUsed[1] <= 1e-6 {
		t.Errorf("expected hour 1 to draw from the pooled monthly budget despite zero hourly availability, got %v", raw.GUsed[1])
	}
}

func TestOptimize_NilSolverReturnsSolverUnavailable(t *testing.T) {
	tbl := hourlyTable([]float64{10}, []float64{10}, []float64{1}, []int{0}, 2030)
	theta := baseTheta(2030)
	_, _, _, err := Optimize(tbl, theta, nil)
	if err == nil {
		t.Fatal("expected error for nil solver")
	}
	var su *SolverUnavailable
	if !isSolverUnavailable(err, &su) {
		t.Fatalf("expected *SolverUnavailable, got %T: %v", err, err)
	}
}

func isSolverUnavailable(err error, target **SolverUnavailable) bool {
	se, ok := err.(*SolverUnavailable)
	if !ok {
		return false
	}
	*target = se
	return true
}

func TestOptimize_InvalidThetaRejected(t *testing.T) {
	tbl := hourlyTable([]float64{10}, []float64{10}, []float64{1}, []int{0}, 2030)
	theta := Theta{PMax: 1, PMin: 2, DeltaT: 1, EtaEly: 0.7, PPPA: 30, PolicyYear: 2030}
	_, _, _, err := Optimize(tbl, theta, &milp.BranchAndBound{})
	if err == nil {
		t.Fatal("expected validation error for P_min > P_max")
	}
}

// failingSolver simulates a backend that was instantiated fine but fails
// partway through a solve, e.g. a node-budget exceeded error.
type failingSolver struct{}

func (failingSolver) Solve(p *milp.Problem) (*milp.Solution, error) {
	return nil, fmt.Errorf("exceeded node budget")
}

func TestOptimize_SolveErrorAfterSetupIsSolverError(t *testing.T) {
	tbl := hourlyTable([]float64{10}, []float64{10}, []float64{1}, []int{0}, 2030)
	theta := baseTheta(2030)
	_, _, _, err := Optimize(tbl, theta, failingSolver{})
	if err == nil {
		t.Fatal("expected error when solver.Solve fails")
	}
	var se *SolverError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SolverError for a post-setup solve failure, got %T: %v", err, err)
	}
	var su *SolverUnavailable
	if errors.As(err, &su) {
		t.Fatal("a post-setup solve failure must not be reported as SolverUnavailable")
	}
}
