package milp

import (
	"math"
	"testing"
)

func TestBranchAndBound_PureLP(t *testing.T) {
	// maximize 3x + 2y subject to x + y <= 4, x <= 3, y <= 3, x,y >= 0
	p := NewProblem()
	p.SetSense(Maximize)
	x := p.AddVariable("x", 0, 3, Continuous)
	y := p.AddVariable("y", 0, 3, Continuous)
	p.SetObjectiveCoef(x, 3)
	p.SetObjectiveCoef(y, 2)
	p.AddConstraint("cap", []Term{{Var: x, Coef: 1}, {Var: y, Coef: 1}}, LE, 4)

	bb := &BranchAndBound{}
	sol, err := bb.Solve(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Status != Optimal {
		t.Fatalf("expected Optimal, got %v", sol.Status)
	}
	if math.Abs(sol.Objective-11) > 1e-6 {
		t.Errorf("expected objective 11 (x=3,y=1), got %v", sol.Objective)
	}
	if math.Abs(sol.Value(x)-3) > 1e-6 {
		t.Errorf("expected x=3, got %v", sol.Value(x))
	}
}

func TestBranchAndBound_BinaryIntegrality(t *testing.T) {
	// maximize 5u subject to u binary, with a constraint that would
	// relax to a fractional value without branching: 2u <= 1.
	p := NewProblem()
	p.SetSense(Maximize)
	u := p.AddVariable("u", 0, 1, Binary)
	p.SetObjectiveCoef(u, 5)
	p.AddConstraint("half", []Term{{Var: u, Coef: 2}}, LE, 1)

	bb := &BranchAndBound{}
	sol, err := bb.Solve(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Status != Optimal {
		t.Fatalf("expected Optimal, got %v", sol.Status)
	}
	uVal := sol.Value(u)
	if uVal != 0 && uVal != 1 {
		t.Fatalf("expected integral u, got %v", uVal)
	}
	if math.Abs(uVal-0) > 1e-6 {
		t.Errorf("expected u=0 (2*1=2 > 1), got %v", uVal)
	}
}

func TestBranchAndBound_Infeasible(t *testing.T) {
	p := NewProblem()
	p.SetSense(Maximize)
	x := p.AddVariable("x", 0, math.Inf(1), Continuous)
	p.SetObjectiveCoef(x, 1)
	p.AddConstraint("c1", []Term{{Var: x, Coef: 1}}, LE, 1)
	p.AddConstraint("c2", []Term{{Var: x, Coef: 1}}, GE, 2)

	bb := &BranchAndBound{}
	sol, err := bb.Solve(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Status != Infeasible {
		t.Fatalf("expected Infeasible, got %v", sol.Status)
	}
}

func TestBranchAndBound_OffsetAddedToObjective(t *testing.T) {
	p := NewProblem()
	p.SetSense(Maximize)
	x := p.AddVariable("x", 0, 2, Continuous)
	p.SetObjectiveCoef(x, 1)
	p.SetOffset(-10)

	bb := &BranchAndBound{}
	sol, err := bb.Solve(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(sol.Objective-(-8)) > 1e-6 {
		t.Errorf("expected objective -8 (x=2 - 10), got %v", sol.Objective)
	}
}
