package milp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// BranchAndBound is a from-scratch MILP solver: each node's LP relaxation
// is solved with gonum's simplex implementation, and integrality of the
// Binary variables is enforced by branching on the most fractional one.
// It is deliberately simple, trading search sophistication for a small,
// auditable implementation suited to the small per-hour and per-month
// subproblems the dispatch optimizer builds (see package dispatch).
type BranchAndBound struct {
	// IntegerTol is how close to 0 or 1 a binary variable's relaxed value
	// must be to count as integral. Defaults to 1e-6 if zero.
	IntegerTol float64
	// MaxNodes bounds the search tree so a malformed problem fails fast
	// instead of looping forever. Defaults to 200000 if zero.
	MaxNodes int
}

type bbNode struct {
	lb, ub []float64
}

// Solve runs branch-and-bound to optimality (within IntegerTol) or reports
// Infeasible/Unbounded/SolverFailure.
func (bb *BranchAndBound) Solve(p *Problem) (*Solution, error) {
	tol := bb.IntegerTol
	if tol <= 0 {
		tol = 1e-6
	}
	maxNodes := bb.MaxNodes
	if maxNodes <= 0 {
		maxNodes = 200000
	}

	n := p.NumVars()
	rootLB := make([]float64, n)
	rootUB := make([]float64, n)
	for i, v := range p.vars {
		rootLB[i] = v.lower
		rootUB[i] = v.upper
	}

	sign := 1.0
	if p.sense == Maximize {
		sign = -1.0
	}
	internalC := make([]float64, n)
	for i, c := range p.objCoef {
		internalC[i] = sign * c
	}

	stack := []bbNode{{lb: rootLB, ub: rootUB}}
	bestInternal := math.Inf(1)
	var bestX []float64
	nodes := 0
	sawFeasibleRelaxation := false

	for len(stack) > 0 {
		nodes++
		if nodes > maxNodes {
			return &Solution{Status: SolverFailure}, fmt.Errorf("milp: exceeded %d branch-and-bound nodes", maxNodes)
		}

		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		status, x, objInternal, err := solveRelaxation(p, internalC, node.lb, node.ub)
		if err != nil {
			continue
		}
		if status == Unbounded {
			return &Solution{Status: Unbounded}, nil
		}
		if status != Optimal {
			continue
		}
		sawFeasibleRelaxation = true

		if bestX != nil && objInternal >= bestInternal-1e-9 {
			continue // bound: this node cannot beat the incumbent
		}

		branchVar, frac := mostFractionalBinary(p, x, tol)
		if branchVar < 0 {
			bestInternal = objInternal
			bestX = x
			continue
		}
		_ = frac

		lbFloor := append([]float64(nil), node.lb...)
		ubFloor := append([]float64(nil), node.ub...)
		ubFloor[branchVar] = 0
		lbFloor[branchVar] = 0

		lbCeil := append([]float64(nil), node.lb...)
		ubCeil := append([]float64(nil), node.ub...)
		lbCeil[branchVar] = 1
		ubCeil[branchVar] = 1

		stack = append(stack, bbNode{lb: lbFloor, ub: ubFloor}, bbNode{lb: lbCeil, ub: ubCeil})
	}

	if bestX == nil {
		if sawFeasibleRelaxation {
			return &Solution{Status: Infeasible}, nil
		}
		return &Solution{Status: Infeasible}, nil
	}

	obj := p.offset
	for i, c := range p.objCoef {
		obj += c * bestX[i]
	}

	return &Solution{Status: Optimal, Objective: obj, Values: bestX, NodesAsExplored: nodes}, nil
}

func mostFractionalBinary(p *Problem, x []float64, tol float64) (VarRef, float64) {
	best := -1
	bestDist := tol
	for i, v := range p.vars {
		if v.kind != Binary {
			continue
		}
		frac := x[i] - math.Floor(x[i])
		distToHalf := math.Abs(frac - 0.5)
		if frac > tol && frac < 1-tol {
			if best == -1 || distToHalf < bestDist {
				best = i
				bestDist = distToHalf
			}
		}
	}
	if best == -1 {
		return -1, 0
	}
	return VarRef(best), x[best] - math.Floor(x[best])
}

// solveRelaxation builds the standard-form (Ax=b, x>=0) LP for p under the
// given variable bounds and solves it with gonum's simplex.
func solveRelaxation(p *Problem, internalC, lb, ub []float64) (Status, []float64, float64, error) {
	n := p.NumVars()

	boundedVars := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if !math.IsInf(ub[i], 1) {
			boundedVars = append(boundedVars, i)
		}
	}

	numRows := len(p.constraints) + len(boundedVars)
	numSlacks := 0
	for _, c := range p.constraints {
		if c.sense != EQ {
			numSlacks++
		}
	}
	numSlacks += len(boundedVars)
	totalCols := n + numSlacks

	a := mat.NewDense(numRows, totalCols, nil)
	b := make([]float64, numRows)
	c := make([]float64, totalCols)
	copy(c, internalC)

	row := 0
	slackCol2 := n

	for _, cons := range p.constraints {
		coefs := make([]float64, n)
		for _, t := range cons.terms {
			coefs[t.Var] += t.Coef
		}
		rhs := cons.rhs
		for i := 0; i < n; i++ {
			rhs -= coefs[i] * lb[i]
		}

		mult := 1.0
		if cons.sense == GE {
			mult = -1.0
		}
		for i := 0; i < n; i++ {
			a.Set(row, i, mult*coefs[i])
		}
		rhs *= mult

		if cons.sense != EQ {
			a.Set(row, slackCol2, 1)
			slackCol2++
		}
		b[row] = rhs
		row++
	}

	for _, i := range boundedVars {
		a.Set(row, i, 1)
		a.Set(row, slackCol2, 1)
		slackCol2++
		b[row] = ub[i] - lb[i]
		row++
	}

	for r := 0; r < numRows; r++ {
		if b[r] < 0 {
			for col := 0; col < totalCols; col++ {
				a.Set(r, col, -a.At(r, col))
			}
			b[r] = -b[r]
		}
	}

	if numRows == 0 {
		// Unconstrained box: optimum sits at whichever bound minimizes c.
		x := make([]float64, n)
		obj := 0.0
		for i := 0; i < n; i++ {
			if internalC[i] < 0 && !math.IsInf(ub[i], 1) {
				x[i] = ub[i] - lb[i]
			}
			obj += internalC[i] * x[i]
		}
		return Optimal, shiftBack(x, lb, n), obj, nil
	}

	z, xPrime, err := lp.Simplex(c, a, b, 1e-10, nil)
	if errors.Is(err, lp.ErrUnbounded) {
		return Unbounded, nil, 0, nil
	}
	if err != nil {
		return Infeasible, nil, 0, err
	}

	return Optimal, shiftBack(xPrime[:n], lb, n), z, nil
}

func shiftBack(xPrime, lb []float64, n int) []float64 {
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = xPrime[i] + lb[i]
	}
	return x
}
