// Package milp provides a narrow, backend-agnostic mixed-integer linear
// programming adapter: add a variable, add a linear constraint, set an
// objective coefficient, set an offset, solve, extract a value. Any
// branch-and-bound or branch-and-cut engine can sit behind it.
package milp

import "math"

// VarKind distinguishes a continuous decision variable from a binary one.
type VarKind int

const (
	Continuous VarKind = iota
	Binary
)

// Sense is the relational operator of a linear constraint.
type Sense int

const (
	LE Sense = iota
	GE
	EQ
)

// ObjSense selects whether Solve maximizes or minimizes the objective.
type ObjSense int

const (
	Minimize ObjSense = iota
	Maximize
)

// VarRef identifies a variable previously added to a Problem.
type VarRef int

// Term is one coefficient*variable addend of a linear expression.
type Term struct {
	Var  VarRef
	Coef float64
}

type variable struct {
	name  string
	kind  VarKind
	lower float64
	upper float64 // math.Inf(1) if unbounded above
}

type constraint struct {
	name  string
	terms []Term
	sense Sense
	rhs   float64
}

// Problem is a mutable MILP model: variables with bounds and kind, linear
// constraints, and a linear objective with a constant offset.
type Problem struct {
	vars        []variable
	constraints []constraint
	objCoef     []float64
	offset      float64
	sense       ObjSense
}

// NewProblem returns an empty problem. The default objective sense is
// Maximize, matching the dispatch optimizer's profit-maximization model.
func NewProblem() *Problem {
	return &Problem{sense: Maximize}
}

// AddVariable registers a decision variable and returns its reference.
// upper may be math.Inf(1) for an unbounded-above continuous variable.
// Binary variables ignore lower/upper and are always bounded to [0,1].
func (p *Problem) AddVariable(name string, lower, upper float64, kind VarKind) VarRef {
	if kind == Binary {
		lower, upper = 0, 1
	}
	p.vars = append(p.vars, variable{name: name, kind: kind, lower: lower, upper: upper})
	p.objCoef = append(p.objCoef, 0)
	return VarRef(len(p.vars) - 1)
}

// AddConstraint adds one linear constraint sum(terms) `sense` rhs.
func (p *Problem) AddConstraint(name string, terms []Term, sense Sense, rhs float64) {
	cp := make([]Term, len(terms))
	copy(cp, terms)
	p.constraints = append(p.constraints, constraint{name: name, terms: cp, sense: sense, rhs: rhs})
}

// SetObjectiveCoef sets the linear objective coefficient of v.
func (p *Problem) SetObjectiveCoef(v VarRef, coef float64) {
	p.objCoef[v] = coef
}

// AddObjectiveCoef adds to the existing objective coefficient of v.
func (p *Problem) AddObjectiveCoef(v VarRef, coef float64) {
	p.objCoef[v] += coef
}

// SetOffset sets the constant term added to the objective value after solve.
func (p *Problem) SetOffset(c float64) { p.offset = c }

// SetSense chooses whether Solve maximizes or minimizes the objective.
func (p *Problem) SetSense(s ObjSense) { p.sense = s }

// NumVars reports how many variables have been registered.
func (p *Problem) NumVars() int { return len(p.vars) }

func (p *Problem) bounds(v VarRef) (lower, upper float64) {
	return p.vars[v].lower, p.vars[v].upper
}

func (p *Problem) isInfUpper(v VarRef) bool {
	return math.IsInf(p.vars[v].upper, 1)
}
