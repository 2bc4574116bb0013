package dispatch

import "fmt"

// SolverUnavailable means the MILP backend could not be instantiated.
// Raised before any variable is created.
type SolverUnavailable struct {
	Err error
}

func (e *SolverUnavailable) Error() string {
	return fmt.Sprintf("dispatch: solver unavailable: %v", e.Err)
}

func (e *SolverUnavailable) Unwrap() error { return e.Err }

// SolverError carries the raw status a solve attempt returned when it is
// not OPTIMAL or FEASIBLE.
type SolverError struct {
	Status string
	Group  string // hour or (year,month) group identifier for diagnostics
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("dispatch: solver returned %s for group %s", e.Status, e.Group)
}

// SolutionIntegrityError means the primal readout violates I4–I6 by more
// than the declared tolerance.
type SolutionIntegrityError struct {
	Invariant string
	Index     int
	Residual  float64
}

func (e *SolutionIntegrityError) Error() string {
	return fmt.Sprintf("dispatch: invariant %s violated at hour %d, residual %v", e.Invariant, e.Index, e.Residual)
}

// NonOptimalWarning describes a group solved to a feasible but not
// provably optimal incumbent. It is not an error. Optimize never returns
// it, because no milp.Status value reports such an incumbent.
type NonOptimalWarning struct {
	Group string
}

func (e *NonOptimalWarning) Error() string {
	return fmt.Sprintf("dispatch: group %s solved to FEASIBLE, not OPTIMAL", e.Group)
}
