package dispatch

import "fmt"

// Theta is the process-wide, immutable parameter set Θ for one
// optimization run.
type Theta struct {
	PMax       float64 // MW, electrolyzer max power
	PMin       float64 // MW, electrolyzer min power when committed
	DeltaT     float64 // hour length, hours (typically 1)
	EtaEly     float64 // electrical-to-hydrogen conversion efficiency, (0,1]
	PPPA       float64 // fixed PPA price paid per MWh of G_avail, >= 0
	PolicyYear int     // first year hourly PPA accounting is enforced
}

// TieBreakEpsilon is the fixed objective tie-break (spec §4.2.3): it
// breaks the degeneracy between using PPA energy already paid for and
// purchasing the same MWh from the grid, favoring PPA.
const TieBreakEpsilon = 1e-3

// Validate checks invariant I3: 0 ≤ P_min·Δt ≤ P_max·Δt and eta_ely ∈ (0,1].
func (t Theta) Validate() error {
	if t.DeltaT <= 0 {
		return fmt.Errorf("dispatch: delta_t must be positive, got %v", t.DeltaT)
	}
	if t.PMin < 0 {
		return fmt.Errorf("dispatch: P_min must be >= 0, got %v", t.PMin)
	}
	if t.PMin*t.DeltaT > t.PMax*t.DeltaT {
		return fmt.Errorf("dispatch: P_min*delta_t (%v) exceeds P_max*delta_t (%v)", t.PMin*t.DeltaT, t.PMax*t.DeltaT)
	}
	if t.EtaEly <= 0 || t.EtaEly > 1 {
		return fmt.Errorf("dispatch: eta_ely must be in (0,1], got %v", t.EtaEly)
	}
	if t.PPPA < 0 {
		return fmt.Errorf("dispatch: p_ppa must be >= 0, got %v", t.PPPA)
	}
	if t.PolicyYear == 0 {
		return fmt.Errorf("dispatch: policy_year must be set")
	}
	return nil
}
