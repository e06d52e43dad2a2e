package model

// StatusPhase is the coarse lifecycle grouping used for display ordering.
type StatusPhase string

const (
	PhaseCreation   StatusPhase = "Creation"
	PhaseProduction StatusPhase = "Production"
	PhaseLogistics  StatusPhase = "Logistics"
	PhaseTerminal   StatusPhase = "Terminal"
)

var phaseRank = map[StatusPhase]int{
	PhaseCreation:   0,
	PhaseProduction: 1,
	PhaseLogistics:  2,
	PhaseTerminal:   3,
}

// Rank returns the sort position of the phase; unknown phases sort last.
func (p StatusPhase) Rank() int {
	if r, ok := phaseRank[p]; ok {
		return r
	}
	return len(phaseRank)
}

func (p StatusPhase) Valid() bool {
	_, ok := phaseRank[p]
	return ok
}

// GlobalStatus is an entry in the global status catalog. Statuses are never
// deleted, only deactivated, because history rows reference them permanently.
type GlobalStatus struct {
	ID          int64       `db:"id" json:"id"`
	Code        string      `db:"code" json:"code"`
	DisplayName string      `db:"display_name" json:"display_name"`
	Description string      `db:"description" json:"description"`
	Phase       StatusPhase `db:"phase" json:"phase"`
	IsActive    bool        `db:"is_active" json:"is_active"`
}
