package types

import "time"

// SystemState is the discrete state derived from the workspace on every
// session start. It is never stored.
type SystemState string

// System states.
const (
	StateNeedsBootstrap            SystemState = "NEEDS_BOOTSTRAP"
	StateFirstRunWithDefaults      SystemState = "FIRST_RUN_WITH_DEFAULTS"
	StateOperational               SystemState = "OPERATIONAL"
	StateOperationalWithActiveWork SystemState = "OPERATIONAL_WITH_ACTIVE_WORK"
)

// ActionKind is what the caller is advised to do next.
type ActionKind string

// Recommended actions.
const (
	ActionFirstTimeSetup ActionKind = "run-first-time-setup"
	ActionMenuOnboarding ActionKind = "display-menu-with-onboarding"
	ActionLoadAndResume  ActionKind = "load-and-resume"
	ActionDisplayMenu    ActionKind = "display-menu"
)

// Action is the recommended-action record. ProjectID is set only for
// ActionLoadAndResume.
type Action struct {
	Kind      ActionKind `json:"kind"`
	ProjectID string     `json:"project_id,omitempty"`
}

// Decision pairs a state with its recommended action.
type Decision struct {
	State  SystemState `json:"state"`
	Action Action      `json:"action"`
}

// GoalsDoc captures the sentinel checks on the goals document.
type GoalsDoc struct {
	Path        string `json:"path"`
	Present     bool   `json:"present"`
	Empty       bool   `json:"empty"`
	Placeholder bool   `json:"placeholder"`
}

// BudgetSummary is the advisory token estimate attached to a snapshot.
type BudgetSummary struct {
	Total      int  `json:"total"`
	Threshold  int  `json:"threshold"`
	OverBudget bool `json:"over_budget"`
}

// Snapshot is everything the state detector looks at, captured at TakenAt.
// Detection uses TakenAt as "now" so the same snapshot always yields the
// same decision.
type Snapshot struct {
	Root     string        `json:"root"`
	TakenAt  time.Time     `json:"taken_at"`
	Goals    GoalsDoc      `json:"goals"`
	Projects []Project     `json:"projects"`
	Skills   []Skill       `json:"skills"`
	Budget   BudgetSummary `json:"budget"`
}
