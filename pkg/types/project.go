package types

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a project.
type Status string

// Project statuses. A project starts in PLANNING and is never deleted; it
// ends as COMPLETE or ARCHIVED.
const (
	StatusPlanning   Status = "PLANNING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusComplete   Status = "COMPLETE"
	StatusArchived   Status = "ARCHIVED"
)

// validStatuses is the set of recognized status values.
var validStatuses = map[Status]bool{
	StatusPlanning:   true,
	StatusInProgress: true,
	StatusComplete:   true,
	StatusArchived:   true,
}

// ParseStatus normalizes a header status value. Matching is case-insensitive
// and treats '-' and ' ' as '_', so "in-progress" parses as IN_PROGRESS. An
// empty value is PLANNING. Unknown values return ErrInvalidStatus.
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return StatusPlanning, nil
	}
	norm := strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(s))
	st := Status(norm)
	if !validStatuses[st] {
		return "", fmt.Errorf("%w %q (valid: PLANNING, IN_PROGRESS, COMPLETE, ARCHIVED)", ErrInvalidStatus, s)
	}
	return st, nil
}

// Project is the metadata record of one project directory. TotalTasks,
// CompletedTasks and Progress are derived from the ledger on every scan and
// are never read from or written to the overview header.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	Description string    `json:"description"`
	Created     time.Time `json:"created,omitzero"`
	LastWorked  time.Time `json:"last_worked,omitzero"`
	Tags        []string  `json:"tags"`

	TotalTasks     int     `json:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	Progress       float64 `json:"progress"`

	Dir        string         `json:"dir"`
	LedgerPath string         `json:"ledger_path,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// SetCounts fills the derived task fields. Progress is 0 for a project with
// no tasks.
func (p *Project) SetCounts(total, completed int) {
	p.TotalTasks = total
	p.CompletedTasks = completed
	p.Progress = 0
	if total > 0 {
		p.Progress = float64(completed) / float64(total)
	}
}

// Skill is the metadata record of one reusable workflow document.
type Skill struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Path        string         `json:"path"`
	Extra       map[string]any `json:"extra,omitempty"`
}
