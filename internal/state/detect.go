// Package state derives the discrete system state of a workspace and the
// action an assistant should take next.
//
// Load captures a Snapshot from disk; Detect is a pure function of that
// snapshot, so the same snapshot always yields the same Decision.
package state

import (
	"time"

	"github.com/mesh-intelligence/compass/pkg/types"
)

// Detect evaluates the decision table top to bottom; the first match wins.
//
//  1. goals document absent or empty       -> NEEDS_BOOTSTRAP
//  2. goals document still placeholder     -> FIRST_RUN_WITH_DEFAULTS
//  3. an IN_PROGRESS project worked within
//     window of snap.TakenAt               -> OPERATIONAL_WITH_ACTIVE_WORK
//  4. otherwise                            -> OPERATIONAL
func Detect(snap types.Snapshot, window time.Duration) types.Decision {
	switch {
	case !snap.Goals.Present || snap.Goals.Empty:
		return types.Decision{
			State:  types.StateNeedsBootstrap,
			Action: types.Action{Kind: types.ActionFirstTimeSetup},
		}
	case snap.Goals.Placeholder:
		return types.Decision{
			State:  types.StateFirstRunWithDefaults,
			Action: types.Action{Kind: types.ActionMenuOnboarding},
		}
	}

	if p, ok := MostRecentActive(snap.Projects, snap.TakenAt, window); ok {
		return types.Decision{
			State:  types.StateOperationalWithActiveWork,
			Action: types.Action{Kind: types.ActionLoadAndResume, ProjectID: p.ID},
		}
	}
	return types.Decision{
		State:  types.StateOperational,
		Action: types.Action{Kind: types.ActionDisplayMenu},
	}
}

// MostRecentActive returns the IN_PROGRESS project with the latest
// last-worked time no older than window before now. Timestamps after now
// count as active. Ties go to the smaller identifier.
func MostRecentActive(projects []types.Project, now time.Time, window time.Duration) (types.Project, bool) {
	var best types.Project
	found := false
	for _, p := range projects {
		if !IsActive(p, now, window) {
			continue
		}
		if !found ||
			p.LastWorked.After(best.LastWorked) ||
			(p.LastWorked.Equal(best.LastWorked) && p.ID < best.ID) {
			best = p
			found = true
		}
	}
	return best, found
}

// IsActive reports whether p counts as active work at now.
func IsActive(p types.Project, now time.Time, window time.Duration) bool {
	if p.Status != types.StatusInProgress || p.LastWorked.IsZero() {
		return false
	}
	return now.Sub(p.LastWorked) <= window
}
