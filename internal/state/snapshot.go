package state

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mesh-intelligence/compass/internal/budget"
	"github.com/mesh-intelligence/compass/internal/document"
	"github.com/mesh-intelligence/compass/internal/paths"
	"github.com/mesh-intelligence/compass/internal/scan"
	"github.com/mesh-intelligence/compass/pkg/types"
)

// Loader captures snapshots of a workspace.
type Loader struct {
	Scanner   *scan.Scanner
	Estimator budget.Estimator
	// Marker is the placeholder marker looked for in the goals document.
	Marker string
	Logger *slog.Logger
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// NewLoader returns a Loader configured from cfg.
func NewLoader(cfg types.Config, logger *slog.Logger) *Loader {
	return &Loader{
		Scanner:   scan.New(logger),
		Estimator: budget.New(cfg.TokenBudget),
		Marker:    cfg.PlaceholderMarker,
		Logger:    logger,
	}
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l.Logger
}

// Load scans the workspace at root. Per-record problems are logged and
// skipped by the scanner; only collection-level I/O failures are returned.
func (l *Loader) Load(root string) (types.Snapshot, error) {
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	scanner := l.Scanner
	if scanner == nil {
		scanner = scan.New(l.Logger)
	}
	layout := paths.NewLayout(root)

	snap := types.Snapshot{Root: root, TakenAt: now()}

	goals, err := InspectGoals(layout.Goals(), l.Marker)
	if err != nil {
		return types.Snapshot{}, err
	}
	snap.Goals = goals

	if snap.Projects, err = scanner.ScanProjects(root); err != nil {
		return types.Snapshot{}, fmt.Errorf("scan projects: %w", err)
	}
	if snap.Skills, err = scanner.ScanSkills(root); err != nil {
		return types.Snapshot{}, fmt.Errorf("scan skills: %w", err)
	}

	est := l.Estimator.Estimate(budget.Items(snap.Projects, snap.Skills))
	snap.Budget = est.Summary()
	if est.OverBudget {
		l.logger().Warn("session metadata over token budget", "total", est.Total, "threshold", est.Threshold)
	}
	return snap, nil
}

// InspectGoals runs the sentinel checks on the goals document. A goals
// document whose header cannot be parsed is still present; its raw bytes
// are used for the empty and placeholder checks.
func InspectGoals(path, marker string) (types.GoalsDoc, error) {
	g := types.GoalsDoc{Path: path}

	doc, err := document.Read(path)
	switch {
	case errors.Is(err, types.ErrDocumentNotFound):
		return g, nil
	case errors.Is(err, types.ErrHeaderMalformed):
		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			return g, fmt.Errorf("read goals: %w", readErr)
		}
		g.Present = true
		g.Empty = strings.TrimSpace(string(raw)) == ""
		g.Placeholder = marker != "" && strings.Contains(string(raw), marker)
		return g, nil
	case err != nil:
		return g, fmt.Errorf("read goals: %w", err)
	}

	g.Present = true
	g.Empty = doc.Header.Empty() && strings.TrimSpace(doc.Body) == ""
	g.Placeholder = doc.Header.Template || (marker != "" && strings.Contains(doc.Body, marker))
	return g, nil
}
