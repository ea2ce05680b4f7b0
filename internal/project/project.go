// Package project implements the project lifecycle on the workspace tree:
// creation, status changes, last-worked stamps, archiving, and the
// first-time workspace bootstrap.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mesh-intelligence/compass/internal/document"
	"github.com/mesh-intelligence/compass/internal/paths"
	"github.com/mesh-intelligence/compass/internal/scan"
	"github.com/mesh-intelligence/compass/pkg/types"
)

// idPattern is the accepted project identifier syntax.
var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateID reports whether id is a usable project identifier.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w %q (use lowercase letters, digits, '-' and '_')", types.ErrInvalidID, id)
	}
	return nil
}

// NewProject describes a project to create. Name defaults to ID.
type NewProject struct {
	ID          string
	Name        string
	Description string
	Tags        []string
}

// Create materializes projects/<id> with an overview document in PLANNING
// and an empty task ledger.
func Create(root string, np NewProject, now time.Time) (types.Project, error) {
	if err := ValidateID(np.ID); err != nil {
		return types.Project{}, err
	}
	layout := paths.NewLayout(root)
	dir := layout.Project(np.ID)

	if _, err := os.Stat(dir); err == nil {
		return types.Project{}, fmt.Errorf("%w: %s", types.ErrProjectExists, np.ID)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return types.Project{}, err
	}
	if _, err := scan.New(nil).FindProject(layout.Projects(), np.ID); err == nil {
		return types.Project{}, fmt.Errorf("%w: %s", types.ErrProjectExists, np.ID)
	}

	name := strings.TrimSpace(np.Name)
	if name == "" {
		name = np.ID
	}
	tags := np.Tags
	if tags == nil {
		tags = []string{}
	}

	body := "# " + name + "\n"
	if np.Description != "" {
		body += "\n" + np.Description + "\n"
	}
	overview := paths.Overview(dir)
	doc, err := document.Parse(overview, []byte(body))
	if err != nil {
		return types.Project{}, err
	}
	stamp := Timestamp(now)
	out, err := doc.WithFields(
		document.Field{Key: document.KeyID, Value: np.ID},
		document.Field{Key: document.KeyName, Value: name},
		document.Field{Key: document.KeyStatus, Value: string(types.StatusPlanning)},
		document.Field{Key: document.KeyDescription, Value: np.Description},
		document.Field{Key: document.KeyCreated, Value: stamp},
		document.Field{Key: document.KeyLastWorked, Value: stamp},
		document.Field{Key: document.KeyTags, Value: tags},
	)
	if err != nil {
		return types.Project{}, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.Project{}, fmt.Errorf("create project dir: %w", err)
	}
	if err := document.WriteAtomic(overview, out); err != nil {
		return types.Project{}, &types.WriteError{Path: overview, Err: err}
	}
	tasks := filepath.Join(dir, paths.TasksFile)
	if err := document.WriteAtomic(tasks, nil); err != nil {
		return types.Project{}, &types.WriteError{Path: tasks, Err: err}
	}
	return scan.ReadProject(dir)
}

// SetStatus changes the status of an active project and stamps last_worked.
// Setting ARCHIVED moves the project; use Archive for that.
func SetStatus(root, id string, status types.Status, now time.Time) (types.Project, error) {
	if status == types.StatusArchived {
		return Archive(root, id, now)
	}
	p, err := find(root, id)
	if err != nil {
		return types.Project{}, err
	}
	err = document.SetFields(paths.Overview(p.Dir),
		document.Field{Key: document.KeyStatus, Value: string(status)},
		document.Field{Key: document.KeyLastWorked, Value: Timestamp(now)},
	)
	if err != nil {
		return types.Project{}, err
	}
	return scan.ReadProject(p.Dir)
}

// Touch stamps last_worked on an active project. A project still in
// PLANNING is promoted to IN_PROGRESS; other statuses are left alone.
func Touch(root, id string, now time.Time) (types.Project, error) {
	p, err := find(root, id)
	if err != nil {
		return types.Project{}, err
	}
	fields := []document.Field{{Key: document.KeyLastWorked, Value: Timestamp(now)}}
	if p.Status == types.StatusPlanning {
		fields = append(fields, document.Field{Key: document.KeyStatus, Value: string(types.StatusInProgress)})
	}
	if err := document.SetFields(paths.Overview(p.Dir), fields...); err != nil {
		return types.Project{}, err
	}
	return scan.ReadProject(p.Dir)
}

// Archive marks a project ARCHIVED and moves its directory to
// projects-archive/<id>. Nothing is deleted.
func Archive(root, id string, now time.Time) (types.Project, error) {
	p, err := find(root, id)
	if err != nil {
		return types.Project{}, err
	}
	layout := paths.NewLayout(root)
	dest := filepath.Join(layout.Archive(), id)
	if _, err := os.Stat(dest); err == nil {
		return types.Project{}, fmt.Errorf("%w in archive: %s", types.ErrProjectExists, id)
	}

	err = document.SetFields(paths.Overview(p.Dir),
		document.Field{Key: document.KeyStatus, Value: string(types.StatusArchived)},
		document.Field{Key: document.KeyLastWorked, Value: Timestamp(now)},
	)
	if err != nil {
		return types.Project{}, err
	}
	if err := os.MkdirAll(layout.Archive(), 0o755); err != nil {
		return types.Project{}, fmt.Errorf("create archive dir: %w", err)
	}
	if err := os.Rename(p.Dir, dest); err != nil {
		return types.Project{}, fmt.Errorf("move to archive: %w", err)
	}
	return scan.ReadProject(dest)
}

func find(root, id string) (types.Project, error) {
	return scan.New(nil).FindProject(paths.NewLayout(root).Projects(), id)
}

// Timestamp formats t the way header timestamps are written.
func Timestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}
