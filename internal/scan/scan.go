// Package scan walks the project and skill collections of a workspace and
// turns each child directory into a metadata record.
//
// A collection root that does not exist yields an empty result. A child that
// cannot be read (missing overview, malformed header, bad status or
// timestamp, unreadable ledger) is logged and left out; it never hides its
// siblings. Results are ordered by identifier.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/mesh-intelligence/compass/internal/document"
	"github.com/mesh-intelligence/compass/internal/ledger"
	"github.com/mesh-intelligence/compass/internal/paths"
	"github.com/mesh-intelligence/compass/pkg/types"
)

// Scanner reads collections. The zero value discards log output.
type Scanner struct {
	Logger *slog.Logger
}

// New returns a Scanner that reports skipped records to logger.
func New(logger *slog.Logger) *Scanner {
	return &Scanner{Logger: logger}
}

func (s *Scanner) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

// ScanProjects scans the active project collection of the workspace.
func (s *Scanner) ScanProjects(root string) ([]types.Project, error) {
	return s.Projects(paths.NewLayout(root).Projects())
}

// ScanArchive scans the archived project collection of the workspace.
func (s *Scanner) ScanArchive(root string) ([]types.Project, error) {
	return s.Projects(paths.NewLayout(root).Archive())
}

// ScanSkills scans the skill collection of the workspace.
func (s *Scanner) ScanSkills(root string) ([]types.Skill, error) {
	return s.Skills(paths.NewLayout(root).Skills())
}

// Projects scans every project directory directly under collectionRoot.
func (s *Scanner) Projects(collectionRoot string) ([]types.Project, error) {
	dirs, err := childDirs(collectionRoot)
	if err != nil {
		return nil, err
	}

	projects := make([]types.Project, 0, len(dirs))
	seen := make(map[string]string, len(dirs))
	for _, dir := range dirs {
		p, err := ReadProject(dir)
		if err != nil {
			s.logger().Warn("skipping project", "dir", dir, "error", err)
			continue
		}
		if other, dup := seen[p.ID]; dup {
			s.logger().Warn("skipping project with duplicate id", "dir", dir, "id", p.ID, "first", other)
			continue
		}
		seen[p.ID] = dir
		projects = append(projects, p)
	}

	slices.SortFunc(projects, func(a, b types.Project) int { return strings.Compare(a.ID, b.ID) })
	return projects, nil
}

// Skills scans every skill directory directly under collectionRoot.
func (s *Scanner) Skills(collectionRoot string) ([]types.Skill, error) {
	dirs, err := childDirs(collectionRoot)
	if err != nil {
		return nil, err
	}

	skills := make([]types.Skill, 0, len(dirs))
	for _, dir := range dirs {
		sk, err := ReadSkill(dir)
		if err != nil {
			s.logger().Warn("skipping skill", "dir", dir, "error", err)
			continue
		}
		skills = append(skills, sk)
	}

	slices.SortFunc(skills, func(a, b types.Skill) int { return strings.Compare(a.ID, b.ID) })
	return skills, nil
}

// FindProject returns the project whose identifier is id in the collection.
// An unknown id is reported as ErrDocumentNotFound with the overview path
// the id would have had.
func (s *Scanner) FindProject(collectionRoot, id string) (types.Project, error) {
	projects, err := s.Projects(collectionRoot)
	if err != nil {
		return types.Project{}, err
	}
	for _, p := range projects {
		if p.ID == id {
			return p, nil
		}
	}
	missing := paths.Overview(filepath.Join(collectionRoot, id))
	return types.Project{}, &types.DocumentError{Path: missing, Err: fmt.Errorf("project %q: %w", id, types.ErrDocumentNotFound)}
}

// ReadProject builds the record for one project directory. Task counts come
// from the ledger; a project without a ledger has zero tasks.
func ReadProject(dir string) (types.Project, error) {
	doc, err := document.Read(paths.Overview(dir))
	if err != nil {
		return types.Project{}, err
	}
	h := doc.Header

	p := types.Project{
		ID:          h.ID,
		Name:        h.Name,
		Description: h.Description,
		Tags:        h.Tags,
		Dir:         dir,
		Extra:       extra(h),
	}
	if p.ID == "" {
		p.ID = filepath.Base(dir)
	}
	if p.Name == "" {
		p.Name = firstHeading(doc.Body)
	}
	if p.Name == "" {
		p.Name = p.ID
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}

	if p.Status, err = types.ParseStatus(h.Status); err != nil {
		return types.Project{}, fmt.Errorf("%s: %w", doc.Path, err)
	}
	if p.Created, err = ParseTimestamp(h.Created); err != nil {
		return types.Project{}, fmt.Errorf("%s: created: %w", doc.Path, err)
	}
	if p.LastWorked, err = ParseTimestamp(h.LastWorked); err != nil {
		return types.Project{}, fmt.Errorf("%s: last_worked: %w", doc.Path, err)
	}

	ledgerPath, err := ledger.ResolveDocument(dir)
	switch {
	case errors.Is(err, types.ErrNoLedgerFound):
		p.SetCounts(0, 0)
	case err != nil:
		return types.Project{}, err
	default:
		l, err := ledger.ParseFile(ledgerPath)
		if err != nil {
			return types.Project{}, err
		}
		p.LedgerPath = ledgerPath
		p.SetCounts(l.Total(), l.Completed())
	}
	return p, nil
}

// ReadSkill builds the record for one skill directory. The identifier is
// the directory name.
func ReadSkill(dir string) (types.Skill, error) {
	doc, err := document.Read(paths.SkillDocument(dir))
	if err != nil {
		return types.Skill{}, err
	}
	sk := types.Skill{
		ID:          filepath.Base(dir),
		Name:        doc.Header.Name,
		Description: doc.Header.Description,
		Path:        doc.Path,
		Extra:       extra(doc.Header),
	}
	if sk.Name == "" {
		sk.Name = firstHeading(doc.Body)
	}
	if sk.Name == "" {
		sk.Name = sk.ID
	}
	return sk, nil
}

// Timestamp layouts accepted in headers.
var timestampLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly}

// ParseTimestamp parses a header timestamp. An empty value is the zero time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q (want YYYY-MM-DD or RFC 3339)", s)
}

// extra copies the header's unrecognized keys minus the derived ones, which
// are never trusted from disk.
func extra(h document.Header) map[string]any {
	out := make(map[string]any, len(h.Extra))
	for k, v := range h.Extra {
		if !slices.Contains(document.DerivedKeys, k) {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// childDirs lists the immediate subdirectories of root, sorted by name.
// Hidden directories are ignored. A missing root is an empty collection.
func childDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read collection %s: %w", root, err)
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dirs = append(dirs, filepath.Join(root, e.Name()))
	}
	return dirs, nil
}
