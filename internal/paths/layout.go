package paths

import "path/filepath"

// Workspace document and collection names.
const (
	GoalsFile    = "goals.md"
	ProjectsDir  = "projects"
	ArchiveDir   = "projects-archive"
	SkillsDir    = "skills"
	OverviewFile = "overview.md"
	SkillFile    = "SKILL.md"

	TasksFile     = "tasks.md"
	ChecklistFile = "checklist.md"
)

// Layout names the well-known locations inside a workspace root.
type Layout struct {
	Root string
}

// NewLayout returns the layout of the workspace at root.
func NewLayout(root string) Layout { return Layout{Root: root} }

// Goals is the sentinel goals document.
func (l Layout) Goals() string { return filepath.Join(l.Root, GoalsFile) }

// Projects is the active project collection root.
func (l Layout) Projects() string { return filepath.Join(l.Root, ProjectsDir) }

// Archive is the archived project collection root.
func (l Layout) Archive() string { return filepath.Join(l.Root, ArchiveDir) }

// Skills is the skill collection root.
func (l Layout) Skills() string { return filepath.Join(l.Root, SkillsDir) }

// Project is the directory of an active project.
func (l Layout) Project(id string) string { return filepath.Join(l.Projects(), id) }

// Overview is the overview document of the project directory dir.
func Overview(dir string) string { return filepath.Join(dir, OverviewFile) }

// SkillDocument is the skill document inside the skill directory dir.
func SkillDocument(dir string) string { return filepath.Join(dir, SkillFile) }
