package project

import (
	"fmt"
	"os"

	"github.com/mesh-intelligence/compass/internal/document"
	"github.com/mesh-intelligence/compass/internal/paths"
)

// goalsTemplate is written by Bootstrap. The marker line keeps the workspace
// in FIRST_RUN_WITH_DEFAULTS until the user replaces the template.
const goalsTemplate = `# Goals

%s

Describe what you want to learn and build. Remove the marker line above
once these goals are your own.
`

// BootstrapResult lists what Bootstrap created.
type BootstrapResult struct {
	Root    string   `json:"root"`
	Created []string `json:"created"`
}

// Bootstrap lays out a workspace at root: a placeholder goals document and
// the project and skill collections. Existing files are never overwritten,
// so running it twice is harmless.
func Bootstrap(root, marker string) (BootstrapResult, error) {
	layout := paths.NewLayout(root)
	res := BootstrapResult{Root: root, Created: []string{}}

	for _, dir := range []string{root, layout.Projects(), layout.Skills()} {
		if _, err := os.Stat(dir); err == nil {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return res, fmt.Errorf("create %s: %w", dir, err)
		}
		res.Created = append(res.Created, dir)
	}

	goals := layout.Goals()
	exists, err := document.Exists(goals)
	if err != nil {
		return res, err
	}
	if !exists {
		if err := document.WriteAtomic(goals, fmt.Appendf(nil, goalsTemplate, marker)); err != nil {
			return res, fmt.Errorf("write %s: %w", goals, err)
		}
		res.Created = append(res.Created, goals)
	}
	return res, nil
}
