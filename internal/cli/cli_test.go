package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/compass/internal/history"
	"github.com/mesh-intelligence/compass/internal/paths"
	"github.com/mesh-intelligence/compass/pkg/types"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	t         *testing.T
	root      string
	configDir string
	dataDir   string
}

type cmdResult struct {
	stdout string
	stderr string
	code   int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, key := range []string{paths.EnvConfigDir, paths.EnvRoot, paths.EnvDataDir, "COMPASS_ACTIVE_WINDOW", "COMPASS_LOG_LEVEL", "COMPASS_LOCK"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	dir := t.TempDir()
	return &testEnv{
		t:         t,
		root:      filepath.Join(dir, "ws"),
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
	}
}

func (e *testEnv) run(args ...string) cmdResult {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&app{now: func() time.Time { return fixedNow }})
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	all := append([]string{"--config-dir", e.configDir, "--root", e.root, "--data-dir", e.dataDir}, args...)
	code := run(root, all, &stderr)
	return cmdResult{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func (e *testEnv) mustRun(args ...string) cmdResult {
	e.t.Helper()
	res := e.run(args...)
	require.Equal(e.t, exitSuccess, res.code, "compass %v\nstdout: %s\nstderr: %s", args, res.stdout, res.stderr)
	return res
}

func (e *testEnv) write(rel, content string) {
	e.t.Helper()
	path := filepath.Join(e.root, rel)
	require.NoError(e.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0o644))
}

func (e *testEnv) read(rel string) string {
	e.t.Helper()
	data, err := os.ReadFile(filepath.Join(e.root, rel))
	require.NoError(e.t, err)
	return string(data)
}

func decode[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), s)
	return v
}

const tenTasks = `# Plan
## Phase 1: Basics
- [x] one
- [x] two
- [ ] three
## Phase 2: Build
- [ ] four
- [ ] five
- [x] six
- [ ] seven
## Phase 3: Ship
- [ ] eight
- [ ] nine
- [ ] ten
`

func (e *testEnv) seedProject(id string) {
	e.write("goals.md", "# Goals\n\nLearn Go.\n")
	e.write(filepath.Join("projects", id, "overview.md"), "---\nid: "+id+"\nname: Learn Go\nstatus: PLANNING\n---\n")
	e.write(filepath.Join("projects", id, "tasks.md"), tenTasks)
}

func TestVersion(t *testing.T) {
	e := newTestEnv(t)
	res := e.mustRun("version")
	assert.Contains(t, res.stdout, "compass v")
	assert.Contains(t, res.stdout, "github.com/mesh-intelligence/compass")
}

func TestInitThenDetectState(t *testing.T) {
	e := newTestEnv(t)

	before := decode[map[string]any](t, e.mustRun("--json", "detect-state").stdout)
	assert.Equal(t, string(types.StateNeedsBootstrap), before["state"])

	res := e.mustRun("--json", "init")
	out := decode[initResult](t, res.stdout)
	assert.True(t, out.ConfigWritten)
	assert.FileExists(t, filepath.Join(e.configDir, "config.yaml"))
	assert.FileExists(t, filepath.Join(e.dataDir, history.DatabaseFile))
	assert.FileExists(t, filepath.Join(e.root, "goals.md"))

	after := decode[map[string]any](t, e.mustRun("--json", "detect-state").stdout)
	assert.Equal(t, string(types.StateFirstRunWithDefaults), after["state"])
	action := after["action"].(map[string]any)
	assert.Equal(t, string(types.ActionMenuOnboarding), action["kind"])

	again := decode[initResult](t, e.mustRun("--json", "init").stdout)
	assert.False(t, again.ConfigWritten)
	assert.Empty(t, again.Created)
}

func TestDetectStateActiveWork(t *testing.T) {
	e := newTestEnv(t)
	e.write("goals.md", "# Goals\n")
	e.write("projects/go/overview.md", "---\nid: go\nstatus: IN_PROGRESS\nlast_worked: 2026-10-18T12:00:00Z\n---\n")

	out := decode[map[string]any](t, e.mustRun("--json", "detect-state").stdout)
	assert.Equal(t, string(types.StateOperationalWithActiveWork), out["state"])
	assert.Equal(t, "go", out["action"].(map[string]any)["project_id"])

	human := e.mustRun("detect-state").stdout
	assert.Contains(t, human, "OPERATIONAL_WITH_ACTIVE_WORK")
	assert.Contains(t, human, "load-and-resume go")
}

func TestDetectStateHonorsConfiguredWindow(t *testing.T) {
	e := newTestEnv(t)
	e.write("goals.md", "# Goals\n")
	e.write("projects/go/overview.md", "---\nid: go\nstatus: IN_PROGRESS\nlast_worked: 2026-10-18T12:00:00Z\n---\n")
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte("active_window: 12h\n"), 0o644))

	out := decode[map[string]any](t, e.mustRun("--json", "detect-state").stdout)
	assert.Equal(t, string(types.StateOperational), out["state"])

	t.Setenv("COMPASS_ACTIVE_WINDOW", "48h")
	out = decode[map[string]any](t, e.mustRun("--json", "detect-state").stdout)
	assert.Equal(t, string(types.StateOperationalWithActiveWork), out["state"])
}

func TestInvalidConfigIsUserError(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte("token_budget: -1\n"), 0o644))

	res := e.run("scan-projects")
	assert.Equal(t, exitUserError, res.code)
	assert.Contains(t, res.stderr, "token budget")
}

func TestScanProjects(t *testing.T) {
	e := newTestEnv(t)
	e.seedProject("learn-go")
	e.write("projects/broken/overview.md", "---\nstatus: sideways\n---\n")

	res := e.mustRun("--json", "scan-projects")
	projects := decode[[]types.Project](t, res.stdout)
	require.Len(t, projects, 1)
	assert.Equal(t, 10, projects[0].TotalTasks)
	assert.Equal(t, 3, projects[0].CompletedTasks)
	assert.Contains(t, res.stderr, "broken")

	human := e.mustRun("scan-projects").stdout
	assert.Contains(t, human, "learn-go")
	assert.Contains(t, human, "3/10 (30%)")

	archived := decode[[]types.Project](t, e.mustRun("--json", "scan-projects", "--archived").stdout)
	assert.Empty(t, archived)
}

func TestScanSkills(t *testing.T) {
	e := newTestEnv(t)
	e.write("skills/review/SKILL.md", "---\nname: Code review\ndescription: Read diffs carefully\n---\n")

	skills := decode[[]types.Skill](t, e.mustRun("--json", "scan-skills").stdout)
	require.Len(t, skills, 1)
	assert.Equal(t, "review", skills[0].ID)
	assert.Contains(t, e.mustRun("scan-skills").stdout, "Read diffs carefully")
}

func TestParseLedger(t *testing.T) {
	e := newTestEnv(t)
	e.seedProject("learn-go")

	out := decode[map[string]any](t, e.mustRun("--json", "parse-ledger", "learn-go").stdout)
	assert.EqualValues(t, 10, out["total"])
	assert.EqualValues(t, 3, out["completed"])
	assert.Len(t, out["sections"], 3)

	human := e.mustRun("parse-ledger", "learn-go").stdout
	assert.Contains(t, human, "Section 2: Build")
	assert.Contains(t, human, "  4 [ ] four")

	res := e.run("parse-ledger", "nope")
	assert.Equal(t, exitUserError, res.code)
}

func TestCompleteSection(t *testing.T) {
	e := newTestEnv(t)
	e.seedProject("learn-go")

	res := e.mustRun("--json", "complete", "--project", "learn-go", "--section", "2")
	out := decode[types.MutationResult](t, res.stdout)
	assert.Equal(t, []int{4, 5, 7}, out.Flipped)
	assert.Equal(t, 3, out.Before)
	assert.Equal(t, 6, out.After)
	assert.True(t, out.Validated)

	ledger := e.read("projects/learn-go/tasks.md")
	assert.Equal(t, strings.Count(tenTasks, "[x]")+3, strings.Count(ledger, "[x]"))

	overview := e.read("projects/learn-go/overview.md")
	assert.Contains(t, overview, "status: IN_PROGRESS")
	assert.Contains(t, overview, "2026-10-19T12:00:00Z")

	hist := decode[[]history.Event](t, e.mustRun("--json", "history", "--project", "learn-go").stdout)
	require.Len(t, hist, 1)
	assert.Equal(t, "section 2", hist[0].Selection)
}

func TestCompleteNoOpWritesNothing(t *testing.T) {
	e := newTestEnv(t)
	e.seedProject("learn-go")

	res := e.mustRun("complete", "--project", "learn-go", "--positions", "1,2")
	assert.Contains(t, res.stdout, "already complete")
	assert.Equal(t, tenTasks, e.read("projects/learn-go/tasks.md"))
}

func TestCompleteExitCodes(t *testing.T) {
	e := newTestEnv(t)
	e.seedProject("learn-go")
	e.write("projects/empty/overview.md", "---\nid: empty\n---\n")

	tests := []struct {
		name string
		args []string
		code int
		msg  string
	}{
		{"unknown section", []string{"--project", "learn-go", "--section", "9"}, exitUserError, "available: 1, 2, 3"},
		{"position out of range", []string{"--project", "learn-go", "--positions", "3,11"}, exitUserError, "out of range"},
		{"bad position spec", []string{"--project", "learn-go", "--positions", "x"}, exitUserError, "invalid selection"},
		{"no selector", []string{"--project", "learn-go"}, exitUserError, ""},
		{"two selectors", []string{"--project", "learn-go", "--all", "--section", "1"}, exitUserError, ""},
		{"unknown project", []string{"--project", "nope", "--all"}, exitUserError, "not found"},
		{"no ledger", []string{"--project", "empty", "--all"}, exitUserError, "no ledger"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.run(append([]string{"complete"}, tt.args...)...)
			assert.Equal(t, tt.code, res.code, res.stderr)
			assert.Contains(t, res.stderr, tt.msg)
			assert.Equal(t, tenTasks, e.read("projects/learn-go/tasks.md"))
		})
	}
}

func TestCompleteAll(t *testing.T) {
	e := newTestEnv(t)
	e.seedProject("learn-go")

	res := e.mustRun("complete", "-p", "learn-go", "--all")
	assert.Contains(t, res.stdout, "completed 7 task(s) in all")
	assert.NotContains(t, e.read("projects/learn-go/tasks.md"), "[ ]")
}

func TestProjectLifecycle(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("init")

	created := decode[types.Project](t, e.mustRun("--json", "new-project", "rust", "--name", "Rust", "--tags", "lang, systems").stdout)
	assert.Equal(t, types.StatusPlanning, created.Status)
	assert.Equal(t, []string{"lang", "systems"}, created.Tags)

	assert.Equal(t, exitUserError, e.run("new-project", "rust").code)
	assert.Equal(t, exitUserError, e.run("new-project", "Not Valid").code)

	updated := decode[types.Project](t, e.mustRun("--json", "set-status", "rust", "in-progress").stdout)
	assert.Equal(t, types.StatusInProgress, updated.Status)
	assert.Equal(t, exitUserError, e.run("set-status", "rust", "paused").code)

	archived := decode[types.Project](t, e.mustRun("--json", "archive", "rust").stdout)
	assert.Equal(t, types.StatusArchived, archived.Status)
	assert.DirExists(t, filepath.Join(e.root, "projects-archive", "rust"))

	list := decode[[]types.Project](t, e.mustRun("--json", "scan-projects", "--archived").stdout)
	require.Len(t, list, 1)
	assert.Equal(t, "rust", list[0].ID)
}

func TestBudget(t *testing.T) {
	e := newTestEnv(t)
	e.write("skills/a/SKILL.md", "---\ndescription: "+strings.Repeat("x", 40)+"\n---\n")
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte("token_budget: 20\n"), 0o644))

	res := e.mustRun("--json", "budget")
	out := decode[map[string]any](t, res.stdout)
	assert.EqualValues(t, 60, out["total"])
	assert.Equal(t, true, out["over_budget"])
	assert.Contains(t, res.stderr, "over token budget")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitUserError, exitCode(&types.SectionNotFoundError{Path: "p", Ordinal: 4}))
	assert.Equal(t, exitUserError, exitCode(&types.AmbiguousSectionError{Path: "p", Ordinal: 2, Lines: []int{1, 5}}))
	assert.Equal(t, exitSysError, exitCode(&types.WriteError{Path: "p", Err: os.ErrPermission}))
	assert.Equal(t, exitSysError, exitCode(types.ErrLedgerLocked))
	assert.Equal(t, exitSysError, exitCode(&os.PathError{Op: "open", Path: "p", Err: os.ErrPermission}))
	assert.Equal(t, exitUserError, exitCode(&types.DocumentError{Path: "p", Err: types.ErrDocumentNotFound}))
	assert.Equal(t, exitSysError, exitCode(sysError(types.ErrInvalidID)))
}
