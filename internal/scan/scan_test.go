package scan

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/compass/pkg/types"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestScanProjects(t *testing.T) {
	root := t.TempDir()
	projects := filepath.Join(root, "projects")

	write(t, filepath.Join(projects, "zeta", "overview.md"), `---
id: zeta
name: Zeta
status: in-progress
description: Last letter
created: 2026-01-02
last_worked: 2026-10-18T08:00:00Z
tags: [a, b]
total_tasks: 999
progress: 1.0
reviewer: kim
---
`)
	write(t, filepath.Join(projects, "zeta", "tasks.md"), "## Phase 1\n- [x] a\n- [ ] b\n- [ ] c\n- [x] d\n")

	write(t, filepath.Join(projects, "alpha-dir", "overview.md"), "---\nid: alpha\n---\n# Alpha Project\n")
	write(t, filepath.Join(projects, "alpha-dir", "checklist.md"), "- [ ] only\n")

	write(t, filepath.Join(projects, "middle", "overview.md"), "no header at all\n")

	logger, logs := bufferLogger()
	got, err := New(logger).ScanProjects(root)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, []string{"alpha", "middle", "zeta"}, []string{got[0].ID, got[1].ID, got[2].ID}, "ordered by id")

	alpha := got[0]
	assert.Equal(t, "Alpha Project", alpha.Name, "name falls back to first heading")
	assert.Equal(t, types.StatusPlanning, alpha.Status)
	assert.Equal(t, 1, alpha.TotalTasks)
	assert.Equal(t, filepath.Join(projects, "alpha-dir", "checklist.md"), alpha.LedgerPath)

	middle := got[1]
	assert.Equal(t, "middle", middle.Name, "name falls back to id")
	assert.Equal(t, 0, middle.TotalTasks)
	assert.Empty(t, middle.LedgerPath)
	assert.Equal(t, []string{}, middle.Tags)

	zeta := got[2]
	assert.Equal(t, types.StatusInProgress, zeta.Status)
	assert.Equal(t, "Last letter", zeta.Description)
	assert.Equal(t, []string{"a", "b"}, zeta.Tags)
	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), zeta.Created)
	assert.Equal(t, time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC), zeta.LastWorked)
	assert.Equal(t, 4, zeta.TotalTasks, "derived counts come from the ledger, not the header")
	assert.Equal(t, 2, zeta.CompletedTasks)
	assert.InDelta(t, 0.5, zeta.Progress, 1e-9)
	assert.Equal(t, map[string]any{"reviewer": "kim"}, zeta.Extra)

	assert.Empty(t, logs.String())
}

func TestScanProjectsSkipsBrokenRecords(t *testing.T) {
	root := t.TempDir()
	projects := filepath.Join(root, "projects")

	write(t, filepath.Join(projects, "good", "overview.md"), "---\nname: Good\n---\n")
	write(t, filepath.Join(projects, "bad-header", "overview.md"), "---\nname: [oops\n---\n")
	write(t, filepath.Join(projects, "bad-status", "overview.md"), "---\nstatus: someday\n---\n")
	write(t, filepath.Join(projects, "bad-time", "overview.md"), "---\nlast_worked: yesterday\n---\n")
	require.NoError(t, os.MkdirAll(filepath.Join(projects, "no-overview"), 0o755))
	write(t, filepath.Join(projects, "dup", "overview.md"), "---\nid: good\n---\n")
	write(t, filepath.Join(projects, "stray.md"), "not a project dir")
	require.NoError(t, os.MkdirAll(filepath.Join(projects, ".hidden"), 0o755))

	logger, logs := bufferLogger()
	got, err := New(logger).ScanProjects(root)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "good", got[0].ID)

	out := logs.String()
	for _, dir := range []string{"bad-header", "bad-status", "bad-time", "no-overview"} {
		assert.Contains(t, out, dir)
	}
	assert.Contains(t, out, "duplicate id")
	assert.NotContains(t, out, ".hidden")
}

func TestScanMissingCollection(t *testing.T) {
	root := t.TempDir()
	s := New(nil)

	projects, err := s.ScanProjects(root)
	require.NoError(t, err)
	assert.Empty(t, projects)

	skills, err := s.ScanSkills(root)
	require.NoError(t, err)
	assert.Empty(t, skills)

	archived, err := s.ScanArchive(root)
	require.NoError(t, err)
	assert.Empty(t, archived)
}

func TestScanSkills(t *testing.T) {
	root := t.TempDir()
	skills := filepath.Join(root, "skills")

	write(t, filepath.Join(skills, "review", "SKILL.md"), "---\nname: Code Review\ndescription: Review a diff\nallowed-tools: [read]\n---\nSteps...\n")
	write(t, filepath.Join(skills, "deploy", "SKILL.md"), "# Deploy *Safely*\n\nbody\n")
	write(t, filepath.Join(skills, "broken", "SKILL.md"), "---\nname: [oops\n---\n")
	require.NoError(t, os.MkdirAll(filepath.Join(skills, "empty"), 0o755))

	logger, logs := bufferLogger()
	got, err := New(logger).ScanSkills(root)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "deploy", got[0].ID)
	assert.Equal(t, "Deploy Safely", got[0].Name)
	assert.Empty(t, got[0].Description)

	assert.Equal(t, "review", got[1].ID)
	assert.Equal(t, "Code Review", got[1].Name)
	assert.Equal(t, "Review a diff", got[1].Description)
	assert.Equal(t, []any{"read"}, got[1].Extra["allowed-tools"])

	assert.Contains(t, logs.String(), "empty")
	assert.Contains(t, logs.String(), "broken")
}

func TestFindProject(t *testing.T) {
	root := t.TempDir()
	projects := filepath.Join(root, "projects")
	write(t, filepath.Join(projects, "dir-name", "overview.md"), "---\nid: real-id\n---\n")

	p, err := New(nil).FindProject(projects, "real-id")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(projects, "dir-name"), p.Dir)

	_, err = New(nil).FindProject(projects, "nope")
	assert.ErrorIs(t, err, types.ErrDocumentNotFound)
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = ParseTimestamp("2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseTimestamp("2026-10-19T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC), got.UTC())

	_, err = ParseTimestamp("last week")
	assert.Error(t, err)
}

func TestFirstHeading(t *testing.T) {
	assert.Equal(t, "Title", firstHeading("intro\n\n## Title\n\n# Later\n"))
	assert.Equal(t, "Use go test", firstHeading("# Use `go test`\n"))
	assert.Equal(t, "", firstHeading("no headings here\n"))
	assert.Equal(t, "", firstHeading("   \n"))
}
