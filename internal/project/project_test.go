package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/compass/internal/document"
	"github.com/mesh-intelligence/compass/pkg/types"
)

var now = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func TestValidateID(t *testing.T) {
	for _, id := range []string{"go", "learn-go", "p_1", "2026"} {
		assert.NoError(t, ValidateID(id), id)
	}
	for _, id := range []string{"", "Go", "-lead", "a b", "../x", "a/b", "é"} {
		assert.ErrorIs(t, ValidateID(id), types.ErrInvalidID, id)
	}
}

func TestCreate(t *testing.T) {
	root := t.TempDir()

	p, err := Create(root, NewProject{ID: "learn-go", Name: "Learn Go", Description: "Idioms first", Tags: []string{"go"}}, now)
	require.NoError(t, err)
	assert.Equal(t, "learn-go", p.ID)
	assert.Equal(t, "Learn Go", p.Name)
	assert.Equal(t, types.StatusPlanning, p.Status)
	assert.Equal(t, "Idioms first", p.Description)
	assert.Equal(t, []string{"go"}, p.Tags)
	assert.True(t, now.Equal(p.Created))
	assert.True(t, now.Equal(p.LastWorked))
	assert.Equal(t, 0, p.TotalTasks)
	assert.Equal(t, filepath.Join(root, "projects", "learn-go", "tasks.md"), p.LedgerPath)

	doc, err := document.Read(filepath.Join(root, "projects", "learn-go", "overview.md"))
	require.NoError(t, err)
	assert.Contains(t, doc.Body, "# Learn Go")
	assert.False(t, doc.Header.Has(document.KeyTemplate))
}

func TestCreateDefaultsName(t *testing.T) {
	p, err := Create(t.TempDir(), NewProject{ID: "plain"}, now)
	require.NoError(t, err)
	assert.Equal(t, "plain", p.Name)
	assert.Empty(t, p.Tags)
}

func TestCreateRejects(t *testing.T) {
	root := t.TempDir()
	_, err := Create(root, NewProject{ID: "Bad ID"}, now)
	assert.ErrorIs(t, err, types.ErrInvalidID)

	_, err = Create(root, NewProject{ID: "dup"}, now)
	require.NoError(t, err)
	_, err = Create(root, NewProject{ID: "dup"}, now)
	assert.ErrorIs(t, err, types.ErrProjectExists)
}

func TestCreateRejectsHeaderID(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "projects", "other-dir")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "overview.md"), []byte("---\nid: taken\n---\n"), 0o644))

	_, err := Create(root, NewProject{ID: "taken"}, now)
	assert.ErrorIs(t, err, types.ErrProjectExists)
}

func TestSetStatus(t *testing.T) {
	root := t.TempDir()
	_, err := Create(root, NewProject{ID: "p"}, now)
	require.NoError(t, err)

	later := now.Add(2 * time.Hour)
	p, err := SetStatus(root, "p", types.StatusComplete, later)
	require.NoError(t, err)
	assert.Equal(t, types.StatusComplete, p.Status)
	assert.True(t, later.Equal(p.LastWorked))
	assert.True(t, now.Equal(p.Created), "created is left alone")

	_, err = SetStatus(root, "missing", types.StatusComplete, later)
	assert.ErrorIs(t, err, types.ErrDocumentNotFound)
}

func TestSetStatusPreservesBody(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "projects", "p")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	body := "# P\n\nNotes that   keep\ttheir spacing.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "overview.md"), []byte("---\nid: p\nowner: kim\n---\n"+body), 0o644))

	_, err := SetStatus(root, "p", types.StatusInProgress, now)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "overview.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), body))
	assert.Contains(t, string(data), "owner: kim")
}

func TestTouch(t *testing.T) {
	root := t.TempDir()
	_, err := Create(root, NewProject{ID: "p"}, now)
	require.NoError(t, err)

	later := now.Add(time.Hour)
	p, err := Touch(root, "p", later)
	require.NoError(t, err)
	assert.Equal(t, types.StatusInProgress, p.Status, "planning is promoted")
	assert.True(t, later.Equal(p.LastWorked))

	_, err = SetStatus(root, "p", types.StatusComplete, later)
	require.NoError(t, err)
	p, err = Touch(root, "p", later.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, types.StatusComplete, p.Status)
}

func TestArchive(t *testing.T) {
	root := t.TempDir()
	_, err := Create(root, NewProject{ID: "old"}, now)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "projects", "old", "tasks.md"), []byte("- [x] done\n"), 0o644))

	p, err := Archive(root, "old", now)
	require.NoError(t, err)
	assert.Equal(t, types.StatusArchived, p.Status)
	assert.Equal(t, filepath.Join(root, "projects-archive", "old"), p.Dir)
	assert.Equal(t, 1, p.CompletedTasks, "ledger moves with the project")
	assert.NoDirExists(t, filepath.Join(root, "projects", "old"))

	_, err = Archive(root, "old", now)
	assert.ErrorIs(t, err, types.ErrDocumentNotFound)
}

func TestArchiveViaSetStatus(t *testing.T) {
	root := t.TempDir()
	_, err := Create(root, NewProject{ID: "p"}, now)
	require.NoError(t, err)

	p, err := SetStatus(root, "p", types.StatusArchived, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "projects-archive", "p"), p.Dir)
}

func TestArchiveRefusesCollision(t *testing.T) {
	root := t.TempDir()
	_, err := Create(root, NewProject{ID: "p"}, now)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "projects-archive", "p"), 0o755))

	_, err = Archive(root, "p", now)
	assert.ErrorIs(t, err, types.ErrProjectExists)
	assert.DirExists(t, filepath.Join(root, "projects", "p"))
}
