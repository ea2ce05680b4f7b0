package ledger

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/compass/internal/paths"
	"github.com/mesh-intelligence/compass/pkg/types"
)

// Ledger document names, in lookup order.
var DocumentNames = []string{paths.TasksFile, paths.ChecklistFile}

// parsed is a ledger plus the byte offset of each task's marker, indexed by
// position-1.
type parsed struct {
	ledger  *types.Ledger
	markers []int
}

// Parse parses checklist data. A document without checklist lines is a
// valid, empty ledger.
func Parse(data []byte) *types.Ledger {
	return parse("", data).ledger
}

// ParseFile reads and parses the ledger document at path.
func ParseFile(path string) (*types.Ledger, error) {
	data, err := readLedger(path)
	if err != nil {
		return nil, err
	}
	return parse(path, data).ledger, nil
}

// ResolveDocument returns the ledger document path inside a project
// directory, trying DocumentNames in order.
func ResolveDocument(projectDir string) (string, error) {
	for _, name := range DocumentNames {
		path := filepath.Join(projectDir, name)
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return path, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", &types.DocumentError{Path: path, Err: err}
		}
	}
	return "", &types.NoLedgerError{Dir: projectDir, Tried: DocumentNames}
}

// statLedger checks that path exists without creating anything beside it.
func statLedger(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &types.DocumentError{Path: path, Err: types.ErrDocumentNotFound}
		}
		return &types.DocumentError{Path: path, Err: err}
	}
	return nil
}

// readLedger reads path, mapping a missing file to ErrDocumentNotFound.
func readLedger(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &types.DocumentError{Path: path, Err: types.ErrDocumentNotFound}
		}
		return nil, &types.DocumentError{Path: path, Err: err}
	}
	return data, nil
}

// parse makes a single top-to-bottom pass over the lines of data. Lines
// inside fenced code blocks are text. The first section heading fixes the
// section level; section-like headings at any other level are text, so a
// "### Step 1" under "## Phase 1" neither starts a section nor hides the
// tasks that follow it.
func parse(path string, data []byte) parsed {
	l := &types.Ledger{Path: path}
	var markers []int

	current := types.Section{Implicit: true, Tasks: []types.Task{}}
	sawSection := false
	level := 0
	position := 0
	openFence := ""

	offset := 0
	lineNo := 0
	for offset < len(data) {
		end := bytes.IndexByte(data[offset:], '\n')
		next := len(data)
		if end >= 0 {
			next = offset + end + 1
		}
		raw := string(data[offset:next])
		lineNo++

		if run, info, ok := fence(raw); ok {
			switch {
			case openFence == "":
				openFence = run
			case closes(openFence, run, info):
				openFence = ""
			}
			offset = next
			continue
		}
		if openFence != "" {
			offset = next
			continue
		}

		switch cl := Classify(raw); cl.Kind {
		case LineSection:
			if level == 0 {
				level = cl.Level
			}
			if cl.Level != level {
				break
			}
			if !current.Implicit || len(current.Tasks) > 0 {
				l.Sections = append(l.Sections, current)
			}
			current = types.Section{Ordinal: cl.Ordinal, Name: cl.Name, Line: lineNo, Tasks: []types.Task{}}
			sawSection = true
		case LineTask:
			position++
			current.Tasks = append(current.Tasks, types.Task{
				Position:  position,
				Text:      cl.Text,
				Completed: cl.Completed(),
				Line:      lineNo,
			})
			markers = append(markers, offset+cl.MarkerIndex)
		}
		offset = next
	}

	if !current.Implicit || len(current.Tasks) > 0 || !sawSection {
		l.Sections = append(l.Sections, current)
	}
	return parsed{ledger: l, markers: markers}
}
