package types

import (
	"fmt"
	"slices"
)

// Task is one checklist line. Position is 1-based and global across the
// whole ledger document; completing a task never renumbers anything.
type Task struct {
	Position  int    `json:"position"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Line      int    `json:"line"`
}

// Section groups consecutive tasks under a section heading. The implicit
// section that precedes the first heading has ordinal 0 and no name.
type Section struct {
	Ordinal  int    `json:"ordinal"`
	Name     string `json:"name"`
	Implicit bool   `json:"implicit,omitempty"`
	Line     int    `json:"line,omitempty"`
	Tasks    []Task `json:"tasks"`
}

// Completed returns the number of completed tasks in the section.
func (s Section) Completed() int {
	n := 0
	for _, t := range s.Tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// Ledger is a parsed checklist document.
type Ledger struct {
	Path     string    `json:"path,omitempty"`
	Sections []Section `json:"sections"`
}

// Total returns the number of tasks in the ledger.
func (l *Ledger) Total() int {
	n := 0
	for _, s := range l.Sections {
		n += len(s.Tasks)
	}
	return n
}

// Completed returns the number of completed tasks in the ledger.
func (l *Ledger) Completed() int {
	n := 0
	for _, s := range l.Sections {
		n += s.Completed()
	}
	return n
}

// Tasks returns every task in position order.
func (l *Ledger) Tasks() []Task {
	tasks := make([]Task, 0, l.Total())
	for _, s := range l.Sections {
		tasks = append(tasks, s.Tasks...)
	}
	return tasks
}

// Ordinals lists the distinct ordinals of the explicit (non-implicit)
// sections in order of first appearance.
func (l *Ledger) Ordinals() []int {
	var ords []int
	for _, s := range l.Sections {
		if !s.Implicit && !slices.Contains(ords, s.Ordinal) {
			ords = append(ords, s.Ordinal)
		}
	}
	return ords
}

// Section returns the section whose ordinal equals ordinal. The implicit
// section is never addressable by number. An ordinal carried by more than
// one heading yields a *AmbiguousSectionError.
func (l *Ledger) Section(ordinal int) (*Section, error) {
	var found *Section
	var lines []int
	for i := range l.Sections {
		s := &l.Sections[i]
		if s.Implicit || s.Ordinal != ordinal {
			continue
		}
		if found == nil {
			found = s
		}
		lines = append(lines, s.Line)
	}
	switch {
	case found == nil:
		return nil, &SectionNotFoundError{Path: l.Path, Ordinal: ordinal, Available: l.Ordinals()}
	case len(lines) > 1:
		return nil, &AmbiguousSectionError{Path: l.Path, Ordinal: ordinal, Lines: lines}
	}
	return found, nil
}

// Validate checks the partition invariant: positions run 1..Total in
// document order and each appears in exactly one section.
func (l *Ledger) Validate() error {
	want := 1
	for _, s := range l.Sections {
		for _, t := range s.Tasks {
			if t.Position != want {
				return fmt.Errorf("ledger %s: task at line %d has position %d, want %d", l.Path, t.Line, t.Position, want)
			}
			want++
		}
	}
	return nil
}
