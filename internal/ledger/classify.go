// Package ledger parses checklist documents into sections and tasks and
// performs validated bulk completion of tasks in place.
//
// Parsing classifies each line as a section heading, a task, or other text.
// Task positions are 1-based and global across the document. Completion only
// ever rewrites the single marker byte of a matched task line; every other
// byte of the document is preserved.
package ledger

import (
	"regexp"
	"strconv"
	"strings"
)

// LineKind is the classification of one document line.
type LineKind int

// Line kinds.
const (
	LineOther LineKind = iota
	LineSection
	LineTask
)

func (k LineKind) String() string {
	switch k {
	case LineSection:
		return "section"
	case LineTask:
		return "task"
	default:
		return "other"
	}
}

// Line is a classified line. Level (the number of '#'), Ordinal and Name
// are set for LineSection; Marker, Text and MarkerIndex (byte index of the
// marker within the line) for LineTask.
type Line struct {
	Kind        LineKind
	Level       int
	Ordinal     int
	Name        string
	Marker      byte
	Text        string
	MarkerIndex int
}

// Completed reports whether a task line carries a completed marker.
func (l Line) Completed() bool {
	return l.Kind == LineTask && (l.Marker == 'x' || l.Marker == 'X')
}

var (
	// sectionRe matches "## Phase 2: Name" style headings.
	sectionRe = regexp.MustCompile(`^ {0,3}(#{1,6})[ \t]+(?i:section|phase|stage|part|milestone|step)[ \t]*(\d+)\b(.*)$`)

	// closingRe matches an optional closing sequence of a heading.
	closingRe = regexp.MustCompile(`(?:^|[ \t]+)#+[ \t]*$`)

	// taskRe matches "- [ ] text" with optional indentation.
	taskRe = regexp.MustCompile(`^[ \t]*- \[([ xX])\] (.*)$`)
)

// Classify returns the classification of a single line. The line may carry
// a trailing "\r\n" or "\n". A line that reads as a section heading is a
// section even if it could also be read as something else.
func Classify(line string) Line {
	line = strings.TrimRight(line, "\r\n")

	if m := sectionRe.FindStringSubmatch(line); m != nil && !dotted(m[3]) {
		ord, err := strconv.Atoi(m[2])
		if err == nil {
			return Line{Kind: LineSection, Level: len(m[1]), Ordinal: ord, Name: sectionName(m[3])}
		}
	}

	if m := taskRe.FindStringSubmatchIndex(line); m != nil {
		return Line{
			Kind:        LineTask,
			Marker:      line[m[2]],
			Text:        line[m[4]:m[5]],
			MarkerIndex: m[2],
		}
	}

	return Line{Kind: LineOther}
}

// dotted reports whether the ordinal continues as "1.2", which numbers a
// subsection rather than a section.
func dotted(rest string) bool {
	return len(rest) >= 2 && rest[0] == '.' && rest[1] >= '0' && rest[1] <= '9'
}

// sectionName strips the separator between the ordinal and the name, as in
// "Phase 2: Wiring" or "Step 3 - Ship", and any closing "#" sequence.
func sectionName(rest string) string {
	rest = closingRe.ReplaceAllString(rest, "")
	rest = strings.TrimSpace(rest)
	rest = strings.TrimLeft(rest, ":.-–—)")
	return strings.TrimSpace(rest)
}

// fence reports whether line is a code fence, returning the fence run (such
// as "```" or "~~~~") and the trimmed info string that follows it.
func fence(line string) (run, info string, ok bool) {
	line = strings.TrimRight(line, "\r\n")
	indent := 0
	for indent < len(line) && line[indent] == ' ' {
		indent++
	}
	if indent > 3 || indent == len(line) {
		return "", "", false
	}
	c := line[indent]
	if c != '`' && c != '~' {
		return "", "", false
	}
	n := 0
	for indent+n < len(line) && line[indent+n] == c {
		n++
	}
	if n < 3 {
		return "", "", false
	}
	info = strings.TrimSpace(line[indent+n:])
	if c == '`' && strings.ContainsRune(info, '`') {
		return "", "", false
	}
	return line[indent : indent+n], info, true
}

// closes reports whether a fence run with the given info string ends the
// block opened by open.
func closes(open, run, info string) bool {
	return info == "" && run[0] == open[0] && len(run) >= len(open)
}
