package types

import (
	"fmt"
	"strconv"
	"strings"
)

// SelectionKind tells which tasks a mutation targets.
type SelectionKind string

// Selection kinds.
const (
	SelectAll       SelectionKind = "all"
	SelectSection   SelectionKind = "section"
	SelectPositions SelectionKind = "positions"
)

// Selection names the task positions a bulk completion should target.
// Ordinal is used by SelectSection; Positions (1-based, sorted, unique) by
// SelectPositions.
type Selection struct {
	Kind      SelectionKind `json:"kind"`
	Ordinal   int           `json:"ordinal,omitempty"`
	Positions []int         `json:"positions,omitempty"`
}

// All selects every task in the ledger.
func All() Selection { return Selection{Kind: SelectAll} }

// InSection selects every task in the section with the given ordinal.
func InSection(ordinal int) Selection {
	return Selection{Kind: SelectSection, Ordinal: ordinal}
}

// AtPositions selects explicit positions. Callers should normalize with
// ledger.ParsePositions when the input comes from users.
func AtPositions(positions ...int) Selection {
	return Selection{Kind: SelectPositions, Positions: positions}
}

// String renders the selection the way the CLI accepts it.
func (s Selection) String() string {
	switch s.Kind {
	case SelectAll:
		return "all"
	case SelectSection:
		return fmt.Sprintf("section %d", s.Ordinal)
	case SelectPositions:
		return "positions " + compactRanges(s.Positions)
	default:
		return string(s.Kind)
	}
}

// compactRanges renders sorted positions as "1-3,7,9-10".
func compactRanges(positions []int) string {
	var b strings.Builder
	for i := 0; i < len(positions); {
		j := i
		for j+1 < len(positions) && positions[j+1] == positions[j]+1 {
			j++
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(positions[i]))
		if j > i {
			b.WriteByte('-')
			b.WriteString(strconv.Itoa(positions[j]))
		}
		i = j + 1
	}
	return b.String()
}
