package ledger

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/compass/pkg/types"
)

// maxRangeSpan bounds a single "N-M" item so a typo cannot allocate
// millions of positions.
const maxRangeSpan = 1 << 16

// ParseSelection builds a selection from CLI-style inputs. Exactly one of
// all, hasSection or a non-empty positions spec must be given.
func ParseSelection(all bool, section int, hasSection bool, positions string) (types.Selection, error) {
	positions = strings.TrimSpace(positions)
	given := 0
	if all {
		given++
	}
	if hasSection {
		given++
	}
	if positions != "" {
		given++
	}
	if given != 1 {
		return types.Selection{}, fmt.Errorf("%w: exactly one of all, section or positions is required", types.ErrInvalidSelection)
	}

	switch {
	case all:
		return types.All(), nil
	case hasSection:
		if section < 0 {
			return types.Selection{}, fmt.Errorf("%w: section ordinal %d is negative", types.ErrInvalidSelection, section)
		}
		return types.InSection(section), nil
	default:
		ps, err := ParsePositions(positions)
		if err != nil {
			return types.Selection{}, err
		}
		return types.AtPositions(ps...), nil
	}
}

// ParsePositions parses a position spec such as "3,7,9" or "1-5, 8". The
// result is sorted and free of duplicates.
func ParsePositions(spec string) ([]int, error) {
	var out []int
	for item := range strings.SplitSeq(spec, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, fmt.Errorf("%w: empty item in %q", types.ErrInvalidSelection, spec)
		}

		lo, hi, isRange := strings.Cut(item, "-")
		start, err := parsePosition(lo)
		if err != nil {
			return nil, err
		}
		end := start
		if isRange {
			if end, err = parsePosition(hi); err != nil {
				return nil, err
			}
			if end < start {
				return nil, fmt.Errorf("%w: range %q is reversed", types.ErrInvalidSelection, item)
			}
			if end-start >= maxRangeSpan {
				return nil, fmt.Errorf("%w: range %q is too large", types.ErrInvalidSelection, item)
			}
		}
		for p := start; p <= end; p++ {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func parsePosition(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q is not a position (positions start at 1)", types.ErrInvalidSelection, s)
	}
	return n, nil
}

// Resolve returns the sorted positions sel targets in l. A section ordinal
// that does not exist yields a *types.SectionNotFoundError; positions beyond
// the ledger yield a *types.PositionError.
func Resolve(l *types.Ledger, sel types.Selection) ([]int, error) {
	switch sel.Kind {
	case types.SelectAll:
		out := make([]int, 0, l.Total())
		for _, t := range l.Tasks() {
			out = append(out, t.Position)
		}
		return out, nil

	case types.SelectSection:
		s, err := l.Section(sel.Ordinal)
		if err != nil {
			return nil, err
		}
		out := make([]int, 0, len(s.Tasks))
		for _, t := range s.Tasks {
			out = append(out, t.Position)
		}
		return out, nil

	case types.SelectPositions:
		if len(sel.Positions) == 0 {
			return nil, fmt.Errorf("%w: no positions given", types.ErrInvalidSelection)
		}
		total := l.Total()
		ps := slices.Clone(sel.Positions)
		slices.Sort(ps)
		ps = slices.Compact(ps)
		var bad []int
		for _, p := range ps {
			if p < 1 || p > total {
				bad = append(bad, p)
			}
		}
		if len(bad) > 0 {
			return nil, &types.PositionError{Path: l.Path, Positions: bad, Total: total}
		}
		return ps, nil

	default:
		return nil, fmt.Errorf("%w: unknown kind %q", types.ErrInvalidSelection, sel.Kind)
	}
}
