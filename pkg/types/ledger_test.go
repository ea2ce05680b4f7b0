package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLedger() *Ledger {
	return &Ledger{
		Path: "tasks.md",
		Sections: []Section{
			{Ordinal: 1, Name: "Setup", Tasks: []Task{
				{Position: 1, Text: "a", Completed: true},
				{Position: 2, Text: "b"},
			}},
			{Ordinal: 3, Name: "Ship", Tasks: []Task{
				{Position: 3, Text: "c"},
			}},
		},
	}
}

func TestLedgerCounts(t *testing.T) {
	l := sampleLedger()
	assert.Equal(t, 3, l.Total())
	assert.Equal(t, 1, l.Completed())
	assert.Len(t, l.Tasks(), 3)
	assert.Equal(t, []int{1, 3}, l.Ordinals())
	assert.NoError(t, l.Validate())
}

func TestLedgerSection(t *testing.T) {
	l := sampleLedger()

	s, err := l.Section(3)
	require.NoError(t, err)
	assert.Equal(t, "Ship", s.Name)

	_, err = l.Section(2)
	require.ErrorIs(t, err, ErrSectionNotFound)
	var snf *SectionNotFoundError
	require.True(t, errors.As(err, &snf))
	assert.Equal(t, []int{1, 3}, snf.Available)
	assert.Contains(t, err.Error(), "available: 1, 3")
}

func TestLedgerImplicitSectionNotAddressable(t *testing.T) {
	l := &Ledger{Sections: []Section{{Implicit: true, Tasks: []Task{{Position: 1}}}}}
	_, err := l.Section(0)
	assert.ErrorIs(t, err, ErrSectionNotFound)
	assert.Empty(t, l.Ordinals())
}

func TestLedgerValidateDetectsGap(t *testing.T) {
	l := sampleLedger()
	l.Sections[1].Tasks[0].Position = 5
	assert.Error(t, l.Validate())
}

func TestSelectionString(t *testing.T) {
	assert.Equal(t, "all", All().String())
	assert.Equal(t, "section 2", InSection(2).String())
	assert.Equal(t, "positions 1-3,7,9-10", AtPositions(1, 2, 3, 7, 9, 10).String())
}

func TestLedgerDuplicateOrdinal(t *testing.T) {
	l := sampleLedger()
	l.Sections = append(l.Sections, Section{Ordinal: 1, Name: "Again", Line: 9})
	l.Sections[0].Line = 2

	assert.Equal(t, []int{1, 3}, l.Ordinals())

	_, err := l.Section(1)
	require.ErrorIs(t, err, ErrSectionAmbiguous)
	var amb *AmbiguousSectionError
	require.True(t, errors.As(err, &amb))
	assert.Equal(t, []int{2, 9}, amb.Lines)
	assert.Equal(t, "tasks.md: section 1 is ambiguous (headings at lines 2, 9)", err.Error())

	s, err := l.Section(3)
	require.NoError(t, err)
	assert.Equal(t, "Ship", s.Name)
}
