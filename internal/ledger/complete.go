package ledger

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/compass/internal/document"
	"github.com/mesh-intelligence/compass/pkg/types"
)

// completedMarker is the byte written over an incomplete task's marker.
const completedMarker = 'x'

// afterWrite runs between the write and the validating re-read. Tests
// override it to simulate a concurrent writer.
var afterWrite = func(path string) {}

// Completer performs bulk completion of ledger tasks.
//
// Each call re-reads the document, flips only incomplete tasks in the
// selection, writes atomically, then re-reads and re-parses the result to
// validate the counts. With Lock set, an advisory lock is held on a sibling
// lock file for the whole read-modify-write-verify cycle.
type Completer struct {
	Logger *slog.Logger
	Lock   bool
}

// NewCompleter returns a Completer that locks and logs to logger.
func NewCompleter(logger *slog.Logger) *Completer {
	return &Completer{Logger: logger, Lock: true}
}

func (c *Completer) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// Complete resolves the ledger document inside projectDir and completes
// sel in it.
func (c *Completer) Complete(projectDir string, sel types.Selection) (*types.MutationResult, error) {
	path, err := ResolveDocument(projectDir)
	if err != nil {
		return nil, err
	}
	return c.CompleteFile(path, sel)
}

// CompleteFile completes sel in the ledger document at path.
//
// Resolution errors (unknown section, positions out of range) are returned
// before anything is written. A failed write returns a *types.WriteError and
// leaves the document as it was. A validation mismatch after a successful
// write is reported in the result, not as an error.
func (c *Completer) CompleteFile(path string, sel types.Selection) (*types.MutationResult, error) {
	log := c.logger().With("path", path, "selection", sel.String())

	if err := statLedger(path); err != nil {
		return nil, err
	}
	if c.Lock {
		lock, err := acquireLock(path)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				log.Warn("release ledger lock", "error", err)
			}
		}()
	}

	data, err := readLedger(path)
	if err != nil {
		return nil, err
	}
	before := parse(path, data)

	targets, err := Resolve(before.ledger, sel)
	if err != nil {
		return nil, err
	}

	tasks := before.ledger.Tasks()
	flipped := make([]int, 0, len(targets))
	for _, p := range targets {
		if !tasks[p-1].Completed {
			flipped = append(flipped, p)
		}
	}

	result := &types.MutationResult{
		Path:      path,
		Selection: sel,
		Total:     before.ledger.Total(),
		Before:    before.ledger.Completed(),
		Flipped:   flipped,
	}

	if len(flipped) == 0 {
		result.After = result.Before
		result.Validated = true
		log.Debug("selection already complete")
		return result, nil
	}

	out := bytes.Clone(data)
	for _, p := range flipped {
		out[before.markers[p-1]] = completedMarker
	}
	if err := document.WriteAtomic(path, out); err != nil {
		return nil, &types.WriteError{Path: path, Err: err}
	}
	result.Written = true
	afterWrite(path)

	written, err := readLedger(path)
	if err != nil {
		return result, fmt.Errorf("re-read after write: %w", err)
	}
	after := parse(path, written).ledger

	result.After = after.Completed()
	expected := result.Before + len(flipped)
	if after.Total() == result.Total && result.After == expected && after.Validate() == nil {
		result.Validated = true
		log.Debug("tasks completed", "flipped", len(flipped), "before", result.Before, "after", result.After)
		return result, nil
	}

	result.Mismatch = &types.ValidationMismatch{
		ExpectedTotal:     result.Total,
		ActualTotal:       after.Total(),
		ExpectedCompleted: expected,
		ActualCompleted:   result.After,
	}
	log.Warn("ledger changed unexpectedly during completion",
		"expected_completed", expected, "actual_completed", result.After,
		"expected_total", result.Total, "actual_total", after.Total())
	return result, nil
}
