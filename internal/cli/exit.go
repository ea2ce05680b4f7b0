package cli

import (
	"errors"
	"io/fs"
	"os"

	"github.com/mesh-intelligence/compass/internal/history"
	"github.com/mesh-intelligence/compass/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// codeError pins an exit code to an error.
type codeError struct {
	code int
	err  error
}

func (e *codeError) Error() string { return e.err.Error() }
func (e *codeError) Unwrap() error { return e.err }

func userError(err error) error { return &codeError{code: exitUserError, err: err} }
func sysError(err error) error  { return &codeError{code: exitSysError, err: err} }

// userErrors are resolution and validation failures.
var userErrors = []error{
	types.ErrDocumentNotFound,
	types.ErrHeaderMalformed,
	types.ErrSectionNotFound,
	types.ErrSectionAmbiguous,
	types.ErrNoLedgerFound,
	types.ErrPositionOutOfRange,
	types.ErrInvalidSelection,
	types.ErrValidationMismatch,
	types.ErrInvalidStatus,
	types.ErrInvalidID,
	types.ErrProjectExists,
}

// exitCode maps err to a process exit code. Errors that are neither a
// known validation failure nor a filesystem failure are treated as usage
// errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ce *codeError
	if errors.As(err, &ce) {
		return ce.code
	}
	if errors.Is(err, types.ErrWriteFailed) || errors.Is(err, types.ErrLedgerLocked) || errors.Is(err, history.ErrClosed) {
		return exitSysError
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	if isIOError(err) {
		return exitSysError
	}
	return exitUserError
}

func isIOError(err error) bool {
	var (
		pathErr    *fs.PathError
		linkErr    *os.LinkError
		syscallErr *os.SyscallError
	)
	return errors.As(err, &pathErr) || errors.As(err, &linkErr) || errors.As(err, &syscallErr)
}
