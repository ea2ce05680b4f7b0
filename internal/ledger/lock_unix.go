//go:build unix

package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/mesh-intelligence/compass/pkg/types"
)

// Lock acquisition polls a non-blocking flock lockAttempts times. Tests
// shorten the wait.
var (
	lockAttempts = 40
	lockBackoff  = 50 * time.Millisecond
)

type fileLock struct {
	file *os.File
}

// lockPath returns the hidden sibling lock file for a ledger document.
func lockPath(path string) string {
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".lock")
}

func acquireLock(path string) (*fileLock, error) {
	f, err := os.OpenFile(lockPath(path), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open ledger lock: %w", err)
	}

	for attempt := 0; ; attempt++ {
		err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return &fileLock{file: f}, nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EAGAIN) {
			f.Close()
			return nil, fmt.Errorf("acquire ledger lock: %w", err)
		}
		if attempt+1 >= lockAttempts {
			f.Close()
			return nil, fmt.Errorf("%s: %w", path, types.ErrLedgerLocked)
		}
		time.Sleep(lockBackoff)
	}
}

// Release unlocks and closes the lock file. The file itself stays on disk.
func (l *fileLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	unlockErr := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}
