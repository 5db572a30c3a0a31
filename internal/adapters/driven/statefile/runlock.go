package statefile

import (
	"fmt"
	"os"
	"strconv"

	"github.com/aviary-labs/bridgefeed-cli/internal/core/domain"
	"github.com/aviary-labs/bridgefeed-cli/internal/logger"
)

// RunLock is a cross-process mutual exclusion guard for sync runs. A second
// run started while the lock is held would race the first on the state file
// and could silently lose a mark-synced update.
type RunLock struct {
	path string
}

// AcquireRunLock takes the lock at the given path, conventionally the state
// file path plus ".lock". Returns domain.ErrRunActive when another process
// already holds it.
func AcquireRunLock(path string) (*RunLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if os.IsExist(err) {
		return nil, fmt.Errorf("%w: lock file %s exists", domain.ErrRunActive, path)
	}
	if err != nil {
		return nil, fmt.Errorf("create lock file: %w", err)
	}

	if _, err := f.WriteString(strconv.Itoa(os.Getpid()) + "\n"); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write lock file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("close lock file: %w", err)
	}

	return &RunLock{path: path}, nil
}

// Release removes the lock file. Safe to call once per acquired lock.
func (l *RunLock) Release() {
	if err := os.Remove(l.path); err != nil {
		logger.Warn("Failed to remove lock file %s: %v", l.path, err)
	}
}
