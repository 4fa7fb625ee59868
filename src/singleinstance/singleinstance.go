package singleinstance

// This file defines the API for single-instance ownership: only one overlay
// may own the screen at a time.

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrAlreadyRunning is returned when another process holds the lock.
var ErrAlreadyRunning = errors.New("another region selection is already running")

const lockName = "region-select.lock"

// Lock is held for the lifetime of one selection.
type Lock interface {
	// Path returns the lock file location.
	Path() string
	// Release gives up ownership. Calling it twice is harmless.
	Release() error
}

// Acquire takes the instance lock in dir, or in the default runtime
// directory when dir is empty. It fails with ErrAlreadyRunning instead of
// waiting.
func Acquire(dir string) (Lock, error) {
	if dir == "" {
		dir = defaultDir()
	}
	return acquire(filepath.Join(dir, lockName))
}

func defaultDir() string {
	if d := os.Getenv("XDG_RUNTIME_DIR"); d != "" {
		return d
	}
	return os.TempDir()
}
