package notifications

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
)

// DefaultLockFile is the well-known lock path shared by every processor
// entrypoint.
const DefaultLockFile = "/tmp/webhook_cli.lock"

// ErrLockHeld is returned when another live process holds the lock.
var ErrLockHeld = errors.New("another webhook processor is already running")

// FileLock is a pid-file advisory lock ensuring at most one processor runs at
// a time. A stale file left by a dead process is reclaimed.
type FileLock struct {
	path string
	pid  int
}

// AcquireLock claims the lock file for the current process. It fails with
// ErrLockHeld when the file names a pid that is still alive.
func AcquireLock(path string) (*FileLock, error) {
	if path == "" {
		path = DefaultLockFile
	}

	if raw, err := os.ReadFile(path); err == nil {
		pid, parseErr := strconv.Atoi(strings.TrimSpace(string(raw)))
		if parseErr != nil {
			log.Warn().Str("path", path).Msg("invalid lock file found, removing it")
			os.Remove(path)
		} else if processAlive(pid) {
			return nil, fmt.Errorf("%w (pid %d)", ErrLockHeld, pid)
		} else {
			log.Info().Int("pid", pid).Msg("stale lock file found, previous process is not running")
		}
	}

	lock := &FileLock{path: path, pid: os.Getpid()}
	if err := os.WriteFile(path, []byte(strconv.Itoa(lock.pid)), 0o644); err != nil {
		return nil, fmt.Errorf("write lock file: %w", err)
	}

	log.Info().Int("pid", lock.pid).Msg("lock acquired")
	return lock, nil
}

// Release removes the lock file if it still belongs to this process.
func (l *FileLock) Release() {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		log.Warn().Str("path", l.path).Msg("unreadable lock file, removing it anyway")
		os.Remove(l.path)
		return
	}
	if pid != l.pid {
		log.Warn().Int("pid", pid).Msg("lock file contains different pid, not removing")
		return
	}

	os.Remove(l.path)
	log.Info().Int("pid", l.pid).Msg("lock released")
}

// processAlive checks for a live process by sending it signal 0.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
