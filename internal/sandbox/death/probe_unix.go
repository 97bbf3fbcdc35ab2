//go:build !windows

package death

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/slok/dbsandbox/internal/conventions"
	"github.com/slok/dbsandbox/internal/log"
	"github.com/slok/dbsandbox/internal/utils/wait"
)

// unixProbe waits for the socket lock file to be released and then for the
// InnoDB advisory write lock on the system tablespace to go away.
type unixProbe struct {
	sleep  wait.SleepFunc
	logger log.Logger
}

func newPlatformProbe(cfg ProbeConfig) Probe {
	return unixProbe{sleep: cfg.Sleep, logger: cfg.Logger}
}

func (p unixProbe) WaitUntilDead(ctx context.Context, dataDir string) error {
	lockPath := filepath.Join(dataDir, conventions.SocketLockFile)
	for socketLockHeld(lockPath) {
		p.logger.Debugf("Socket lock %s still held", lockPath)
		if err := p.sleep(ctx, SocketLockPollInterval); err != nil {
			return fmt.Errorf("waiting for socket lock release: %w", err)
		}
	}

	ibdataPath := filepath.Join(dataDir, conventions.IBDataFile)
	f, err := os.OpenFile(ibdataPath, os.O_RDWR, 0)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("could not open %s: %w", ibdataPath, err)
	}
	defer f.Close()

	for {
		locked, err := writeLocked(f)
		if err != nil {
			return fmt.Errorf("could not check lock on %s: %w", ibdataPath, err)
		}
		if !locked {
			return nil
		}

		p.logger.Debugf("Data file %s still locked", ibdataPath)
		if err := p.sleep(ctx, DataLockPollInterval); err != nil {
			return fmt.Errorf("waiting for data file lock release: %w", err)
		}
	}
}

// socketLockHeld reports whether the lock file exists and the PID written
// in it belongs to a live process.
func socketLockHeld(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return false
	}

	err = unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// writeLocked tries a non-blocking write lock on the whole file. A lock held by
// another process is reported as locked, an acquired lock is released right away.
func writeLocked(f *os.File) (bool, error) {
	lk := unix.Flock_t{
		Type:   unix.F_WRLCK,
		Whence: int16(io.SeekStart),
	}

	err := unix.FcntlFlock(f.Fd(), unix.F_SETLK, &lk)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EACCES) {
			return true, nil
		}
		return false, err
	}

	lk.Type = unix.F_UNLCK
	_ = unix.FcntlFlock(f.Fd(), unix.F_SETLK, &lk)

	return false, nil
}
