//go:build !windows

package manifest

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile blocks until exclusive lock is acquired.
func lockFile(f *os.File) error {
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX)
		if err != unix.EINTR {
			return err
		}
	}
}

func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
