//go:build !windows

package relocate

import (
	"errors"

	"golang.org/x/sys/unix"
)

var lockErrnos = []error{unix.EBUSY, unix.EACCES, unix.EPERM, unix.ETXTBSY}

func isLockErrno(err error) bool {
	for _, errno := range lockErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

func killCommand(name string) (string, []string) {
	return "pkill", []string{"-x", name}
}
