//go:build windows

package relocate

import (
	"errors"
	"strings"

	"golang.org/x/sys/windows"
)

var lockErrnos = []error{
	windows.ERROR_SHARING_VIOLATION,
	windows.ERROR_LOCK_VIOLATION,
	windows.ERROR_ACCESS_DENIED,
}

func isLockErrno(err error) bool {
	for _, errno := range lockErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

func killCommand(name string) (string, []string) {
	if !strings.HasSuffix(strings.ToLower(name), ".exe") {
		name += ".exe"
	}
	return "taskkill", []string{"/F", "/IM", name}
}
