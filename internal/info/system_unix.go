//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package info

import (
	"runtime"
	"strings"

	"golang.org/x/sys/unix"
)

// platformDetails reads the kernel release and machine name via uname.
func platformDetails() (version, arch string) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return fallbackPlatformVersion(), runtime.GOARCH
	}

	sysname := unix.ByteSliceToString(u.Sysname[:])
	release := unix.ByteSliceToString(u.Release[:])
	machine := unix.ByteSliceToString(u.Machine[:])

	version = strings.TrimSpace(strings.Join([]string{sysname, release}, " "))
	if version == "" {
		version = fallbackPlatformVersion()
	}
	if machine == "" {
		machine = runtime.GOARCH
	}
	return version, machine
}

func fallbackPlatformVersion() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}
