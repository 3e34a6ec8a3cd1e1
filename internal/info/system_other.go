//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package info

import "runtime"

func platformDetails() (version, arch string) {
	return runtime.GOOS + "/" + runtime.GOARCH, runtime.GOARCH
}
