package info

import (
	"runtime"
)

// hostFacts are the host properties that never change for the life of
// the process.
type hostFacts struct {
	platform        string
	platformVersion string
	architecture    string
	runtimeVersion  string
}

func collectHostFacts() hostFacts {
	version, arch := platformDetails()
	return hostFacts{
		platform:        runtime.GOOS,
		platformVersion: version,
		architecture:    arch,
		runtimeVersion:  runtime.Version(),
	}
}

func cpuCount() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 1
}
