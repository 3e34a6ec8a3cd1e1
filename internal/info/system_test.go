package info

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectHostFacts(t *testing.T) {
	t.Parallel()

	facts := collectHostFacts()

	assert.Equal(t, runtime.GOOS, facts.platform)
	assert.Equal(t, runtime.Version(), facts.runtimeVersion)
	assert.NotEmpty(t, facts.platformVersion)
	assert.NotEmpty(t, facts.architecture)
	assert.GreaterOrEqual(t, cpuCount(), 1)
}
