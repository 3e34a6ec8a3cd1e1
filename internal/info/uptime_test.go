package info

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatUptime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		secs int64
		want string
	}{
		{0, "0 hours, 0 minutes"},
		{59, "0 hours, 0 minutes"},
		{60, "0 hours, 1 minutes"},
		{3599, "0 hours, 59 minutes"},
		{3600, "1 hours, 0 minutes"},
		{3661, "1 hours, 1 minutes"},
		{90061, "25 hours, 1 minutes"},
		{-5, "0 hours, 0 minutes"},
	}

	for _, tt := range tests {
		t.Run(strconv.FormatInt(tt.secs, 10), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatUptime(tt.secs))
		})
	}
}

func TestUptime(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(0), Uptime(start, start))
	assert.Equal(t, int64(1), Uptime(start, start.Add(1999*time.Millisecond)), "floors partial seconds")
	assert.Equal(t, int64(3661), Uptime(start, start.Add(3661*time.Second)))
	assert.Equal(t, int64(0), Uptime(start, start.Add(-time.Minute)), "clock step backwards clamps to zero")
}
