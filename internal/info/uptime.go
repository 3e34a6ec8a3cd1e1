package info

import (
	"fmt"
	"time"
)

// Uptime returns the whole seconds elapsed between start and now. A clock
// that stepped backwards yields 0.
func Uptime(start, now time.Time) int64 {
	secs := int64(now.Sub(start) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}

// FormatUptime renders seconds as "<H> hours, <M> minutes". Leftover
// seconds are dropped.
func FormatUptime(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	hours := secs / 3600
	minutes := (secs % 3600) / 60
	return fmt.Sprintf("%d hours, %d minutes", hours, minutes)
}
