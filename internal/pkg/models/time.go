package models

import (
	"time"
)

// Now returns the current time in UTC
func Now() time.Time {
	return time.Now().UTC()
}

// UnixMilli converts epoch milliseconds to a UTC time
func UnixMilli(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
