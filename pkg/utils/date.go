package utils

import (
	"time"
)

// TimeNowUTC returns the current time in UTC.
func TimeNowUTC() time.Time {
	return time.Now().UTC()
}

// SplitEpoch returns the UTC date (YYYY-MM-DD) and time (HH:MM) of an epoch-seconds timestamp.
func SplitEpoch(epoch int64) (string, string) {
	t := time.Unix(epoch, 0).UTC()
	return t.Format("2006-01-02"), t.Format("15:04")
}

// FormatCycleTimestamp renders t the way cycle summaries are logged, e.g. "2024-03-01 12:30:00 UTC".
func FormatCycleTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05") + " UTC"
}

// FormatISOTimestamp renders t as RFC 3339 with milliseconds in UTC.
func FormatISOTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
