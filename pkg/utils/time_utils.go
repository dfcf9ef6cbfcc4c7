package utils

import "time"

// NowUnixSeconds is the epoch value stored in created_at / timestamp columns.
func NowUnixSeconds() int64 { return time.Now().Unix() }

// FormatUnix renders an epoch in seconds as RFC3339 UTC, or "" for t<=0.
func FormatUnix(t int64) string {
	if t <= 0 {
		return ""
	}
	return time.Unix(t, 0).UTC().Format(time.RFC3339)
}
