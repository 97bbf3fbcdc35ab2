package printer

import (
	"time"

	"github.com/dustin/go-humanize"
)

const timestampLayout = "2006-01-02 15:04:05 UTC"

func formatTimestamp(t time.Time) string { return t.UTC().Format(timestampLayout) }

// formatAge is relative to now, e.g: "3 minutes ago".
func formatAge(t time.Time, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

func formatBytes(b int64) string {
	if b < 0 {
		b = 0
	}
	return humanize.IBytes(uint64(b))
}
