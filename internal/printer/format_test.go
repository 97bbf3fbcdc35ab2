package printer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		t      time.Time
		expAge string
	}{
		"Seconds should be shown.":        {t: now.Add(-30 * time.Second), expAge: "30 seconds ago"},
		"Minutes should be shown.":        {t: now.Add(-3 * time.Minute), expAge: "3 minutes ago"},
		"Hours should be shown.":          {t: now.Add(-2 * time.Hour), expAge: "2 hours ago"},
		"Future times should be handled.": {t: now.Add(2 * time.Hour), expAge: "2 hours from now"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expAge, formatAge(test.t, now))
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[string]struct {
		bytes    int64
		expBytes string
	}{
		"Zero should be shown in bytes.":    {bytes: 0, expBytes: "0 B"},
		"Negative sizes should be zero.":    {bytes: -1, expBytes: "0 B"},
		"Small sizes should be in bytes.":   {bytes: 512, expBytes: "512 B"},
		"Data dirs should be in mebibytes.": {bytes: 12 * 1024 * 1024, expBytes: "12 MiB"},
		"Big sizes should be in gibibytes.": {bytes: 3 * 1024 * 1024 * 1024, expBytes: "3.0 GiB"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expBytes, formatBytes(test.bytes))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, 1, 30, 11, 0, 5, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "2026-01-30 10:00:05 UTC", formatTimestamp(ts))
}
