package uiutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRelativeTo(t *testing.T) {
	now := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{-time.Hour, "just now"},
		{30 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{45 * time.Minute, "45 minutes ago"},
		{3 * time.Hour, "3 hours ago"},
		{26 * time.Hour, "1 day ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, relativeTo(now.Add(-tt.ago), now))
	}
	old := now.Add(-30 * 24 * time.Hour)
	assert.Equal(t, FormatFriendlyDateTime(old), relativeTo(old, now))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "", FormatDate(time.Time{}))
	assert.Equal(t, "Sep 1, 2025", FormatDate(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Nguyễn…", TruncateWithEllipsis("Nguyễn Văn An", 7))
	assert.Equal(t, "short", TruncateWithEllipsis("short", 10))
	assert.Equal(t, "…", TruncateWithEllipsis("abc", 1))
}
