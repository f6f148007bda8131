package vote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{-5 * time.Second, "00:00"},
		{30 * time.Second, "00:30"},
		{29*time.Second + 900*time.Millisecond, "00:29"},
		{999 * time.Millisecond, "00:00"},
		{61*time.Second + 500*time.Millisecond, "01:01"},
		{90 * time.Second, "01:30"},
		{10 * time.Minute, "10:00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCountdown(tt.in), "duration %s", tt.in)
	}
}
