package dealdoc

import (
	"testing"
	"time"
)

func TestFormatLongDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC), "January 5, 2025"},
		{time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), "December 31, 2024"},
		{time.Date(1999, time.September, 10, 0, 0, 0, 0, time.UTC), "September 10, 1999"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			if got := FormatLongDate(tt.in); got != tt.want {
				t.Errorf("FormatLongDate(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
