package dealdoc

import (
	"time"

	"github.com/alnah/go-dealdoc/internal/dateutil"
)

// longDate renders "January 5, 2025".
var longDate = mustCompile(dateutil.LongFormat)

// FormatLongDate formats t as the agreement date, e.g. "January 5, 2025".
// Month names are always English.
func FormatLongDate(t time.Time) string {
	return longDate.Format(t)
}

func mustCompile(pattern string) dateutil.Format {
	f, err := dateutil.Compile(pattern)
	if err != nil {
		panic("dealdoc: invalid built-in date pattern: " + err.Error())
	}
	return f
}
