// Package dateutil turns user-friendly date patterns into date formatters.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for date handling.
var (
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrInvalidDate       = errors.New("invalid date")
)

// MaxDateFormatLength limits pattern length.
const MaxDateFormatLength = 50

// LongFormat is the agreement date style, e.g. "January 5, 2025".
const LongFormat = "MMMM D, YYYY"

// ISOLayout is the Go layout accepted by ParseDay.
const ISOLayout = "2006-01-02"

// dateTokens maps pattern tokens to Go layout components, longest first so
// matching is greedy.
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Presets are named shortcuts for common patterns.
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     LongFormat,
}

// Format renders times with a compiled pattern. Literal text is copied
// verbatim; only token segments go through time.Format.
type Format struct {
	segments []segment
}

type segment struct {
	text   string
	layout bool // text is a Go layout component
}

// Format renders t.
func (f Format) Format(t time.Time) string {
	var b strings.Builder
	for _, s := range f.segments {
		if s.layout {
			b.WriteString(t.Format(s.text))
		} else {
			b.WriteString(s.text)
		}
	}
	return b.String()
}

// Compile parses a pattern.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D. Text in brackets is literal:
// "[Dated] MMMM D" keeps "Dated" intact. Other characters pass through.
func Compile(pattern string) (Format, error) {
	if pattern == "" {
		return Format{}, fmt.Errorf("%w: pattern cannot be empty", ErrInvalidDateFormat)
	}
	if len(pattern) > MaxDateFormatLength {
		return Format{}, fmt.Errorf("%w: pattern exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var f Format
	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			f.segments = append(f.segments, segment{text: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(pattern); {
		if pattern[i] == '[' {
			end := strings.IndexByte(pattern[i+1:], ']')
			if end == -1 {
				return Format{}, fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			literal.WriteString(pattern[i+1 : i+1+end])
			i += end + 2
			continue
		}

		if goFmt, n := matchToken(pattern[i:]); n > 0 {
			flush()
			f.segments = append(f.segments, segment{text: goFmt, layout: true})
			i += n
			continue
		}

		literal.WriteByte(pattern[i])
		i++
	}
	flush()

	return f, nil
}

// matchToken returns the Go layout for the token at the start of s and its
// length, or 0 if s does not start with a token.
func matchToken(s string) (string, int) {
	for _, t := range dateTokens {
		if strings.HasPrefix(s, t.token) {
			return t.goFmt, len(t.token)
		}
	}
	return "", 0
}

// Resolve compiles a preset name (case-insensitive) or a pattern. An empty
// value selects LongFormat.
func Resolve(presetOrPattern string) (Format, error) {
	if presetOrPattern == "" {
		presetOrPattern = LongFormat
	}
	if preset, ok := Presets[strings.ToLower(presetOrPattern)]; ok {
		presetOrPattern = preset
	}
	return Compile(presetOrPattern)
}

// ParseDay parses a YYYY-MM-DD calendar day in loc.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(ISOLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidDate, value)
	}
	return t, nil
}
