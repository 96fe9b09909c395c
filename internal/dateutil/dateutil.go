// Package dateutil turns user-friendly date format strings into date stamps
// suitable for embedding in output filenames.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length to prevent abuse.
const MaxDateFormatLength = 30

// DefaultStampFormat is the filename date stamp used when none is configured.
const DefaultStampFormat = "YYYYMMDD"

// dateTokens maps user-friendly tokens to Go time format components.
// Ordered by length descending for greedy matching.
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"hh", "15"},
	{"mm", "04"},
	{"ss", "05"},
}

// StampPresets provides named shortcuts for filename-safe date stamps.
var StampPresets = map[string]string{
	"compact": "YYYYMMDD",
	"iso":     "YYYY-MM-DD",
	"month":   "YYYYMM",
	"time":    "YYYYMMDD-hhmmss",
}

// ParseDateFormat converts a format string to Go's time layout.
// Tokens: YYYY, YY, MMM, MM, DD, hh, mm, ss.
// Text inside brackets is kept literally: [v]YYYY gives "v2025".
// Any other character is preserved as a literal.
func ParseDateFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var layout strings.Builder
	layout.Grow(len(format) + 4)

	rest := format
	for rest != "" {
		if rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, len(format)-len(rest))
			}
			layout.WriteString(rest[1:end])
			rest = rest[end+1:]
			continue
		}

		token, goFmt := matchToken(rest)
		if token == "" {
			layout.WriteByte(rest[0])
			rest = rest[1:]
			continue
		}
		layout.WriteString(goFmt)
		rest = rest[len(token):]
	}

	return layout.String(), nil
}

func matchToken(s string) (token, goFmt string) {
	for _, t := range dateTokens {
		if strings.HasPrefix(s, t.token) {
			return t.token, t.goFmt
		}
	}
	return "", ""
}

// ValidateStampFormat checks that a format (or preset name) yields a stamp
// that can be embedded in a single path element.
func ValidateStampFormat(format string) error {
	if preset, ok := StampPresets[strings.ToLower(format)]; ok {
		format = preset
	}
	layout, err := ParseDateFormat(format)
	if err != nil {
		return err
	}
	if strings.ContainsAny(layout, "/\\:\x00") {
		return fmt.Errorf("%w: %q would produce a path separator", ErrInvalidDateFormat, format)
	}
	return nil
}

// Stamp formats t with the given format or preset name.
// An empty format falls back to DefaultStampFormat.
func Stamp(format string, t time.Time) (string, error) {
	if format == "" {
		format = DefaultStampFormat
	}
	if err := ValidateStampFormat(format); err != nil {
		return "", err
	}
	if preset, ok := StampPresets[strings.ToLower(format)]; ok {
		format = preset
	}
	layout, err := ParseDateFormat(format)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}
