// ABOUTME: Partial-date birthday handling between device and wire formats
// ABOUTME: Device birthdays use a 0-based month and may lack a year; the wire uses ISO YYYY-MM-DD
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultBirthdayYear is written to the wire when the device record has no
// birth year. Legacy behavior: the backend cannot represent an unknown year,
// so this sentinel stands in. Keep the YearKnown flag authoritative locally.
const DefaultBirthdayYear = 2000

// Birthday is a device-native partial date. Month is 0-based (January == 0)
// to match the address-book APIs this was built against. YearKnown is false
// when the device record carries no birth year.
type Birthday struct {
	Year      int
	Month     int // 0-based
	Day       int
	YearKnown bool
}

// ISO renders the birthday as zero-padded YYYY-MM-DD for the backend,
// substituting DefaultBirthdayYear when the year is unknown.
func (b *Birthday) ISO() string {
	if b == nil {
		return ""
	}
	year := b.Year
	if !b.YearKnown {
		year = DefaultBirthdayYear
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, b.Month+1, b.Day)
}

// BirthdayFromISO converts a backend YYYY-MM-DD string back to the device
// partial-date form. The month is shifted back to 0-based; a missing or
// unparseable month/day falls back to 1 (January / the 1st) rather than
// failing, matching how the original client tolerated malformed dates.
// An unparseable year leaves YearKnown false. Empty input yields nil.
func BirthdayFromISO(s string) *Birthday {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	parts := strings.SplitN(s, "-", 3)
	b := &Birthday{Month: 0, Day: 1}

	if y, err := strconv.Atoi(parts[0]); err == nil && y > 0 {
		b.Year = y
		b.YearKnown = true
	}
	if len(parts) > 1 {
		if m, err := strconv.Atoi(parts[1]); err == nil && m >= 1 && m <= 12 {
			b.Month = m - 1
		}
	}
	if len(parts) > 2 {
		if d, err := strconv.Atoi(parts[2]); err == nil && d >= 1 && d <= 31 {
			b.Day = d
		}
	}

	return b
}
