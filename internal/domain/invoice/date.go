package invoice

import (
	"fmt"
	"strings"
	"time"
)

// Date is a calendar day with no time-of-day or zone. The display form DD/MM/YYYY and
// the input form YYYY-MM-DD are serialisations of it.
type Date struct {
	Year  int
	Month int
	Day   int
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

// Time returns midnight of d in loc.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, loc)
}

// Display formats d as DD/MM/YYYY.
func (d Date) Display() string {
	return fmt.Sprintf("%02d/%02d/%d", d.Day, d.Month, d.Year)
}

// Input formats d as YYYY-MM-DD.
func (d Date) Input() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Before reports whether d is an earlier calendar day than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// layouts accepted by the generic parse path, tried in order.
var layouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// ParseDate parses a display date (DD/MM/YYYY) or any of the generic layouts.
// Out-of-range slash dates roll over the way a calendar constructor does, so 31/02/2024
// becomes 02/03/2024. Two-digit years in the slash form map to 19xx.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}
	if strings.Contains(s, "/") {
		return parseSlashDate(s)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), true
		}
	}
	return Date{}, false
}

func parseSlashDate(s string) (Date, bool) {
	parts := strings.Split(s, "/")
	if len(parts) < 3 {
		return Date{}, false
	}
	day, ok := parseIntPrefix(parts[0])
	if !ok {
		return Date{}, false
	}
	month, ok := parseIntPrefix(parts[1])
	if !ok {
		return Date{}, false
	}
	year, ok := parseIntPrefix(parts[2])
	if !ok {
		return Date{}, false
	}
	if year >= 0 && year <= 99 {
		year += 1900
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return DateOf(t), true
}

// parseIntPrefix reads an optionally signed run of leading digits, ignoring leading
// whitespace and anything after the digits.
func parseIntPrefix(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		if n > 1e8 {
			return 0, false
		}
		n = n*10 + int(s[digits]-'0')
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// ToDisplayDate normalises a date string to DD/MM/YYYY. A value that already has three
// slash-separated parts is returned unchanged; anything else is parsed and reformatted.
// Unparseable or empty input yields "".
func ToDisplayDate(s string) string {
	if s == "" {
		return ""
	}
	if strings.Contains(s, "/") && len(strings.Split(s, "/")) == 3 {
		return s
	}
	d, ok := ParseDate(s)
	if !ok {
		return ""
	}
	return d.Display()
}

// ToInputDate reorders DD/MM/YYYY into YYYY-MM-DD. The components are not validated,
// so 99/99/9999 becomes 9999-99-99. Input without three slash parts is returned as is.
func ToInputDate(s string) string {
	if s == "" {
		return ""
	}
	parts := strings.Split(s, "/")
	if len(parts) < 3 {
		return s
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0]
}

// FromInputDate reorders YYYY-MM-DD into DD/MM/YYYY with the same permissive policy as
// ToInputDate.
func FromInputDate(s string) string {
	if s == "" {
		return ""
	}
	parts := strings.Split(s, "-")
	if len(parts) < 3 {
		return s
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

// NormalizeDate accepts either form from a caller and returns the display form.
// Input-form values are reordered without validation; anything else goes through
// ToDisplayDate.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if isInputForm(s) {
		return FromInputDate(s)
	}
	return ToDisplayDate(s)
}

func isInputForm(s string) bool {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 4 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
		for i := 0; i < len(p); i++ {
			if p[i] < '0' || p[i] > '9' {
				return false
			}
		}
	}
	return true
}
