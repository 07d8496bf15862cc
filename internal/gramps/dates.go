package gramps

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date carries the Gramps dateval quadruple [day, month, year, false].
// Zero day and month express a year-only date.
type Date struct {
	Dateval []any `json:"dateval"`
}

// NewDate builds a Gramps date value. Month and day may be zero for
// partial dates.
func NewDate(year, month, day int) *Date {
	return &Date{Dateval: []any{day, month, year, false}}
}

// date layouts accepted from obituary text, most common first
var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"01/02/2006",
	"2 January 2006",
}

var bareYear = regexp.MustCompile(`^\d{4}$`)

// ParseDate converts a textual date into a Gramps date value. A bare
// four-digit year yields a year-only date.
func ParseDate(value string) (*Date, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return NewDate(parsed.Year(), int(parsed.Month()), parsed.Day()), true
		}
	}
	if bareYear.MatchString(value) {
		year, err := strconv.Atoi(value)
		if err != nil || year == 0 {
			return nil, false
		}
		return NewDate(year, 0, 0), true
	}
	return nil, false
}
