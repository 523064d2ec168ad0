package utils

import (
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used on the wire (YYYY-MM-DD),
// matching what HTML date inputs submit.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO calendar date into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// FormatDateTR renders t the way Turkish locales print dates (DD.MM.YYYY).
func FormatDateTR(t time.Time) string { return t.Format("02.01.2006") }
