// Package normalize converts the heterogeneous field shapes found in
// maintenance exports and telemetry payloads into canonical values. Every
// function here returns "no value" markers instead of errors: a field that
// fails to parse is simply absent downstream.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// dateFormats is tried in order. The order matters: an ambiguous string
// like "01/02/03" must resolve the same way on every run.
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"01/02/06",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006 15:04:05",
}

var titleCaser = cases.Title(language.AmericanEnglish)

// ParseNumber converts a free-form numeric string to a float. Thousands
// separators are stripped and whitespace trimmed. Returns nil for empty or
// unparseable input.
func ParseNumber(val string) *float64 {
	s := strings.TrimSpace(val)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// ParseDate interprets a report-date string. Known formats are tried in
// fixed priority order, then a generic RFC 3339 parse. Returns nil when
// every attempt fails.
func ParseDate(val string) *time.Time {
	s := strings.TrimSpace(val)
	if s == "" {
		return nil
	}

	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	return nil
}

// TailKey normalizes an aircraft registration for use as a map key.
// The empty result means "no identity" and must be excluded downstream.
func TailKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ContainsKeyword reports whether desc contains any of the keywords,
// case-insensitively.
func ContainsKeyword(desc string, keywords []string) bool {
	upper := strings.ToUpper(desc)
	for _, kw := range keywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// CleanItemName normalizes a maintenance item description for display:
// leading inspector sign-off markers are stripped, everything after the
// first embedded newline is dropped, and the result is title-cased.
func CleanItemName(desc string) string {
	s := desc

	upper := strings.ToUpper(s)
	if strings.HasPrefix(upper, "(RII)") {
		s = strings.TrimLeft(s[len("(RII)"):], " \t")
	} else if strings.HasPrefix(upper, "RII ") {
		s = strings.TrimLeft(s[len("RII "):], " \t")
	}

	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}

	return titleCaser.String(strings.TrimSpace(s))
}
