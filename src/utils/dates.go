package utils

import (
	"regexp"
	"time"
)

// Now returns the current time. Overridable in tests to pin the clock.
var Now = time.Now

// LastBusinessDay calculates the last business day of a given month.
// It takes the final calendar day of the month and rolls back one day if it
// falls on a Saturday, two if it falls on a Sunday. Holidays are not
// considered; this is calendar weekday logic only.
func LastBusinessDay(year int, month time.Month) time.Time {
	// Day 0 of the next month is the last day of this month.
	lastDate := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)

	switch lastDate.Weekday() {
	case time.Saturday:
		lastDate = lastDate.AddDate(0, 0, -1)
	case time.Sunday:
		lastDate = lastDate.AddDate(0, 0, -2)
	}
	return lastDate
}

// IsValidPeriod reports whether prices may be fetched for the given year and
// month. Future periods are rejected: never fetch prices for a period that
// has not yet occurred. Past years are accepted without a lower bound.
func IsValidPeriod(year int, month int) bool {
	now := Now()
	currentYear, currentMonth := now.Year(), int(now.Month())

	if month < 1 || month > 12 {
		return false
	}
	if year > currentYear {
		return false
	}
	if year == currentYear && month > currentMonth {
		return false
	}
	return true
}

// FormatDate formats a time as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatDateTimeISO formats a time as an ISO-8601 UTC timestamp.
func FormatDateTimeISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// MonthKey formats a (year, month) pair as the YYYY-MM history key.
func MonthKey(year int, month int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// ISIN: 2-letter country code, 9 alphanumerics, 1 numeric check digit.
var isinPattern = regexp.MustCompile(`\b[A-Z]{2}[A-Z0-9]{9}[0-9]\b`)

// ExtractISINs returns the distinct ISIN codes found in a string, in order of
// first appearance.
func ExtractISINs(text string) []string {
	matches := isinPattern.FindAllString(text, -1)
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
