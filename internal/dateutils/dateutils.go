// Package dateutils provides common date and time operations used throughout the application.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Common date format constants used throughout the application
const (
	DateLayoutISO     = "2006-01-02"
	DateLayoutDotted  = "2006.01.02"
	DateLayoutSlashed = "2006/01/02"
	DateLayoutCompact = "20060102"
	DateLayoutFull    = "2006-01-02 15:04:05"
	DateLayoutKorean  = "2006년 1월 2일"
)

// CommonFormats is the list of formats tried, in order, when parsing
// statement dates. Korean bank exports mostly use year-first layouts.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutDotted,
	DateLayoutSlashed,
	DateLayoutCompact,
	DateLayoutFull,
	"2006.01.02 15:04:05",
	"2006/01/02 15:04:05",
	"2006.01.02 15:04",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05Z07:00",
	"2006-1-2",
	"2006.1.2",
	"2006/1/2",
	DateLayoutKorean,
	"06.01.02",
	"06-01-02",
}

var (
	whitespace     = regexp.MustCompile(`\s+`)
	trailingDotRun = regexp.MustCompile(`\.\s*$`)
	koreanDate     = regexp.MustCompile(`^(\d{4})\s*년\s*(\d{1,2})\s*월\s*(\d{1,2})\s*일`)
)

// ParseDate attempts to parse a date string using multiple common formats.
// Returns the parsed date (time of day dropped, UTC) and the detected format.
func ParseDate(dateStr string) (time.Time, string, error) {
	dateStr = CleanDateString(dateStr)
	if dateStr == "" {
		return time.Time{}, "", fmt.Errorf("unable to parse date: empty string")
	}

	if m := koreanDate.FindStringSubmatch(dateStr); m != nil {
		normalized := fmt.Sprintf("%s년 %s월 %s일", m[1], strings.TrimLeft(m[2], "0"), strings.TrimLeft(m[3], "0"))
		if t, err := time.Parse(DateLayoutKorean, normalized); err == nil {
			return TruncateToDay(t), DateLayoutKorean, nil
		}
	}

	for _, format := range CommonFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return TruncateToDay(t), format, nil
		}
	}

	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// CleanDateString removes unwanted characters and normalizes a date string
func CleanDateString(dateStr string) string {
	dateStr = strings.TrimSpace(dateStr)
	dateStr = whitespace.ReplaceAllString(dateStr, " ")
	// "2025.06.03." is common in card statements
	dateStr = trailingDotRun.ReplaceAllString(dateStr, "")
	return dateStr
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	return date.Format(DateLayoutISO)
}

// TruncateToDay drops the time of day and normalizes to UTC.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfMonth returns the first day of the month for a given date
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}

// EndOfMonth returns the last day of the month for a given date
func EndOfMonth(date time.Time) time.Time {
	return StartOfMonth(date).AddDate(0, 1, -1)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay limits day to the valid range of the given month. Non-positive
// days become 1.
func ClampDay(year int, month time.Month, day int) int {
	if day < 1 {
		return 1
	}
	if last := DaysInMonth(year, month); day > last {
		return last
	}
	return day
}
