package models

import (
	"fmt"
	"time"

	"fleetops/fleet-ledger/internal/dateutils"
)

// Month is a calendar month, written YYYY-MM.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Start returns the first day of the month at midnight UTC.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the month at midnight UTC.
func (m Month) End() time.Time {
	return dateutils.EndOfMonth(m.Start())
}

// Day returns the given day of the month, clamped into the month.
// Days below 1 are treated as 1.
func (m Month) Day(day int) time.Time {
	return time.Date(m.Year, m.Month, dateutils.ClampDay(m.Year, m.Month, day), 0, 0, 0, 0, time.UTC)
}
