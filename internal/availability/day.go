// Package availability contains the pure change-detection logic for cabin
// availability: normalizing raw booking-calendar records into day sets,
// finding bookable weekends, diffing against a previous observation, and
// classifying what changed. Nothing in this package performs I/O.
package availability

import (
	"fmt"
	"sort"
	"time"
)

// Weekday is an explicit ISO weekday (Monday=1 .. Sunday=7). It exists so
// that weekend detection never depends on a locale-specific calendar
// convention.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// String returns the short English name of the weekday.
func (w Weekday) String() string {
	names := [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	if w < Monday || w > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return names[w-1]
}

// Day is a calendar day with no time-of-day component. Days are comparable
// and usable as map keys; equality and ordering are by calendar date.
type Day struct {
	Year  int
	Month time.Month
	Date  int
}

// NewDay builds a Day from its components.
func NewDay(year int, month time.Month, date int) Day {
	return Day{Year: year, Month: month, Date: date}
}

// DayOf truncates t to day granularity in its own location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Date: d}
}

// ParseDay parses the YYYY-MM-DD prefix of s. The booking API sends full
// RFC 3339 timestamps but only the calendar date is meaningful.
func ParseDay(s string) (Day, error) {
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Day{}, fmt.Errorf("parsing day %q: %w", s, err)
	}
	return DayOf(t), nil
}

// Time returns the Day as a UTC time at midnight.
func (d Day) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Date, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the Day shifted by n calendar days.
func (d Day) AddDays(n int) Day {
	return DayOf(d.Time().AddDate(0, 0, n))
}

// Weekday returns the ISO weekday of the Day.
func (d Day) Weekday() Weekday {
	wd := d.Time().Weekday()
	if wd == time.Sunday {
		return Sunday
	}
	return Weekday(wd)
}

// Before reports whether d is earlier than other.
func (d Day) Before(other Day) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Date < other.Date
}

// String formats the Day as YYYY-MM-DD.
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Date)
}

// DaySet is a deduplicated set of calendar days.
type DaySet map[Day]struct{}

// NewDaySet builds a DaySet from the given days, collapsing duplicates.
func NewDaySet(days ...Day) DaySet {
	s := make(DaySet, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

// Add inserts d into the set.
func (s DaySet) Add(d Day) {
	s[d] = struct{}{}
}

// Contains reports whether d is in the set.
func (s DaySet) Contains(d Day) bool {
	_, ok := s[d]
	return ok
}

// Sorted returns the days of the set in ascending date order.
func (s DaySet) Sorted() []Day {
	days := make([]Day, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
