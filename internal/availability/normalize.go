package availability

import "time"

// Record is one raw row from the booking calendar feed: a date string and
// the number of units still bookable for one product on that date. The same
// calendar day may appear in several records when a cabin offers multiple
// products.
type Record struct {
	Date      string
	Available int
}

// Snapshot is the full set of available days observed for one cabin at one
// poll. It is immutable once built.
type Snapshot struct {
	CabinID    string
	ObservedAt time.Time
	Days       DaySet
}

// Normalize collapses raw feed records into the set of days where at least
// one product has availability. Duplicate days are merged, and records with
// unparseable dates are dropped rather than failing the whole cabin.
func Normalize(records []Record) DaySet {
	days := make(DaySet, len(records))
	for _, r := range records {
		if r.Available <= 0 {
			continue
		}
		d, err := ParseDay(r.Date)
		if err != nil {
			continue
		}
		days.Add(d)
	}
	return days
}
