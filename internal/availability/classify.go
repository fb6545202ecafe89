package availability

import (
	"fmt"
	"strings"
)

// Tier is the single significance level assigned to a cabin's change in one
// poll cycle. Higher tiers win: FullWeekend > LoneSaturday > NewDates >
// NoChange.
type Tier int

const (
	// TierNoChange means no new days appeared; no event is emitted.
	TierNoChange Tier = iota
	// TierNewDates means new days appeared but formed neither a new full
	// weekend nor a new Saturday.
	TierNewDates
	// TierLoneSaturday means at least one newly added Saturday that is not
	// covered by a newly completed full weekend.
	TierLoneSaturday
	// TierFullWeekend means at least one weekend whose Friday, Saturday and
	// Sunday were all newly added this cycle.
	TierFullWeekend
)

// String returns the tier name used in logs and API payloads.
func (t Tier) String() string {
	switch t {
	case TierFullWeekend:
		return "full_weekend"
	case TierLoneSaturday:
		return "lone_saturday"
	case TierNewDates:
		return "new_dates"
	default:
		return "no_change"
	}
}

// ChangeEvent is what one cabin's check hands to the notification pipeline.
// It is emitted at most once per cabin per cycle and never persisted.
type ChangeEvent struct {
	CabinID          string
	CabinName        string
	Tier             Tier
	AddedCount       int
	NewWeekends      []Weekend
	NewLoneSaturdays []Day
	Title            string
	Body             string
}

// Classify assigns exactly one tier to a cabin's newly added days.
//
// A weekend only counts as new when all three of its days were added this
// cycle; a weekend completed by a single new Saturday falls through to the
// lone-Saturday tier. Saturdays already covered by a new full weekend are
// excluded from the lone-Saturday tier so the same day is never reported
// twice. When addedDays is empty the returned event carries TierNoChange
// and must not be delivered.
func Classify(cabinID, cabinName string, addedDays []Day, allWeekends []Weekend) ChangeEvent {
	ev := ChangeEvent{
		CabinID:    cabinID,
		CabinName:  cabinName,
		AddedCount: len(addedDays),
	}
	if len(addedDays) == 0 {
		ev.Tier = TierNoChange
		return ev
	}

	added := NewDaySet(addedDays...)

	for _, w := range allWeekends {
		if added.Contains(w.Friday) && added.Contains(w.Saturday) && added.Contains(w.Sunday) {
			ev.NewWeekends = append(ev.NewWeekends, w)
		}
	}

	newSaturdays := NewDaySet()
	for _, w := range ev.NewWeekends {
		newSaturdays.Add(w.Saturday)
	}
	for _, d := range addedDays {
		if d.Weekday() == Saturday && !newSaturdays.Contains(d) {
			ev.NewLoneSaturdays = append(ev.NewLoneSaturdays, d)
		}
	}

	switch {
	case len(ev.NewWeekends) > 0:
		ev.Tier = TierFullWeekend
		ev.Title = "New full weekends!"
		ev.Body = fmt.Sprintf("%s: %s", cabinName, joinFridays(ev.NewWeekends))
	case len(ev.NewLoneSaturdays) > 0:
		ev.Tier = TierLoneSaturday
		ev.Title = "New Saturdays"
		ev.Body = fmt.Sprintf("%s: %s", cabinName, joinDays(ev.NewLoneSaturdays))
	default:
		ev.Tier = TierNewDates
		ev.Title = "New dates available"
		ev.Body = fmt.Sprintf("%s: %d new date(s) available", cabinName, len(addedDays))
	}
	return ev
}

func joinFridays(weekends []Weekend) string {
	parts := make([]string, 0, len(weekends))
	for _, w := range weekends {
		parts = append(parts, w.Friday.Time().Format("Jan 2"))
	}
	return strings.Join(parts, ", ")
}

func joinDays(days []Day) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, d.Time().Format("Jan 2"))
	}
	return strings.Join(parts, ", ")
}
