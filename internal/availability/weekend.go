package availability

// Weekend is a contiguous Friday–Sunday run of available days. It is always
// derived from a DaySet and never stored on its own.
type Weekend struct {
	Friday   Day
	Saturday Day
	Sunday   Day
}

// WeekendAt builds the Weekend anchored at the given Friday.
func WeekendAt(friday Day) Weekend {
	return Weekend{
		Friday:   friday,
		Saturday: friday.AddDays(1),
		Sunday:   friday.AddDays(2),
	}
}

// Weekends returns every full Friday–Sunday weekend contained in the set,
// ordered ascending by Friday. A set with fewer than three days cannot hold
// a weekend and short-circuits to nil.
func Weekends(days DaySet) []Weekend {
	if len(days) < 3 {
		return nil
	}

	var weekends []Weekend
	for _, d := range days.Sorted() {
		if d.Weekday() != Friday {
			continue
		}
		if days.Contains(d.AddDays(1)) && days.Contains(d.AddDays(2)) {
			weekends = append(weekends, WeekendAt(d))
		}
	}
	return weekends
}
