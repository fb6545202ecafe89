package availability

// DayDiff is the result of comparing a new observation against the previous
// one for the same cabin. Both slices are sorted ascending by date.
type DayDiff struct {
	Added   []Day
	Removed []Day
}

// Diff computes the set differences between a new day set and the previous
// one. With an empty old set every new day counts as added — a cabin seen
// for the first time reports its entire availability as new.
func Diff(newDays, oldDays DaySet) DayDiff {
	var diff DayDiff
	for _, d := range newDays.Sorted() {
		if !oldDays.Contains(d) {
			diff.Added = append(diff.Added, d)
		}
	}
	for _, d := range oldDays.Sorted() {
		if !newDays.Contains(d) {
			diff.Removed = append(diff.Removed, d)
		}
	}
	return diff
}
