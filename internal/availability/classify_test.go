package availability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solheim-lab/hyttevakt/internal/availability"
)

func TestClassify(t *testing.T) {
	sat := fri.AddDays(1)
	sun := fri.AddDays(2)
	mon := fri.AddDays(3)

	t.Run("full weekend when all three days are new", func(t *testing.T) {
		set := availability.NewDaySet(fri, sat, sun)
		ev := availability.Classify("101297", "Stallen",
			[]availability.Day{fri, sat, sun}, availability.Weekends(set))

		assert.Equal(t, availability.TierFullWeekend, ev.Tier)
		require.Len(t, ev.NewWeekends, 1)
		assert.Equal(t, fri, ev.NewWeekends[0].Friday)
		assert.Empty(t, ev.NewLoneSaturdays)
		assert.Equal(t, "New full weekends!", ev.Title)
		assert.Contains(t, ev.Body, "Stallen")
		assert.Contains(t, ev.Body, "Dec 5")
	})

	t.Run("saturday completing a known weekend is lone saturday", func(t *testing.T) {
		// Friday and Sunday were already known; only Saturday is new. The
		// weekend now exists in the snapshot but was not newly added, so it
		// must not fire the full-weekend tier.
		set := availability.NewDaySet(fri, sat, sun)
		ev := availability.Classify("101297", "Stallen",
			[]availability.Day{sat}, availability.Weekends(set))

		assert.Equal(t, availability.TierLoneSaturday, ev.Tier)
		assert.Empty(t, ev.NewWeekends)
		assert.Equal(t, []availability.Day{sat}, ev.NewLoneSaturdays)
		assert.Equal(t, "New Saturdays", ev.Title)
	})

	t.Run("saturday covered by a new weekend is not reported twice", func(t *testing.T) {
		sat2 := sat.AddDays(7)
		set := availability.NewDaySet(fri, sat, sun, sat2)
		ev := availability.Classify("101297", "Stallen",
			[]availability.Day{fri, sat, sun, sat2}, availability.Weekends(set))

		assert.Equal(t, availability.TierFullWeekend, ev.Tier)
		require.Len(t, ev.NewWeekends, 1)
		// The second Saturday is still a lone one, carried in the payload.
		assert.Equal(t, []availability.Day{sat2}, ev.NewLoneSaturdays)
	})

	t.Run("weekday additions are plain new dates", func(t *testing.T) {
		set := availability.NewDaySet(mon)
		ev := availability.Classify("101297", "Stallen",
			[]availability.Day{mon}, availability.Weekends(set))

		assert.Equal(t, availability.TierNewDates, ev.Tier)
		assert.Equal(t, 1, ev.AddedCount)
		assert.Equal(t, "New dates available", ev.Title)
		assert.Contains(t, ev.Body, "1 new date(s)")
	})

	t.Run("no added days is no change", func(t *testing.T) {
		set := availability.NewDaySet(fri, sat, sun)
		ev := availability.Classify("101297", "Stallen", nil, availability.Weekends(set))
		assert.Equal(t, availability.TierNoChange, ev.Tier)
		assert.Empty(t, ev.Title)
	})

	t.Run("tier names", func(t *testing.T) {
		assert.Equal(t, "full_weekend", availability.TierFullWeekend.String())
		assert.Equal(t, "lone_saturday", availability.TierLoneSaturday.String())
		assert.Equal(t, "new_dates", availability.TierNewDates.String())
		assert.Equal(t, "no_change", availability.TierNoChange.String())
	})
}
