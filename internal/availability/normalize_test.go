package availability_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solheim-lab/hyttevakt/internal/availability"
)

func TestNormalize(t *testing.T) {
	t.Run("keeps only days with availability", func(t *testing.T) {
		days := availability.Normalize([]availability.Record{
			{Date: "2025-12-05", Available: 2},
			{Date: "2025-12-06", Available: 0},
			{Date: "2025-12-07", Available: 1},
		})
		assert.True(t, days.Contains(availability.NewDay(2025, time.December, 5)))
		assert.False(t, days.Contains(availability.NewDay(2025, time.December, 6)))
		assert.True(t, days.Contains(availability.NewDay(2025, time.December, 7)))
	})

	t.Run("any product with availability marks the day", func(t *testing.T) {
		// The feed reports one record per product; a sold-out dorm does not
		// hide an open private room on the same day.
		days := availability.Normalize([]availability.Record{
			{Date: "2025-12-05", Available: 0},
			{Date: "2025-12-05", Available: 3},
			{Date: "2025-12-05", Available: 0},
		})
		require.Len(t, days, 1)
		assert.True(t, days.Contains(availability.NewDay(2025, time.December, 5)))
	})

	t.Run("malformed dates are dropped not fatal", func(t *testing.T) {
		days := availability.Normalize([]availability.Record{
			{Date: "garbled", Available: 5},
			{Date: "2025-12-05", Available: 1},
		})
		require.Len(t, days, 1)
		assert.True(t, days.Contains(availability.NewDay(2025, time.December, 5)))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, availability.Normalize(nil))
	})
}
