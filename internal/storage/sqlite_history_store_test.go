package storage_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solheim-lab/hyttevakt/internal/availability"
	"github.com/solheim-lab/hyttevakt/internal/storage"
)

func newTestDB(t *testing.T) *storage.SQLiteHistoryStore {
	t.Helper()
	db, fresh, err := storage.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	require.True(t, fresh)
	t.Cleanup(func() { _ = db.Close() })
	return storage.NewSQLiteHistoryStore(db, 30)
}

func snapshotWithDays(cabinID string, days ...availability.Day) availability.Snapshot {
	return availability.Snapshot{
		CabinID:    cabinID,
		ObservedAt: time.Now().UTC(),
		Days:       availability.NewDaySet(days...),
	}
}

func TestSQLiteHistoryStore(t *testing.T) {
	ctx := context.Background()
	fri := availability.NewDay(2025, time.December, 5)

	t.Run("latest on empty store is nil without error", func(t *testing.T) {
		store := newTestDB(t)
		snap, err := store.Latest(ctx, "101297")
		require.NoError(t, err)
		assert.Nil(t, snap)
	})

	t.Run("append then latest roundtrips the day set", func(t *testing.T) {
		store := newTestDB(t)
		require.NoError(t, store.Append(ctx, snapshotWithDays("101297", fri, fri.AddDays(1))))

		snap, err := store.Latest(ctx, "101297")
		require.NoError(t, err)
		require.NotNil(t, snap)
		assert.Equal(t, "101297", snap.CabinID)
		assert.True(t, snap.Days.Contains(fri))
		assert.True(t, snap.Days.Contains(fri.AddDays(1)))
		assert.Len(t, snap.Days, 2)
	})

	t.Run("latest returns the most recent append", func(t *testing.T) {
		store := newTestDB(t)
		require.NoError(t, store.Append(ctx, snapshotWithDays("101297", fri)))
		require.NoError(t, store.Append(ctx, snapshotWithDays("101297", fri.AddDays(7))))

		snap, err := store.Latest(ctx, "101297")
		require.NoError(t, err)
		require.NotNil(t, snap)
		assert.False(t, snap.Days.Contains(fri))
		assert.True(t, snap.Days.Contains(fri.AddDays(7)))
	})

	t.Run("cabins do not share history", func(t *testing.T) {
		store := newTestDB(t)
		require.NoError(t, store.Append(ctx, snapshotWithDays("101297", fri)))

		snap, err := store.Latest(ctx, "102001")
		require.NoError(t, err)
		assert.Nil(t, snap)
	})

	t.Run("retention keeps the newest thirty records", func(t *testing.T) {
		store := newTestDB(t)
		for i := 0; i < 31; i++ {
			require.NoError(t, store.Append(ctx, snapshotWithDays("101297", fri.AddDays(i))))
		}

		records, err := store.History(ctx, "101297", 100)
		require.NoError(t, err)
		assert.Len(t, records, 30)

		// Latest must be the 31st (most recent) append.
		snap, err := store.Latest(ctx, "101297")
		require.NoError(t, err)
		require.NotNil(t, snap)
		assert.True(t, snap.Days.Contains(fri.AddDays(30)))

		// The oldest record standing is the 2nd append.
		oldest := records[len(records)-1]
		assert.Equal(t, []string{fri.AddDays(1).String()}, oldest.Days)
	})

	t.Run("retention is per cabin", func(t *testing.T) {
		store := newTestDB(t)
		for i := 0; i < 31; i++ {
			require.NoError(t, store.Append(ctx, snapshotWithDays("101297", fri.AddDays(i))))
		}
		require.NoError(t, store.Append(ctx, snapshotWithDays("102001", fri)))

		records, err := store.History(ctx, "102001", 100)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("history is newest first with monotonic sequence", func(t *testing.T) {
		store := newTestDB(t)
		for i := 0; i < 3; i++ {
			require.NoError(t, store.Append(ctx, snapshotWithDays("101297", fri.AddDays(i))))
		}

		records, err := store.History(ctx, "101297", 10)
		require.NoError(t, err)
		require.Len(t, records, 3)
		for i := 1; i < len(records); i++ {
			assert.Greater(t, records[i-1].Sequence, records[i].Sequence)
		}
	})

	t.Run("clear all resets every cabin", func(t *testing.T) {
		store := newTestDB(t)
		for _, id := range []string{"101297", "102001"} {
			require.NoError(t, store.Append(ctx, snapshotWithDays(id, fri)))
		}
		require.NoError(t, store.ClearAll(ctx))

		for _, id := range []string{"101297", "102001"} {
			snap, err := store.Latest(ctx, id)
			require.NoError(t, err)
			assert.Nil(t, snap, fmt.Sprintf("cabin %s should have no history", id))
		}
	})
}
