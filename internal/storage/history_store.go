// Package storage provides SQLite-backed persistence for availability
// snapshots and the notification delivery log.
package storage

import (
	"context"
	"time"

	"github.com/solheim-lab/hyttevakt/internal/availability"
)

// DefaultKeepLast is how many snapshots are retained per cabin when no
// explicit bound is configured.
const DefaultKeepLast = 30

// HistoryRecord is one persisted snapshot together with its monotonic
// sequence number.
type HistoryRecord struct {
	Sequence   int64     `json:"sequence"`
	CabinID    string    `json:"cabin_id"`
	ObservedAt time.Time `json:"observed_at"`
	Days       []string  `json:"days"`
}

// HistoryStore is the append-only per-cabin snapshot log.
//
// Latest returns (nil, nil) when a cabin has no prior history; a non-nil
// error always means the store itself failed, never "nothing stored yet".
type HistoryStore interface {
	// Latest returns the most recent snapshot for the cabin, or nil without
	// an error when the cabin has never been observed.
	Latest(ctx context.Context, cabinID string) (*availability.Snapshot, error)

	// Append inserts a new snapshot and, in the same transaction, deletes
	// the oldest records beyond the retention bound for that cabin.
	Append(ctx context.Context, snapshot availability.Snapshot) error

	// History returns up to limit records for the cabin, newest first.
	History(ctx context.Context, cabinID string, limit int) ([]HistoryRecord, error)

	// ClearAll deletes every record for every cabin. The next Append for any
	// cabin behaves as a first observation.
	ClearAll(ctx context.Context) error
}
