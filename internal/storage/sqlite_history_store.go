package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/solheim-lab/hyttevakt/internal/availability"
)

// SQLiteHistoryStore implements HistoryStore backed by SQLite.
type SQLiteHistoryStore struct {
	db       *sql.DB
	keepLast int
}

// NewSQLiteHistoryStore returns a new SQLiteHistoryStore retaining at most
// keepLast snapshots per cabin. If keepLast is <= 0, DefaultKeepLast is used.
func NewSQLiteHistoryStore(db *sql.DB, keepLast int) *SQLiteHistoryStore {
	if keepLast <= 0 {
		keepLast = DefaultKeepLast
	}
	return &SQLiteHistoryStore{db: db, keepLast: keepLast}
}

// Latest returns the most recent snapshot for the cabin, or nil when the
// cabin has no history yet.
func (s *SQLiteHistoryStore) Latest(ctx context.Context, cabinID string) (*availability.Snapshot, error) {
	var (
		observedAt time.Time
		daysJSON   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT observed_at, days
		FROM snapshots
		WHERE cabin_id = ?
		ORDER BY id DESC
		LIMIT 1`, cabinID).Scan(&observedAt, &daysJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest snapshot for cabin %q: %w", cabinID, err)
	}

	days, err := decodeDays(daysJSON)
	if err != nil {
		return nil, fmt.Errorf("decoding latest snapshot for cabin %q: %w", cabinID, err)
	}

	return &availability.Snapshot{
		CabinID:    cabinID,
		ObservedAt: observedAt,
		Days:       days,
	}, nil
}

// Append inserts the snapshot and trims records beyond the retention bound
// in a single transaction, so a concurrent Latest never observes the trim
// half-applied.
func (s *SQLiteHistoryStore) Append(ctx context.Context, snapshot availability.Snapshot) error {
	daysJSON, err := encodeDays(snapshot.Days)
	if err != nil {
		return fmt.Errorf("encoding snapshot days: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot append: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (cabin_id, observed_at, days)
		VALUES (?, ?, ?)`,
		snapshot.CabinID, snapshot.ObservedAt.UTC(), daysJSON,
	); err != nil {
		rollback(tx, "snapshot insert")
		return fmt.Errorf("inserting snapshot for cabin %q: %w", snapshot.CabinID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM snapshots
		WHERE cabin_id = ?1
		  AND id NOT IN (
			SELECT id FROM snapshots
			WHERE cabin_id = ?1
			ORDER BY id DESC
			LIMIT ?2
		  )`, snapshot.CabinID, s.keepLast,
	); err != nil {
		rollback(tx, "snapshot retention")
		return fmt.Errorf("trimming history for cabin %q: %w", snapshot.CabinID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot append: %w", err)
	}
	return nil
}

// History returns up to limit records for the cabin, newest first.
func (s *SQLiteHistoryStore) History(ctx context.Context, cabinID string, limit int) ([]HistoryRecord, error) {
	if limit <= 0 {
		limit = s.keepLast
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, observed_at, days
		FROM snapshots
		WHERE cabin_id = ?
		ORDER BY id DESC
		LIMIT ?`, cabinID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history for cabin %q: %w", cabinID, err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			err = fmt.Errorf("closing rows: %w", cerr)
		}
	}()

	var records []HistoryRecord
	for rows.Next() {
		r := HistoryRecord{CabinID: cabinID}
		var daysJSON string
		if err := rows.Scan(&r.Sequence, &r.ObservedAt, &daysJSON); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		if err := json.Unmarshal([]byte(daysJSON), &r.Days); err != nil {
			return nil, fmt.Errorf("decoding history row %d: %w", r.Sequence, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history rows: %w", err)
	}
	return records, nil
}

// ClearAll deletes every snapshot for every cabin.
func (s *SQLiteHistoryStore) ClearAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM snapshots"); err != nil {
		return fmt.Errorf("clearing snapshot history: %w", err)
	}
	return nil
}

// encodeDays serializes a DaySet as a sorted JSON array of YYYY-MM-DD strings.
func encodeDays(days availability.DaySet) (string, error) {
	strs := make([]string, 0, len(days))
	for _, d := range days.Sorted() {
		strs = append(strs, d.String())
	}
	b, err := json.Marshal(strs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeDays parses a stored JSON day array back into a DaySet. Days that no
// longer parse are skipped, mirroring the normalizer's tolerance.
func decodeDays(daysJSON string) (availability.DaySet, error) {
	var strs []string
	if err := json.Unmarshal([]byte(daysJSON), &strs); err != nil {
		return nil, err
	}
	days := make(availability.DaySet, len(strs))
	for _, s := range strs {
		d, err := availability.ParseDay(s)
		if err != nil {
			continue
		}
		days.Add(d)
	}
	return days, nil
}

func rollback(tx *sql.Tx, op string) {
	if err := tx.Rollback(); err != nil {
		log.Printf("failed to rollback %s: %v", op, err)
	}
}
