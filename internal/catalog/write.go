package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prism-data/prism/internal/manifest"
)

// Entry describes one indexed series file.
type Entry struct {
	ID         string    `json:"id"`
	Instrument string    `json:"instrument"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Location   string    `json:"location"`
}

// WriteEntry indexes a series file for an instrument and time coverage.
// The instrument key is canonicalized before storage. Returns the entry id.
//
// Uses ON CONFLICT DO NOTHING for idempotency - re-indexing the same
// (instrument, location) pair is silently ignored and returns the empty id.
//
// Entry ids are UUIDv7 so insertion order is recoverable from the id alone.
func (c *Catalog) WriteEntry(ctx context.Context, instrument string, start, end time.Time, location string) (string, error) {
	if !end.After(start) {
		return "", fmt.Errorf("write entry: end %s is not after start %s",
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	id := uuid.Must(uuid.NewV7()).String()
	res, err := c.db.ExecContext(ctx, `
		INSERT INTO entries (id, instrument, start_utc, end_utc, location)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(instrument, location) DO NOTHING
	`,
		id,
		manifest.Key(instrument),
		start.UTC().Format(time.RFC3339),
		end.UTC().Format(time.RFC3339),
		location,
	)
	if err != nil {
		return "", fmt.Errorf("write entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("write entry: %w", err)
	}
	if n == 0 {
		return "", nil // already indexed
	}
	return id, nil
}
