package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/prism-data/prism/internal/manifest"
)

// QueryRange returns the entries for an instrument whose coverage overlaps
// [start, end). Results are ordered deterministically:
// ORDER BY start_utc ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if nothing overlaps.
func (c *Catalog) QueryRange(ctx context.Context, instrument string, start, end time.Time) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, instrument, start_utc, end_utc, location
		FROM entries
		WHERE instrument = ?
		  AND start_utc < ?
		  AND end_utc > ?
		ORDER BY start_utc ASC, id COLLATE BINARY ASC
	`,
		manifest.Key(instrument),
		end.UTC().Format(time.RFC3339),
		start.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("query range: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var startUTC, endUTC string
		if err := rows.Scan(&e.ID, &e.Instrument, &startUTC, &endUTC, &e.Location); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.Start, err = time.Parse(time.RFC3339, startUTC); err != nil {
			return nil, fmt.Errorf("parse entry start: %w", err)
		}
		if e.End, err = time.Parse(time.RFC3339, endUTC); err != nil {
			return nil, fmt.Errorf("parse entry end: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// LocationsInRange returns only the locations of the entries QueryRange
// would report, in the same deterministic order. This is the surface the
// range loader consumes.
func (c *Catalog) LocationsInRange(ctx context.Context, instrument string, start, end time.Time) ([]string, error) {
	entries, err := c.QueryRange(ctx, instrument, start, end)
	if err != nil {
		return nil, err
	}
	locations := make([]string, len(entries))
	for i, e := range entries {
		locations[i] = e.Location
	}
	return locations, nil
}
