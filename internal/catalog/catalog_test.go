package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func utc(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	c1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, c1.Close())

	c2, err := Open(path)
	require.NoError(t, err)
	defer c2.Close()

	n, err := c2.CountEntries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestWriteEntry(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	id, err := c.WriteEntry(ctx, "BIR",
		utc(t, "2011-06-10T10:30:00Z"), utc(t, "2011-06-10T10:45:00Z"), "bir_1.yaml")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	n, err := c.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWriteEntry_IdempotentOnLocation(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()
	start := utc(t, "2011-06-10T10:30:00Z")
	end := utc(t, "2011-06-10T10:45:00Z")

	_, err := c.WriteEntry(ctx, "bir", start, end, "bir_1.yaml")
	require.NoError(t, err)

	// Same instrument and location, including via a non-canonical
	// spelling of the key, is silently ignored.
	id, err := c.WriteEntry(ctx, " BIR ", start, end, "bir_1.yaml")
	require.NoError(t, err)
	assert.Empty(t, id)

	n, err := c.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWriteEntry_RejectsEmptyInterval(t *testing.T) {
	c := openTestCatalog(t)
	ts := utc(t, "2011-06-10T10:30:00Z")

	_, err := c.WriteEntry(context.Background(), "bir", ts, ts, "bir_1.yaml")
	assert.Error(t, err)
}

func TestQueryRange(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	write := func(start, end, loc string) {
		t.Helper()
		_, err := c.WriteEntry(ctx, "bir", utc(t, start), utc(t, end), loc)
		require.NoError(t, err)
	}
	// Inserted out of chronological order on purpose.
	write("2011-06-10T11:00:00Z", "2011-06-10T12:00:00Z", "late.yaml")
	write("2011-06-10T10:00:00Z", "2011-06-10T11:00:00Z", "early.yaml")
	write("2011-06-10T13:00:00Z", "2011-06-10T14:00:00Z", "outside.yaml")

	entries, err := c.QueryRange(ctx, "BIR", utc(t, "2011-06-10T10:30:00Z"), utc(t, "2011-06-10T11:30:00Z"))
	require.NoError(t, err)

	require.Len(t, entries, 2, "only overlapping coverage is returned")
	assert.Equal(t, "early.yaml", entries[0].Location, "results ordered by coverage start")
	assert.Equal(t, "late.yaml", entries[1].Location)
	assert.Equal(t, "bir", entries[0].Instrument)
}

func TestQueryRange_EmptyIsNotNil(t *testing.T) {
	c := openTestCatalog(t)

	entries, err := c.QueryRange(context.Background(), "bir",
		utc(t, "2011-06-10T10:00:00Z"), utc(t, "2011-06-10T11:00:00Z"))
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestLocationsInRange(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	_, err := c.WriteEntry(ctx, "bir",
		utc(t, "2011-06-10T10:00:00Z"), utc(t, "2011-06-10T11:00:00Z"), "a.yaml")
	require.NoError(t, err)
	_, err = c.WriteEntry(ctx, "bir",
		utc(t, "2011-06-10T11:00:00Z"), utc(t, "2011-06-10T12:00:00Z"), "b.yaml")
	require.NoError(t, err)

	locations, err := c.LocationsInRange(ctx, "bir",
		utc(t, "2011-06-10T10:00:00Z"), utc(t, "2011-06-10T12:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, locations)
}
