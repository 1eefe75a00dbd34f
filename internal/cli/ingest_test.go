package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestCommand(t *testing.T) {
	dir := t.TempDir()
	early := writeSeriesFile(t, dir, "bir_1030.yaml", birDoc)
	late := writeSeriesFile(t, dir, "bir_1045.yaml", birLaterDoc)
	dbPath := filepath.Join(dir, "catalog.db")

	out, err := runCommand(t, "ingest", "--db", dbPath, early, late)
	require.NoError(t, err)
	assert.Contains(t, out, "indexed 2 file(s), skipped 0")

	// Re-ingesting the same files is a no-op.
	out, err = runCommand(t, "ingest", "--db", dbPath, early, late)
	require.NoError(t, err)
	assert.Contains(t, out, "indexed 0 file(s), skipped 2")
}

func TestIngestCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	path := writeSeriesFile(t, dir, "bir_1030.yaml", birDoc)
	dbPath := filepath.Join(dir, "catalog.db")

	out, err := runCommand(t, "--format", "json", "ingest", "--db", dbPath, path)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   IngestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Indexed)
	assert.Equal(t, 0, resp.Data.Skipped)
}

func TestIngestCommand_RequiresDB(t *testing.T) {
	_, err := runCommand(t, "ingest", "some.yaml")
	require.Error(t, err)
}

func TestIngestCommand_BadSeries(t *testing.T) {
	dir := t.TempDir()
	path := writeSeriesFile(t, dir, "broken.yaml", "instrument: bir\n")
	dbPath := filepath.Join(dir, "catalog.db")

	_, err := runCommand(t, "ingest", "--db", dbPath, path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestIngestCommand_MakesRangeLoadable(t *testing.T) {
	dir := t.TempDir()
	path := writeSeriesFile(t, dir, "bir_1030.yaml", birDoc)
	dbPath := filepath.Join(dir, "catalog.db")

	_, err := runCommand(t, "ingest", "--db", dbPath, path)
	require.NoError(t, err)

	out, err := runCommand(t, "load",
		"--db", dbPath,
		"--instrument", "BIR",
		"--from", "2011-06-10T10:30:00Z",
		"--to", "2011-06-10T10:45:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "bir")
	assert.Contains(t, out, "2 sample(s)")
}
