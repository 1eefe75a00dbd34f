package cli

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prism-data/prism/internal/dispatch"
)

func TestRoutesCommand_Table(t *testing.T) {
	out, err := runCommand(t, "routes")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "routes", []byte(out))
}

func TestRoutesCommand_JSON(t *testing.T) {
	out, err := runCommand(t, "--format", "json", "routes")
	require.NoError(t, err)

	var resp struct {
		Status string               `json:"status"`
		Data   []dispatch.EntryInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 7)

	assert.Equal(t, "fromFile", resp.Data[0].Handler)
	assert.Equal(t, "isFile", resp.Data[0].Condition)
	assert.Equal(t, "fromRange", resp.Data[6].Handler)
	assert.Empty(t, resp.Data[6].Condition)
}

func TestRoutesCommand_RejectsArgs(t *testing.T) {
	_, err := runCommand(t, "routes", "extra")
	require.Error(t, err)
}
