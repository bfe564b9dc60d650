package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunsCmd_List(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute([]string{"runs", "--identity", "default", "-n", "5"}, "")

	require.NoError(t, err)
	assert.Equal(t, "default", ts.runs.lastIdentity)
	assert.Equal(t, 5, ts.runs.lastLimit)
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "+12")
}

func TestRunsCmd_Empty(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.runs.runs = nil

	out, err := execute([]string{"runs"}, "")

	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
}

func TestRunsShowCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute([]string{"runs", "show", "run-1"}, "")

	require.NoError(t, err)
	assert.Contains(t, out, "Run:      run-1")
	assert.Contains(t, out, "Duration: 2s")
	assert.Contains(t, out, "Added:    12 chunks")
	assert.Contains(t, out, "amp.pdf (12 chunks)")
	assert.Contains(t, out, "bad.pdf: malformed PDF")
}

func TestRunsShowCmd_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute([]string{"runs", "show", "nope"}, "")

	assert.EqualError(t, err, `no run with id "nope"`)
}

func TestRunsCmd_NoLedger(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(Services{})

	_, err := execute([]string{"runs"}, "")

	assert.EqualError(t, err, "run ledger not configured")
}
