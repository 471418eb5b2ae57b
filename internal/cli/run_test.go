package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/markord/internal/scenario"
	"github.com/roach88/markord/internal/store"
)

func TestRun_Text(t *testing.T) {
	path := writeFile(t, "reused.yaml", reusedSlotScenario)

	out, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)

	assert.Contains(t, out, "Scenario: reused_slot (session cli-session-1)")
	assert.Contains(t, out, "[4] 0v1 -> order 1 (shifted 2)")
	assert.Contains(t, out, "  1: 0v1")
	assert.Contains(t, out, "✓ All expectations held")
}

func TestRun_JSON(t *testing.T) {
	path := writeFile(t, "reused.yaml", reusedSlotScenario)

	out, err := execute(NewRunCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   scenario.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Pass)
	assert.Len(t, resp.Data.Trace, 4)
	assert.Len(t, resp.Data.Digest, 64)
}

func TestRun_FailingScenario(t *testing.T) {
	path := writeFile(t, "failing.yaml", failingScenario)

	out, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Scenario failed")
}

func TestRun_MissingScenario(t *testing.T) {
	_, err := execute(NewRunCommand(&RootOptions{Format: "text"}), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRun_RequiresArgument(t *testing.T) {
	_, err := execute(NewRunCommand(&RootOptions{Format: "text"}))
	assert.Error(t, err)
}

func TestRun_PinnedSessionAlreadyJournaled(t *testing.T) {
	dbPath := journalScenario(t)
	path := writeFile(t, "reused.yaml", reusedSlotScenario)

	_, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path, "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, store.ErrSessionExists)
}
