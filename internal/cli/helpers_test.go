package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const reusedSlotScenario = `
name: reused_slot
description: "A recycled slot registers between older markers"
session_token: cli-session-1
steps:
  - spawn: 3
  - flush: true
  - despawn: ["0v0"]
  - flush: true
  - spawn: 1
  - flush: true
  - expect:
      order: { "0v0": 0, "0v1": 1, "1v0": 2, "2v0": 3 }
`

const unpinnedScenario = `
name: unpinned
steps:
  - register: [5, 3]
  - flush: true
`

const failingScenario = `
name: failing
steps:
  - register: [2, 1]
  - flush: true
  - expect:
      sorted: ["2", "1"]
`

// writeFile writes content into a temp dir and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs cmd with args and returns stdout and the command error.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// journalScenario runs the reused-slot scenario into a fresh journal and returns its path.
func journalScenario(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	scenarioPath := writeFile(t, "reused.yaml", reusedSlotScenario)

	_, err := execute(NewRunCommand(&RootOptions{Format: "text"}), scenarioPath, "--db", dbPath)
	require.NoError(t, err)
	return dbPath
}
