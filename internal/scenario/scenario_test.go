package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/markord/internal/rollback"
)

func writeScenario(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	sc, err := Load("testdata/scenarios/out_of_order.yaml")
	require.NoError(t, err)

	assert.Equal(t, "out_of_order", sc.Name)
	assert.Equal(t, "test-session-out-of-order", sc.SessionToken)
	require.Len(t, sc.Steps, 3)
	assert.Equal(t, []uint64{5, 3, 8, 1}, sc.Steps[0].Register)
	assert.True(t, sc.Steps[1].Flush)
	assert.Equal(t, map[string]int{"5": 2}, sc.Steps[2].Expect.Order)
	require.NotNil(t, sc.Steps[2].Expect.Len)
	assert.Equal(t, 4, *sc.Steps[2].Expect.Len)
}

func TestLoad_CUE(t *testing.T) {
	sc, err := Load("testdata/scenarios/shift_on_smaller.cue")
	require.NoError(t, err)

	assert.Equal(t, "shift_on_smaller", sc.Name)
	require.Len(t, sc.Steps, 6)
	assert.Equal(t, []uint64{10}, sc.Steps[0].Register)
	assert.Equal(t, map[string]int{"5": 0, "10": 1}, sc.Steps[5].Expect.Order)
	assert.Equal(t, []string{"5", "10"}, sc.Steps[5].Expect.Sorted)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, "typo.yaml", `
name: typo
steps:
  - registr: [1]
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestLoad_InvalidCUE(t *testing.T) {
	path := writeScenario(t, "bad.cue", `name: "x"
steps: [{register: [1]}]
name: "y"
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "CUE")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		sc      Scenario
		wantErr string
	}{
		{
			name:    "missing name",
			sc:      Scenario{Steps: []Step{{Flush: true}}},
			wantErr: "name is required",
		},
		{
			name:    "no steps",
			sc:      Scenario{Name: "x"},
			wantErr: "steps list is required",
		},
		{
			name:    "empty step",
			sc:      Scenario{Name: "x", Steps: []Step{{}}},
			wantErr: "no action",
		},
		{
			name:    "two actions",
			sc:      Scenario{Name: "x", Steps: []Step{{Register: []uint64{1}, Flush: true}}},
			wantErr: "multiple actions (register+flush)",
		},
		{
			name:    "expect_error without flush",
			sc:      Scenario{Name: "x", Steps: []Step{{Register: []uint64{1}, ExpectError: "boom"}}},
			wantErr: "expect_error is only valid on flush",
		},
		{
			name:    "no_rollback without spawn",
			sc:      Scenario{Name: "x", Steps: []Step{{Flush: true, NoRollback: true}}},
			wantErr: "no_rollback is only valid on spawn",
		},
		{
			name:    "bad handle",
			sc:      Scenario{Name: "x", Steps: []Step{{Despawn: []string{"abc"}}}},
			wantErr: "invalid entity handle",
		},
		{
			name:    "bad marker",
			sc:      Scenario{Name: "x", Steps: []Step{{Expect: &Expect{Sorted: []string{"-1"}}}}},
			wantErr: "invalid marker",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(&tt.sc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseMarker(t *testing.T) {
	m, err := ParseMarker("5")
	require.NoError(t, err)
	assert.Equal(t, rollback.Marker(5), m)

	m, err = ParseMarker("1v1")
	require.NoError(t, err)
	assert.Equal(t, rollback.Marker(1<<32|1), m)

	_, err = ParseMarker("1v")
	assert.Error(t, err)
}
