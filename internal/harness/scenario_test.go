package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenarioDefaultsUser(t *testing.T) {
	path := writeScenario(t, `
name: minimal
steps:
  - op: checkout
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "alice", s.User)
}

func TestLoadScenarioRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "steps:\n  - op: checkout\n",
			wantErr: "name is required",
		},
		{
			name:    "no steps",
			content: "name: empty\n",
			wantErr: "at least one step",
		},
		{
			name:    "unknown op",
			content: "name: bad\nsteps:\n  - op: teleport\n",
			wantErr: `unknown step op "teleport"`,
		},
		{
			name:    "outcome with status and error",
			content: "name: bad\nsteps:\n  - op: checkout\ncheckout:\n  - status: SUCCESS\n    error: boom\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "outcome with invalid status",
			content: "name: bad\nsteps:\n  - op: checkout\ncheckout:\n  - status: MAYBE\n",
			wantErr: `invalid status "MAYBE"`,
		},
		{
			name:    "empty outcome",
			content: "name: bad\nsteps:\n  - op: checkout\ncheckout:\n  - {}\n",
			wantErr: "one of status or error is required",
		},
		{
			name:    "not yaml",
			content: "\t{nope",
			wantErr: "parse scenario",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scenario")
}
