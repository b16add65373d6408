package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
concurrency: 4
rounds: 2
games: 2
report_penta: true
sprt:
  enabled: true
  elo0: 0
  elo1: 5
  alpha: 0.05
  beta: 0.05
  model: logistic
engines:
  - name: alpha
    cmd: /usr/bin/alpha
    tc: "40/60"
    nodes: 1000000
    plies: 20
  - name: beta
    cmd: /usr/bin/beta
    tc: "5+0.1"
`

func TestLoadValidDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tournament.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	tournament, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, tournament.Concurrency)
	assert.Len(t, tournament.Engines, 2)
	assert.True(t, tournament.SPRT.Enabled)
	assert.Equal(t, int64(1000000), tournament.Engines[0].NodesLimit)
	assert.Equal(t, 20, tournament.Engines[0].PliesLimit)
}

func TestValidateRejectsDuplicateEngineNames(t *testing.T) {
	tournament := Tournament{
		Concurrency: 1,
		Games:       1,
		Engines: []Engine{
			{Name: "dup", Cmd: "a"},
			{Name: "dup", Cmd: "b"},
		},
	}
	err := tournament.Validate()
	require.Error(t, err)
}

func TestValidateRejectsTooFewEngines(t *testing.T) {
	tournament := Tournament{Concurrency: 1, Games: 1, Engines: []Engine{{Name: "solo", Cmd: "a"}}}
	require.Error(t, tournament.Validate())
}

func TestEngineValidateRejectsUnknownProto(t *testing.T) {
	e := Engine{Name: "x", Cmd: "y", Proto: "xboard"}
	require.Error(t, e.Validate())
}
