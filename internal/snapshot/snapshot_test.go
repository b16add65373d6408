package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/herohde/arbiter/internal/config"
	"github.com/herohde/arbiter/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.json")

	tournament := config.Tournament{
		Concurrency: 2,
		Games:       2,
		Engines: []config.Engine{
			{Name: "alpha", Cmd: "alpha"},
			{Name: "beta", Cmd: "beta"},
		},
	}

	board := stats.NewScoreboard()
	key := stats.PairKey{First: "alpha", Second: "beta"}
	board.RecordGame(key, stats.Win)
	board.RecordGame(key, stats.Draw)

	err := Save(path, tournament, 2, board, []stats.PairKey{key})
	require.NoError(t, err)

	snap, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.CompletedGames)
	assert.Equal(t, tournament.Engines, snap.Tournament.Engines)

	restored := Restore(snap)
	s := restored.GetStats("alpha", "beta")
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 1, s.Draws)
}
