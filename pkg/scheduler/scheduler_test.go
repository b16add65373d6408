package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/herohde/arbiter/internal/config"
	"github.com/herohde/arbiter/pkg/match"
	"github.com/herohde/arbiter/pkg/pairing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineCacheMissAndRestartNeverCached(t *testing.T) {
	c := NewEngineCache()
	e := config.Engine{Name: "alpha", Restart: config.RestartKeep}
	_, ok := c.get(0, e)
	assert.False(t, ok)

	// The restart==restart path never caches, regardless of what's put in.
	restart := config.Engine{Name: "beta", Restart: config.RestartRestart}
	c.put(0, restart, nil)
	_, ok = c.get(0, restart)
	assert.False(t, ok)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := &config.Tournament{Concurrency: 1, Games: 1, Engines: nil}
	_, err := New(cfg, nil)
	require.Error(t, err)
}

func TestFunnelOrdersOutOfOrderCompletions(t *testing.T) {
	cfg := &config.Tournament{
		Concurrency: 2, Games: 1,
		Engines: []config.Engine{{Name: "a", Cmd: "a"}, {Name: "b", Cmd: "b"}},
	}
	sched, err := New(cfg, nil)
	require.NoError(t, err)

	in := make(chan outcome, 3)
	out := make(chan match.MatchData, 3)

	pairFor := func(gameID int) pairing.Pairing {
		return pairing.Pairing{White: cfg.Engines[0], Black: cfg.Engines[1], GameID: gameID}
	}

	// Completions arrive out of order: 2, 0, 1.
	in <- outcome{gameID: 2, data: match.MatchData{GameID: 2}, pair: pairFor(2)}
	in <- outcome{gameID: 0, data: match.MatchData{GameID: 0}, pair: pairFor(0)}
	in <- outcome{gameID: 1, data: match.MatchData{GameID: 1}, pair: pairFor(1)}
	close(in)

	done := make(chan struct{})
	var got []int
	go func() {
		for md := range out {
			got = append(got, md.GameID)
		}
		close(done)
	}()

	sched.funnel(context.Background(), in, out, 3)
	close(out)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("funnel did not drain in time")
	}

	assert.Equal(t, []int{0, 1, 2}, got)
}
