package pairing

import (
	"testing"

	"github.com/herohde/arbiter/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func engines(names ...string) []config.Engine {
	var es []config.Engine
	for _, n := range names {
		es = append(es, config.Engine{Name: n})
	}
	return es
}

func TestGeneratorCompleteness(t *testing.T) {
	for _, tc := range []struct {
		n, rounds, games int
	}{
		{2, 3, 2}, {3, 2, 1}, {4, 1, 2}, {5, 4, 2},
	} {
		names := make([]string, tc.n)
		for i := range names {
			names[i] = string(rune('A' + i))
		}
		g := New(engines(names...), tc.rounds, tc.games, false, false)

		want := tc.n * (tc.n - 1) / 2 * tc.rounds * tc.games
		require.Equal(t, want, g.Total())

		count := 0
		seenPairs := map[[2]string]int{}
		for {
			p, ok := g.Next()
			if !ok {
				break
			}
			count++
			key := [2]string{p.White.Name, p.Black.Name}
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			seenPairs[key]++
		}
		assert.Equal(t, want, count)
		for _, c := range seenPairs {
			assert.Equal(t, tc.rounds*tc.games, c)
		}
	}
}

func TestGeneratorColorAlternation(t *testing.T) {
	g := New(engines("A", "B"), 1, 2, false, false)
	p0, _ := g.Next()
	p1, _ := g.Next()
	assert.Equal(t, "A", p0.White.Name)
	assert.Equal(t, "B", p1.White.Name)
	assert.Equal(t, p0.OpeningID, p1.OpeningID)
}

func TestGeneratorNoSwap(t *testing.T) {
	g := New(engines("A", "B"), 1, 2, true, false)
	p0, _ := g.Next()
	p1, _ := g.Next()
	assert.Equal(t, "A", p0.White.Name)
	assert.Equal(t, "A", p1.White.Name)
}

func TestGeneratorReverse(t *testing.T) {
	g := New(engines("A", "B"), 1, 1, true, true)
	p0, _ := g.Next()
	assert.Equal(t, "B", p0.White.Name)
}
