// Package pairing produces the ordered, thread-safe stream of game pairings
// for a round-robin tournament shape.
package pairing

import (
	"sync"

	"github.com/herohde/arbiter/internal/config"
)

// Pairing is one game to be played.
type Pairing struct {
	RoundID   int
	GameID    int
	White     config.Engine
	Black     config.Engine
	OpeningID int
}

// Generator lazily yields pairings for every unordered engine pair, across
// rounds and (optionally) both games of each round-pair, sharing an opening
// per round so the two paired games can be scored pentanomially.
type Generator struct {
	mu       sync.Mutex
	engines  []config.Engine
	rounds   int
	games    int
	noswap   bool
	reverse  bool

	pairIdx  int // index into the unordered-pair enumeration
	round    int // current round within the current pair
	game     int // current game within the current round-pair (0 or 1)
	gameID   int // running game id across the whole tournament

	pairs [][2]int // precomputed unordered pair index list
}

// New builds a Generator over engines for the given tournament shape.
// games must be 1 or 2.
func New(engines []config.Engine, rounds, games int, noswap, reverse bool) *Generator {
	n := len(engines)
	var pairs [][2]int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, [2]int{i, j})
		}
	}
	return &Generator{
		engines: engines,
		rounds:  rounds,
		games:   games,
		noswap:  noswap,
		reverse: reverse,
		pairs:   pairs,
	}
}

// Total returns n*(n-1)/2 * rounds * games, the full pairing count.
func (g *Generator) Total() int {
	return len(g.pairs) * g.rounds * g.games
}

// Next returns the next pairing, or ok=false once the generator is
// exhausted. Safe for concurrent use; callers poll it directly, no external
// mutex needed.
func (g *Generator) Next() (Pairing, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pairIdx >= len(g.pairs) {
		return Pairing{}, false
	}

	pair := g.pairs[g.pairIdx]
	round := g.round
	game := g.game
	gameID := g.gameID

	first := g.engines[pair[0]]
	second := g.engines[pair[1]]

	white, black := first, second
	// Color alternates between the two games of a round-pair unless noswap.
	if game%2 == 1 && !g.noswap {
		white, black = second, first
	}
	if g.reverse {
		white, black = black, white
	}

	p := Pairing{
		RoundID:   round,
		GameID:    gameID,
		White:     white,
		Black:     black,
		OpeningID: round,
	}

	g.gameID++
	g.game++
	if g.game >= g.games {
		g.game = 0
		g.round++
		if g.round >= g.rounds {
			g.round = 0
			g.pairIdx++
		}
	}

	return p, true
}
