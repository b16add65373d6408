// Package stats implements the Scoreboard: a thread-safe PairKey -> PairStats
// map tolerant of flipped lookup, plus the pentanomial pair-buffering state
// machine.
package stats

import (
	"strings"
	"sync"

	"golang.org/x/exp/slices"
)

// Result is a single game's outcome from one side's point of view.
type Result int

const (
	Loss Result = iota
	Draw
	Win
)

func (r Result) invert() Result {
	switch r {
	case Win:
		return Loss
	case Loss:
		return Win
	default:
		return Draw
	}
}

func (r Result) score() int { // in half-points, 0/1/2
	switch r {
	case Win:
		return 2
	case Draw:
		return 1
	default:
		return 0
	}
}

// PairKey identifies an unordered pair of engines by name, retaining the
// order it was first recorded in ("first"/"second") for score accounting.
type PairKey struct {
	First  string
	Second string
}

func (k PairKey) flipped() PairKey {
	return PairKey{First: k.Second, Second: k.First}
}

// Bin is one of the five (six, counting WL/DD as separate accumulators)
// pentanomial classifications for a round-pair.
type Bin int

const (
	BinLL Bin = iota
	BinLD
	BinWL
	BinDD
	BinWD
	BinWW
)

// pairBuffer is the "Empty -> Half(result,round) -> resolved" state machine:
// it remembers one game's result until its round-pair partner arrives.
type pairBuffer struct {
	round    int
	result   Result
	hasFirst bool
}

// PairStats is the pentanomial aggregate for one pair of engines, expressed
// from PairKey.First's point of view.
type PairStats struct {
	Wins, Losses, Draws int

	WW, WD, WL, DD, LD, LL int
}

func (s *PairStats) recordGame(r Result) {
	switch r {
	case Win:
		s.Wins++
	case Loss:
		s.Losses++
	case Draw:
		s.Draws++
	}
}

func (s *PairStats) recordBin(b Bin) {
	switch b {
	case BinWW:
		s.WW++
	case BinWD:
		s.WD++
	case BinWL:
		s.WL++
	case BinDD:
		s.DD++
	case BinLD:
		s.LD++
	case BinLL:
		s.LL++
	}
}

// invert mirrors a PairStats as seen from the other side of the pair:
// wins<->losses, WW<->LL, WD<->LD; WL and DD are symmetric classes.
func (s PairStats) invert() PairStats {
	return PairStats{
		Wins: s.Losses, Losses: s.Wins, Draws: s.Draws,
		WW: s.LL, LL: s.WW,
		WD: s.LD, LD: s.WD,
		WL: s.WL, DD: s.DD,
	}
}

// classify maps a pair of same-POV results to a pentanomial bin, per the sum
// table in spec §4.7: 0->LL, 1->LD, 2->WL or DD, 3->WD, 4->WW.
func classify(a, b Result) Bin {
	sum := a.score() + b.score()
	switch sum {
	case 0:
		return BinLL
	case 1:
		return BinLD
	case 2:
		if a == Draw && b == Draw {
			return BinDD
		}
		return BinWL
	case 3:
		return BinWD
	default:
		return BinWW
	}
}

// Scoreboard is the process-wide map of PairKey -> PairStats.
type Scoreboard struct {
	mu      sync.Mutex
	stats   map[PairKey]*PairStats
	buffers map[PairKey]*pairBuffer
}

func NewScoreboard() *Scoreboard {
	return &Scoreboard{
		stats:   make(map[PairKey]*PairStats),
		buffers: make(map[PairKey]*pairBuffer),
	}
}

// lookup finds the canonical (possibly flipped) entry for key, creating one
// if absent, and returns whether the caller's key was flipped relative to
// the canonical storage order.
func (b *Scoreboard) lookup(key PairKey) (*PairStats, bool) {
	if s, ok := b.stats[key]; ok {
		return s, false
	}
	if s, ok := b.stats[key.flipped()]; ok {
		return s, true
	}
	s := &PairStats{}
	b.stats[key] = s
	return s, false
}

// RecordGame increments wins/losses/draws for key from result's point of
// view (result is from key.First's perspective; it is inverted if the
// canonical storage entry is flipped relative to key).
func (b *Scoreboard) RecordGame(key PairKey, result Result) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, flipped := b.lookup(key)
	if flipped {
		result = result.invert()
	}
	s.recordGame(result)
}

// RecordPair buffers result for (key, roundID); once both games of the
// round-pair are present, classifies the pair and discards the buffer. It
// is independent of RecordGame, which records game-granularity win/loss/draw
// totals regardless of pairing.
func (b *Scoreboard) RecordPair(key PairKey, result Result, roundID int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, flipped := b.lookup(key)
	canonicalKey := key
	if flipped {
		result = result.invert()
		canonicalKey = key.flipped()
	}

	buf, ok := b.buffers[canonicalKey]
	if !ok || buf.round != roundID {
		b.buffers[canonicalKey] = &pairBuffer{round: roundID, result: result, hasFirst: true}
		return
	}

	bin := classify(buf.result, result)
	s.recordBin(bin)
	delete(b.buffers, canonicalKey)
}

// IsPairCompleted reports whether key's pair has no game of round roundID
// waiting for its partner. It is true once both games are registered, and
// also for a round none of whose games has been registered yet.
func (b *Scoreboard) IsPairCompleted(key PairKey, roundID int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, flipped := b.lookup(key)
	canonicalKey := key
	if flipped {
		canonicalKey = key.flipped()
	}
	buf, pending := b.buffers[canonicalKey]
	return !pending || buf.round != roundID
}

// Pairs returns every tracked PairKey in a stable, deterministic order
// (first by First, then by Second), used by snapshot autosave and final
// reporting so repeated runs over the same data produce identical output.
func (b *Scoreboard) Pairs() []PairKey {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys := make([]PairKey, 0, len(b.stats))
	for k := range b.stats {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, c PairKey) int {
		if a.First != c.First {
			return strings.Compare(a.First, c.First)
		}
		return strings.Compare(a.Second, c.Second)
	})
	return keys
}

// GetStats returns the PairStats for (a, b) regardless of argument order.
func (b *Scoreboard) GetStats(a, bName string) PairStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := PairKey{First: a, Second: bName}
	if s, ok := b.stats[key]; ok {
		return *s
	}
	if s, ok := b.stats[key.flipped()]; ok {
		return s.invert()
	}
	return PairStats{}
}
