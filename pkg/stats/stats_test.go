package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPentanomialClassification(t *testing.T) {
	cases := []struct {
		a, b Result
		want Bin
	}{
		{Loss, Loss, BinLL},
		{Loss, Draw, BinLD},
		{Draw, Loss, BinLD},
		{Loss, Win, BinWL},
		{Win, Loss, BinWL},
		{Draw, Draw, BinDD},
		{Win, Draw, BinWD},
		{Draw, Win, BinWD},
		{Win, Win, BinWW},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, classify(c.a, c.b))
	}
}

func TestScoreboardSymmetry(t *testing.T) {
	sb := NewScoreboard()
	key := PairKey{First: "A", Second: "B"}

	sb.RecordGame(key, Win)
	sb.RecordGame(key, Draw)
	sb.RecordGame(PairKey{First: "B", Second: "A"}, Win) // A loses this one, from B's POV

	ab := sb.GetStats("A", "B")
	ba := sb.GetStats("B", "A")

	assert.Equal(t, ab.Wins, ba.Losses)
	assert.Equal(t, ab.Losses, ba.Wins)
	assert.Equal(t, ab.Draws, ba.Draws)
}

func TestScoreboardPentanomialBuffering(t *testing.T) {
	sb := NewScoreboard()
	key := PairKey{First: "A", Second: "B"}

	sb.RecordPair(key, Win, 0)
	assert.False(t, sb.IsPairCompleted(key, 0))
	sb.RecordPair(key, Draw, 0)
	assert.True(t, sb.IsPairCompleted(key, 0))

	got := sb.GetStats("A", "B")
	assert.Equal(t, 1, got.WD)

	total := got.WW + got.WD + got.WL + got.DD + got.LD + got.LL
	assert.Equal(t, 1, total)
}

func TestScoreboardPairsDeterministicOrder(t *testing.T) {
	sb := NewScoreboard()
	sb.RecordGame(PairKey{First: "zeta", Second: "alpha"}, Win)
	sb.RecordGame(PairKey{First: "alpha", Second: "beta"}, Win)

	pairs := sb.Pairs()
	assert.Len(t, pairs, 2)
	assert.Equal(t, PairKey{First: "alpha", Second: "beta"}, pairs[0])
	assert.Equal(t, PairKey{First: "zeta", Second: "alpha"}, pairs[1])
}

func TestScoreboardPentanomialMirror(t *testing.T) {
	sb := NewScoreboard()
	key := PairKey{First: "A", Second: "B"}
	sb.RecordPair(key, Win, 0)
	sb.RecordPair(key, Win, 0)

	ab := sb.GetStats("A", "B")
	ba := sb.GetStats("B", "A")
	assert.Equal(t, ab.WW, ba.LL)
	assert.Equal(t, ab.WD, ba.LD)
}
