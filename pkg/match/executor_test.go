package match

import (
	"testing"

	"github.com/herohde/arbiter/pkg/clock"
	"github.com/herohde/arbiter/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReasonForMethod(t *testing.T) {
	assert.Equal(t, "Black mates", reasonForMethod(rules.WhiteWins, rules.Checkmate))
	assert.Equal(t, "White mates", reasonForMethod(rules.BlackWins, rules.Checkmate))
	assert.Equal(t, "Draw by insufficient material", reasonForMethod(rules.Draw, rules.InsufficientMaterial))
}

func TestLossForAndSideResults(t *testing.T) {
	w, b := lossFor(rules.White)
	assert.Equal(t, ResultLoss, w)
	assert.Equal(t, ResultWin, b)

	white, black := sideResults(rules.Black, ResultWin, ResultLoss)
	assert.Equal(t, ResultLoss, white)
	assert.Equal(t, ResultWin, black)
}

func TestBuildGoLimitsFixedTime(t *testing.T) {
	ourTC := clock.TimeControl{FixedMS: 100}
	theirTC := clock.TimeControl{TimeMS: 5000}
	our, err := clock.NewState(ourTC)
	require.NoError(t, err)
	their, err := clock.NewState(theirTC)
	require.NoError(t, err)

	limits := buildGoLimits(our, their, rules.White)
	assert.Equal(t, int64(100), limits.FixedMS)
	assert.False(t, limits.HasWhiteClock)
	assert.False(t, limits.HasBlackClock)
}

func TestBuildGoLimitsTimedClocks(t *testing.T) {
	ourTC := clock.TimeControl{TimeMS: 5000, IncMS: 100, MovesToGo: 40}
	theirTC := clock.TimeControl{TimeMS: 6000}
	our, err := clock.NewState(ourTC)
	require.NoError(t, err)
	their, err := clock.NewState(theirTC)
	require.NoError(t, err)

	limits := buildGoLimits(our, their, rules.White)
	assert.True(t, limits.HasWhiteClock)
	assert.Equal(t, int64(5000), limits.WhiteTimeMS)
	assert.Equal(t, int64(100), limits.WhiteIncMS)
	assert.Equal(t, 40, limits.MovesToGo)
	assert.True(t, limits.HasBlackClock)
	assert.Equal(t, int64(6000), limits.BlackTimeMS)
}

func TestBuildGoLimitsHonorsMoverColor(t *testing.T) {
	// Black to move: mover's own remaining time must still be reported as
	// btime, not wtime -- wtime/btime name a board color, not "the mover".
	moverTC := clock.TimeControl{TimeMS: 5000, IncMS: 100}
	otherTC := clock.TimeControl{TimeMS: 6000}
	mover, err := clock.NewState(moverTC)
	require.NoError(t, err)
	other, err := clock.NewState(otherTC)
	require.NoError(t, err)

	limits := buildGoLimits(mover, other, rules.Black)
	assert.True(t, limits.HasBlackClock)
	assert.Equal(t, int64(5000), limits.BlackTimeMS)
	assert.Equal(t, int64(100), limits.BlackIncMS)
	assert.True(t, limits.HasWhiteClock)
	assert.Equal(t, int64(6000), limits.WhiteTimeMS)
}

func TestBuildGoLimitsNodesAndPliesTakePriority(t *testing.T) {
	ourTC := clock.TimeControl{TimeMS: 5000, NodesLimit: 1_000_000}
	theirTC := clock.TimeControl{TimeMS: 5000}
	our, err := clock.NewState(ourTC)
	require.NoError(t, err)
	their, err := clock.NewState(theirTC)
	require.NoError(t, err)

	limits := buildGoLimits(our, their, rules.White)
	assert.Equal(t, int64(1_000_000), limits.Nodes)
	assert.False(t, limits.HasWhiteClock)

	ourTC = clock.TimeControl{TimeMS: 5000, PliesLimit: 12}
	our, err = clock.NewState(ourTC)
	require.NoError(t, err)

	limits = buildGoLimits(our, their, rules.White)
	assert.Equal(t, 12, limits.Plies)
	assert.False(t, limits.HasWhiteClock)
}

func TestForcedCheckmateScenario(t *testing.T) {
	// Fool's mate: the classic forced checkmate from spec's seeded scenario.
	g, err := rules.NewGame("")
	require.NoError(t, err)
	for _, mv := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		require.NoError(t, g.MoveUCI(mv))
	}
	outcome, method := g.Done()
	assert.Equal(t, rules.BlackWins, outcome)
	assert.Equal(t, rules.Checkmate, method)
	assert.Equal(t, "White mates", reasonForMethod(outcome, method))
}
