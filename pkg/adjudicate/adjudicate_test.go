package adjudicate

import (
	"testing"

	"github.com/herohde/arbiter/pkg/engineproto"
	"github.com/herohde/arbiter/pkg/rules"
	"github.com/stretchr/testify/assert"
)

func TestDrawTrackerWindow(t *testing.T) {
	tr := NewDrawTracker(DrawConfig{Enabled: true, MoveNumber: 1, MoveCount: 3, ScoreCP: 5})
	tr.Update(engineproto.Score{Type: engineproto.ScoreCP, Value: 2})
	tr.Update(engineproto.Score{Type: engineproto.ScoreCP, Value: -3})
	assert.False(t, tr.Adjudicatable(5))
	tr.Update(engineproto.Score{Type: engineproto.ScoreCP, Value: 1})
	assert.True(t, tr.Adjudicatable(5))
}

func TestDrawTrackerResetsOnOutOfRange(t *testing.T) {
	tr := NewDrawTracker(DrawConfig{Enabled: true, MoveNumber: 1, MoveCount: 2, ScoreCP: 5})
	tr.Update(engineproto.Score{Type: engineproto.ScoreCP, Value: 2})
	tr.Update(engineproto.Score{Type: engineproto.ScoreCP, Value: 100})
	assert.False(t, tr.Adjudicatable(5))
}

func TestResignTrackerTwoSided(t *testing.T) {
	tr := NewResignTracker(ResignConfig{Enabled: true, MoveCount: 2, ScoreCP: 500, TwoSided: true})
	tr.Update(engineproto.Score{Type: engineproto.ScoreCP, Value: -600}, rules.White)
	tr.Update(engineproto.Score{Type: engineproto.ScoreCP, Value: -600}, rules.White)
	assert.False(t, tr.Resignable()) // only white side confirmed so far
	tr.Update(engineproto.Score{Type: engineproto.ScoreCP, Value: -600}, rules.Black)
	tr.Update(engineproto.Score{Type: engineproto.ScoreCP, Value: -600}, rules.Black)
	assert.True(t, tr.Resignable())
}

func TestMaxMovesTracker(t *testing.T) {
	tr := NewMaxMovesTracker(MaxMovesConfig{Enabled: true, Plies: 3})
	tr.Update()
	tr.Update()
	assert.False(t, tr.MaxMovesReached())
	tr.Update()
	assert.True(t, tr.MaxMovesReached())
}

func TestAdjudicatorPriorityOrder(t *testing.T) {
	a := New(
		DrawConfig{Enabled: true, MoveNumber: 0, MoveCount: 1, ScoreCP: 100},
		ResignConfig{Enabled: true, MoveCount: 1, ScoreCP: 50},
		MaxMovesConfig{Enabled: true, Plies: 1},
		TablebaseConfig{},
		nil,
	)
	score := engineproto.Score{Type: engineproto.ScoreCP, Value: -60}
	a.Update(&score, rules.White)

	res, ok := a.Adjudicate("fen", rules.Black, 5)
	assert.True(t, ok)
	assert.Equal(t, ResultLoss, res.Us)
	assert.Equal(t, ResultWin, res.Them)
}
