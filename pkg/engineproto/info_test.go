package engineproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInfoLine(t *testing.T) {
	info, ok := ParseInfoLine("info depth 12 seldepth 18 nodes 123456 nps 500000 hashfull 321 tbhits 0 score cp 34 pv e2e4 e7e5 g1f3")
	assert.True(t, ok)
	assert.Equal(t, 12, info.Depth)
	assert.Equal(t, 18, info.SelDepth)
	assert.Equal(t, int64(123456), info.Nodes)
	assert.Equal(t, int64(500000), info.NPS)
	assert.Equal(t, 321, info.HashFull)
	assert.True(t, info.HasScore)
	assert.Equal(t, ScoreCP, info.Score.Type)
	assert.Equal(t, 34, info.Score.Value)
	assert.Equal(t, []string{"e2e4", "e7e5", "g1f3"}, info.PV)
}

func TestParseInfoLineMate(t *testing.T) {
	info, ok := ParseInfoLine("info depth 5 score mate 3 pv h5f7")
	assert.True(t, ok)
	assert.Equal(t, ScoreMate, info.Score.Type)
	assert.Equal(t, 3, info.Score.Value)
}

func TestFormatScoreCP(t *testing.T) {
	assert.Equal(t, "+0.34", FormatScore(Score{Type: ScoreCP, Value: 34}))
	assert.Equal(t, "-1.50", FormatScore(Score{Type: ScoreCP, Value: -150}))
}

func TestFormatScoreMate(t *testing.T) {
	assert.Equal(t, "+M5", FormatScore(Score{Type: ScoreMate, Value: 3}))
	assert.Equal(t, "-M6", FormatScore(Score{Type: ScoreMate, Value: -3}))
}

func TestParseOptionLineSpin(t *testing.T) {
	d, ok := ParseOptionLine("option name Hash type spin default 16 min 1 max 1024")
	assert.True(t, ok)
	assert.Equal(t, "Hash", d.Name)
	assert.Equal(t, OptionSpin, d.Kind)
	assert.Equal(t, "16", d.Default)
	assert.Equal(t, 1, d.Min)
	assert.Equal(t, 1024, d.Max)
	assert.NoError(t, d.Validate("512"))
	assert.Error(t, d.Validate("2048"))
}

func TestParseOptionLineCombo(t *testing.T) {
	d, ok := ParseOptionLine("option name Style type combo default Normal var Solid var Normal var Risky")
	assert.True(t, ok)
	assert.Equal(t, OptionCombo, d.Kind)
	assert.Equal(t, []string{"Solid", "Normal", "Risky"}, d.Vars)
	assert.NoError(t, d.Validate("Risky"))
	assert.Error(t, d.Validate("Unknown"))
}
