package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeControlRoundTrip(t *testing.T) {
	cases := []struct {
		in   string
		st   float64
		want TimeControl
	}{
		{"10/9.64", 0, TimeControl{MovesToGo: 10, TimeMS: 9640}},
		{"40/1:9.65+0.1", 0, TimeControl{MovesToGo: 40, TimeMS: 69650, IncMS: 100}},
		{"5+0.1", 0, TimeControl{TimeMS: 5000, IncMS: 100}},
		{"inf", 0, TimeControl{Infinite: true}},
		{"5.0", 5, TimeControl{FixedMS: 5000}},
		{"40/60", 0, TimeControl{MovesToGo: 40, TimeMS: 60000}},
	}

	for _, c := range cases {
		got, err := ParseTimeControl(c.in, c.st, 0, 0, 0)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseTimeControlRejectsNegativeMargin(t *testing.T) {
	_, err := ParseTimeControl("5+0.1", 0, -1, 0, 0)
	assert.Error(t, err)
}

func TestParseTimeControlCarriesNodesAndPliesLimits(t *testing.T) {
	got, err := ParseTimeControl("40/60", 0, 0, 1_000_000, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), got.NodesLimit)
	assert.Equal(t, 20, got.PliesLimit)

	got, err = ParseTimeControl("", 5, 0, 1_000_000, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), got.NodesLimit)
	assert.Equal(t, 20, got.PliesLimit)
}

func TestStateUpdateLossOnTime(t *testing.T) {
	tc := TimeControl{TimeMS: 1, MarginMS: 0}
	st, err := NewState(tc)
	require.NoError(t, err)
	assert.False(t, st.Update(5))
}

func TestStateUpdateMovesToGoReset(t *testing.T) {
	tc := TimeControl{MovesToGo: 1, TimeMS: 1000, IncMS: 0}
	st, err := NewState(tc)
	require.NoError(t, err)
	ok := st.Update(500)
	require.True(t, ok)
	assert.Equal(t, int64(1500), st.RemainingMS())
	assert.Equal(t, 1, st.MovesToGo())
}

func TestStateUpdateFixedTimeNeverLoses(t *testing.T) {
	tc := TimeControl{FixedMS: 100}
	st, err := NewState(tc)
	require.NoError(t, err)
	assert.True(t, st.Update(100000))
}
