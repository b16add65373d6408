package sprt

import (
	"math"
	"testing"

	"github.com/herohde/arbiter/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTest(t *testing.T, model Model) *Test {
	test, err := New(0.05, 0.05, 0, 5, model, true, nil)
	require.NoError(t, err)
	return test
}

func TestSPRTRejectsBadParams(t *testing.T) {
	_, err := New(0.05, 0.05, 5, 0, ModelLogistic, true, nil)
	assert.Error(t, err)

	_, err = New(0.6, 0.6, 0, 5, ModelLogistic, true, nil)
	assert.Error(t, err)

	_, err = New(0.05, 0.05, 0, 5, "bogus", true, nil)
	assert.Error(t, err)
}

func TestSPRTDisablesPentaForBayesian(t *testing.T) {
	penta := true
	_, err := New(0.05, 0.05, 0, 5, ModelBayesian, true, &penta)
	require.NoError(t, err)
	assert.False(t, penta)
}

func TestLLRFiniteAndMonotone(t *testing.T) {
	for _, model := range []Model{ModelLogistic, ModelBayesian, ModelNormalized} {
		test := newTest(t, model)
		prev := math.Inf(-1)
		for n := 10; n <= 200; n += 10 {
			s := stats.PairStats{Wins: n * 55 / 100, Draws: n * 10 / 100, Losses: n - n*55/100 - n*10/100}
			llr := test.GetLLR(s, false)
			require.False(t, math.IsNaN(llr) || math.IsInf(llr, 0), "model=%s n=%d", model, n)
			if model != ModelBayesian {
				assert.GreaterOrEqual(t, llr, prev, "model=%s n=%d", model, n)
			}
			prev = llr
		}
	}
}

func TestLLRBalancedStaysNearZero(t *testing.T) {
	test := newTest(t, ModelLogistic)
	s := stats.PairStats{Wins: 500, Draws: 0, Losses: 500}
	llr := test.GetLLR(s, false)
	assert.InDelta(t, 0, llr, 5.0)
}

func TestGetResultBoundaries(t *testing.T) {
	test := newTest(t, ModelLogistic)
	assert.Equal(t, Continue, test.GetResult(0))
	assert.Equal(t, AcceptH1, test.GetResult(test.UpperBound()))
	assert.Equal(t, AcceptH0, test.GetResult(test.LowerBound()))
}

func TestLLRPentanomial(t *testing.T) {
	test := newTest(t, ModelLogistic)
	s := stats.PairStats{WW: 40, WD: 20, WL: 5, DD: 10, LD: 15, LL: 10}
	llr := test.GetLLR(s, true)
	assert.False(t, math.IsNaN(llr))
}
