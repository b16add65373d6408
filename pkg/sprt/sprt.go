// Package sprt implements the Sequential Probability Ratio Test used to
// decide, during a tournament, whether the observed results are significant
// enough relative to a configured Elo hypothesis pair (elo0, elo1) to stop
// early. The maximum-likelihood LLR derivation follows Michel Van den
// Bergh's "Comments on Normalized Elo" and the ITP root-finder of Oliveira &
// Takahashi (2020).
package sprt

import (
	"fmt"
	"math"

	"github.com/herohde/arbiter/pkg/stats"
)

// Model selects which statistical model computes the maximum-likelihood LLR.
type Model string

const (
	ModelLogistic   Model = "logistic"
	ModelBayesian   Model = "bayesian"
	ModelNormalized Model = "normalized"
)

// Result is the three-valued SPRT decision.
type Result int

const (
	Continue Result = iota
	AcceptH0
	AcceptH1
)

// Test holds the configured SPRT parameters and decision bounds.
type Test struct {
	enabled bool
	lower   float64
	upper   float64
	elo0    float64
	elo1    float64
	model   Model
}

// New validates (elo0, elo1, alpha, beta, model) and, if reportPenta points
// at a pentanomial-reporting flag, disables it when model is bayesian (the
// bayesian model has no closed-form pentanomial draw-elo derivation). This
// mirrors the source's warn-not-error behavior; see DESIGN.md.
func New(alpha, beta, elo0, elo1 float64, model Model, enabled bool, reportPenta *bool) (*Test, error) {
	if enabled {
		if elo0 >= elo1 {
			return nil, fmt.Errorf("sprt: elo0 must be less than elo1")
		}
		if alpha <= 0 || alpha >= 1 {
			return nil, fmt.Errorf("sprt: alpha must be in (0,1)")
		}
		if beta <= 0 || beta >= 1 {
			return nil, fmt.Errorf("sprt: beta must be in (0,1)")
		}
		if alpha+beta >= 1 {
			return nil, fmt.Errorf("sprt: alpha+beta must be less than 1")
		}
		switch model {
		case ModelLogistic, ModelBayesian, ModelNormalized:
		default:
			return nil, fmt.Errorf("sprt: invalid model %q", model)
		}
	}

	if model == ModelBayesian && reportPenta != nil && *reportPenta {
		*reportPenta = false
	}

	t := &Test{enabled: enabled, model: model, elo0: elo0, elo1: elo1}
	if enabled {
		t.lower = math.Log(beta / (1 - alpha))
		t.upper = math.Log((1 - beta) / alpha)
	}
	return t, nil
}

func (t *Test) Enabled() bool       { return t.enabled }
func (t *Test) LowerBound() float64 { return t.lower }
func (t *Test) UpperBound() float64 { return t.upper }

func (t *Test) Bounds() string { return fmt.Sprintf("(%.2f, %.2f)", t.lower, t.upper) }
func (t *Test) EloRange() string { return fmt.Sprintf("[%.2f, %.2f]", t.elo0, t.elo1) }

func leloToScore(lelo float64) float64 {
	return 1 / (1 + math.Pow(10, -lelo/400))
}

func bayeseloToScore(bayeselo, drawelo float64) float64 {
	pwin := 1.0 / (1.0 + math.Pow(10.0, (-bayeselo+drawelo)/400.0))
	ploss := 1.0 / (1.0 + math.Pow(10.0, (bayeselo+drawelo)/400.0))
	pdraw := 1.0 - pwin - ploss
	return pwin + 0.5*pdraw
}

func regularize(v int) float64 {
	if v == 0 {
		return 1e-3
	}
	return float64(v)
}

// GetLLR computes the log-likelihood ratio for s, selecting trinomial
// (wins/draws/losses) or pentanomial statistics per penta.
func (t *Test) GetLLR(s stats.PairStats, penta bool) float64 {
	if !t.enabled {
		return 0
	}
	if penta {
		return t.getLLRPenta(s.WW, s.WD, s.WL, s.DD, s.LD, s.LL)
	}
	return t.getLLRTrinomial(s.Wins, s.Draws, s.Losses)
}

func (t *Test) getLLRTrinomial(win, draw, loss int) float64 {
	L := regularize(loss)
	D := regularize(draw)
	W := regularize(win)
	total := L + D + W
	probs := [3]float64{L / total, D / total, W / total}
	scores := [3]float64{0.0, 0.5, 1.0}

	if t.model == ModelNormalized {
		t0 := t.elo0 / (800.0 / math.Log(10))
		t1 := t.elo1 / (800.0 / math.Log(10))
		return getLLRNormalized(total, scores[:], probs[:], t0, t1)
	}
	if t.model == ModelBayesian {
		if win == 0 || loss == 0 {
			return 0
		}
		drawelo := 200 * math.Log10((1-probs[0])/probs[0]*(1-probs[2])/probs[2])
		score0 := bayeseloToScore(t.elo0, drawelo)
		score1 := bayeseloToScore(t.elo1, drawelo)
		return getLLRLogistic(total, scores[:], probs[:], score0, score1)
	}
	score0 := leloToScore(t.elo0)
	score1 := leloToScore(t.elo1)
	return getLLRLogistic(total, scores[:], probs[:], score0, score1)
}

func (t *Test) getLLRPenta(ww, wd, wl, dd, ld, ll int) float64 {
	LL := regularize(ll)
	LD := regularize(ld)
	WLDD := regularize(dd + wl)
	WD := regularize(wd)
	WW := regularize(ww)
	total := WW + WD + WLDD + LD + LL
	probs := [5]float64{LL / total, LD / total, WLDD / total, WD / total, WW / total}
	scores := [5]float64{0.0, 0.25, 0.5, 0.75, 1.0}

	if t.model == ModelNormalized {
		t0 := math.Sqrt(2.0) * t.elo0 / (800.0 / math.Log(10))
		t1 := math.Sqrt(2.0) * t.elo1 / (800.0 / math.Log(10))
		return getLLRNormalized(total, scores[:], probs[:], t0, t1)
	}
	score0 := leloToScore(t.elo0)
	score1 := leloToScore(t.elo1)
	return getLLRLogistic(total, scores[:], probs[:], score0, score1)
}

func mean(x, p []float64) float64 {
	var r float64
	for i := range x {
		r += x[i] * p[i]
	}
	return r
}

func meanAndVariance(x, p []float64) (mu, variance float64) {
	mu = mean(x, p)
	for i := range x {
		d := x[i] - mu
		variance += p[i] * d * d
	}
	return mu, variance
}

// itp is the Oliveira & Takahashi (2020) Interpolate-Truncate-Project
// bracketing root-finder: superlinear convergence with bisection's
// worst-case guarantee. f must be negative at a and positive at b (or vice
// versa; the call is normalized below).
func itp(f func(float64) float64, a, b, fa, fb, k1, k2, n0, epsilon float64) float64 {
	if fa > 0 {
		a, b = b, a
		fa, fb = fb, fa
	}

	nHalf := math.Ceil(math.Log2(math.Abs(b-a) / (2.0 * epsilon)))
	nMax := nHalf + n0

	for i := 0.0; math.Abs(b-a) > 2.0*epsilon; i++ {
		xHalf := (a + b) / 2.0
		r := epsilon*math.Pow(2.0, nMax-i) - (b-a)/2.0
		delta := k1 * math.Pow(b-a, k2)

		xf := (fb*a - fa*b) / (fb - fa)

		sigma := (xHalf - xf) / math.Abs(xHalf-xf)
		var xt float64
		if delta <= math.Abs(xHalf-xf) {
			xt = xf + sigma*delta
		} else {
			xt = xHalf
		}

		var xitp float64
		if math.Abs(xt-xHalf) <= r {
			xitp = xt
		} else {
			xitp = xHalf - sigma*r
		}

		fitp := f(xitp)
		switch {
		case fitp == 0:
			a, b = xitp, xitp
		case math.Signbit(fitp):
			a, fa = xitp, fitp
		default:
			b, fb = xitp, fitp
		}
	}

	return (a + b) / 2.0
}

// getLLRLogistic computes the maximum-likelihood LLR for an expectation-s
// constrained discrete distribution (proposition 1.1 of Van den Bergh).
func getLLRLogistic(total float64, scores, probs []float64, s0, s1 float64) float64 {
	const thetaEpsilon = 1e-3
	n := len(scores)

	mle := func(s float64) []float64 {
		minTheta := -1.0 / (scores[n-1] - s)
		maxTheta := -1.0 / (scores[0] - s)

		theta := itp(func(x float64) float64 {
			var result float64
			for i := 0; i < n; i++ {
				ai := scores[i]
				result += probs[i] * (ai - s) / (1.0 + x*(ai-s))
			}
			return result
		}, minTheta, maxTheta, math.Inf(1), math.Inf(-1), 0.1, 2.0, 0.99, thetaEpsilon)

		p := make([]float64, n)
		for i := 0; i < n; i++ {
			ai := scores[i]
			p[i] = probs[i] / (1 + theta*(ai-s))
		}
		return p
	}

	p0 := mle(s0)
	p1 := mle(s1)
	lpr := make([]float64, n)
	for i := 0; i < n; i++ {
		lpr[i] = math.Log(p1[i]) - math.Log(p0[i])
	}
	return total * mean(lpr, probs)
}

// getLLRNormalized computes the maximum-likelihood LLR for a t=(mu-mu_ref)/
// sigma constrained discrete distribution (section 4.1 of Van den Bergh).
func getLLRNormalized(total float64, scores, probs []float64, t0, t1 float64) float64 {
	const thetaEpsilon = 1e-7
	const mleEpsilon = 1e-4
	n := len(scores)

	mle := func(muRef, tStar float64) []float64 {
		p := make([]float64, n)
		for i := range p {
			p[i] = 1.0 / float64(n)
		}

		for iter := 0; iter < 10; iter++ {
			mu, variance := meanAndVariance(scores, p)
			sigma := math.Sqrt(variance)

			phi := make([]float64, n)
			for i := 0; i < n; i++ {
				ai := scores[i]
				z := (ai - mu) / sigma
				phi[i] = ai - muRef - 0.5*tStar*sigma*(1.0+z*z)
			}

			u, v := phi[0], phi[0]
			for _, x := range phi {
				if x < u {
					u = x
				}
				if x > v {
					v = x
				}
			}
			minTheta := -1.0 / v
			maxTheta := -1.0 / u

			theta := itp(func(x float64) float64 {
				var result float64
				for i := 0; i < n; i++ {
					result += probs[i] * phi[i] / (1.0 + x*phi[i])
				}
				return result
			}, minTheta, maxTheta, math.Inf(1), math.Inf(-1), 0.1, 2.0, 0.99, thetaEpsilon)

			maxDiff := 0.0
			for i := 0; i < n; i++ {
				newP := probs[i] / (1.0 + theta*phi[i])
				if d := math.Abs(newP - p[i]); d > maxDiff {
					maxDiff = d
				}
				p[i] = newP
			}

			if maxDiff < mleEpsilon {
				break
			}
		}

		return p
	}

	p0 := mle(0.5, t0)
	p1 := mle(0.5, t1)
	lpr := make([]float64, n)
	for i := 0; i < n; i++ {
		lpr[i] = math.Log(p1[i]) - math.Log(p0[i])
	}
	return total * mean(lpr, probs)
}

// GetResult applies the lower/upper LLR bounds to decide H0, H1 or Continue.
func (t *Test) GetResult(llr float64) Result {
	if !t.enabled {
		return Continue
	}
	if llr >= t.upper {
		return AcceptH1
	}
	if llr <= t.lower {
		return AcceptH0
	}
	return Continue
}
