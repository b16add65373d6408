// Package report formats the rating/LOS/LLR quantities printed at interval
// and tournament-end, supplementing spec.md's SPRT Engine with the
// human-facing conversions fastchess prints alongside every decision.
package report

import "math"

const ln10 = 2.302585092994046

// LogisticElo converts a win-rate percentage (0,1) into an Elo difference
// under the logistic model.
func LogisticElo(percent float64) float64 {
	return -400 * math.Log10(1/percent-1)
}

// NormalizedEloWDL converts a mean score and its standard deviation into a
// normalized Elo under the trinomial (WDL) model.
func NormalizedEloWDL(percent, stdev float64) float64 {
	return (percent - 0.5) / stdev * (800.0 / ln10)
}

// NormalizedEloPenta is NormalizedEloWDL's pentanomial-statistics variant,
// which divides by an extra sqrt(2) because paired games halve the
// effective sample variance.
func NormalizedEloPenta(percent, stdev float64) float64 {
	return (percent - 0.5) / (math.Sqrt(2) * stdev) * (800.0 / ln10)
}

// the 97.5th percentile of the standard normal, used for a 95% CI.
const z975 = 1.959963984540054

// ConfidenceInterval95 returns the +/- half-width of a 95% confidence
// interval on a mean given its standard deviation and sample size.
func ConfidenceInterval95(stdev float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return z975 * stdev / math.Sqrt(float64(n))
}

// LOS (likelihood of superiority) is the probability that the true mean
// exceeds 0.5, assuming a normal approximation to the sampling distribution.
func LOS(mean, stdev float64) float64 {
	return 0.5 * (1 - math.Erf(-(mean-0.5)/(math.Sqrt2*stdev)))
}
