package report

import (
	"fmt"
	"math"

	"github.com/herohde/arbiter/pkg/sprt"
	"github.com/herohde/arbiter/pkg/stats"
)

// Reporter is driven by the Output Funnel: PrintResult after every game and
// PrintInterval every RatingInterval completed games (not just at SPRT
// decision time or tournament end).
type Reporter interface {
	PrintResult(s stats.PairStats, nameA, nameB string)
	PrintInterval(test *sprt.Test, s stats.PairStats, nameA, nameB string, penta bool)
	EndTournament()
}

// meanAndStdev computes the empirical mean score (0..1) and its standard
// deviation over the trinomial win/draw/loss counts, or the pentanomial
// bins when penta is set.
func meanAndStdev(s stats.PairStats, penta bool) (mean, stdev float64, n int) {
	if penta {
		n = s.WW + s.WD + s.WL + s.DD + s.LD + s.LL
		if n == 0 {
			return 0.5, 0, 0
		}
		vals := []float64{0, 0.25, 0.5, 0.5, 0.75, 1.0}
		counts := []int{s.LL, s.LD, s.WL, s.DD, s.WD, s.WW}
		for i, c := range counts {
			mean += vals[i] * float64(c) / float64(n)
		}
		for i, c := range counts {
			d := vals[i] - mean
			stdev += d * d * float64(c) / float64(n)
		}
		return mean, math.Sqrt(stdev), n
	}

	n = s.Wins + s.Draws + s.Losses
	if n == 0 {
		return 0.5, 0, 0
	}
	mean = (float64(s.Wins) + 0.5*float64(s.Draws)) / float64(n)
	vals := []float64{1.0, 0.5, 0.0}
	counts := []int{s.Wins, s.Draws, s.Losses}
	for i, c := range counts {
		d := vals[i] - mean
		stdev += d * d * float64(c) / float64(n)
	}
	return mean, math.Sqrt(stdev), n
}

// DefaultReporter writes plain-text lines; cmd/arbiter wires it to stdout.
type DefaultReporter struct {
	Printf func(format string, args ...any)
}

func (r DefaultReporter) printf(format string, args ...any) {
	if r.Printf != nil {
		r.Printf(format, args...)
		return
	}
	fmt.Printf(format, args...)
}

func (r DefaultReporter) PrintResult(s stats.PairStats, nameA, nameB string) {
	total := s.Wins + s.Draws + s.Losses
	r.printf("Score of %s vs %s: %d - %d - %d  [%.3f] %d\n",
		nameA, nameB, s.Wins, s.Losses, s.Draws, scoreFraction(s), total)
}

func scoreFraction(s stats.PairStats) float64 {
	total := s.Wins + s.Draws + s.Losses
	if total == 0 {
		return 0.5
	}
	return (float64(s.Wins) + 0.5*float64(s.Draws)) / float64(total)
}

func (r DefaultReporter) PrintInterval(test *sprt.Test, s stats.PairStats, nameA, nameB string, penta bool) {
	mean, stdev, n := meanAndStdev(s, penta)
	var elo float64
	if penta {
		elo = NormalizedEloPenta(mean, stdev)
	} else {
		elo = NormalizedEloWDL(mean, stdev)
	}
	ci := ConfidenceInterval95(stdev, n)
	los := LOS(mean, stdev)

	if test != nil && test.Enabled() {
		llr := test.GetLLR(s, penta)
		r.printf("Elo: %.2f +/- %.2f, LOS: %.1f%%, LLR: %.2f %s, H: %s\n", elo, ci, los*100, llr, test.Bounds(), test.EloRange())
	} else {
		r.printf("Elo: %.2f +/- %.2f, LOS: %.1f%%\n", elo, ci, los*100)
	}
}

func (r DefaultReporter) EndTournament() {
	r.printf("Finished match\n")
}
