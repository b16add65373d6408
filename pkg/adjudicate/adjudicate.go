// Package adjudicate implements the four independent early-termination
// trackers (draw, resign, max-moves, tablebase) and the Adjudicator that
// combines them under a fixed priority order, as specified in spec §4.4 and
// grounded on fastchess's matchmaking/adjudication/adjudicator.hpp.
package adjudicate

import (
	"fmt"

	"github.com/herohde/arbiter/pkg/engineproto"
	"github.com/herohde/arbiter/pkg/rules"
)

// Termination mirrors the single adjudication kind the executor records;
// the other six kinds (NORMAL, TIMEOUT, DISCONNECT, STALL, ILLEGAL_MOVE,
// INTERRUPT) are decided outside this package.
const Termination = "ADJUDICATION"

// GameResult is the adjudicated outcome for one side.
type GameResult int

const (
	ResultNone GameResult = iota
	ResultWin
	ResultLoss
	ResultDraw
)

// Result is returned by Adjudicator.Adjudicate when a tracker fires.
type Result struct {
	Reason  string
	Us      GameResult // result for the side that just moved ("us" in playMove)
	Them    GameResult // result for the side to move next
}

// DrawConfig configures DrawTracker.
type DrawConfig struct {
	Enabled    bool
	MoveNumber int // full moves before the window starts counting
	MoveCount  int // consecutive plies required in range
	ScoreCP    int // |score| must stay <= this
}

// DrawTracker declares a draw once, after MoveNumber full moves, MoveCount
// consecutive plies all scored within +/-ScoreCP. Any out-of-range or
// non-CP score resets the window.
type DrawTracker struct {
	cfg   DrawConfig
	count int
}

func NewDrawTracker(cfg DrawConfig) *DrawTracker { return &DrawTracker{cfg: cfg} }

func (t *DrawTracker) Update(score engineproto.Score) {
	if score.Type != engineproto.ScoreCP || abs(score.Value) > t.cfg.ScoreCP {
		t.count = 0
		return
	}
	t.count++
}

func (t *DrawTracker) Invalidate() { t.count = 0 }

func (t *DrawTracker) Adjudicatable(fullMoveNumber int) bool {
	return t.cfg.Enabled && fullMoveNumber >= t.cfg.MoveNumber && t.count >= t.cfg.MoveCount
}

// ResignConfig configures ResignTracker.
type ResignConfig struct {
	Enabled   bool
	MoveCount int
	ScoreCP   int
	TwoSided  bool
}

// ResignTracker watches, per side, how many consecutive plies that side's
// reported score has been <= -ScoreCP (i.e. that side believes it is
// losing). When TwoSided is set, both sides must independently confirm
// before the tracker fires.
type ResignTracker struct {
	cfg       ResignConfig
	counters  map[rules.Color]int
	lastScore map[rules.Color]engineproto.Score
}

func NewResignTracker(cfg ResignConfig) *ResignTracker {
	return &ResignTracker{
		cfg:       cfg,
		counters:  map[rules.Color]int{rules.White: 0, rules.Black: 0},
		lastScore: map[rules.Color]engineproto.Score{},
	}
}

// Update records a score reported from mover's point of view.
func (t *ResignTracker) Update(score engineproto.Score, mover rules.Color) {
	if score.Type == engineproto.ScoreCP && score.Value <= -t.cfg.ScoreCP {
		t.counters[mover]++
	} else {
		t.counters[mover] = 0
	}
	t.lastScore[mover] = score
}

func (t *ResignTracker) Invalidate(mover rules.Color) {
	t.counters[mover] = 0
}

// resignable reports whether c's window has reached the threshold and c's
// most recently reported score is still a genuine loss (strictly negative),
// guarding against a resign firing on a stale window after the side's eval
// has recovered.
func (t *ResignTracker) resignable(c rules.Color) bool {
	if t.counters[c] < t.cfg.MoveCount {
		return false
	}
	s := t.lastScore[c]
	return s.Type == engineproto.ScoreCP && s.Value < 0
}

// Resignable reports whether the loss threshold has been reached. In
// two-sided mode both colors must independently confirm.
func (t *ResignTracker) Resignable() bool {
	if !t.cfg.Enabled {
		return false
	}
	white := t.resignable(rules.White)
	black := t.resignable(rules.Black)
	if t.cfg.TwoSided {
		return white && black
	}
	return white || black
}

// MaxMovesConfig configures MaxMovesTracker.
type MaxMovesConfig struct {
	Enabled bool
	Plies   int
}

// MaxMovesTracker declares a draw once Plies half-moves have been played.
type MaxMovesTracker struct {
	cfg   MaxMovesConfig
	plies int
}

func NewMaxMovesTracker(cfg MaxMovesConfig) *MaxMovesTracker { return &MaxMovesTracker{cfg: cfg} }

func (t *MaxMovesTracker) Update() { t.plies++ }

func (t *MaxMovesTracker) MaxMovesReached() bool {
	return t.cfg.Enabled && t.plies >= t.cfg.Plies
}

// TablebaseResultType is a bitmask of which tablebase outcomes may be
// adjudicated.
type TablebaseResultType int

const (
	TBResultWinLoss TablebaseResultType = 1 << iota
	TBResultDraw
)

// TablebaseProbe is the external collaborator a TablebaseTracker consults;
// arbiter ships no Syzygy probe implementation of its own (spec.md treats
// the rules/tablebase library as an external module), so this is an
// injectable seam. OK reports whether fen was resolvable at all.
type TablebaseProbe interface {
	Probe(fen string) (result rules.Outcome, ok bool)
}

// TablebaseConfig configures TablebaseTracker.
type TablebaseConfig struct {
	Enabled    bool
	ResultType TablebaseResultType
}

// TablebaseTracker consults probe at every move once the position is within
// its coverage.
type TablebaseTracker struct {
	cfg   TablebaseConfig
	probe TablebaseProbe
}

func NewTablebaseTracker(cfg TablebaseConfig, probe TablebaseProbe) *TablebaseTracker {
	return &TablebaseTracker{cfg: cfg, probe: probe}
}

func (t *TablebaseTracker) Adjudicatable(fen string) (rules.Outcome, bool) {
	if !t.cfg.Enabled || t.probe == nil {
		return rules.NoOutcome, false
	}
	return t.probe.Probe(fen)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Adjudicator combines the four trackers under a fixed priority: Tablebase
// > Resign > Draw > MaxMoves, evaluated only after the rules engine itself
// has found no terminal result.
type Adjudicator struct {
	Draw      *DrawTracker
	Resign    *ResignTracker
	MaxMoves  *MaxMovesTracker
	Tablebase *TablebaseTracker

	drawEnabled, resignEnabled, maxMovesEnabled, tbEnabled bool
	tbResultType                                           TablebaseResultType
}

func New(draw DrawConfig, resign ResignConfig, maxMoves MaxMovesConfig, tb TablebaseConfig, probe TablebaseProbe) *Adjudicator {
	return &Adjudicator{
		Draw:            NewDrawTracker(draw),
		Resign:          NewResignTracker(resign),
		MaxMoves:        NewMaxMovesTracker(maxMoves),
		Tablebase:       NewTablebaseTracker(tb, probe),
		drawEnabled:     draw.Enabled,
		resignEnabled:   resign.Enabled,
		maxMovesEnabled: maxMoves.Enabled,
		tbEnabled:       tb.Enabled,
		tbResultType:    tb.ResultType,
	}
}

// Update feeds a reported score (from the mover's point of view) or
// invalidates the running windows when no score was available.
func (a *Adjudicator) Update(score *engineproto.Score, mover rules.Color) {
	if score != nil {
		a.Draw.Update(*score)
		a.Resign.Update(*score, mover)
	} else {
		a.Draw.Invalidate()
		a.Resign.Invalidate(mover)
	}
	a.MaxMoves.Update()
}

// Adjudicate checks the four trackers in priority order against the current
// board. us/them follow Match Executor's playMove convention: us is the
// side that just moved, them is the side to move next.
func (a *Adjudicator) Adjudicate(fen string, sideToMove rules.Color, fullMoveNumber int) (Result, bool) {
	if a.tbEnabled {
		if outcome, ok := a.Tablebase.Adjudicatable(fen); ok {
			us := sideToMove.Other() // the side that just moved

			switch outcome {
			case rules.WhiteWins, rules.BlackWins:
				if a.tbResultType&TBResultWinLoss == 0 {
					break
				}
				var winner rules.Color
				if outcome == rules.WhiteWins {
					winner = rules.White
				} else {
					winner = rules.Black
				}
				reason := fmt.Sprintf("%s wins by adjudication: SyzygyTB", winner)
				if winner == us {
					return Result{Reason: reason, Us: ResultWin, Them: ResultLoss}, true
				}
				return Result{Reason: reason, Us: ResultLoss, Them: ResultWin}, true
			case rules.Draw:
				if a.tbResultType&TBResultDraw != 0 {
					return Result{Reason: "Draw by adjudication: SyzygyTB", Us: ResultDraw, Them: ResultDraw}, true
				}
			}
		}
	}

	if a.resignEnabled && a.Resign.Resignable() {
		reason := fmt.Sprintf("%s wins by adjudication", sideToMove)
		return Result{Reason: reason, Us: ResultLoss, Them: ResultWin}, true
	}

	if a.drawEnabled && a.Draw.Adjudicatable(fullMoveNumber) {
		return Result{Reason: "Draw by adjudication", Us: ResultDraw, Them: ResultDraw}, true
	}

	if a.maxMovesEnabled && a.MaxMoves.MaxMovesReached() {
		return Result{Reason: "Draw by adjudication", Us: ResultDraw, Them: ResultDraw}, true
	}

	return Result{}, false
}
