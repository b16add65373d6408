package match

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/herohde/arbiter/pkg/adjudicate"
	"github.com/herohde/arbiter/pkg/clock"
	"github.com/herohde/arbiter/pkg/engineproto"
	"github.com/herohde/arbiter/pkg/rules"
	"github.com/seekerror/logw"
	"go.uber.org/atomic"
)

// Side bundles one player's driver and clock for the duration of a game.
type Side struct {
	Driver *engineproto.Driver
	Clock  *clock.State
	Color  rules.Color
	Name   string
}

// Executor drives one game between White and Black to a terminal result.
type Executor struct {
	White, Black Side
	Game         *rules.Game
	Adjudicator  *adjudicate.Adjudicator
	Stop         *atomic.Bool // shared SchedulerState.stop

	Variant       string
	RoundID       int
	GameID        int
	VerifyPV      bool // log-only PV verification, see spec.md's Open Questions
	KillTimeout   time.Duration
	StallDrain    time.Duration
}

var uciMoveRE = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][nbrq]?$`)

// Run plays the game to completion, returning a fully populated MatchData.
// It never panics: every failure mode becomes one of the seven Termination
// kinds with a canonical reason string.
func (e *Executor) Run(ctx context.Context) MatchData {
	correlationID := uuid.NewString()
	logw.Debugf(ctx, "match: starting game %s (round=%d id=%d)", correlationID, e.RoundID, e.GameID)

	md := MatchData{
		StartFEN:  e.Game.FEN(),
		StartTime: time.Now(),
		RoundID:   e.RoundID,
		GameID:    e.GameID,
	}

	mover, other := &e.White, &e.Black
	if e.Game.Turn() == rules.Black {
		mover, other = &e.Black, &e.White
	}

	for {
		// 1. global stop.
		if e.Stop != nil && e.Stop.Load() {
			e.finish(&md, TermInterrupt, "Game aborted", ResultNone, ResultNone)
			break
		}

		// 2. rule-based termination.
		if outcome, methodReason, done := e.checkRules(); done {
			wr := resultFromOutcome(outcome, rules.White)
			br := resultFromOutcome(outcome, rules.Black)
			e.finish(&md, TermNormal, methodReason, wr, br)
			break
		}

		// 3. adjudication, using the previous mover's last reported score.
		if res, fired := e.Adjudicator.Adjudicate(e.Game.FEN(), mover.Color, e.Game.FullMoveNumber()); fired {
			usResult, themResult := adjResultToPlayer(res.Us), adjResultToPlayer(res.Them)
			// "us" in Adjudicate is the side that just moved, i.e. `other`.
			wr, br := sideResults(other.Color, usResult, themResult)
			e.finish(&md, TermAdjudicated, res.Reason, wr, br)
			break
		}

		// 4. probe readiness.
		probe := mover.Driver.ProbeReady(ctx, 10*time.Second)
		if probe == engineproto.ProbeTimeout {
			e.finishLoss(&md, TermStall, fmt.Sprintf("%s loses on stall", mover.Color), mover.Color)
			break
		}
		if probe == engineproto.ProbeErr {
			e.finishLoss(&md, TermDisconnect, fmt.Sprintf("%s loses on disconnect", mover.Color), mover.Color)
			break
		}

		// 5. position + go.
		history := movesSoFar(&md)
		if err := mover.Driver.Position(startPosArg(md.StartFEN), history); err != nil {
			e.finishLoss(&md, TermDisconnect, fmt.Sprintf("%s loses on disconnect", mover.Color), mover.Color)
			break
		}
		limits := buildGoLimits(mover.Clock, other.Clock, mover.Color)
		if err := mover.Driver.Go(limits); err != nil {
			e.finishLoss(&md, TermDisconnect, fmt.Sprintf("%s loses on disconnect", mover.Color), mover.Color)
			break
		}

		// 6. wait for bestmove, deadline = remaining + margin (0 = infinite).
		deadline := time.Duration(mover.Clock.TimeoutThreshold()) * time.Millisecond
		start := time.Now()
		bm, probeResult := mover.Driver.WaitBestMove(ctx, deadline)
		elapsed := time.Since(start)

		// 7. update clock.
		inBudget := mover.Clock.Update(elapsed.Milliseconds())
		if !inBudget {
			e.recallThinkingEngine(ctx, mover)
			e.finishLoss(&md, TermTimeout, fmt.Sprintf("%s loses on time", mover.Color), mover.Color)
			break
		}

		// 8. classify a missing bestmove.
		if bm.Move == "" {
			if probeResult == engineproto.ProbeTimeout {
				e.finishLoss(&md, TermStall, fmt.Sprintf("%s loses on stall", mover.Color), mover.Color)
			} else {
				e.finishLoss(&md, TermDisconnect, fmt.Sprintf("%s loses on disconnect", mover.Color), mover.Color)
			}
			break
		}

		// 9. move grammar.
		if !uciMoveRE.MatchString(bm.Move) {
			e.finishLoss(&md, TermIllegalMove, fmt.Sprintf("%s loses by illegal move: invalid format", mover.Color), mover.Color)
			break
		}

		// 10. legality via the rules library.
		if !e.Game.LegalUCI(bm.Move) {
			e.finishLoss(&md, TermIllegalMove, fmt.Sprintf("%s loses by illegal move", mover.Color), mover.Color)
			break
		}

		if e.VerifyPV {
			e.verifyPV(ctx, bm, mover.Color)
		}

		// 11. append the move record.
		rec := MoveRecord{
			Move:       bm.Move,
			Legal:      true,
			TimeMS:     elapsed.Milliseconds(),
			TimeLeftMS: mover.Clock.RemainingMS(),
		}
		if bm.HasInfo {
			rec.HasScore = bm.Info.HasScore
			rec.Score = bm.Info.Score
			rec.Depth = bm.Info.Depth
			rec.SelDepth = bm.Info.SelDepth
			rec.Nodes = bm.Info.Nodes
			rec.NPS = bm.Info.NPS
			rec.HashFull = bm.Info.HashFull
			rec.TBHits = bm.Info.TBHits
			rec.PV = bm.Info.PV
			rec.LatencyMS = elapsed.Milliseconds() - bm.Info.TimeMS
		}
		md.Moves = append(md.Moves, rec)

		// 12. apply the move, feed adjudication, continue.
		if err := e.Game.MoveUCI(bm.Move); err != nil {
			e.finishLoss(&md, TermIllegalMove, fmt.Sprintf("%s loses by illegal move", mover.Color), mover.Color)
			break
		}
		if bm.HasInfo && bm.Info.HasScore {
			score := bm.Info.Score
			e.Adjudicator.Update(&score, mover.Color)
		} else {
			e.Adjudicator.Update(nil, mover.Color)
		}

		mover, other = other, mover
	}

	md.EndTime = time.Now()
	md.PGN = e.Game.PGN()
	return md
}

func (e *Executor) checkRules() (rules.Outcome, string, bool) {
	outcome, method := e.Game.Done()
	if outcome == rules.NoOutcome {
		return rules.NoOutcome, "", false
	}
	return outcome, reasonForMethod(outcome, method), true
}

func reasonForMethod(o rules.Outcome, m rules.Method) string {
	switch m {
	case rules.Checkmate:
		if o == rules.WhiteWins {
			return "Black mates"
		}
		return "White mates"
	case rules.Stalemate:
		return "Draw by stalemate"
	case rules.ThreefoldRepetition:
		return "Draw by 3-fold repetition"
	case rules.FivefoldRepetition:
		return "Draw by 5-fold repetition"
	case rules.FiftyMoveRule:
		return "Draw by 50-move rule"
	case rules.SeventyFiveMoveRule:
		return "Draw by 75-move rule"
	case rules.InsufficientMaterial:
		return "Draw by insufficient material"
	default:
		return "Draw"
	}
}

func (e *Executor) finish(md *MatchData, term Termination, reason string, white, black PlayerResult) {
	md.Termination = term
	md.Reason = reason
	md.WhiteResult = white
	md.BlackResult = black
}

// finishLoss records mover as the losing side and the other side as winner.
func (e *Executor) finishLoss(md *MatchData, term Termination, reason string, mover rules.Color) {
	white, black := lossFor(mover)
	e.finish(md, term, reason, white, black)
}

func lossFor(mover rules.Color) (PlayerResult, PlayerResult) {
	if mover == rules.White {
		return ResultLoss, ResultWin
	}
	return ResultWin, ResultLoss
}

func sideResults(usColor rules.Color, us, them PlayerResult) (white, black PlayerResult) {
	if usColor == rules.White {
		return us, them
	}
	return them, us
}

func adjResultToPlayer(r adjudicate.GameResult) PlayerResult {
	switch r {
	case adjudicate.ResultWin:
		return ResultWin
	case adjudicate.ResultLoss:
		return ResultLoss
	case adjudicate.ResultDraw:
		return ResultDraw
	default:
		return ResultNone
	}
}

func startPosArg(fen string) string {
	// A FEN identical to the standard starting position is not rewritten to
	// "startpos": arbiter always forwards the recorded FEN verbatim unless it
	// genuinely is empty.
	if fen == "" {
		return "startpos"
	}
	return fen
}

func movesSoFar(md *MatchData) []string {
	moves := make([]string, len(md.Moves))
	for i, r := range md.Moves {
		moves[i] = r.Move
	}
	return moves
}

// buildGoLimits assembles the `go` command fields for the side about to
// move. moverColor decides whether mover's clock is reported under
// wtime/winc or btime/binc -- wtime/btime are always White's/Black's
// remaining time on the wire, never "the side to move"'s.
func buildGoLimits(mover, other *clock.State, moverColor rules.Color) engineproto.GoLimits {
	tc := mover.TimeControl()
	limits := engineproto.GoLimits{
		Nodes:   tc.NodesLimit,
		Plies:   tc.PliesLimit,
		FixedMS: tc.FixedMS,
	}
	if tc.NodesLimit > 0 || tc.PliesLimit > 0 || tc.FixedMS > 0 {
		return limits
	}

	otherTC := other.TimeControl()

	var moverHasClock, otherHasClock bool
	var moverTimeMS, otherTimeMS, moverIncMS, otherIncMS int64
	if !tc.Infinite {
		moverHasClock = true
		moverTimeMS = mover.RemainingMS()
		moverIncMS = tc.IncMS
	}
	if !otherTC.Infinite && otherTC.FixedMS == 0 {
		otherHasClock = true
		otherTimeMS = other.RemainingMS()
		otherIncMS = otherTC.IncMS
	}

	if moverColor == rules.White {
		limits.HasWhiteClock, limits.WhiteTimeMS, limits.WhiteIncMS = moverHasClock, moverTimeMS, moverIncMS
		limits.HasBlackClock, limits.BlackTimeMS, limits.BlackIncMS = otherHasClock, otherTimeMS, otherIncMS
	} else {
		limits.HasBlackClock, limits.BlackTimeMS, limits.BlackIncMS = moverHasClock, moverTimeMS, moverIncMS
		limits.HasWhiteClock, limits.WhiteTimeMS, limits.WhiteIncMS = otherHasClock, otherTimeMS, otherIncMS
	}
	limits.MovesToGo = mover.MovesToGo()
	return limits
}

// recallThinkingEngine sends stop to a timed-out engine and drains its
// output until bestmove appears or StallDrain elapses, so it is not left
// thinking indefinitely in the background (spec §4.3).
func (e *Executor) recallThinkingEngine(ctx context.Context, side *Side) {
	if err := side.Driver.Stop(); err != nil {
		return
	}
	drain := e.StallDrain
	if drain <= 0 {
		drain = engineproto.StallDrainTimeout
	}
	side.Driver.WaitBestMove(ctx, drain)
}

// verifyPV replays bm's principal variation against a cloned game and logs
// (never fails the game) on the first illegal PV move. Intentionally
// log-only: see spec.md's Open Questions.
func (e *Executor) verifyPV(ctx context.Context, bm engineproto.BestMove, mover rules.Color) {
	if !bm.HasInfo || len(bm.Info.PV) == 0 {
		return
	}
	g := e.Game.Clone()
	for i, mv := range bm.Info.PV {
		if !g.LegalUCI(mv) {
			logw.Warningf(ctx, "match: %s reported illegal PV move %q at ply %d of its principal variation", mover, mv, i)
			return
		}
		if err := g.MoveUCI(mv); err != nil {
			logw.Warningf(ctx, "match: %s reported illegal PV move %q at ply %d: %v", mover, mv, i, err)
			return
		}
	}
}
