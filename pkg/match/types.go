// Package match implements the Match Executor: drives one game between two
// engine drivers to a terminal result, recording the full move-by-move
// record. Grounded on fastchess's matchmaking/match/match.cpp.
package match

import (
	"time"

	"github.com/herohde/arbiter/internal/config"
	"github.com/herohde/arbiter/pkg/engineproto"
	"github.com/herohde/arbiter/pkg/rules"
)

// Termination is one of the seven terminal kinds a game can end with (TermNone
// marks a game that has not ended).
type Termination string

const (
	TermNone        Termination = "NONE"
	TermNormal      Termination = "NORMAL"
	TermAdjudicated Termination = "ADJUDICATION"
	TermTimeout     Termination = "TIMEOUT"
	TermDisconnect  Termination = "DISCONNECT"
	TermStall       Termination = "STALL"
	TermIllegalMove Termination = "ILLEGAL_MOVE"
	TermInterrupt   Termination = "INTERRUPT"
)

// PlayerResult is a single side's final result.
type PlayerResult int

const (
	ResultNone PlayerResult = iota
	ResultWin
	ResultLoss
	ResultDraw
)

// MoveRecord is one played move and everything the engine reported about it.
type MoveRecord struct {
	Move       string
	Score      engineproto.Score
	HasScore   bool
	Depth      int
	SelDepth   int
	Nodes      int64
	NPS        int64
	HashFull   int
	TBHits     int64
	TimeMS     int64 // wall-clock elapsed for this move
	LatencyMS  int64 // TimeMS - engine-reported time
	TimeLeftMS int64
	PV         []string
	Book       bool
	Legal      bool
}

// MatchData accumulates over the course of one game.
type MatchData struct {
	StartFEN    string
	Moves       []MoveRecord
	WhiteResult PlayerResult
	BlackResult PlayerResult
	Termination Termination
	Reason      string
	StartTime   time.Time
	EndTime     time.Time
	Variant     config.Variant
	RoundID     int
	GameID      int
	PGN         string

	White config.Engine
	Black config.Engine
}

// PlyCount returns the number of moves played.
func (m MatchData) PlyCount() int { return len(m.Moves) }

func resultFromOutcome(o rules.Outcome, side rules.Color) PlayerResult {
	switch {
	case o == rules.Draw:
		return ResultDraw
	case o == rules.WhiteWins && side == rules.White, o == rules.BlackWins && side == rules.Black:
		return ResultWin
	default:
		return ResultLoss
	}
}
