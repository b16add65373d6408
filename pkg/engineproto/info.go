package engineproto

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ScoreType distinguishes a centipawn score from a mate-in-N score, or an
// absent/unparseable one.
type ScoreType int

const (
	ScoreNone ScoreType = iota
	ScoreCP
	ScoreMate
)

// Score is an engine-reported evaluation: either centipawns or a mate count
// (in moves, signed from the side-to-move's perspective, per UCI).
type Score struct {
	Type  ScoreType
	Value int // centipawns, or mate-in-N moves
}

// Info is the parsed content of one `info ...` line. Unset numeric fields
// are left at zero; callers only trust fields the line actually carried,
// which is why Info also records which stray fields existed at all via the
// presence flags below.
type Info struct {
	Depth    int
	SelDepth int
	Nodes    int64
	NPS      int64
	HashFull int
	TBHits   int64
	Score    Score
	TimeMS   int64
	PV       []string
	MultiPV  int

	HasScore bool
}

var pvMoveRE = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][nbrq]?$`)

// ParseInfoLine extracts the fields in §4.2: depth, seldepth, nodes, nps,
// hashfull, tbhits, score cp/mate, pv. Each keyword is looked up positionally
// and its following token(s) consumed accordingly.
func ParseInfoLine(line string) (Info, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "info" {
		return Info{}, false
	}

	var info Info
	info.MultiPV = 1

	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if i+1 < len(fields) {
				info.Depth, _ = strconv.Atoi(fields[i+1])
				i++
			}
		case "seldepth":
			if i+1 < len(fields) {
				info.SelDepth, _ = strconv.Atoi(fields[i+1])
				i++
			}
		case "nodes":
			if i+1 < len(fields) {
				info.Nodes, _ = strconv.ParseInt(fields[i+1], 10, 64)
				i++
			}
		case "nps":
			if i+1 < len(fields) {
				info.NPS, _ = strconv.ParseInt(fields[i+1], 10, 64)
				i++
			}
		case "hashfull":
			if i+1 < len(fields) {
				info.HashFull, _ = strconv.Atoi(fields[i+1])
				i++
			}
		case "tbhits":
			if i+1 < len(fields) {
				info.TBHits, _ = strconv.ParseInt(fields[i+1], 10, 64)
				i++
			}
		case "time":
			if i+1 < len(fields) {
				info.TimeMS, _ = strconv.ParseInt(fields[i+1], 10, 64)
				i++
			}
		case "multipv":
			if i+1 < len(fields) {
				info.MultiPV, _ = strconv.Atoi(fields[i+1])
				i++
			}
		case "score":
			if i+1 < len(fields) {
				kind := fields[i+1]
				i++
				if i+1 < len(fields) {
					v, _ := strconv.Atoi(fields[i+1])
					switch kind {
					case "cp":
						info.Score = Score{Type: ScoreCP, Value: v}
						info.HasScore = true
					case "mate":
						info.Score = Score{Type: ScoreMate, Value: v}
						info.HasScore = true
					}
					i++
				}
			}
		case "pv":
			j := i + 1
			var pv []string
			for j < len(fields) && pvMoveRE.MatchString(fields[j]) {
				pv = append(pv, fields[j])
				j++
			}
			info.PV = pv
			i = j - 1
		}
	}

	return info, true
}

// FormatScore renders a score for PGN/EPD comment archival: CP as a signed
// two-decimal pawn value, mate as +Mk/-Mk with k the number of plies to mate
// (not moves): k = score*2-1 for a positive (winning) mate, -score*2 for a
// negative one.
func FormatScore(s Score) string {
	switch s.Type {
	case ScoreCP:
		return fmt.Sprintf("%+.2f", float64(s.Value)/100.0)
	case ScoreMate:
		if s.Value > 0 {
			return fmt.Sprintf("+M%d", s.Value*2-1)
		}
		return fmt.Sprintf("-M%d", -s.Value*2)
	default:
		return ""
	}
}
