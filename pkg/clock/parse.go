package clock

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTimeControl parses a cutechess/fastchess-style time-control string:
//
//	"40/60"         40 moves per 60 seconds, no increment
//	"40/1:9.65+0.1" 40 moves per 1m9.65s, 0.1s increment
//	"5+0.1"         sudden death, 5 seconds, 0.1s increment
//	"inf"           untimed
//	"5.0"           base time 5s; combined with a non-zero fixedSeconds
//	                (the -st flag) this yields a fixed-time-per-move control
//
// fixedSeconds, when > 0, always wins and produces a FixedMS control
// regardless of the tc string (the two are mutually exclusive per engine but
// the source tolerates both being present).
//
// nodesLimit and pliesLimit, when > 0, are carried onto the returned
// TimeControl verbatim (spec §3's node cap and ply cap); they take priority
// over both fixedSeconds and the tc string when Go builds its limits.
func ParseTimeControl(s string, fixedSeconds float64, marginMS int64, nodesLimit int64, pliesLimit int) (TimeControl, error) {
	if marginMS < 0 {
		return TimeControl{}, fmt.Errorf("clock: negative margin %dms", marginMS)
	}

	if fixedSeconds > 0 {
		return TimeControl{FixedMS: int64(fixedSeconds * 1000), MarginMS: marginMS, NodesLimit: nodesLimit, PliesLimit: pliesLimit}, nil
	}

	s = strings.TrimSpace(s)
	if s == "" || s == "inf" {
		tc := Untimed()
		tc.MarginMS = marginMS
		tc.NodesLimit = nodesLimit
		tc.PliesLimit = pliesLimit
		return tc, nil
	}

	var movesToGo int
	rest := s
	if idx := strings.IndexByte(s, '/'); idx >= 0 {
		movesStr := s[:idx]
		rest = s[idx+1:]
		n, err := strconv.Atoi(movesStr)
		if err != nil {
			return TimeControl{}, fmt.Errorf("clock: bad moves-to-go %q: %w", movesStr, err)
		}
		movesToGo = n
	}

	var incSeconds float64
	if idx := strings.IndexByte(rest, '+'); idx >= 0 {
		incStr := rest[idx+1:]
		rest = rest[:idx]
		v, err := strconv.ParseFloat(incStr, 64)
		if err != nil {
			return TimeControl{}, fmt.Errorf("clock: bad increment %q: %w", incStr, err)
		}
		incSeconds = v
	}

	timeSeconds, err := parseClockTime(rest)
	if err != nil {
		return TimeControl{}, err
	}

	return TimeControl{
		MovesToGo:  movesToGo,
		TimeMS:     int64(timeSeconds * 1000),
		IncMS:      int64(incSeconds * 1000),
		MarginMS:   marginMS,
		NodesLimit: nodesLimit,
		PliesLimit: pliesLimit,
	}, nil
}

// parseClockTime parses either "SS.ss" or "MM:SS.ss" into a seconds count.
func parseClockTime(s string) (float64, error) {
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		minStr, secStr := s[:idx], s[idx+1:]
		min, err := strconv.Atoi(minStr)
		if err != nil {
			return 0, fmt.Errorf("clock: bad minutes %q: %w", minStr, err)
		}
		sec, err := strconv.ParseFloat(secStr, 64)
		if err != nil {
			return 0, fmt.Errorf("clock: bad seconds %q: %w", secStr, err)
		}
		return float64(min)*60 + sec, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("clock: bad time %q: %w", s, err)
	}
	return v, nil
}
