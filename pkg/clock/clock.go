// Package clock implements per-side time-control accounting: remaining time,
// increment, moves-to-go, fixed time per move, and the timeout margin.
package clock

import "fmt"

// TimeControl describes the budget for one side of a game. The zero value is
// a zero-time sudden-death control, not an untimed one: the untimed control
// is the one Untimed returns (Infinite set).
type TimeControl struct {
	MovesToGo  int // 0 means "rest of game" (sudden death)
	TimeMS     int64
	IncMS      int64
	FixedMS    int64 // movetime; when >0 overrides Time/Inc/MovesToGo
	MarginMS   int64 // added to the read deadline, never negative
	Infinite   bool

	NodesLimit int64 // go nodes N, takes priority over depth and the clock
	PliesLimit int    // go depth D, takes priority over the clock
}

// Untimed returns a TimeControl with no deadlines: reads never time out.
func Untimed() TimeControl {
	return TimeControl{Infinite: true}
}

// State is the live, mutable clock for one side during a game.
type State struct {
	tc        TimeControl
	remaining int64 // ms
	movestogo int
}

// NewState seeds a clock State from its starting TimeControl.
func NewState(tc TimeControl) (*State, error) {
	if tc.MarginMS < 0 {
		return nil, fmt.Errorf("clock: negative margin %dms", tc.MarginMS)
	}
	return &State{tc: tc, remaining: tc.TimeMS, movestogo: tc.MovesToGo}, nil
}

func (s *State) TimeControl() TimeControl { return s.tc }
func (s *State) RemainingMS() int64       { return s.remaining }
func (s *State) MovesToGo() int           { return s.movestogo }
func (s *State) FixedMS() int64           { return s.tc.FixedMS }
func (s *State) NodesLimit() int64        { return s.tc.NodesLimit }
func (s *State) PliesLimit() int          { return s.tc.PliesLimit }

// TimeoutThreshold is the read deadline for the engine's next move: remaining
// time plus margin, FixedMS plus margin for a fixed-time control, or 0 ("no
// timeout") for an untimed control.
func (s *State) TimeoutThreshold() int64 {
	if s.tc.Infinite {
		return 0
	}
	if s.tc.FixedMS > 0 {
		return s.tc.FixedMS + s.tc.MarginMS
	}
	return s.remaining + s.tc.MarginMS
}

// Update subtracts the elapsed wall-clock time for the move just played,
// applies the increment and moves-to-go reset, and reports whether the side
// is still within budget. It returns false iff remaining < -margin, which is
// a loss on time; fixed-time and untimed controls never lose on time.
func (s *State) Update(elapsedMS int64) bool {
	if s.tc.Infinite || s.tc.FixedMS > 0 {
		return true
	}

	s.remaining -= elapsedMS

	if s.movestogo > 0 {
		s.movestogo--
		if s.movestogo == 0 {
			s.remaining += s.tc.TimeMS
			s.movestogo = s.tc.MovesToGo
		}
	}
	s.remaining += s.tc.IncMS

	return s.remaining >= -s.tc.MarginMS
}
