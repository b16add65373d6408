// Package snapshot persists enough tournament state to resume at game
// granularity after a restart (spec.md §3's SchedulerState, §6's
// -autosaveinterval), mirroring fastchess's own JSON autosave of
// config::TournamentConfig/EngineConfigs plus the running scoreboard.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/herohde/arbiter/internal/config"
	"github.com/herohde/arbiter/pkg/stats"
)

// Snapshot is the minimal state needed to recompute initial_matchcount and
// continue a tournament from where it left off; it does not capture any
// partial game below game granularity (spec.md's Non-goals).
type Snapshot struct {
	Tournament       config.Tournament            `json:"tournament"`
	CompletedGames   int64                         `json:"completed_games"`
	Stats            map[string]stats.PairStats    `json:"stats"` // keyed "first|second"
}

func pairKeyString(k stats.PairKey) string {
	return k.First + "|" + k.Second
}

// Save writes snapshot state to path as indented JSON.
func Save(path string, tournament config.Tournament, completed int64, board *stats.Scoreboard, pairs []stats.PairKey) error {
	snap := Snapshot{
		Tournament:     tournament,
		CompletedGames: completed,
		Stats:          make(map[string]stats.PairStats, len(pairs)),
	}
	for _, k := range pairs {
		snap.Stats[pairKeyString(k)] = board.GetStats(k.First, k.Second)
	}
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: marshal: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("snapshot: write %s: %w", path, err)
	}
	return nil
}

// Load reads a previously saved Snapshot from path.
func Load(path string) (*Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("snapshot: parse %s: %w", path, err)
	}
	return &snap, nil
}

// Restore replays a loaded Snapshot's win/loss/draw totals into a fresh
// Scoreboard, so a resumed tournament's trinomial SPRT/reporting state
// matches what it was before restart. Pentanomial bins (WW..LL) are not
// restored; they start empty.
func Restore(snap *Snapshot) *stats.Scoreboard {
	board := stats.NewScoreboard()
	for key, s := range snap.Stats {
		first, second := splitPairKey(key)
		k := stats.PairKey{First: first, Second: second}
		for i := 0; i < s.Wins; i++ {
			board.RecordGame(k, stats.Win)
		}
		for i := 0; i < s.Losses; i++ {
			board.RecordGame(k, stats.Loss)
		}
		for i := 0; i < s.Draws; i++ {
			board.RecordGame(k, stats.Draw)
		}
	}
	return board
}

func splitPairKey(s string) (string, string) {
	for i := 0; i < len(s); i++ {
		if s[i] == '|' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}
