// Package scheduler implements the worker pool that drains the Pairing
// Generator, drives one Match Executor per slot, funnels results back in
// game-id order, and updates the Scoreboard/SPRT engine as games complete.
// Grounded on fastchess's matchmaking/tournament scheduling loop, expressed
// with golang.org/x/sync/errgroup and a semaphore the way morlock wires its
// own concurrent work.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/herohde/arbiter/internal/config"
	"github.com/herohde/arbiter/pkg/adjudicate"
	"github.com/herohde/arbiter/pkg/affinity"
	"github.com/herohde/arbiter/pkg/clock"
	"github.com/herohde/arbiter/pkg/engineproto"
	"github.com/herohde/arbiter/pkg/match"
	"github.com/herohde/arbiter/pkg/opening"
	"github.com/herohde/arbiter/pkg/pairing"
	"github.com/herohde/arbiter/pkg/report"
	"github.com/herohde/arbiter/pkg/rules"
	"github.com/herohde/arbiter/pkg/sprt"
	"github.com/herohde/arbiter/pkg/stats"
	"github.com/seekerror/logw"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// EngineCache keeps one long-lived Driver per (slot, engine name) when the
// engine's Restart policy is "keep", so successive games reuse the process
// instead of respawning it (spec §4.9's Engine Cache / Restart Policy).
type EngineCache struct {
	mu      sync.Mutex
	drivers map[string]*engineproto.Driver
}

func NewEngineCache() *EngineCache {
	return &EngineCache{drivers: make(map[string]*engineproto.Driver)}
}

func cacheKey(slot int, engineName string) string {
	return fmt.Sprintf("%d/%s", slot, engineName)
}

func (c *EngineCache) get(slot int, e config.Engine) (*engineproto.Driver, bool) {
	if e.Restart == config.RestartRestart {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.drivers[cacheKey(slot, e.Name)]
	return d, ok && d.Alive()
}

func (c *EngineCache) put(slot int, e config.Engine, d *engineproto.Driver) {
	if e.Restart == config.RestartRestart {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drivers[cacheKey(slot, e.Name)] = d
}

// Close quits every cached driver, used at tournament shutdown.
func (c *EngineCache) Close(killTimeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.drivers {
		d.Quit(killTimeout)
	}
	c.drivers = make(map[string]*engineproto.Driver)
}

// outcome is one finished game, tagged with its GameID so the funnel can
// reorder out-of-order completions from the worker pool.
type outcome struct {
	gameID int
	data   match.MatchData
	pair   pairing.Pairing
	err    error
}

// State is the scheduler's shared, concurrency-safe run state (spec §3's
// SchedulerState): a stop flag workers poll every iteration and the running
// count of games the funnel has emitted.
type State struct {
	Stop      atomic.Bool
	Completed atomic.Int64
}

// Scheduler owns the worker pool driving one tournament to completion.
type Scheduler struct {
	cfg        *config.Tournament
	gen        *pairing.Generator
	board      *stats.Scoreboard
	test       *sprt.Test
	reporter   report.Reporter
	cache      *EngineCache
	allocator  *affinity.Allocator
	openings   opening.Source
	killTimeout time.Duration
	stallDrain  time.Duration

	State *State
}

// New wires a Scheduler from a validated Tournament config.
func New(cfg *config.Tournament, reporter report.Reporter) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gen := pairing.New(cfg.Engines, cfg.Rounds, cfg.Games, cfg.NoSwap, cfg.Reverse)

	var test *sprt.Test
	if cfg.SPRT.Enabled {
		t, err := sprt.New(cfg.SPRT.Alpha, cfg.SPRT.Beta, cfg.SPRT.Elo0, cfg.SPRT.Elo1,
			sprt.Model(cfg.SPRT.Model), cfg.SPRT.Enabled, &cfg.ReportPenta)
		if err != nil {
			return nil, fmt.Errorf("scheduler: sprt: %w", err)
		}
		test = t
	}

	var alloc *affinity.Allocator
	if cfg.UseAffinity {
		alloc = affinity.New(cfg.Concurrency)
	}

	return &Scheduler{
		cfg:         cfg,
		gen:         gen,
		board:       stats.NewScoreboard(),
		test:        test,
		reporter:    reporter,
		cache:       NewEngineCache(),
		allocator:   alloc,
		openings:    opening.StandardSource{},
		killTimeout: 5 * time.Second,
		stallDrain:  engineproto.StallDrainTimeout,
		State:       &State{},
	}, nil
}

// Scoreboard exposes the live Scoreboard, e.g. for periodic reporting.
func (s *Scheduler) Scoreboard() *stats.Scoreboard { return s.board }

// SetScoreboard replaces the live Scoreboard before Run starts, used by
// -resume so reporting and SPRT continue from a restored snapshot's totals.
// It does not change which pairings Run plays: Run still starts from the
// generator's first pairing, and State.Completed starts at zero.
func (s *Scheduler) SetScoreboard(board *stats.Scoreboard) { s.board = board }

// SetOpeningSource overrides the default StandardSource with book src,
// e.g. one backed by an EPD/PGN reader supplied by the caller.
func (s *Scheduler) SetOpeningSource(src opening.Source) { s.openings = src }

// Run drains the Pairing Generator through cfg.Concurrency worker slots,
// funneling each finished game's report through resultCh strictly in
// ascending GameID order, and returns once every pairing has been played or
// ctx is canceled.
func (s *Scheduler) Run(ctx context.Context, resultCh chan<- match.MatchData) error {
	defer close(resultCh)

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(s.cfg.Concurrency))

	// Cancelling ctx (e.g. on SIGINT) raises the shared stop flag that the
	// worker loops and executors check.
	go func() {
		<-gctx.Done()
		s.State.Stop.Store(true)
	}()

	results := make(chan outcome, s.cfg.Concurrency*2)
	var wg sync.WaitGroup

	total := s.gen.Total()
	for slot := 0; slot < s.cfg.Concurrency; slot++ {
		slot := slot
		g.Go(func() error {
			for {
				if s.State.Stop.Load() {
					return nil
				}
				if err := sem.Acquire(gctx, 1); err != nil {
					return nil
				}
				p, ok := s.gen.Next()
				if !ok {
					sem.Release(1)
					return nil
				}
				wg.Add(1)
				func() {
					defer sem.Release(1)
					defer wg.Done()
					md, err := s.playOne(gctx, slot, p)
					select {
					case results <- outcome{gameID: p.GameID, data: md, pair: p, err: err}:
					case <-gctx.Done():
					}
				}()
			}
		})
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	funnelDone := make(chan struct{})
	go func() {
		defer close(funnelDone)
		s.funnel(ctx, results, resultCh, total)
	}()

	err := g.Wait()
	<-funnelDone
	s.cache.Close(s.killTimeout)
	return err
}

// funnel buffers out-of-order completions (a slower slot's game N may finish
// after a faster slot's game N+3) and emits them to out strictly in
// ascending GameID order, matching spec §4.10's Ordered Output Funnel.
func (s *Scheduler) funnel(ctx context.Context, in <-chan outcome, out chan<- match.MatchData, total int) {
	buffer := make(map[int]outcome)
	next := 0
	emitted := 0

	drain := func() {
		for {
			o, ok := buffer[next]
			if !ok {
				return
			}
			delete(buffer, next)
			next++
			emitted++
			s.State.Completed.Add(1)
			if o.err == nil {
				s.recordResult(o.pair, o.data)
				select {
				case out <- o.data:
				case <-ctx.Done():
					return
				}
			} else {
				logw.Errorf(ctx, "scheduler: game %d failed: %v", o.gameID, o.err)
			}
		}
	}

	for o := range in {
		buffer[o.gameID] = o
		drain()
		if emitted >= total {
			return
		}
	}
	drain()
}

// recordResult feeds a finished game's outcome into the Scoreboard and, if
// configured, evaluates the SPRT engine's stopping decision.
func (s *Scheduler) recordResult(p pairing.Pairing, md match.MatchData) {
	key := stats.PairKey{First: p.White.Name, Second: p.Black.Name}
	result := playerResultToStats(md.WhiteResult)
	s.board.RecordGame(key, result)
	s.board.RecordPair(key, result, p.RoundID)

	snap := s.board.GetStats(p.White.Name, p.Black.Name)
	if s.reporter != nil {
		s.reporter.PrintResult(snap, p.White.Name, p.Black.Name)
		if s.cfg.RatingInterval > 0 && int(s.State.Completed.Load())%s.cfg.RatingInterval == 0 {
			s.reporter.PrintInterval(s.test, snap, p.White.Name, p.Black.Name, s.cfg.ReportPenta)
		}
	}

	if s.test != nil && s.test.Enabled() {
		llr := s.test.GetLLR(snap, s.cfg.ReportPenta)
		if res := s.test.GetResult(llr); res != sprt.Continue {
			s.State.Stop.Store(true)
		}
	}
}

func playerResultToStats(r match.PlayerResult) stats.Result {
	switch r {
	case match.ResultWin:
		return stats.Win
	case match.ResultLoss:
		return stats.Loss
	default:
		return stats.Draw
	}
}

// playOne spawns (or reuses) both engines for pairing p, drives one game to
// completion, and returns home the engines are cached for reuse.
func (s *Scheduler) playOne(ctx context.Context, slot int, p pairing.Pairing) (match.MatchData, error) {
	white, err := s.acquireDriver(ctx, slot, p.White)
	if err != nil {
		return match.MatchData{}, fmt.Errorf("scheduler: white %s: %w", p.White.Name, err)
	}
	black, err := s.acquireDriver(ctx, slot, p.Black)
	if err != nil {
		return match.MatchData{}, fmt.Errorf("scheduler: black %s: %w", p.Black.Name, err)
	}

	if s.allocator != nil {
		if cpus, ok := s.allocator.Acquire(slot); ok {
			_ = white.SetAffinityCPUs(cpus)
			_ = black.SetAffinityCPUs(cpus)
			defer s.allocator.Release(slot)
		}
	}

	chess960 := p.White.Variant == config.VariantChess960 || p.Black.Variant == config.VariantChess960
	if !white.ApplyConfig(ctx, kvPairs(p.White.Options), chess960) {
		return match.MatchData{}, fmt.Errorf("scheduler: white %s failed newgame handshake", p.White.Name)
	}
	if !black.ApplyConfig(ctx, kvPairs(p.Black.Options), chess960) {
		return match.MatchData{}, fmt.Errorf("scheduler: black %s failed newgame handshake", p.Black.Name)
	}

	open := s.openings.Next(p.OpeningID)
	game, err := rules.NewGame(open.FEN)
	if err != nil {
		return match.MatchData{}, fmt.Errorf("scheduler: new game: %w", err)
	}
	for _, mv := range open.Moves {
		if err := game.MoveUCI(mv); err != nil {
			return match.MatchData{}, fmt.Errorf("scheduler: opening %d: bad book move %q: %w", p.OpeningID, mv, err)
		}
	}

	whiteClock, err := newClockState(p.White)
	if err != nil {
		return match.MatchData{}, err
	}
	blackClock, err := newClockState(p.Black)
	if err != nil {
		return match.MatchData{}, err
	}

	variant := p.White.Variant
	if chess960 {
		variant = config.VariantChess960
	}

	exec := &match.Executor{
		White:       match.Side{Driver: white, Clock: whiteClock, Color: rules.White, Name: p.White.Name},
		Black:       match.Side{Driver: black, Clock: blackClock, Color: rules.Black, Name: p.Black.Name},
		Game:        game,
		Adjudicator: s.newAdjudicator(),
		Stop:        &s.State.Stop,
		Variant:     string(variant),
		RoundID:     p.RoundID,
		GameID:      p.GameID,
		KillTimeout: s.killTimeout,
		StallDrain:  s.stallDrain,
	}

	md := exec.Run(ctx)
	md.White, md.Black = p.White, p.Black

	s.cache.put(slot, p.White, white)
	s.cache.put(slot, p.Black, black)
	if p.White.Restart == config.RestartRestart {
		white.Quit(s.killTimeout)
	}
	if p.Black.Restart == config.RestartRestart {
		black.Quit(s.killTimeout)
	}

	return md, nil
}

func (s *Scheduler) newAdjudicator() *adjudicate.Adjudicator {
	return adjudicate.New(
		adjudicate.DrawConfig{
			Enabled: s.cfg.Draw.Enabled, MoveNumber: s.cfg.Draw.MoveNumber,
			MoveCount: s.cfg.Draw.MoveCount, ScoreCP: s.cfg.Draw.ScoreCP,
		},
		adjudicate.ResignConfig{
			Enabled: s.cfg.Resign.Enabled, MoveCount: s.cfg.Resign.MoveCount,
			ScoreCP: s.cfg.Resign.ScoreCP, TwoSided: s.cfg.Resign.TwoSided,
		},
		adjudicate.MaxMovesConfig{Enabled: s.cfg.MaxMoves.Enabled, Plies: s.cfg.MaxMoves.Plies},
		adjudicate.TablebaseConfig{
			Enabled:    s.cfg.TB.Enabled,
			ResultType: adjudicate.TablebaseResultType(s.cfg.TB.ResultType),
		},
		nil, // no Syzygy probe shipped; see DESIGN.md
	)
}

func (s *Scheduler) acquireDriver(ctx context.Context, slot int, e config.Engine) (*engineproto.Driver, error) {
	if d, ok := s.cache.get(slot, e); ok {
		return d, nil
	}
	t, err := engineproto.Spawn(ctx, e.Dir, e.Cmd, e.Args, e.Name)
	if err != nil {
		return nil, err
	}
	d := engineproto.NewDriver(t)
	if err := d.Start(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

func kvPairs(kvs []config.KV) [][2]string {
	out := make([][2]string, len(kvs))
	for i, kv := range kvs {
		out[i] = [2]string{kv.Name, kv.Value}
	}
	return out
}

func newClockState(e config.Engine) (*clock.State, error) {
	if e.TC == "" && e.FixedSec == 0 {
		tc := clock.Untimed()
		tc.NodesLimit = e.NodesLimit
		tc.PliesLimit = e.PliesLimit
		return clock.NewState(tc)
	}
	tc, err := clock.ParseTimeControl(e.TC, e.FixedSec, e.TimeMarginMS, e.NodesLimit, e.PliesLimit)
	if err != nil {
		return nil, fmt.Errorf("scheduler: engine %s: %w", e.Name, err)
	}
	return clock.NewState(tc)
}
