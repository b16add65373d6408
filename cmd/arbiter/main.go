package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/herohde/arbiter/internal/config"
	"github.com/herohde/arbiter/internal/snapshot"
	"github.com/herohde/arbiter/pkg/engineproto"
	"github.com/herohde/arbiter/pkg/match"
	"github.com/herohde/arbiter/pkg/report"
	"github.com/herohde/arbiter/pkg/scheduler"
	"github.com/herohde/arbiter/pkg/stats"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(0, 1, 0)

var (
	configPath = flag.String("config", "", "Path to a tournament YAML document")
	resume     = flag.String("resume", "", "Resume from a snapshot file written by a previous run's -autosave")
	autosave   = flag.String("autosave", "", "Path to periodically write a resumable snapshot")
	showVer    = flag.Bool("version", false, "Print the version and exit")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: arbiter -config=<tournament.yaml> [options]

ARBITER runs a concurrent round-robin tournament between UCI-like chess
engines, adjudicating and scoring every game.

Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *showVer {
		fmt.Println(version)
		return
	}
	if *configPath == "" {
		flag.Usage()
		logw.Exitf(ctx, "arbiter: -config is required")
	}

	defer engineproto.TerminateAll()

	tournament, err := config.Load(*configPath)
	if err != nil {
		logw.Exitf(ctx, "arbiter: %v", err)
	}

	sched, err := scheduler.New(tournament, report.DefaultReporter{})
	if err != nil {
		logw.Exitf(ctx, "arbiter: %v", err)
	}

	if *resume != "" {
		snap, err := snapshot.Load(*resume)
		if err != nil {
			logw.Exitf(ctx, "arbiter: resume: %v", err)
		}
		sched.SetScoreboard(snapshot.Restore(snap))
		logw.Infof(ctx, "arbiter: resuming from %s (%d games already completed)", *resume, snap.CompletedGames)
	}

	results := make(chan match.MatchData, tournament.Concurrency)
	done := make(chan error, 1)
	go func() {
		done <- sched.Run(ctx, results)
	}()

	// The scheduler's own reporter already prints per-game and interval
	// reports from the Output Funnel's single goroutine; this loop only watches for
	// completion and drives periodic snapshots.
	n := 0
	for range results {
		n++
		if *autosave != "" && tournament.AutosaveInterval > 0 && n%tournament.AutosaveInterval == 0 {
			if err := saveSnapshot(*autosave, *tournament, int64(n), sched.Scoreboard()); err != nil {
				logw.Warningf(ctx, "arbiter: autosave: %v", err)
			}
		}
	}
	report.DefaultReporter{}.EndTournament()

	if err := <-done; err != nil {
		logw.Exitf(ctx, "arbiter: %v", err)
	}
}

func saveSnapshot(path string, t config.Tournament, completed int64, board *stats.Scoreboard) error {
	return snapshot.Save(path, t, completed, board, board.Pairs())
}
