package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/zeusync/crobots/internal/config"
	"github.com/zeusync/crobots/internal/core/events/bus"
	"github.com/zeusync/crobots/internal/core/match"
	"github.com/zeusync/crobots/internal/core/observability/log"
	"github.com/zeusync/crobots/internal/injector"
	"github.com/zeusync/crobots/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "crobots:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := config.Flags("crobots")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := fs.GetString("config")
	if err != nil {
		return err
	}
	cfg, err := config.Load(path, fs)
	if err != nil {
		return err
	}

	app, err := injector.InitializeApp(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.Logger.Sync() }()

	if cfg.Tournament.Rounds > 0 {
		return runTournament(ctx, app)
	}
	return runMatch(ctx, app)
}

func runMatch(ctx context.Context, app *injector.App) error {
	entries, err := app.Config.Entries()
	if err != nil {
		return err
	}
	if err = app.Runner.Setup(entries); err != nil {
		return err
	}

	sub, err := app.Bus.Subscribe(match.EventRobotDestroyed, printEvent)
	if err != nil {
		return err
	}
	defer func() { _ = app.Bus.Unsubscribe(sub) }()

	g, ctx := errgroup.WithContext(ctx)
	finished := make(chan struct{})

	if app.Spectator != nil {
		g.Go(func() error {
			return app.Spectator.Serve(ctx, finished, app.Config.Spectator.Linger)
		})
	}

	g.Go(func() error {
		defer close(finished)
		res, err := app.Runner.Run(ctx)
		if err != nil {
			return err
		}
		report(res)
		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		app.Logger.Info("match interrupted")
		return nil
	}
	return err
}

// printEvent echoes destructions to the console as they happen.
func printEvent(e bus.Event) error {
	if ev, ok := e.Data().(match.RobotEvent); ok {
		fmt.Printf("%s destroyed at tick %d\n", ev.Robot, ev.Cycle)
	}
	return nil
}

func runTournament(ctx context.Context, app *injector.App) error {
	rounds := app.Config.Tournament.Rounds
	results, summary, err := app.Tournament.Run(ctx, rounds, app.Config.Entries)
	if err != nil {
		return err
	}

	if out := app.Config.Tournament.Output; out != "" {
		if err = telemetry.WriteResultsFile(out, results); err != nil {
			return err
		}
		app.Logger.Info("results written", log.String("path", out), log.Int("rounds", len(results)))
	}

	fmt.Printf("%d rounds, %d draws, %d hit the tick limit, mean length %.1f ticks (sd %.1f)\n",
		summary.Rounds, summary.Draws, summary.Limits, summary.MeanCycles, summary.StdDevCycles)
	return telemetry.WriteStandings(os.Stdout, summary)
}

func report(res match.Result) {
	switch res.Outcome {
	case match.OutcomeWon:
		fmt.Printf("%s wins after %d ticks\n", res.Winner, res.Cycles)
	case match.OutcomeDraw:
		fmt.Printf("draw after %d ticks\n", res.Cycles)
	default:
		fmt.Printf("no winner after %d ticks\n", res.Cycles)
	}
}
