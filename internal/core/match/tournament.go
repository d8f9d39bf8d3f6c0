package match

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/zeusync/crobots/internal/core/events/bus"
	"github.com/zeusync/crobots/internal/core/observability/log"
	"github.com/zeusync/crobots/pkg/concurrent"
	"gonum.org/v1/gonum/stat"
)

// DefaultTournamentMaxTicks bounds rounds when the config leaves MaxTicks
// unlimited, since nothing guarantees a match ever ends.
const DefaultTournamentMaxTicks = 10_000

// EntryFactory builds fresh entries for one round. Controllers may keep
// per-robot state and rounds run concurrently, so entries are never shared.
type EntryFactory func() ([]Entry, error)

// RoundResult is the result of one tournament round.
type RoundResult struct {
	Round int
	Result
}

// Summary aggregates a tournament.
type Summary struct {
	Rounds       int
	Wins         map[string]int
	Draws        int
	Limits       int
	MeanCycles   float64
	StdDevCycles float64
}

// Tournament runs independent matches in parallel. Each match owns its own
// battlefield, so the engine stays single-threaded per match.
type Tournament struct {
	cfg     Config
	workers int
	logger  log.Log
	bus     bus.EventBus
}

// NewTournament creates a tournament. Rounds are unpaced regardless of
// cfg.TickRate.
func NewTournament(cfg Config, workers int, logger log.Log, eventBus bus.EventBus) *Tournament {
	if logger == nil {
		logger = log.Nop()
	}
	cfg.TickRate = 0
	if cfg.MaxTicks == 0 {
		cfg.MaxTicks = DefaultTournamentMaxTicks
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	return &Tournament{cfg: cfg, workers: workers, logger: logger, bus: eventBus}
}

// RoundSeed derives the seed of a round from the tournament seed.
func RoundSeed(seed uint64, round int) uint64 {
	s := xxhash.Sum64String(fmt.Sprintf("%d/%d", seed, round))
	if s == 0 {
		s = 1
	}
	return s
}

// Run plays rounds matches and returns them in round order with a summary.
func (t *Tournament) Run(ctx context.Context, rounds int, entries EntryFactory) ([]RoundResult, Summary, error) {
	if rounds < 1 {
		return nil, Summary{}, ErrNoRounds
	}

	t.logger.Info("tournament started",
		log.Int("rounds", rounds),
		log.Int("workers", t.workers),
		log.Uint64("seed", t.cfg.Seed),
	)

	indices := make([]int, rounds)
	for i := range indices {
		indices[i] = i + 1
	}

	results, err := concurrent.Map(ctx, indices, t.workers, func(ctx context.Context, _ int, round int) (RoundResult, error) {
		es, err := entries()
		if err != nil {
			return RoundResult{}, fmt.Errorf("round %d: %w", round, err)
		}
		cfg := t.cfg
		cfg.Seed = RoundSeed(t.cfg.Seed, round)

		runner := NewRunner(cfg, t.logger.With(log.Int("round", round)), t.bus)
		if err = runner.Setup(es); err != nil {
			return RoundResult{}, fmt.Errorf("round %d: %w", round, err)
		}
		res, err := runner.Run(ctx)
		if err != nil {
			return RoundResult{}, fmt.Errorf("round %d: %w", round, err)
		}
		return RoundResult{Round: round, Result: res}, nil
	})
	if err != nil {
		return nil, Summary{}, err
	}

	summary := Summarize(results)
	t.logger.Info("tournament finished",
		log.Int("rounds", summary.Rounds),
		log.Int("draws", summary.Draws),
		log.Float64("mean_cycles", summary.MeanCycles),
	)
	return results, summary, nil
}

// Summarize tallies wins and match-length statistics.
func Summarize(results []RoundResult) Summary {
	s := Summary{Rounds: len(results), Wins: make(map[string]int)}
	cycles := make([]float64, len(results))
	for i, r := range results {
		cycles[i] = float64(r.Cycles)
		switch r.Outcome {
		case OutcomeWon:
			s.Wins[r.Winner]++
		case OutcomeDraw:
			s.Draws++
		case OutcomeLimit:
			s.Limits++
		}
	}
	if len(cycles) > 0 {
		s.MeanCycles = stat.Mean(cycles, nil)
	}
	if len(cycles) > 1 {
		s.StdDevCycles = stat.StdDev(cycles, nil)
	}
	return s
}
