package match

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/zeusync/crobots/internal/core/arena"
	"github.com/zeusync/crobots/internal/core/events/bus"
	"github.com/zeusync/crobots/internal/core/models"
	"github.com/zeusync/crobots/internal/core/observability/log"
	"github.com/zeusync/crobots/internal/core/systems/physics"
)

// Entry describes one robot joining a match.
type Entry struct {
	Name       string
	Color      *models.Color
	Controller models.Controller
}

// Observer receives a snapshot after every tick.
type Observer interface {
	OnTick(snapshot arena.Snapshot)
}

// Outcome is how a match ended.
type Outcome string

const (
	OutcomeWon   Outcome = "won"
	OutcomeDraw  Outcome = "draw"
	OutcomeLimit Outcome = "limit"
)

// Result summarizes a finished match.
type Result struct {
	MatchID   string   `json:"match_id"`
	Seed      uint64   `json:"seed"`
	Outcome   Outcome  `json:"outcome"`
	Winner    string   `json:"winner,omitempty"`
	Cycles    uint64   `json:"cycles"`
	Destroyed []string `json:"destroyed"`
}

// Runner drives a BattleField the way an interactive session does: robots
// are spawned at random, the field is ticked on a timer, every living robot
// fires with a fixed chance after each tick, and the match stops on the
// first win.
type Runner struct {
	cfg       Config
	logger    log.Log
	bus       bus.EventBus
	field     *arena.BattleField
	rng       *rand.Rand
	seed      uint64
	matchID   string
	observers []Observer
	destroyed []string
}

// NewRunner creates a runner. logger and eventBus may be nil.
func NewRunner(cfg Config, logger log.Log, eventBus bus.EventBus) *Runner {
	if logger == nil {
		logger = log.Nop()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Runner{
		cfg:    cfg,
		logger: logger,
		bus:    eventBus,
		field:  arena.New(),
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		seed:   seed,
	}
}

// AddObserver registers o to receive per-tick snapshots.
func (r *Runner) AddObserver(o Observer) {
	r.observers = append(r.observers, o)
}

// Field exposes the underlying battlefield.
func (r *Runner) Field() *arena.BattleField { return r.field }

// Seed returns the effective seed.
func (r *Runner) Seed() uint64 { return r.seed }

// MatchID returns the ID of the match prepared by the last Setup.
func (r *Runner) MatchID() string { return r.matchID }

// Setup clears the field and spawns one robot per entry at a random integer
// position inside the spawn margin.
func (r *Runner) Setup(entries []Entry) error {
	r.field.Clear()
	r.destroyed = nil
	r.matchID = uuid.NewString()

	lo := int(r.cfg.SpawnMargin)
	span := int(physics.ArenaWidth) - 2*lo
	if span < 1 {
		lo, span = 0, int(physics.ArenaWidth)
	}

	for _, e := range entries {
		pos := physics.Vec2{
			X: float64(lo + r.rng.IntN(span)),
			Y: float64(lo + r.rng.IntN(span)),
		}
		opts := []models.Option{
			models.WithRand(rand.New(rand.NewPCG(r.rng.Uint64(), r.rng.Uint64()))),
		}
		if e.Controller != nil {
			opts = append(opts, models.WithController(e.Controller))
		}
		if e.Color != nil {
			opts = append(opts, models.WithColor(*e.Color))
		}
		if err := r.field.AddRobot(models.NewRobot(e.Name, pos, opts...)); err != nil {
			return err
		}
	}
	return nil
}

// Step advances one tick and then lets every living robot fire with the
// configured chance.
func (r *Runner) Step() arena.TickReport {
	report := r.field.Update()
	for _, robot := range r.field.Robots() {
		if robot.IsAlive() && r.rng.IntN(100) < r.cfg.FireChance {
			r.field.FireMissile(robot)
		}
	}
	return report
}

// Run ticks the match until a single robot survives, no robot survives, the
// tick limit is reached or ctx is done.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	alive := r.field.Alive()
	if len(alive) < 2 {
		return Result{}, ErrNotEnoughRobots
	}
	interval := r.cfg.TickInterval()
	if r.cfg.TickRate > 0 && interval <= 0 {
		return Result{}, fmt.Errorf("%w: %v per second", ErrInvalidTickRate, r.cfg.TickRate)
	}

	logger := r.logger.With(log.String("match", r.matchID))
	names := make([]string, len(alive))
	for i, robot := range alive {
		names[i] = robot.Name()
	}
	logger.Info("match started",
		log.Uint64("seed", r.seed),
		log.Int("robots", len(names)),
		log.Float64("tick_rate", r.cfg.TickRate),
	)
	r.publish(EventMatchStarted, StartedEvent{MatchID: r.matchID, Seed: r.seed, Robots: names})

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return r.result(""), ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return r.result(""), err
		}

		report := r.Step()
		for _, robot := range report.Destroyed() {
			r.destroyed = append(r.destroyed, robot.Name())
			logger.Info("robot destroyed", log.String("robot", robot.Name()), log.Uint64("cycle", report.Cycle))
			r.publish(EventRobotDestroyed, r.robotEvent(report.Cycle, robot))
		}
		r.notify()

		if winner, ok := report.Winner(); ok {
			logger.Info("battle won", log.String("robot", winner.Name()), log.Uint64("cycle", report.Cycle))
			r.publish(EventBattleWon, r.robotEvent(report.Cycle, winner))
			return r.finish(logger, OutcomeWon, winner.Name()), nil
		}
		if len(r.field.Alive()) == 0 {
			logger.Info("match drawn", log.Uint64("cycle", report.Cycle))
			return r.finish(logger, OutcomeDraw, ""), nil
		}
		if r.cfg.MaxTicks > 0 && report.Cycle >= r.cfg.MaxTicks {
			logger.Info("tick limit reached", log.Uint64("cycle", report.Cycle))
			return r.finish(logger, OutcomeLimit, ""), nil
		}
	}
}

func (r *Runner) finish(logger log.Log, outcome Outcome, winner string) Result {
	res := r.result(winner)
	res.Outcome = outcome
	logger.Debug("match finished", log.String("outcome", string(outcome)), log.Uint64("cycles", res.Cycles))
	r.publish(EventMatchFinished, res)
	return res
}

func (r *Runner) result(winner string) Result {
	destroyed := make([]string, len(r.destroyed))
	copy(destroyed, r.destroyed)
	return Result{
		MatchID:   r.matchID,
		Seed:      r.seed,
		Winner:    winner,
		Cycles:    r.field.Cycle(),
		Destroyed: destroyed,
	}
}

func (r *Runner) robotEvent(cycle uint64, robot *models.Robot) RobotEvent {
	return RobotEvent{MatchID: r.matchID, Cycle: cycle, RobotID: robot.ID().String(), Robot: robot.Name()}
}

func (r *Runner) notify() {
	if len(r.observers) == 0 {
		return
	}
	snapshot := r.field.Snapshot()
	for _, o := range r.observers {
		o.OnTick(snapshot)
	}
}
