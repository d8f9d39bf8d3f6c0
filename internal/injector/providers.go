package injector

import (
	"github.com/google/wire"
	"github.com/zeusync/crobots/internal/config"
	"github.com/zeusync/crobots/internal/core/events/bus"
	"github.com/zeusync/crobots/internal/core/match"
	"github.com/zeusync/crobots/internal/core/observability/log"
	"github.com/zeusync/crobots/internal/server"
)

// App is the object graph behind the CLI.
type App struct {
	Config     *config.Config
	Logger     *log.Logger
	Bus        bus.EventBus
	Runner     *match.Runner
	Tournament *match.Tournament
	Spectator  *server.SpectatorServer
}

// ProviderSet wires an App from a loaded config.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideBus,
	ProvideMatchConfig,
	ProvideSpectator,
	ProvideRunner,
	ProvideTournament,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg *config.Config) *log.Logger {
	return log.New(cfg.LogLevel())
}

func ProvideBus() bus.EventBus {
	return bus.New()
}

func ProvideMatchConfig(cfg *config.Config) match.Config {
	return cfg.ToMatchConfig()
}

// ProvideSpectator returns nil when no spectator address is configured.
// Otherwise the server follows every match event on the bus.
func ProvideSpectator(cfg *config.Config, logger *log.Logger, eventBus bus.EventBus) (*server.SpectatorServer, error) {
	if cfg.Spectator.Addr == "" {
		return nil, nil
	}
	spectator := server.NewSpectatorServer(cfg.Spectator.Addr, logger)
	if err := spectator.Follow(eventBus); err != nil {
		return nil, err
	}
	return spectator, nil
}

// ProvideRunner creates the single-match runner and attaches the spectator
// feed when there is one.
func ProvideRunner(mc match.Config, logger *log.Logger, eventBus bus.EventBus, spectator *server.SpectatorServer) *match.Runner {
	runner := match.NewRunner(mc, logger, eventBus)
	if spectator != nil {
		runner.AddObserver(spectator)
	}
	return runner
}

func ProvideTournament(cfg *config.Config, mc match.Config, logger *log.Logger, eventBus bus.EventBus) *match.Tournament {
	return match.NewTournament(mc, cfg.Tournament.Workers, logger, eventBus)
}
