package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zeusync/crobots/internal/core/behavior"
	"github.com/zeusync/crobots/internal/core/match"
	"github.com/zeusync/crobots/internal/core/models"
	"github.com/zeusync/crobots/internal/core/observability/log"
)

// EnvPrefix prefixes environment overrides, e.g. CROBOTS_MATCH_TICK_RATE.
const EnvPrefix = "CROBOTS"

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// MatchConfig holds match loop settings.
type MatchConfig struct {
	TickRate    float64 `mapstructure:"tick_rate"`
	FireChance  int     `mapstructure:"fire_chance"`
	MaxTicks    uint64  `mapstructure:"max_ticks"`
	Seed        uint64  `mapstructure:"seed"`
	SpawnMargin float64 `mapstructure:"spawn_margin"`
}

// RobotConfig declares one robot. Exactly one of Behavior or Script is set.
type RobotConfig struct {
	Name     string `mapstructure:"name"`
	Behavior string `mapstructure:"behavior"`
	Script   string `mapstructure:"script"`
	Color    string `mapstructure:"color"`
}

// SpectatorConfig holds spectator feed settings. An empty Addr disables it.
// Linger keeps the feed up after the match ends so viewers see the result.
type SpectatorConfig struct {
	Addr   string        `mapstructure:"addr"`
	Linger time.Duration `mapstructure:"linger"`
}

// TournamentConfig holds tournament settings.
type TournamentConfig struct {
	Rounds  int    `mapstructure:"rounds"`
	Workers int    `mapstructure:"workers"`
	Output  string `mapstructure:"output"`
}

// Config is the complete application configuration.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Match      MatchConfig      `mapstructure:"match"`
	Robots     []RobotConfig    `mapstructure:"robots"`
	Spectator  SpectatorConfig  `mapstructure:"spectator"`
	Tournament TournamentConfig `mapstructure:"tournament"`
}

func setDefaults(v *viper.Viper) {
	defaults := match.DefaultConfig()

	v.SetDefault("log.level", "info")

	v.SetDefault("match.tick_rate", defaults.TickRate)
	v.SetDefault("match.fire_chance", defaults.FireChance)
	v.SetDefault("match.max_ticks", defaults.MaxTicks)
	v.SetDefault("match.seed", defaults.Seed)
	v.SetDefault("match.spawn_margin", defaults.SpawnMargin)

	v.SetDefault("robots", []map[string]any{
		{"name": "Sniper", "behavior": "sniper", "color": "#ff0000"},
		{"name": "Rook", "behavior": "rook", "color": "#0000ff"},
		{"name": "Rabbit", "behavior": "rabbit", "color": "#008000"},
		{"name": "Counter", "behavior": "counter", "color": "#ffa500"},
	})

	v.SetDefault("spectator.addr", "")
	v.SetDefault("spectator.linger", 10*time.Second)

	v.SetDefault("tournament.rounds", 0)
	v.SetDefault("tournament.workers", 4)
	v.SetDefault("tournament.output", "")
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"log-level":   "log.level",
	"tick-rate":   "match.tick_rate",
	"fire-chance": "match.fire_chance",
	"max-ticks":   "match.max_ticks",
	"seed":        "match.seed",
	"spectate":    "spectator.addr",
	"linger":      "spectator.linger",
	"tournament":  "tournament.rounds",
	"workers":     "tournament.workers",
	"output":      "tournament.output",
}

// Flags declares the command line flags understood by Load.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("config", "c", "", "path to a YAML config file")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.Float64("tick-rate", 30, "ticks per second, 0 runs unpaced")
	fs.Int("fire-chance", 5, "percent chance per tick that a living robot fires")
	fs.Uint64("max-ticks", 0, "stop a match after this many ticks, 0 is unlimited")
	fs.Uint64("seed", 0, "random seed, 0 picks one from the clock")
	fs.String("spectate", "", "serve the spectator feed on this address")
	fs.Duration("linger", 10*time.Second, "keep the spectator feed up this long after the match ends")
	fs.Int("tournament", 0, "play this many unpaced rounds instead of a single match")
	fs.Int("workers", 4, "rounds played in parallel")
	fs.String("output", "", "write tournament results as CSV to this path")
	fs.StringArray("script", nil, "add a robot from a YAML behaviour script (repeatable)")
	return fs
}

// Load builds the configuration from defaults, the optional YAML file at
// path, CROBOTS_ environment variables and flags explicitly set on fs, in
// increasing precedence. fs may be nil.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if fs != nil {
		if scripts, err := fs.GetStringArray("script"); err == nil {
			for _, script := range scripts {
				cfg.Robots = append(cfg.Robots, RobotConfig{Script: script})
			}
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the match loop cannot run with.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		invalid("log.level: %v", err)
	}
	if c.Match.TickRate < 0 || c.Match.TickRate > match.MaxTickRate {
		invalid("match.tick_rate %v outside 0..%v", c.Match.TickRate, float64(match.MaxTickRate))
	}
	if c.Match.FireChance < 0 || c.Match.FireChance > 100 {
		invalid("match.fire_chance %d outside 0..100", c.Match.FireChance)
	}
	if c.Match.SpawnMargin < 0 || c.Match.SpawnMargin*2 >= 1000 {
		invalid("match.spawn_margin %v leaves no spawn area", c.Match.SpawnMargin)
	}
	if c.Spectator.Linger < 0 {
		invalid("spectator.linger must not be negative")
	}
	if c.Tournament.Rounds < 0 {
		invalid("tournament.rounds must not be negative")
	}
	if c.Tournament.Workers < 1 {
		invalid("tournament.workers must be at least 1")
	}
	for i, r := range c.Robots {
		switch {
		case r.Behavior == "" && r.Script == "":
			invalid("robots[%d]: behavior or script is required", i)
		case r.Behavior != "" && r.Script != "":
			invalid("robots[%d]: behavior and script are exclusive", i)
		case r.Script == "" && r.Name == "":
			invalid("robots[%d]: name is required", i)
		}
		if r.Color != "" {
			if _, err := models.ParseColor(r.Color); err != nil {
				invalid("robots[%d]: %v", i, err)
			}
		}
	}
	return errors.Join(errs...)
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() log.Level {
	level, _ := log.ParseLevel(c.Log.Level)
	return level
}

// ToMatchConfig converts the match section for the runner.
func (c *Config) ToMatchConfig() match.Config {
	return match.Config{
		TickRate:    c.Match.TickRate,
		FireChance:  c.Match.FireChance,
		MaxTicks:    c.Match.MaxTicks,
		Seed:        c.Match.Seed,
		SpawnMargin: c.Match.SpawnMargin,
	}
}

// Entries builds fresh match entries for the configured robots. Scripts are
// read from disk on every call so each round gets independent controllers.
func (c *Config) Entries() ([]match.Entry, error) {
	entries := make([]match.Entry, 0, len(c.Robots))
	for _, r := range c.Robots {
		entry, err := r.entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r RobotConfig) entry() (match.Entry, error) {
	entry := match.Entry{Name: r.Name}

	if r.Script != "" {
		script, err := behavior.LoadScriptFile(r.Script)
		if err != nil {
			return match.Entry{}, err
		}
		if entry.Name == "" {
			entry.Name = script.Name
		}
		entry.Color = script.Color
		entry.Controller = script.Controller()
	} else {
		controller, err := behavior.New(r.Behavior)
		if err != nil {
			return match.Entry{}, err
		}
		entry.Controller = controller
	}

	if r.Color != "" {
		color, err := models.ParseColor(r.Color)
		if err != nil {
			return match.Entry{}, fmt.Errorf("%w: robot %q: %v", ErrInvalidConfig, entry.Name, err)
		}
		entry.Color = &color
	}
	return entry, nil
}
