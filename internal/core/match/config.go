package match

import "time"

// MaxTickRate is the fastest pace a ticker can keep: one tick per nanosecond.
const MaxTickRate = 1e9

// Config controls how a match is driven.
type Config struct {
	// TickRate is the number of ticks per second. Zero runs unpaced.
	TickRate float64
	// FireChance is the percent chance per tick that each living robot fires.
	FireChance int
	// MaxTicks stops the match after this many ticks. Zero is unlimited.
	MaxTicks uint64
	// Seed drives spawn positions, headings, robot random sources and firing.
	// Zero picks a time-based seed.
	Seed uint64
	// SpawnMargin keeps spawn points this far from the walls.
	SpawnMargin float64
}

// DefaultConfig mirrors a desktop session: 30 ticks a second, 5% fire chance.
func DefaultConfig() Config {
	return Config{
		TickRate:    30,
		FireChance:  5,
		SpawnMargin: 100,
	}
}

// TickInterval returns the pause between ticks, or zero when unpaced. Rates
// above MaxTickRate truncate to a non-positive interval.
func (c Config) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / c.TickRate)
}
