package behavior

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/crobots/internal/core/arena"
	"github.com/zeusync/crobots/internal/core/models"
	"github.com/zeusync/crobots/internal/core/systems/physics"
)

func newRobot(c models.Controller, x, y, heading float64) *models.Robot {
	return models.NewRobot("bot", physics.Vec2{X: x, Y: y},
		models.WithController(c),
		models.WithHeading(heading),
		models.WithRand(rand.New(rand.NewPCG(1, 2))),
	)
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"counter", "hunter", "rabbit", "rook", "sniper"}, Names())

	for _, name := range []string{"Sniper", "ROOK", " rabbit ", "counter", "Hunter"} {
		c, err := New(name)
		require.NoError(t, err, name)
		assert.NotNil(t, c)
	}

	a, _ := New("hunter")
	b, _ := New("hunter")
	assert.NotSame(t, a, b, "stateful behaviours are not shared")

	_, err := New("kamikaze")
	assert.ErrorIs(t, err, ErrUnknownBehavior)
}

func TestCounterCirclesAndCoversBack(t *testing.T) {
	r := newRobot(Counter{}, 500, 500, 0)

	r.Update()

	assert.InDelta(t, 5.0, r.Heading(), 1e-9)
	assert.InDelta(t, 0.5, r.Speed(), 1e-9)
	assert.InDelta(t, 10.0, r.TurretHeading(), 1e-9)

	for range 100 {
		r.Update()
	}
	assert.Equal(t, 2.0, r.Speed())
}

func TestRookTurnsAtWalls(t *testing.T) {
	open := newRobot(Rook{}, 500, 500, 0)
	open.Update()
	assert.InDelta(t, 0.0, open.Heading(), 1e-9)

	walled := newRobot(Rook{}, 50, 500, 0)
	walled.Update()
	assert.InDelta(t, 5.0, walled.Heading(), 1e-9)
	assert.InDelta(t, 0.5, walled.Speed(), 1e-9)
}

func TestSniperAndRabbitStayWithinLimits(t *testing.T) {
	for _, c := range []models.Controller{Sniper{}, Rabbit{}} {
		r := newRobot(c, 500, 500, 90)
		for range 200 {
			r.Update()
			assert.LessOrEqual(t, r.Speed(), 4.0)
			assert.GreaterOrEqual(t, r.Heading(), 0.0)
			assert.Less(t, r.Heading(), 360.0)
		}
	}
}

func TestSniperCruisesAtTwo(t *testing.T) {
	r := newRobot(Sniper{}, 500, 500, 90)
	for range 10 {
		r.Update()
	}
	assert.Equal(t, 2.0, r.Speed())
}

func TestHunterSweepsThenLocks(t *testing.T) {
	bf := arena.New()
	hunter := newRobot(&Hunter{}, 500, 500, 0)
	// Prey sits at bearing 90 from the hunter.
	prey := models.NewRobot("prey", physics.Vec2{X: 500, Y: 700}, models.WithHeading(0))
	require.NoError(t, bf.AddRobot(hunter))
	require.NoError(t, bf.AddRobot(prey))

	for range 5 {
		bf.Update()
	}
	// Still sweeping: speed is held at 1.
	assert.LessOrEqual(t, hunter.Speed(), 1.0)

	// The sweep reaches the prey's bearing (about 92 degrees) after ten ticks
	// and the hunter starts closing in.
	for range 7 {
		bf.Update()
	}
	assert.Greater(t, hunter.Speed(), 1.0)
	assert.Equal(t, physics.Vec2{X: 500, Y: 700}, prey.Position())
}
