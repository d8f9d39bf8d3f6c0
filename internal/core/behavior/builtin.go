package behavior

import (
	"github.com/zeusync/crobots/internal/core/models"
	"github.com/zeusync/crobots/internal/core/systems/physics"
)

const arenaSize = physics.ArenaWidth

// Sniper moves slowly with small random course corrections, scans ahead and
// fires ahead three ticks in ten.
type Sniper struct{}

func (Sniper) Execute(api *models.API) {
	api.Drive(api.Heading()+float64(api.Random(20))-10, 2)
	api.Scan(api.Heading(), 10)
	if api.Random(10) < 3 {
		api.Cannon(api.Heading(), 500)
	}
}

// Rook drives straight, turns right near the walls and fires in random
// directions.
type Rook struct{}

// RookWallMargin is how close to a wall Rook gets before turning.
const RookWallMargin = 100.0

func (Rook) Execute(api *models.API) {
	api.Drive(api.Heading(), 3)
	if nearWall(api, RookWallMargin) {
		api.Drive(api.Heading()+90, 3)
	}
	api.Cannon(api.Heading()+float64(api.Random(360)), 500)
}

// Rabbit runs fast in random directions and fires ahead two ticks in ten.
type Rabbit struct{}

func (Rabbit) Execute(api *models.API) {
	api.Drive(float64(api.Random(360)), 4)
	if api.Random(10) < 2 {
		api.Cannon(api.Heading(), 700)
	}
}

// Counter circles and covers its back.
type Counter struct{}

func (Counter) Execute(api *models.API) {
	api.Drive(api.Heading()+5, 2)
	api.Scan(api.Heading()+180, 5)
	api.Cannon(api.Heading()+180, 500)
}

// Hunter sweeps the arena with its scanner and, once something is in the
// cone, aims at it and closes in. It keeps per-robot state, so every robot
// needs its own Hunter.
type Hunter struct {
	sweep float64
}

// Hunter tuning.
const (
	HunterResolution = 20.0
	HunterSweepStep  = 10.0
	HunterCloseRange = 150.0
)

func (h *Hunter) Execute(api *models.API) {
	dist, ok := api.Locate(h.sweep, HunterResolution)
	if !ok {
		h.sweep = physics.NormalizeAngle(h.sweep + HunterSweepStep)
		api.Scan(h.sweep, HunterResolution)
		api.Drive(api.Heading(), 1)
		return
	}

	api.Cannon(h.sweep, dist)
	speed := 4.0
	if dist < HunterCloseRange {
		speed = 0
	}
	api.Drive(h.sweep, speed)
}

func nearWall(api *models.API, margin float64) bool {
	return api.X() < margin || api.X() > arenaSize-margin ||
		api.Y() < margin || api.Y() > arenaSize-margin
}
