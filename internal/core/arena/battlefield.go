package arena

import (
	"github.com/zeusync/crobots/internal/core/models"
	"github.com/zeusync/crobots/internal/core/systems/physics"
)

// Arena dimensions.
const (
	Width  = physics.ArenaWidth
	Height = physics.ArenaHeight
)

// ScanRange is the maximum distance at which ScanForTarget sees a robot.
const ScanRange = 700.0

var _ models.Scanner = (*BattleField)(nil)

// BattleField owns the robots and missiles of one match and advances them
// one tick per Update. It is not safe for concurrent use; callers serialize
// every call.
type BattleField struct {
	robots   []*models.Robot
	missiles []*models.Missile
	cycle    uint64
}

// New creates an empty battlefield.
func New() *BattleField {
	return &BattleField{}
}

// AddRobot enrolls r at the end of the join order.
func (b *BattleField) AddRobot(r *models.Robot) error {
	if r == nil {
		return ErrNilRobot
	}
	b.robots = append(b.robots, r)
	r.Enroll(b)
	return nil
}

// Clear removes all robots and missiles and resets the cycle counter.
func (b *BattleField) Clear() {
	for _, r := range b.robots {
		r.Enroll(nil)
	}
	b.robots = nil
	b.missiles = nil
	b.cycle = 0
}

// Cycle returns the number of Update calls since creation or the last Clear.
func (b *BattleField) Cycle() uint64 { return b.cycle }

// Robots returns the robots in join order.
func (b *BattleField) Robots() []*models.Robot {
	out := make([]*models.Robot, len(b.robots))
	copy(out, b.robots)
	return out
}

// Missiles returns the missiles currently in flight.
func (b *BattleField) Missiles() []*models.Missile {
	out := make([]*models.Missile, len(b.missiles))
	copy(out, b.missiles)
	return out
}

// Alive returns the living robots in join order.
func (b *BattleField) Alive() []*models.Robot {
	out := make([]*models.Robot, 0, len(b.robots))
	for _, r := range b.robots {
		if r.IsAlive() {
			out = append(out, r)
		}
	}
	return out
}

// Update advances the world by one tick and reports what happened in it.
func (b *BattleField) Update() TickReport {
	b.cycle++
	report := TickReport{Cycle: b.cycle}

	for _, r := range b.robots {
		r.Update()
		r.Place(physics.ClampToArena(r.Position()))
	}

	b.processMissiles(&report)
	b.checkForWinner(&report)

	return report
}

func (b *BattleField) processMissiles(report *TickReport) {
	// Hits can deactivate missiles mid-pass; iterate over a snapshot.
	inFlight := b.Missiles()
	for _, m := range inFlight {
		if !m.IsActive() {
			continue
		}

		m.Update()
		if !physics.InArena(m.Position()) {
			m.Deactivate()
			continue
		}

		for _, r := range b.robots {
			if !m.CheckCollision(r, models.CollisionDistance) {
				continue
			}
			r.TakeDamage(m.Damage())
			m.Deactivate()
			if !r.IsAlive() {
				report.Events = append(report.Events, Event{Kind: EventRobotDestroyed, Cycle: b.cycle, Robot: r})
			}
			break
		}
	}

	active := b.missiles[:0]
	for _, m := range b.missiles {
		if m.IsActive() {
			active = append(active, m)
		}
	}
	clear(b.missiles[len(active):])
	b.missiles = active
}

func (b *BattleField) checkForWinner(report *TickReport) {
	var survivor *models.Robot
	alive := 0
	for _, r := range b.robots {
		if r.IsAlive() {
			alive++
			survivor = r
		}
	}
	if alive == 1 {
		report.Events = append(report.Events, Event{Kind: EventBattleWon, Cycle: b.cycle, Robot: survivor})
	}
}

// FireMissile launches a missile from r along its turret heading. Dead
// robots cannot fire and yield nil.
func (b *BattleField) FireMissile(r *models.Robot) *models.Missile {
	if r == nil || !r.IsAlive() {
		return nil
	}
	m := models.NewMissile(r, r.Position(), r.TurretHeading())
	b.missiles = append(b.missiles, m)
	return m
}

// ScanForTarget returns the nearest living robot other than scanner that is
// closer than ScanRange and whose bearing lies in the cone of width
// resolution centred on direction. Equal distances resolve in join order.
func (b *BattleField) ScanForTarget(scanner *models.Robot, direction, resolution float64) *models.Robot {
	start := direction - resolution/2
	end := direction + resolution/2

	var (
		best     *models.Robot
		bestDist float64
	)
	for _, r := range b.robots {
		if r == scanner || !r.IsAlive() {
			continue
		}
		dist := scanner.DistanceTo(r)
		if dist >= ScanRange || !physics.IsAngleInRange(scanner.AngleTo(r), start, end) {
			continue
		}
		if best == nil || dist < bestDist {
			best, bestDist = r, dist
		}
	}
	return best
}

// Snapshot captures the renderable state of the battlefield.
func (b *BattleField) Snapshot() Snapshot {
	s := Snapshot{
		Cycle:    b.cycle,
		Width:    Width,
		Height:   Height,
		Robots:   make([]models.RobotState, len(b.robots)),
		Missiles: make([]models.MissileState, len(b.missiles)),
	}
	for i, r := range b.robots {
		s.Robots[i] = r.State()
	}
	for i, m := range b.missiles {
		s.Missiles[i] = m.State()
	}
	return s
}

// Snapshot is a serializable view of one tick.
type Snapshot struct {
	Cycle    uint64                `json:"cycle"`
	Width    float64               `json:"width"`
	Height   float64               `json:"height"`
	Robots   []models.RobotState   `json:"robots"`
	Missiles []models.MissileState `json:"missiles"`
}
