package models

import "github.com/zeusync/crobots/internal/core/systems/physics"

// Missile constants.
const (
	MissileSpeed      = 10.0
	MissileDamage     = 10
	CollisionDistance = 10.0
)

// Missile is a projectile travelling in a straight line at fixed speed.
// It references its owner only to exclude it from collisions.
type Missile struct {
	owner    *Robot
	position physics.Vec2
	heading  float64
	active   bool
}

// NewMissile creates an active missile.
func NewMissile(owner *Robot, position physics.Vec2, heading float64) *Missile {
	return &Missile{
		owner:    owner,
		position: position,
		heading:  physics.NormalizeAngle(heading),
		active:   true,
	}
}

func (m *Missile) Owner() *Robot          { return m.owner }
func (m *Missile) Position() physics.Vec2 { return m.position }
func (m *Missile) Heading() float64       { return m.heading }
func (m *Missile) Speed() float64         { return MissileSpeed }
func (m *Missile) Damage() int            { return MissileDamage }
func (m *Missile) IsActive() bool         { return m.active }
func (m *Missile) Deactivate()            { m.active = false }

// Update advances an active missile by one tick.
func (m *Missile) Update() {
	if !m.active {
		return
	}
	m.position = physics.Advance(m.position, m.heading, MissileSpeed)
}

// CheckCollision reports whether the missile is strictly closer than
// collisionDistance to target. The owner and dead robots never collide.
func (m *Missile) CheckCollision(target *Robot, collisionDistance float64) bool {
	if target == m.owner || !target.IsAlive() {
		return false
	}
	return physics.Distance(m.position, target.position) < collisionDistance
}

// State returns a copy of the missile's observable state.
func (m *Missile) State() MissileState {
	s := MissileState{Position: m.position, Heading: m.heading}
	if m.owner != nil {
		s.Owner = m.owner.id.String()
	}
	return s
}

// MissileState is a point-in-time view of a missile for rendering.
type MissileState struct {
	Owner    string       `json:"owner"`
	Position physics.Vec2 `json:"position"`
	Heading  float64      `json:"heading"`
}
