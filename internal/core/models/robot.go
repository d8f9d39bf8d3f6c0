package models

import (
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/zeusync/crobots/internal/core/systems/physics"
)

// Robot limits.
const (
	MaxHealth           = 100
	MaxSpeed            = 5.0
	Acceleration        = 0.5  // units/tick per tick
	TurnRate            = 5.0  // degrees per tick
	TurretRotationSpeed = 10.0 // degrees per tick
)

// Robot is an arena combatant. Kinematic state is read through accessors;
// commands issued through Drive, Scan and Cannon only set targets that the
// next Update integrates toward.
type Robot struct {
	id    uuid.UUID
	name  string
	color Color

	position      physics.Vec2
	heading       float64
	turretHeading float64
	speed         float64
	health        int

	targetSpeed         float64
	targetHeading       float64
	targetTurretHeading float64

	controller Controller
	api        *API
	rng        *rand.Rand
	scanner    Scanner
}

type robotOptions struct {
	color      Color
	hasColor   bool
	controller Controller
	rng        *rand.Rand
	heading    float64
	hasHeading bool
	speed      float64
}

// Option configures a Robot at construction.
type Option func(*robotOptions)

// WithController binds the behaviour invoked once per Update.
func WithController(c Controller) Option {
	return func(o *robotOptions) { o.controller = c }
}

// WithRand sets the random source used for the initial heading and for
// API.Random.
func WithRand(r *rand.Rand) Option {
	return func(o *robotOptions) { o.rng = r }
}

// WithHeading fixes the initial heading instead of drawing it at random.
func WithHeading(deg float64) Option {
	return func(o *robotOptions) {
		o.heading = deg
		o.hasHeading = true
	}
}

// WithSpeed sets the initial speed, which also becomes the initial target speed.
func WithSpeed(speed float64) Option {
	return func(o *robotOptions) { o.speed = speed }
}

// WithColor sets the display colour. Defaults to ColorFromName.
func WithColor(c Color) Option {
	return func(o *robotOptions) {
		o.color = c
		o.hasColor = true
	}
}

// NewRobot creates a living robot at start. Unless WithHeading is given the
// heading is a uniform integer in [0,360) drawn from the robot's random
// source; the turret starts aligned with the hull.
func NewRobot(name string, start physics.Vec2, opts ...Option) *Robot {
	o := robotOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if !o.hasHeading {
		o.heading = float64(o.rng.IntN(360))
	}
	if !o.hasColor {
		o.color = ColorFromName(name)
	}

	heading := physics.NormalizeAngle(o.heading)
	speed := physics.Clamp(o.speed, 0, MaxSpeed)

	r := &Robot{
		id:                  uuid.New(),
		name:                name,
		color:               o.color,
		position:            start,
		heading:             heading,
		turretHeading:       heading,
		speed:               speed,
		health:              MaxHealth,
		targetSpeed:         speed,
		targetHeading:       heading,
		targetTurretHeading: heading,
		controller:          o.controller,
		rng:                 o.rng,
	}
	r.api = &API{robot: r}
	return r
}

func (r *Robot) ID() uuid.UUID          { return r.id }
func (r *Robot) Name() string           { return r.name }
func (r *Robot) Color() Color           { return r.color }
func (r *Robot) Position() physics.Vec2 { return r.position }
func (r *Robot) Heading() float64       { return r.heading }
func (r *Robot) TurretHeading() float64 { return r.turretHeading }
func (r *Robot) Speed() float64         { return r.speed }
func (r *Robot) Health() int            { return r.health }
func (r *Robot) IsAlive() bool          { return r.health > 0 }
func (r *Robot) API() *API              { return r.api }
func (r *Robot) Controller() Controller { return r.controller }
func (r *Robot) Place(p physics.Vec2)   { r.position = p }
func (r *Robot) Enroll(s Scanner)       { r.scanner = s }
func (r *Robot) String() string         { return r.name }

// DistanceTo returns the Euclidean distance to o.
func (r *Robot) DistanceTo(o *Robot) float64 {
	return physics.Distance(r.position, o.position)
}

// AngleTo returns the bearing to o in degrees, normalized to [0,360).
func (r *Robot) AngleTo(o *Robot) float64 {
	return physics.Bearing(r.position, o.position)
}

// Drive sets the target heading and speed.
func (r *Robot) Drive(heading, speed float64) {
	r.targetHeading = physics.NormalizeAngle(heading)
	r.targetSpeed = physics.Clamp(speed, 0, MaxSpeed)
}

// Scan points the turret toward direction. It never identifies a target;
// resolution only matters to the battlefield's scan query.
func (r *Robot) Scan(direction, _ float64) int {
	r.targetTurretHeading = physics.NormalizeAngle(direction)
	return 0
}

// Cannon points the turret toward direction. Range is not enforced and the
// projectile itself is launched by the battlefield.
func (r *Robot) Cannon(direction, _ float64) bool {
	r.targetTurretHeading = physics.NormalizeAngle(direction)
	return true
}

// TakeDamage lowers health by amount, never below zero.
func (r *Robot) TakeDamage(amount int) {
	r.health = max(0, r.health-amount)
}

// Update runs the controller and then integrates one tick of motion toward
// the current targets. Dead robots are inert.
func (r *Robot) Update() {
	if !r.IsAlive() {
		return
	}

	if r.controller != nil {
		r.controller.Execute(r.api)
	}

	// Speed steps by at most Acceleration and stops on the target instead of
	// overshooting it by a fixed step.
	r.speed = physics.Clamp(physics.Approach(r.speed, r.targetSpeed, Acceleration), 0, MaxSpeed)
	// Hull and turret turn the short way round. A plain target-current delta
	// would take the long way across 0 degrees, e.g. 355 -> 5 via 180.
	r.heading = r.turn(r.heading, r.targetHeading, TurnRate)
	r.turretHeading = r.turn(r.turretHeading, r.targetTurretHeading, TurretRotationSpeed)
	r.position = physics.Advance(r.position, r.heading, r.speed)
}

// turn rotates from toward target by at most rate degrees, the short way round.
func (r *Robot) turn(from, target, rate float64) float64 {
	delta := physics.Clamp(physics.AngularDelta(from, target), -rate, rate)
	return physics.NormalizeAngle(from + delta)
}

// State returns a copy of the robot's observable state.
func (r *Robot) State() RobotState {
	return RobotState{
		ID:            r.id.String(),
		Name:          r.name,
		Color:         r.color,
		Position:      r.position,
		Heading:       r.heading,
		TurretHeading: r.turretHeading,
		Speed:         r.speed,
		Health:        r.health,
		Alive:         r.IsAlive(),
	}
}

// RobotState is a point-in-time view of a robot for rendering.
type RobotState struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Color         Color        `json:"color"`
	Position      physics.Vec2 `json:"position"`
	Heading       float64      `json:"heading"`
	TurretHeading float64      `json:"turret_heading"`
	Speed         float64      `json:"speed"`
	Health        int          `json:"health"`
	Alive         bool         `json:"alive"`
}
