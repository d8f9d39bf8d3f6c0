package physics

import "math"

// Arena dimensions in world units. The arena is a fixed square.
const (
	ArenaWidth  = 1000.0
	ArenaHeight = 1000.0
)

// Vec2 is a point or displacement in arena units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Distance computes the Euclidean distance between two points.
func Distance(a, b Vec2) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }

// Bearing returns the direction in degrees, normalized to [0,360), from a to b.
// 0 points along +X, 90 along +Y.
func Bearing(from, to Vec2) float64 {
	return NormalizeAngle(math.Atan2(to.Y-from.Y, to.X-from.X) * 180.0 / math.Pi)
}

// Advance moves p by dist units along heading (degrees).
func Advance(p Vec2, heading, dist float64) Vec2 {
	rad := heading * math.Pi / 180.0
	return Vec2{
		X: p.X + dist*math.Cos(rad),
		Y: p.Y + dist*math.Sin(rad),
	}
}

// InArena reports whether p lies inside the closed arena rectangle.
func InArena(p Vec2) bool {
	return p.X >= 0 && p.X <= ArenaWidth && p.Y >= 0 && p.Y <= ArenaHeight
}

// ClampToArena clamps each component of p into the arena independently.
func ClampToArena(p Vec2) Vec2 {
	return Vec2{
		X: Clamp(p.X, 0, ArenaWidth),
		Y: Clamp(p.Y, 0, ArenaHeight),
	}
}
