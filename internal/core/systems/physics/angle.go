package physics

import "math"

// NormalizeAngle reduces a modulo 360 into [0,360).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	// -1e-15 + 360 rounds to 360
	if a >= 360 {
		a = 0
	}
	return a
}

// IsAngleInRange reports whether angle lies on the clockwise arc from start
// to end. All three are normalized first; when start > end the arc wraps
// through 0.
func IsAngleInRange(angle, start, end float64) bool {
	angle = NormalizeAngle(angle)
	start = NormalizeAngle(start)
	end = NormalizeAngle(end)

	if start <= end {
		return angle >= start && angle <= end
	}
	return angle >= start || angle <= end
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Sign returns -1, 0 or 1 according to the sign of v.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// Approach moves current toward target by at most maxStep.
func Approach(current, target, maxStep float64) float64 {
	return current + Clamp(target-current, -maxStep, maxStep)
}

// AngularDelta returns the shortest signed rotation from a to b, in (-180,180].
func AngularDelta(a, b float64) float64 {
	d := NormalizeAngle(b - a)
	if d > 180 {
		d -= 360
	}
	return d
}
