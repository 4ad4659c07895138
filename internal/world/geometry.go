package world

import "math"

// Vec3 is a point in world space. Y is up.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// Vec2 is a point on the ground plane.
type Vec2 struct {
	X float64
	Z float64
}

// Clamp bounds value to [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Lerp interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Dist2 returns the squared ground-plane distance between two points.
func Dist2(ax, az, bx, bz float64) float64 {
	dx := ax - bx
	dz := az - bz
	return dx*dx + dz*dz
}

// NormalizeAngle wraps an angle into [-π, π].
func NormalizeAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// YawTowards returns the yaw that faces from (fx, fz) to (tx, tz). Yaw 0 looks
// down +Z and grows towards +X, matching the client camera convention.
func YawTowards(fx, fz, tx, tz float64) float64 {
	return math.Atan2(tx-fx, tz-fz)
}

// TurnTowards rotates current toward target by an exponential blend.
func TurnTowards(current, target, rate, dt float64) float64 {
	return NormalizeAngle(current + NormalizeAngle(target-current)*math.Min(1, rate*dt))
}
