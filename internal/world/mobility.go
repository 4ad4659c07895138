package world

import "math"

const (
	// RoomSize is the edge length of the square play area, centered on the origin.
	RoomSize = 90.0
	// WaterLevel is the height at or below which ground counts as water.
	WaterLevel = 6.0

	// ZombieColliderRadius and ZombieStepHeight shape the zombie capsule.
	ZombieColliderRadius = 0.5
	ZombieStepHeight     = 2.2
	// ZombieHalfHeight keeps zombies planted on the terrain surface.
	ZombieHalfHeight = 1.95 * 0.5

	// PlayerColliderRadius and PlayerStepHeight shape the player capsule.
	PlayerColliderRadius = 0.42
	PlayerStepHeight     = 3.2
	// PlayerStandHeight is the player origin above the terrain surface.
	PlayerStandHeight = 1.2

	groundPointStepHeight = 2.6
	capsuleSampleScale    = 0.8
)

// Bounds is an axis-aligned square on the ground plane.
type Bounds struct {
	MinX float64
	MaxX float64
	MinZ float64
	MaxZ float64
}

// SquareBounds returns bounds of the given edge length centered on the origin.
func SquareBounds(size float64) Bounds {
	half := size / 2
	return Bounds{MinX: -half, MaxX: half, MinZ: -half, MaxZ: half}
}

// DefaultBounds are the bounds of a standard room.
func DefaultBounds() Bounds {
	return SquareBounds(RoomSize)
}

// Contains reports whether the point lies inside the bounds, edges included.
func (b Bounds) Contains(x, z float64) bool {
	return x >= b.MinX && x <= b.MaxX && z >= b.MinZ && z <= b.MaxZ
}

// CanMoveCapsule rejects positions outside bounds or where the terrain under
// the capsule footprint spreads by more than maxStep. The footprint is the
// center plus four cardinal samples at 0.8·radius.
func CanMoveCapsule(field HeightField, bounds Bounds, x, z, radius, maxStep float64) bool {
	if !bounds.Contains(x, z) {
		return false
	}
	r := radius * capsuleSampleScale
	offsets := [5][2]float64{{0, 0}, {r, 0}, {-r, 0}, {0, r}, {0, -r}}

	minH := math.Inf(1)
	maxH := math.Inf(-1)
	for _, off := range offsets {
		h := field.Height(x+off[0], z+off[1])
		if h < minH {
			minH = h
		}
		if h > maxH {
			maxH = h
		}
	}
	return maxH-minH <= maxStep
}

// ZombieCanMove applies the zombie capsule to CanMoveCapsule.
func ZombieCanMove(field HeightField, bounds Bounds, x, z float64) bool {
	return CanMoveCapsule(field, bounds, x, z, ZombieColliderRadius, ZombieStepHeight)
}

// PlayerCanMove applies the player capsule to CanMoveCapsule.
func PlayerCanMove(field HeightField, bounds Bounds, x, z float64) bool {
	return CanMoveCapsule(field, bounds, x, z, PlayerColliderRadius, PlayerStepHeight)
}

// IsValidGroundPoint reports whether something may be placed at (x, z): in
// bounds, above water, and not on a cliff.
func IsValidGroundPoint(field HeightField, bounds Bounds, x, z float64) bool {
	if !bounds.Contains(x, z) {
		return false
	}
	if field.Height(x, z) <= WaterLevel {
		return false
	}
	return CanMoveCapsule(field, bounds, x, z, ZombieColliderRadius, groundPointStepHeight)
}

// ZombieGroundY is the resting height of a zombie origin.
func ZombieGroundY(field HeightField, x, z float64) float64 {
	return field.Height(x, z) + ZombieHalfHeight
}

// PlayerGroundY is the resting height of a player origin.
func PlayerGroundY(field HeightField, x, z float64) float64 {
	return field.Height(x, z) + PlayerStandHeight
}
