package world

import "math"

// LineOfSightStep is the spacing between samples along a sight line.
const LineOfSightStep = 0.6

// IsSolidAt reports whether a point is at or below the terrain surface.
func IsSolidAt(field HeightField, x, y, z float64) bool {
	return y <= field.Height(x, z)
}

// LineOfSight marches from one point to another and fails on the first
// interior sample buried in terrain. Endpoints are never sampled, so an
// observer standing in a hollow does not occlude itself.
func LineOfSight(field HeightField, from, to Vec3) bool {
	dx := to.X - from.X
	dy := to.Y - from.Y
	dz := to.Z - from.Z
	dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
	steps := int(math.Floor(dist / LineOfSightStep))
	if steps < 1 {
		steps = 1
	}
	for i := 1; i < steps; i++ {
		t := float64(i) / float64(steps)
		if IsSolidAt(field, from.X+dx*t, from.Y+dy*t, from.Z+dz*t) {
			return false
		}
	}
	return true
}
