package world

import (
	"math"
	"math/rand"
)

const randomPositionAttempts = 100

// NewRNG returns a generator derived from a room seed so that a room's
// spawn sequence is reproducible for a given seed.
func NewRNG(seed uint32) *rand.Rand {
	value := int64(seed)
	if value == 0 {
		value = int64(DefaultSeed)
	}
	return rand.New(rand.NewSource(value))
}

// RandomFloat draws from [0, 1) using rng, or the global source when rng is nil.
func RandomFloat(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64()
	}
	return rng.Float64()
}

// RandomAngle returns a heading in radians in [0, 2π).
func RandomAngle(rng *rand.Rand) float64 {
	return RandomFloat(rng) * 2 * math.Pi
}

// RandomDistance returns a value in [min, max), or min when the range is empty.
func RandomDistance(rng *rand.Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + RandomFloat(rng)*(max-min)
}

// RandomIndex picks an index in [0, n).
func RandomIndex(rng *rand.Rand, n int) int {
	if n <= 1 {
		return 0
	}
	if rng == nil {
		return rand.Intn(n)
	}
	return rng.Intn(n)
}

// RandomPosition returns a uniformly random point inside the bounds that is
// at least minDistance from the origin, falling back to (minDistance,
// minDistance) after a bounded number of attempts.
func RandomPosition(rng *rand.Rand, bounds Bounds, minDistance float64) Vec2 {
	for attempt := 0; attempt < randomPositionAttempts; attempt++ {
		x := RandomDistance(rng, bounds.MinX, bounds.MaxX)
		z := RandomDistance(rng, bounds.MinZ, bounds.MaxZ)
		if x*x+z*z >= minDistance*minDistance {
			return Vec2{X: x, Z: z}
		}
	}
	return Vec2{X: minDistance, Z: minDistance}
}
