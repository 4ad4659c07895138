package world

import (
	"math"
	"math/rand"
)

// SpawnRing describes where hostiles may appear relative to the players.
type SpawnRing struct {
	MinRadius float64
	MaxRadius float64
	// Clearance is the minimum distance from every anchor.
	Clearance float64
	Attempts  int
	// FallbackDistance is the minimum distance from the origin used when no
	// candidate in the ring validates.
	FallbackDistance float64
	// OpenFieldDistance is used when there are no anchors at all.
	OpenFieldDistance float64
}

// DefaultZombieRing matches the zombie spawn policy.
func DefaultZombieRing() SpawnRing {
	return SpawnRing{
		MinRadius:         20,
		MaxRadius:         35,
		Clearance:         12,
		Attempts:          120,
		FallbackDistance:  18,
		OpenFieldDistance: 14,
	}
}

// FindSpawnAround searches a ring around randomly chosen anchors for a valid
// ground point that keeps its clearance from every anchor.
func FindSpawnAround(field HeightField, bounds Bounds, rng *rand.Rand, anchors []Vec2, ring SpawnRing) Vec2 {
	if len(anchors) == 0 {
		return RandomPosition(rng, bounds, ring.OpenFieldDistance)
	}

	clearance2 := ring.Clearance * ring.Clearance
	for i := 0; i < ring.Attempts; i++ {
		anchor := anchors[RandomIndex(rng, len(anchors))]
		angle := RandomAngle(rng)
		radius := RandomDistance(rng, ring.MinRadius, ring.MaxRadius)
		x := anchor.X + math.Cos(angle)*radius
		z := anchor.Z + math.Sin(angle)*radius
		if !bounds.Contains(x, z) {
			continue
		}

		safe := true
		for _, other := range anchors {
			if Dist2(x, z, other.X, other.Z) < clearance2 {
				safe = false
				break
			}
		}
		if safe && IsValidGroundPoint(field, bounds, x, z) {
			return Vec2{X: x, Z: z}
		}
	}
	return RandomPosition(rng, bounds, ring.FallbackDistance)
}

// ScatterConfig tunes ScatterPoints.
type ScatterConfig struct {
	Count             int
	MinSeparation     float64
	MinOriginDistance float64
	Attempts          int
	// FallbackDistance is used when a point cannot be placed validly.
	FallbackDistance float64
}

// ScatterPoints places Count points on valid ground, mutually separated.
func ScatterPoints(field HeightField, bounds Bounds, rng *rand.Rand, cfg ScatterConfig) []Vec2 {
	points := make([]Vec2, 0, cfg.Count)
	sep2 := cfg.MinSeparation * cfg.MinSeparation
	for i := 0; i < cfg.Count; i++ {
		placed := false
		for attempt := 0; attempt < cfg.Attempts; attempt++ {
			candidate := RandomPosition(rng, bounds, cfg.MinOriginDistance)
			if !IsValidGroundPoint(field, bounds, candidate.X, candidate.Z) {
				continue
			}
			crowded := false
			for _, existing := range points {
				if Dist2(existing.X, existing.Z, candidate.X, candidate.Z) < sep2 {
					crowded = true
					break
				}
			}
			if crowded {
				continue
			}
			points = append(points, candidate)
			placed = true
			break
		}
		if !placed {
			points = append(points, RandomPosition(rng, bounds, cfg.FallbackDistance))
		}
	}
	return points
}
