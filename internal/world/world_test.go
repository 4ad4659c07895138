package world

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flat(level float64) HeightField {
	return HeightFunc(func(x, z float64) float64 { return level })
}

func TestHeightAtIsDeterministic(t *testing.T) {
	for _, seed := range []uint32{0, 1, DefaultSeed, math.MaxUint32} {
		for x := -45.0; x <= 45; x += 7.3 {
			for z := -45.0; z <= 45; z += 6.1 {
				first := HeightAt(seed, x, z)
				second := HeightAt(seed, x, z)
				require.Equal(t, first, second, "seed=%d x=%f z=%f", seed, x, z)
				require.GreaterOrEqual(t, first, 1)
			}
		}
	}
}

func TestHeightAtDiffersAcrossSeeds(t *testing.T) {
	differs := false
	for x := -400.0; x <= 400 && !differs; x += 13 {
		for z := -400.0; z <= 400; z += 17 {
			if HeightAt(1, x, z) != HeightAt(987654321, x, z) {
				differs = true
				break
			}
		}
	}
	assert.True(t, differs, "expected distinct seeds to produce distinct terrain")
}

func TestTerrainMatchesOracle(t *testing.T) {
	terrain := NewTerrain(42)
	assert.Equal(t, float64(HeightAt(42, 3.5, -8.25)), terrain.Height(3.5, -8.25))
}

func TestHashStaysInUnitRange(t *testing.T) {
	for x := int64(-50); x <= 50; x += 5 {
		for z := int64(-50); z <= 50; z += 5 {
			v := hash2(DefaultSeed, x, z)
			require.GreaterOrEqual(t, v, 0.0)
			require.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestCanMoveCapsuleRejectsOutOfBounds(t *testing.T) {
	bounds := DefaultBounds()
	field := flat(8)
	assert.True(t, CanMoveCapsule(field, bounds, 0, 0, ZombieColliderRadius, ZombieStepHeight))
	assert.True(t, CanMoveCapsule(field, bounds, RoomSize/2, 0, ZombieColliderRadius, ZombieStepHeight))
	assert.False(t, CanMoveCapsule(field, bounds, RoomSize/2+0.01, 0, ZombieColliderRadius, ZombieStepHeight))
	assert.False(t, CanMoveCapsule(field, bounds, 0, -RoomSize/2-1, ZombieColliderRadius, ZombieStepHeight))
}

func TestCanMoveCapsuleRejectsCliffs(t *testing.T) {
	bounds := DefaultBounds()
	cliff := HeightFunc(func(x, z float64) float64 {
		if x >= 10 {
			return 20
		}
		return 8
	})

	assert.True(t, CanMoveCapsule(cliff, bounds, 5, 0, ZombieColliderRadius, ZombieStepHeight))
	assert.False(t, CanMoveCapsule(cliff, bounds, 9.8, 0, ZombieColliderRadius, ZombieStepHeight))
	assert.True(t, CanMoveCapsule(cliff, bounds, 15, 0, ZombieColliderRadius, ZombieStepHeight))

	step := HeightFunc(func(x, z float64) float64 {
		if x >= 10 {
			return 11
		}
		return 8
	})
	assert.False(t, ZombieCanMove(step, bounds, 9.9, 0), "3 unit step exceeds the zombie budget")
	assert.True(t, PlayerCanMove(step, bounds, 9.9, 0), "players may step up 3.2 units")
}

func TestIsValidGroundPointRejectsWater(t *testing.T) {
	bounds := DefaultBounds()
	assert.False(t, IsValidGroundPoint(flat(WaterLevel), bounds, 0, 0))
	assert.True(t, IsValidGroundPoint(flat(WaterLevel+1), bounds, 0, 0))
	assert.False(t, IsValidGroundPoint(flat(10), bounds, 100, 0))
}

func TestLineOfSightBlockedByHill(t *testing.T) {
	hill := HeightFunc(func(x, z float64) float64 {
		if x > 4 && x < 6 {
			return 30
		}
		return 8
	})
	from := Vec3{X: 0, Y: 10, Z: 0}
	to := Vec3{X: 10, Y: 10, Z: 0}

	assert.True(t, LineOfSight(flat(8), from, to))
	assert.False(t, LineOfSight(hill, from, to))
}

func TestLineOfSightIgnoresEndpoints(t *testing.T) {
	// The observer itself sits below the surface; only interior samples count.
	pit := HeightFunc(func(x, z float64) float64 {
		if x < 0.3 {
			return 12
		}
		return 8
	})
	from := Vec3{X: 0, Y: 10, Z: 0}
	to := Vec3{X: 6, Y: 10, Z: 0}
	assert.True(t, LineOfSight(pit, from, to))

	short := Vec3{X: 0.2, Y: 10, Z: 0}
	assert.True(t, LineOfSight(pit, from, short), "segments shorter than one step have no interior samples")
}

func TestFindSpawnAroundKeepsClearance(t *testing.T) {
	bounds := DefaultBounds()
	rng := NewRNG(7)
	anchors := []Vec2{{X: 0, Z: 0}, {X: 3, Z: 3}}
	ring := DefaultZombieRing()

	for i := 0; i < 50; i++ {
		p := FindSpawnAround(flat(10), bounds, rng, anchors, ring)
		require.True(t, bounds.Contains(p.X, p.Z))
		for _, a := range anchors {
			require.GreaterOrEqual(t, math.Sqrt(Dist2(p.X, p.Z, a.X, a.Z)), ring.Clearance)
		}
	}
}

func TestFindSpawnAroundWithoutAnchors(t *testing.T) {
	rng := NewRNG(11)
	p := FindSpawnAround(flat(10), DefaultBounds(), rng, nil, DefaultZombieRing())
	assert.GreaterOrEqual(t, math.Hypot(p.X, p.Z), 14.0)
}

func TestScatterPointsSeparation(t *testing.T) {
	bounds := DefaultBounds()
	points := ScatterPoints(flat(10), bounds, NewRNG(3), ScatterConfig{
		Count:             10,
		MinSeparation:     7,
		MinOriginDistance: 12,
		Attempts:          120,
		FallbackDistance:  10,
	})
	require.Len(t, points, 10)
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			assert.GreaterOrEqual(t, math.Sqrt(Dist2(points[i].X, points[i].Z, points[j].X, points[j].Z)), 7.0)
		}
	}
}

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, 0, NormalizeAngle(2*math.Pi), 1e-9)
	assert.InDelta(t, -math.Pi/2, NormalizeAngle(3*math.Pi/2), 1e-9)
	assert.InDelta(t, math.Pi/2, NormalizeAngle(-3*math.Pi/2), 1e-9)
	assert.Equal(t, 0.0, NormalizeAngle(math.NaN()))
}
