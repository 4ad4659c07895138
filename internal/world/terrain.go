package world

import "math"

// DefaultSeed is the terrain seed used when a room has not been assigned one.
const DefaultSeed uint32 = 133742

const (
	terrainScale      = 0.014
	continentScale    = 0.45
	hillScale         = 1.4
	mountainScale     = 2.2
	hillSeedMix       = 0x9e3779b9
	mountainSeedMix   = 0x85ebca6b
	octaveSeedStride  = 97
	mountainThreshold = 0.58
	mountainSharpness = 2.6
	mountainAmplitude = 18.0
	mountainBias      = 0.42
	lowlandBase       = 7.0
	lowlandAmplitude  = 4.5
	hillAmplitude     = 7.0

	hashPrimeX   = 374761393
	hashPrimeZ   = 668265263
	hashMultiply = 1274126177
)

// HeightField reports the ground height at a horizontal position.
type HeightField interface {
	Height(x, z float64) float64
}

// HeightFunc adapts a plain function into a HeightField.
type HeightFunc func(x, z float64) float64

// Height implements HeightField.
func (f HeightFunc) Height(x, z float64) float64 {
	if f == nil {
		return 1
	}
	return f(x, z)
}

// Terrain is the seeded fractal heightfield shared by server and clients.
// The zero value uses seed 0; rooms carry their own seed.
type Terrain struct {
	Seed uint32
}

// NewTerrain returns the heightfield for the provided world seed.
func NewTerrain(seed uint32) Terrain {
	return Terrain{Seed: seed}
}

// Height implements HeightField.
func (t Terrain) Height(x, z float64) float64 {
	return float64(HeightAt(t.Seed, x, z))
}

// HeightAt is the terrain oracle: a pure function of (seed, x, z) returning an
// integer ground height of at least 1. Every operation wraps at 32 bits so a
// client regenerating terrain from the same seed lands on identical values.
func HeightAt(seed uint32, x, z float64) int {
	nx := x * terrainScale
	nz := z * terrainScale
	continents := fbm(seed, nx*continentScale, nz*continentScale, 3)
	hills := fbm(seed^hillSeedMix, nx*hillScale, nz*hillScale, 4)
	mountains := fbm(seed^mountainSeedMix, nx*mountainScale, nz*mountainScale, 5)

	mask := smoothstep(Clamp((continents-mountainThreshold)*mountainSharpness, 0, 1))
	lowlands := lowlandBase + (continents-0.5)*lowlandAmplitude
	hilly := lowlands + (hills-0.5)*hillAmplitude
	peak := hilly + mask*(mountains-mountainBias)*mountainAmplitude

	height := int(math.Floor(peak + 0.5))
	if height < 1 {
		return 1
	}
	return height
}

func hash2(seed uint32, x, z int64) float64 {
	h := seed ^ uint32(x*hashPrimeX) ^ uint32(z*hashPrimeZ)
	h = (h ^ (h >> 13)) * hashMultiply
	return float64(h^(h>>16)) / math.MaxUint32
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

func valueNoise(seed uint32, x, z float64) float64 {
	fx := math.Floor(x)
	fz := math.Floor(z)
	x0 := int64(fx)
	z0 := int64(fz)
	tx := smoothstep(x - fx)
	tz := smoothstep(z - fz)

	n00 := hash2(seed, x0, z0)
	n10 := hash2(seed, x0+1, z0)
	n01 := hash2(seed, x0, z0+1)
	n11 := hash2(seed, x0+1, z0+1)
	nx0 := n00 + (n10-n00)*tx
	nx1 := n01 + (n11-n01)*tx
	return nx0 + (nx1-nx0)*tz
}

func fbm(seed uint32, x, z float64, octaves int) float64 {
	amplitude := 1.0
	frequency := 1.0
	sum := 0.0
	total := 0.0
	for i := 0; i < octaves; i++ {
		sum += valueNoise(seed+uint32(i*octaveSeedStride), x*frequency, z*frequency) * amplitude
		total += amplitude
		amplitude *= 0.5
		frequency *= 2
	}
	return sum / total
}
