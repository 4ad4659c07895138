package match

import (
	"time"

	"github.com/sabbivikas/mi-amore/internal/state"
	"github.com/sabbivikas/mi-amore/internal/world"
)

var heartScatter = world.ScatterConfig{
	Count:             HeartTarget,
	MinSeparation:     7,
	MinOriginDistance: 12,
	Attempts:          120,
	FallbackDistance:  10,
}

// spawnZombie adds one zombie in the ring around the living players. Forced
// spawns ignore the difficulty cap but never the match gates.
func (r *Room) spawnZombie(now time.Time, forced bool) *state.Zombie {
	if !r.started || r.ended || r.proposal.active {
		return nil
	}
	if !forced && len(r.zombies) >= ComputeMaxZombies(r.difficulty) {
		return nil
	}

	pos := world.FindSpawnAround(r.field, r.bounds, r.rng, r.livingAnchors(), world.DefaultZombieRing())
	y := world.ZombieGroundY(r.field, pos.X, pos.Z) + zombieSpawnLift
	z := state.NewZombie(r.ids.NextZombieID(), pos.X, y, pos.Z, r.brain.Tuning().SpawnHP(r.difficulty), now)
	r.zombies = append(r.zombies, z)
	return z
}

func (r *Room) livingAnchors() []world.Vec2 {
	anchors := make([]world.Vec2, 0, len(r.players))
	for _, p := range r.players {
		if p.Alive {
			anchors = append(anchors, p.Ground())
		}
	}
	return anchors
}

func (r *Room) spawnHearts() {
	points := world.ScatterPoints(r.field, r.bounds, r.rng, heartScatter)
	r.hearts = make([]*state.Heart, 0, len(points))
	for _, pt := range points {
		r.hearts = append(r.hearts, &state.Heart{
			ID: r.ids.NextHeartID(),
			X:  pt.X,
			Y:  r.field.Height(pt.X, pt.Z) + heartHover,
			Z:  pt.Z,
		})
	}
	r.heartsCollected = 0
}

func (r *Room) pruneZombies() {
	alive := r.zombies[:0]
	for _, z := range r.zombies {
		if z.Alive() {
			alive = append(alive, z)
		}
	}
	for i := len(alive); i < len(r.zombies); i++ {
		r.zombies[i] = nil
	}
	r.zombies = alive
}
