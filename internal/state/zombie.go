package state

import (
	"time"

	"github.com/sabbivikas/mi-amore/internal/world"
)

// ZombieState is the zombie behaviour state.
type ZombieState string

const (
	ZombieIdle   ZombieState = "IDLE"
	ZombieChase  ZombieState = "CHASE"
	ZombieAttack ZombieState = "ATTACK"
	ZombieStun   ZombieState = "STUN"
)

// Zombie is a hostile NPC owned by exactly one room.
type Zombie struct {
	ID int

	X, Y, Z float64
	Rot     float64
	VX, VZ  float64
	HP      float64

	State      ZombieState
	StateSince time.Time

	TargetPlayerID  int
	LastKnownTarget world.Vec2
	LastKnownAt     time.Time

	AttackStartedAt     time.Time
	AttackHitsAt        time.Time
	AttackEndsAt        time.Time
	AttackHasHit        bool
	AttackCooldownUntil time.Time

	StunUntil     time.Time
	HitFlashUntil time.Time
}

// NewZombie places a zombie at (x, y, z) in the idle state.
func NewZombie(id int, x, y, z, hp float64, now time.Time) *Zombie {
	return &Zombie{
		ID:              id,
		X:               x,
		Y:               y,
		Z:               z,
		HP:              hp,
		State:           ZombieIdle,
		StateSince:      now,
		LastKnownTarget: world.Vec2{X: x, Z: z},
	}
}

// Alive reports whether the zombie still has health.
func (z *Zombie) Alive() bool {
	return z.HP > 0
}

// SetState records a transition. Re-entering the current state is a no-op so
// StateSince keeps measuring the original entry.
func (z *Zombie) SetState(next ZombieState, now time.Time) {
	if z.State == next {
		return
	}
	z.State = next
	z.StateSince = now
}

// Position returns the zombie origin.
func (z *Zombie) Position() world.Vec3 {
	return world.Vec3{X: z.X, Y: z.Y, Z: z.Z}
}
