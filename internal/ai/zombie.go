// Package ai drives zombie behaviour: target acquisition through a vision
// cone and terrain line of sight, chase steering with separation, the
// one-hit-per-swing attack window, and stun recovery.
package ai

import (
	"math"
	"time"

	"github.com/sabbivikas/mi-amore/internal/state"
	"github.com/sabbivikas/mi-amore/internal/world"
)

// Environment is the slice of a room a zombie may observe and affect.
type Environment interface {
	Field() world.HeightField
	Bounds() world.Bounds
	// Players returns the room's players in a stable order.
	Players() []*state.Player
	PlayerByID(id int) *state.Player
	Zombies() []*state.Zombie
	Difficulty() int

	// AttackStarted is called once per attack when the swing begins.
	AttackStarted(z *state.Zombie, now time.Time)
	// ZombieHit is called at most once per attack when the swing connects.
	ZombieHit(z *state.Zombie, target *state.Player, now time.Time)
}

// Brain advances zombies using a fixed tuning.
type Brain struct {
	tuning Tuning
}

// NewBrain constructs a Brain.
func NewBrain(tuning Tuning) *Brain {
	return &Brain{tuning: tuning}
}

// Tuning exposes the constants the brain was built with.
func (b *Brain) Tuning() Tuning {
	return b.tuning
}

// MoveSpeed ramps from walk to chase speed as difficulty rises and slows
// slightly while the two players huddle together.
func (b *Brain) MoveSpeed(env Environment) float64 {
	t := world.Clamp(float64(env.Difficulty())/b.tuning.DifficultyRamp, 0, 1)
	speed := world.Lerp(b.tuning.WalkSpeed, b.tuning.ChaseSpeed, t)

	var alive []*state.Player
	for _, p := range env.Players() {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	if len(alive) >= 2 {
		d := math.Sqrt(world.Dist2(alive[0].X, alive[0].Z, alive[1].X, alive[1].Z))
		if d < b.tuning.CrowdedDistance {
			speed *= b.tuning.CrowdedSlowdown
		}
	}
	return speed
}

// ChooseTarget picks the nearest living player inside the vision radius and
// forward cone with a clear sight line, and refreshes the zombie's memory of
// where that player stood.
func (b *Brain) ChooseTarget(z *state.Zombie, env Environment, now time.Time) *state.Player {
	var best *state.Player
	bestD2 := math.Inf(1)
	vision2 := b.tuning.VisionRadius * b.tuning.VisionRadius

	for _, p := range env.Players() {
		if !p.Alive {
			continue
		}
		d2 := world.Dist2(z.X, z.Z, p.X, p.Z)
		if d2 > vision2 {
			continue
		}
		yaw := world.YawTowards(z.X, z.Z, p.X, p.Z)
		if math.Abs(world.NormalizeAngle(yaw-z.Rot)) > b.tuning.VisionHalfAngle {
			continue
		}
		if !b.canSee(env, z, p) {
			continue
		}
		if d2 < bestD2 {
			bestD2 = d2
			best = p
		}
	}

	if best != nil {
		z.TargetPlayerID = best.ID
		z.LastKnownTarget = best.Ground()
		z.LastKnownAt = now
	}
	return best
}

func (b *Brain) canSee(env Environment, z *state.Zombie, p *state.Player) bool {
	eye := b.tuning.EyeHeight
	return world.LineOfSight(
		env.Field(),
		world.Vec3{X: z.X, Y: z.Y + eye, Z: z.Z},
		world.Vec3{X: p.X, Y: p.Y + eye, Z: p.Z},
	)
}

// Update advances one zombie by dt seconds.
func (b *Brain) Update(z *state.Zombie, env Environment, now time.Time, dt float64) {
	if z == nil || !z.Alive() {
		return
	}

	if z.TargetPlayerID != 0 {
		if p := env.PlayerByID(z.TargetPlayerID); p == nil || !p.Alive {
			if z.State != state.ZombieAttack {
				z.TargetPlayerID = 0
			}
		}
	}

	if z.State == state.ZombieStun && !now.Before(z.StunUntil) {
		z.SetState(state.ZombieIdle, now)
	}

	if z.State == state.ZombieAttack {
		b.updateAttack(z, env, now, dt)
		return
	}

	var desiredX, desiredZ float64
	chase := false

	if target := b.ChooseTarget(z, env, now); target != nil {
		desiredX = target.X - z.X
		desiredZ = target.Z - z.Z
		chase = true

		dist := math.Hypot(desiredX, desiredZ)
		if dist <= b.tuning.AttackRange && !now.Before(z.AttackCooldownUntil) && z.State != state.ZombieStun {
			b.beginAttack(z, env, now)
			return
		}
	} else if z.TargetPlayerID != 0 && now.Sub(z.LastKnownAt) < b.tuning.Memory {
		desiredX = z.LastKnownTarget.X - z.X
		desiredZ = z.LastKnownTarget.Z - z.Z
		chase = true
	} else {
		z.TargetPlayerID = 0
	}

	if z.State != state.ZombieStun {
		if chase {
			z.SetState(state.ZombieChase, now)
		} else {
			z.SetState(state.ZombieIdle, now)
		}
	}

	if z.State == state.ZombieChase {
		b.steerTowards(z, env, desiredX, desiredZ, dt)
	} else {
		b.damp(z, dt)
		if z.State == state.ZombieIdle {
			elapsed := float64(now.Sub(z.StateSince).Milliseconds())
			wobble := math.Sin(elapsed*b.tuning.IdleWobbleRate+float64(z.ID)) * b.tuning.IdleWobbleAmplitude
			z.Rot = world.NormalizeAngle(z.Rot + wobble)
		}
	}

	b.separate(z, env, dt)
	b.integrate(z, env, dt)
}

func (b *Brain) beginAttack(z *state.Zombie, env Environment, now time.Time) {
	anim := b.tuning.AttackAnim
	z.SetState(state.ZombieAttack, now)
	z.AttackStartedAt = now
	z.AttackHitsAt = now.Add(time.Duration(float64(anim) * b.tuning.AttackHitFraction))
	z.AttackEndsAt = now.Add(anim)
	z.AttackHasHit = false
	z.AttackCooldownUntil = now.Add(b.tuning.AttackCooldown)
	env.AttackStarted(z, now)
}

func (b *Brain) updateAttack(z *state.Zombie, env Environment, now time.Time, dt float64) {
	if target := env.PlayerByID(z.TargetPlayerID); target != nil && target.Alive {
		yaw := world.YawTowards(z.X, z.Z, target.X, target.Z)
		z.Rot = world.TurnTowards(z.Rot, yaw, b.tuning.TurnSpeed, dt)

		inWindow := !now.Before(z.AttackHitsAt) && !now.After(z.AttackEndsAt)
		if !z.AttackHasHit && inWindow {
			reach2 := b.tuning.AttackRange * b.tuning.AttackRange * b.tuning.AttackReachSlack
			if world.Dist2(z.X, z.Z, target.X, target.Z) <= reach2 {
				z.AttackHasHit = true
				env.ZombieHit(z, target, now)
			}
		}
	}

	if !now.Before(z.AttackEndsAt) {
		z.SetState(state.ZombieChase, now)
	}
	b.damp(z, dt)
}

func (b *Brain) steerTowards(z *state.Zombie, env Environment, dx, dz, dt float64) {
	d := math.Hypot(dx, dz)
	if d == 0 {
		d = 1
	}
	dirX := dx / d
	dirZ := dz / d
	arrive := world.Clamp(d/b.tuning.ArriveRadius, b.tuning.MinArriveFactor, 1)
	speed := b.MoveSpeed(env) * arrive

	blend := math.Min(1, b.tuning.Accel*dt)
	z.VX += (dirX*speed - z.VX) * blend
	z.VZ += (dirZ*speed - z.VZ) * blend
	z.Rot = world.TurnTowards(z.Rot, math.Atan2(dirX, dirZ), b.tuning.TurnSpeed, dt)
}

func (b *Brain) damp(z *state.Zombie, dt float64) {
	decay := math.Exp(-b.tuning.Damping * dt)
	z.VX *= decay
	z.VZ *= decay
}

func (b *Brain) separate(z *state.Zombie, env Environment, dt float64) {
	radius := b.tuning.SeparationRadius
	var steerX, steerZ float64
	for _, other := range env.Zombies() {
		if other == z || !other.Alive() {
			continue
		}
		dx := z.X - other.X
		dz := z.Z - other.Z
		d := math.Hypot(dx, dz)
		if d == 0 {
			d = 1
		}
		if d > radius {
			continue
		}
		strength := (radius - d) / radius
		steerX += dx / d * strength * b.tuning.SeparationStrength
		steerZ += dz / d * strength * b.tuning.SeparationStrength
	}
	z.VX += steerX * dt
	z.VZ += steerZ * dt
}

func (b *Brain) integrate(z *state.Zombie, env Environment, dt float64) {
	speed := math.Hypot(z.VX, z.VZ)
	maxSpeed := b.MoveSpeed(env) + b.tuning.MaxSpeedHeadroom
	if speed > maxSpeed {
		z.VX = z.VX / speed * maxSpeed
		z.VZ = z.VZ / speed * maxSpeed
	}

	field := env.Field()
	bounds := env.Bounds()
	nx := z.X + z.VX*dt
	if world.ZombieCanMove(field, bounds, nx, z.Z) {
		z.X = nx
	} else {
		z.VX *= b.tuning.BlockedBounce
	}
	nz := z.Z + z.VZ*dt
	if world.ZombieCanMove(field, bounds, z.X, nz) {
		z.Z = nz
	} else {
		z.VZ *= b.tuning.BlockedBounce
	}
	z.Y = world.ZombieGroundY(field, z.X, z.Z)
}

// ApplyDamage hurts a zombie, stuns it, flashes it, and knocks it back along
// the attacker's facing.
func (b *Brain) ApplyDamage(z *state.Zombie, amount float64, now time.Time, sourceYaw float64) {
	if z == nil || !z.Alive() {
		return
	}
	z.HP -= amount
	z.HitFlashUntil = now.Add(b.tuning.HitFlash)
	z.StunUntil = now.Add(b.tuning.StunDuration)
	z.SetState(state.ZombieStun, now)
	z.VX += math.Sin(sourceYaw) * b.tuning.Knockback
	z.VZ += math.Cos(sourceYaw) * b.tuning.Knockback
}
