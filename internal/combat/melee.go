package combat

import (
	"math"
	"time"

	"github.com/sabbivikas/mi-amore/internal/state"
	"github.com/sabbivikas/mi-amore/internal/world"
)

const (
	// StrikeBaseDamage is the zombie hit damage before difficulty scaling.
	StrikeBaseDamage = 8
	strikeKnockback  = 2.6
	strikeFlash      = 180 * time.Millisecond
)

// InArc reports whether the target lies inside an arc of the given total
// width centered on yaw.
func InArc(fromX, fromZ, yaw, toX, toZ, arc float64) bool {
	dir := world.YawTowards(fromX, fromZ, toX, toZ)
	return math.Abs(world.NormalizeAngle(dir-yaw)) <= arc/2
}

// ReadyCooldown arms the player's melee cooldown when it has elapsed.
func ReadyCooldown(p *state.Player, profile Profile, now time.Time) bool {
	if p == nil || now.Before(p.AttackCooldownUntil) {
		return false
	}
	p.AttackCooldownUntil = now.Add(profile.MeleeCooldown)
	return true
}

// MeleeTargets returns the living zombies inside the attacker's range and
// facing arc.
func MeleeTargets(attacker *state.Player, zombies []*state.Zombie, profile Profile) []*state.Zombie {
	if attacker == nil {
		return nil
	}
	range2 := profile.MeleeRange * profile.MeleeRange
	var hits []*state.Zombie
	for _, z := range zombies {
		if z == nil || !z.Alive() {
			continue
		}
		if world.Dist2(attacker.X, attacker.Z, z.X, z.Z) > range2 {
			continue
		}
		if !InArc(attacker.X, attacker.Z, attacker.Rot, z.X, z.Z, profile.MeleeArc) {
			continue
		}
		hits = append(hits, z)
	}
	return hits
}

// ZombieStrikeDamage is the damage a zombie hit deals at a difficulty level.
func ZombieStrikeDamage(difficulty int) float64 {
	return float64(StrikeBaseDamage + difficulty)
}

// ApplyStrike damages a player hit by a zombie standing at (fromX, fromZ) and
// pushes them away from it. It reports whether the hit emptied the player's
// health; the caller owns the death transition.
func ApplyStrike(p *state.Player, fromX, fromZ, damage float64, now time.Time) bool {
	if p == nil || !p.Alive {
		return false
	}
	p.SetHP(p.HP - damage)
	p.DamageFlashUntil = now.Add(strikeFlash)

	dx := p.X - fromX
	dz := p.Z - fromZ
	length := math.Hypot(dx, dz)
	if length == 0 {
		length = 1
	}
	p.VX += dx / length * strikeKnockback
	p.VZ += dz / length * strikeKnockback
	return p.HP <= 0
}
