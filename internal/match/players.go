package match

import (
	"math"
	"strings"
	"time"

	"github.com/sabbivikas/mi-amore/internal/combat"
	"github.com/sabbivikas/mi-amore/internal/net/proto"
	"github.com/sabbivikas/mi-amore/internal/state"
	"github.com/sabbivikas/mi-amore/internal/world"
	"github.com/sabbivikas/mi-amore/logging"
	logcombat "github.com/sabbivikas/mi-amore/logging/combat"
	"github.com/sabbivikas/mi-amore/logging/lifecycle"
)

const (
	ReasonHPZero        = "hp_zero"
	ReasonClientRequest = "client_request"
)

var (
	evenRespawnAnchors = []world.Vec2{{X: 2, Z: 2}, {X: -4, Z: -4}, {X: 6, Z: -2}}
	oddRespawnAnchors  = []world.Vec2{{X: -2, Z: -2}, {X: 4, Z: 4}, {X: -6, Z: 2}}
)

// SetInput replaces the buffered intent of a player. Non-finite analog values
// read as zero.
func (r *Room) SetInput(playerID int, in proto.InputState) {
	p := r.PlayerByID(playerID)
	if p == nil {
		return
	}
	yaw := proto.Finite(in.Yaw, math.NaN())
	hasYaw := !math.IsNaN(yaw)
	if !hasYaw {
		yaw = 0
	}
	p.Input = state.Input{
		Up:     in.Up,
		Down:   in.Down,
		Left:   in.Left,
		Right:  in.Right,
		Sprint: in.Sprint,
		Attack: in.Attack,
		MoveX:  proto.Finite(in.MoveX, 0),
		MoveZ:  proto.Finite(in.MoveZ, 0),
		Yaw:    yaw,
		HasYaw: hasYaw,
	}
}

// PlayerDied handles a client-asserted death. It is honored only while the
// player is alive and already out of health or below the kill plane.
func (r *Room) PlayerDied(playerID int, reason string, now time.Time) bool {
	p := r.PlayerByID(playerID)
	if p == nil || !p.Alive {
		return false
	}
	if p.HP > 0 && p.Y > KillPlaneY+playerDiedSlack {
		return false
	}
	if strings.TrimSpace(reason) == "" {
		reason = ReasonClientRequest
	}
	r.TriggerDeath(p, reason, now)
	return true
}

// TriggerDeath kills a player and schedules the respawn. Calling it again for
// a dead player only pushes the respawn back and repeats the notice.
func (r *Room) TriggerDeath(p *state.Player, reason string, now time.Time) {
	if p == nil {
		return
	}
	refreshed := !p.Alive
	p.RespawnAt = now.Add(RespawnDelay)
	p.DeathNoticeUntil = p.RespawnAt
	if !refreshed {
		p.HP = 0
		p.Alive = false
		p.StopMotion()
		p.Grounded = false
		p.Input.ClearMovement()
	}

	r.queue(PlayerDeath{PlayerID: p.ID, Reason: reason, RespawnAt: p.RespawnAt, At: now})
	logcombat.PlayerDeath(r.ctx(), r.pub, r.tick, logging.PlayerRef(p.ID), logcombat.PlayerDeathPayload{
		Reason:    reason,
		Refreshed: refreshed,
		RespawnAt: p.RespawnAt.UnixMilli(),
	}, nil)
}

func (r *Room) respawn(p *state.Player, now time.Time) {
	spawn := r.findSafeSpawn(p.ID)
	p.Alive = true
	p.HP = state.PlayerMaxHP
	p.X, p.Y, p.Z = spawn.X, spawn.Y, spawn.Z
	p.StopMotion()
	p.Grounded = false
	p.LastSafe = spawn
	p.AttackCooldownUntil = time.Time{}
	p.DamageFlashUntil = time.Time{}
	p.RespawnAt = time.Time{}
	p.DeathNoticeUntil = time.Time{}

	r.queue(PlayerRespawn{PlayerID: p.ID, Position: spawn, At: now})
	lifecycle.PlayerRespawned(r.ctx(), r.pub, r.tick, logging.PlayerRef(p.ID), lifecycle.PlayerRespawnedPayload{
		X: spawn.X,
		Y: spawn.Y,
		Z: spawn.Z,
	})
}

// findSafeSpawn tries the parity anchors, then random candidates, and falls
// back to the first anchor.
func (r *Room) findSafeSpawn(playerID int) world.Vec3 {
	anchors := evenRespawnAnchors
	if playerID%2 != 0 {
		anchors = oddRespawnAnchors
	}
	candidates := make([]world.Vec2, 0, len(anchors)+respawnCandidates)
	candidates = append(candidates, anchors...)
	span := world.RoomSize - respawnMargin
	for i := 0; i < respawnCandidates; i++ {
		candidates = append(candidates, world.Vec2{
			X: (world.RandomFloat(r.rng) - 0.5) * span,
			Z: (world.RandomFloat(r.rng) - 0.5) * span,
		})
	}

	for _, c := range candidates {
		if !world.IsValidGroundPoint(r.field, r.bounds, c.X, c.Z) {
			continue
		}
		if !world.PlayerCanMove(r.field, r.bounds, c.X, c.Z) {
			continue
		}
		return world.Vec3{X: c.X, Y: world.PlayerGroundY(r.field, c.X, c.Z) + safeSpawnHeight, Z: c.Z}
	}
	fallback := anchors[0]
	return world.Vec3{
		X: fallback.X,
		Y: world.PlayerGroundY(r.field, fallback.X, fallback.Z) + safeSpawnHeight,
		Z: fallback.Z,
	}
}

func (r *Room) applyZombieHit(z *state.Zombie, p *state.Player, now time.Time) {
	damage := combat.ZombieStrikeDamage(r.difficulty)
	emptied := combat.ApplyStrike(p, z.X, z.Z, damage, now)
	r.queue(ZombieHit{ZombieID: z.ID, TargetPlayerID: p.ID, Damage: damage, At: now})
	logcombat.ZombieHit(r.ctx(), r.pub, r.tick, logging.ZombieRef(z.ID), logging.PlayerRef(p.ID), logcombat.ZombieHitPayload{
		Damage:       damage,
		TargetHealth: p.HP,
		Difficulty:   r.difficulty,
	}, nil)
	if emptied {
		r.TriggerDeath(p, ReasonHPZero, now)
	}
}

func (r *Room) updatePlayers(now time.Time, dt float64) {
	for _, p := range r.players {
		if !p.Alive {
			if !now.Before(p.RespawnAt) {
				r.respawn(p, now)
			}
			continue
		}
		if r.scene.active {
			p.StopMotion()
			p.Input.Attack = false
			continue
		}
		if !r.movePlayer(p, dt) {
			continue
		}
		if p.Input.Attack && !r.proposal.active {
			r.playerStrike(p, now)
		}
		r.collectHearts(p, now)
	}
}

// movePlayer integrates one step of intent, gravity and terrain. It reports
// false when the player fell through the kill plane and was put back.
func (r *Room) movePlayer(p *state.Player, dt float64) bool {
	profile := combat.ProfileFor(p.Character)

	moveX, moveZ := p.Input.MoveX, p.Input.MoveZ
	if moveX == 0 && moveZ == 0 {
		moveX = axis(p.Input.Right, p.Input.Left)
		moveZ = axis(p.Input.Down, p.Input.Up)
	}
	length := math.Hypot(moveX, moveZ)
	if length > 0 {
		inv := 1 / math.Max(1, length)
		moveX *= inv
		moveZ *= inv
		speed := profile.Speed(p.Input.Sprint)
		blend := math.Min(1, playerAccel*dt)
		p.VX += (moveX*speed - p.VX) * blend
		p.VZ += (moveZ*speed - p.VZ) * blend
		p.Rot = math.Atan2(moveX, moveZ)
	} else {
		decay := math.Exp(-playerFriction * dt)
		p.VX *= decay
		p.VZ *= decay
		if p.Input.HasYaw {
			p.Rot = p.Input.Yaw
		}
	}

	nextX := p.X + p.VX*dt
	nextZ := p.Z + p.VZ*dt
	if world.PlayerCanMove(r.field, r.bounds, nextX, p.Z) {
		p.X = nextX
	} else {
		p.VX *= playerBlockBounce
	}
	if world.PlayerCanMove(r.field, r.bounds, p.X, nextZ) {
		p.Z = nextZ
	} else {
		p.VZ *= playerBlockBounce
	}

	groundY := world.PlayerGroundY(r.field, p.X, p.Z)
	if p.Y > groundY+groundEpsilon {
		p.VY -= playerGravity * dt
	} else if p.VY < 0 {
		p.VY = 0
	}
	p.Y += p.VY * dt

	if p.Y <= KillPlaneY {
		p.X, p.Y, p.Z = p.LastSafe.X, p.LastSafe.Y, p.LastSafe.Z
		p.StopMotion()
		p.Grounded = true
		return false
	}
	if p.Y <= groundY+groundEpsilon {
		p.Y = groundY
		p.VY = 0
		p.Grounded = true
	} else {
		p.Grounded = false
	}
	if p.Grounded {
		p.LastSafe = p.Position()
	}
	return true
}

func axis(positive, negative bool) float64 {
	var v float64
	if positive {
		v++
	}
	if negative {
		v--
	}
	return v
}

func (r *Room) playerStrike(p *state.Player, now time.Time) {
	profile := combat.ProfileFor(p.Character)
	if !combat.ReadyCooldown(p, profile, now) {
		return
	}
	for _, z := range combat.MeleeTargets(p, r.zombies, profile) {
		r.brain.ApplyDamage(z, profile.MeleeDamage, now, p.Rot)
		if !z.Alive() {
			logcombat.ZombieDefeated(r.ctx(), r.pub, r.tick, logging.PlayerRef(p.ID), logging.ZombieRef(z.ID), logcombat.ZombieDefeatedPayload{
				Character: string(p.Character),
				Damage:    profile.MeleeDamage,
			}, nil)
		}
	}
}

func (r *Room) collectHearts(p *state.Player, now time.Time) {
	const reach2 = HeartPickupRadius * HeartPickupRadius
	for _, h := range r.hearts {
		if h.Collected {
			continue
		}
		if world.Dist2(p.X, p.Z, h.X, h.Z) > reach2 {
			continue
		}
		h.Collected = true
		r.heartsCollected = min(r.heartsCollected+1, r.heartsTotal)
		for _, member := range r.players {
			member.Hearts = r.heartsCollected
		}
		r.queue(HeartCollected{HeartID: h.ID, ByPlayerID: p.ID, At: now})
	}
}

// GirlAttack rebroadcasts a girl combo step. Only the girl may send it.
func (r *Room) GirlAttack(playerID int, step string, now time.Time) bool {
	p := r.PlayerByID(playerID)
	if p == nil || p.Character != state.CharacterGirl {
		return false
	}
	if step != "kick" {
		step = "punch"
	}
	r.broadcast(&proto.GirlAttackEvent{PlayerID: playerID, Step: step, At: now.UnixMilli()})
	return true
}

// BoyAttack rebroadcasts a boy attack animation. Only the boy may send it.
func (r *Room) BoyAttack(playerID int, attackType string, now time.Time) bool {
	p := r.PlayerByID(playerID)
	if p == nil || p.Character != state.CharacterBoy {
		return false
	}
	if attackType != "kick" && attackType != "jump" {
		attackType = "fist"
	}
	r.broadcast(&proto.BoyAttackEvent{PlayerID: playerID, AttackType: attackType, At: now.UnixMilli()})
	return true
}

// BoyDance rebroadcasts a dance emote. Only the boy may send it.
func (r *Room) BoyDance(playerID int, duration *float64, now time.Time) bool {
	p := r.PlayerByID(playerID)
	if p == nil || p.Character != state.CharacterBoy {
		return false
	}
	r.broadcast(&proto.BoyDanceEvent{
		PlayerID:   playerID,
		DurationMs: proto.Finite(duration, DefaultDanceLength),
		At:         now.UnixMilli(),
	})
	return true
}
