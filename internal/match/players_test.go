package match

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabbivikas/mi-amore/internal/combat"
	"github.com/sabbivikas/mi-amore/internal/net/proto"
	"github.com/sabbivikas/mi-amore/internal/state"
	"github.com/sabbivikas/mi-amore/internal/world"
	logcombat "github.com/sabbivikas/mi-amore/logging/combat"
	"github.com/sabbivikas/mi-amore/logging/lifecycle"
)

func float(v float64) *float64 { return &v }

func TestZombieHitsOncePerCooldown(t *testing.T) {
	h := started(t)
	h.quiet()
	girl := h.room.Player(girlID)
	z := state.NewZombie(99, girl.X, world.ZombieGroundY(h.room.field, girl.X, girl.Z-1), girl.Z-1, 50, h.now)
	h.room.zombies = []*state.Zombie{z}

	h.advance(6 * time.Second)

	hits := h.out.gameEvents(girlID, proto.EventZombieHit)
	require.NotEmpty(t, hits)
	assert.LessOrEqual(t, len(hits), 5)
	for i, event := range hits {
		hit := event.(proto.ZombieHitEvent)
		assert.Equal(t, combat.ZombieStrikeDamage(0), hit.Damage)
		assert.Equal(t, 99, hit.ZombieID)
		if i > 0 {
			prev := hits[i-1].(proto.ZombieHitEvent)
			assert.GreaterOrEqual(t, hit.At-prev.At, h.room.brain.Tuning().AttackCooldown.Milliseconds())
		}
	}
	assert.InDelta(t, state.PlayerMaxHP-float64(len(hits))*combat.ZombieStrikeDamage(0), girl.HP, 1e-9)
	assert.Len(t, h.logs.OfType(logcombat.EventZombieHit), len(hits))
}

func TestZombieHitClampsHealthAndKills(t *testing.T) {
	h := started(t)
	h.quiet()
	girl := h.room.Player(girlID)
	girl.HP = 3
	z := state.NewZombie(7, girl.X, girl.Y, girl.Z-1, 50, h.now)

	h.room.applyZombieHit(z, girl, h.now)

	assert.Equal(t, 0.0, girl.HP)
	assert.False(t, girl.Alive)
	assert.Equal(t, h.now.Add(RespawnDelay), girl.RespawnAt)

	events := h.room.PendingEvents()
	require.Len(t, events, 2)
	assert.IsType(t, ZombieHit{}, events[0])
	death, ok := events[1].(PlayerDeath)
	require.True(t, ok)
	assert.Equal(t, ReasonHPZero, death.Reason)
}

func TestTriggerDeathIsIdempotent(t *testing.T) {
	h := started(t)
	h.quiet()
	boy := h.room.Player(boyID)
	boy.Input.Up = true
	boy.VX = 3

	h.room.TriggerDeath(boy, "fell", h.now)
	firstRespawn := boy.RespawnAt
	assert.False(t, boy.Alive)
	assert.Equal(t, 0.0, boy.HP)
	assert.Equal(t, 0.0, boy.VX)
	assert.False(t, boy.Input.Up)

	later := h.now.Add(time.Second)
	h.room.TriggerDeath(boy, "fell", later)
	assert.False(t, boy.Alive)
	assert.Equal(t, later.Add(RespawnDelay), boy.RespawnAt)
	assert.True(t, boy.RespawnAt.After(firstRespawn))

	events := h.room.PendingEvents()
	require.Len(t, events, 2)
	deaths := h.logs.OfType(logcombat.EventPlayerDeath)
	require.Len(t, deaths, 2)
	assert.True(t, deaths[1].Payload.(logcombat.PlayerDeathPayload).Refreshed)
}

func TestRespawnAfterDelay(t *testing.T) {
	h := started(t)
	h.quiet()
	boy := h.room.Player(boyID)
	h.room.TriggerDeath(boy, ReasonHPZero, h.now)

	h.advance(RespawnDelay - 100*time.Millisecond)
	assert.False(t, boy.Alive)

	h.advance(200 * time.Millisecond)
	require.True(t, boy.Alive)
	assert.Equal(t, float64(state.PlayerMaxHP), boy.HP)
	assert.True(t, boy.RespawnAt.IsZero())
	assert.Equal(t, world.Vec2{X: -2, Z: -2}, boy.Ground())

	respawns := h.out.gameEvents(girlID, proto.EventPlayerRespawn)
	require.Len(t, respawns, 1)
	assert.Equal(t, boyID, respawns[0].(proto.PlayerRespawnEvent).PlayerID)
	assert.Len(t, h.logs.OfType(lifecycle.EventPlayerRespawned), 1)
}

func TestFindSafeSpawnSkipsWater(t *testing.T) {
	// Water everywhere except the positive-x half.
	field := world.HeightFunc(func(x, z float64) float64 {
		if x > 0 {
			return flatHeight
		}
		return 2
	})
	h := newHarness(t, field)

	spawn := h.room.findSafeSpawn(girlID)
	assert.Equal(t, 2.0, spawn.X)
	assert.Equal(t, 2.0, spawn.Z)
	assert.InDelta(t, flatHeight+world.PlayerStandHeight+safeSpawnHeight, spawn.Y, 1e-9)

	spawn = h.room.findSafeSpawn(boyID)
	assert.Greater(t, spawn.X, 0.0)
	assert.True(t, world.IsValidGroundPoint(field, world.DefaultBounds(), spawn.X, spawn.Z))
}

func TestMovementBlockedByCliff(t *testing.T) {
	field := world.HeightFunc(func(x, z float64) float64 {
		if x >= 1 {
			return flatHeight + 12
		}
		return flatHeight
	})
	h := newHarness(t, field)
	p := &state.Player{ID: 1, Character: state.CharacterBoy, X: 0.66, Z: 0, Alive: true, HP: 100}
	p.Y = world.PlayerGroundY(field, p.X, p.Z)
	p.VX = 5

	require.True(t, h.room.movePlayer(p, fixedStep.Seconds()))
	assert.Equal(t, 0.66, p.X)
	assert.Less(t, p.VX, 0.0)
	assert.Equal(t, 0.0, p.Z)
}

func TestMovementUsesCharacterSpeed(t *testing.T) {
	h := started(t)
	h.quiet()
	girl := h.room.Player(girlID)
	girl.X, girl.Z = 0, 0
	girl.Y = world.PlayerGroundY(h.room.field, 0, 0)
	h.room.SetInput(girlID, proto.InputState{Right: true, Sprint: true})

	h.advance(time.Second)

	assert.InDelta(t, combat.ProfileFor(state.CharacterGirl).RunSpeed, girl.VX, 0.05)
	assert.InDelta(t, math.Pi/2, girl.Rot, 1e-9)
	assert.True(t, girl.Grounded)
}

func TestAnalogInputWinsOverKeys(t *testing.T) {
	h := started(t)
	h.quiet()
	boy := h.room.Player(boyID)
	boy.X, boy.Z = 0, 0
	h.room.SetInput(boyID, proto.InputState{Right: true, MoveZ: float(1)})

	h.advance(500 * time.Millisecond)

	assert.InDelta(t, 0, boy.VX, 1e-9)
	assert.Greater(t, boy.VZ, 0.0)
}

func TestIdlePlayerFacesYaw(t *testing.T) {
	h := started(t)
	h.quiet()
	h.room.SetInput(boyID, proto.InputState{Yaw: float(1.25)})
	h.step(1)
	assert.Equal(t, 1.25, h.room.Player(boyID).Rot)

	h.room.SetInput(boyID, proto.InputState{Yaw: float(math.NaN()), MoveX: float(math.Inf(1))})
	in := h.room.Player(boyID).Input
	assert.False(t, in.HasYaw)
	assert.Equal(t, 0.0, in.MoveX)
}

func TestGravitySettlesOnGround(t *testing.T) {
	h := started(t)
	h.quiet()
	boy := h.room.Player(boyID)
	require.False(t, boy.Grounded)

	h.advance(time.Second)

	assert.True(t, boy.Grounded)
	assert.InDelta(t, world.PlayerGroundY(h.room.field, boy.X, boy.Z), boy.Y, 1e-9)
	assert.Equal(t, boy.Position(), boy.LastSafe)
}

func TestKillPlaneReturnsToLastSafe(t *testing.T) {
	void := world.HeightFunc(func(x, z float64) float64 { return -40 })
	h := newHarness(t, void)
	safe := world.Vec3{X: -10, Y: 9.2, Z: -10}
	p := &state.Player{ID: 1, Character: state.CharacterBoy, Y: KillPlaneY + 0.2, VY: -30, LastSafe: safe, Alive: true, HP: 100}

	require.False(t, h.room.movePlayer(p, fixedStep.Seconds()))
	assert.Equal(t, safe, p.Position())
	assert.Equal(t, 0.0, p.VY)
	assert.True(t, p.Grounded)
	assert.True(t, p.Alive)
}

func TestPlayerDiedRequiresEvidence(t *testing.T) {
	h := started(t)
	h.quiet()
	boy := h.room.Player(boyID)

	assert.False(t, h.room.PlayerDied(boyID, "fell", h.now))
	assert.True(t, boy.Alive)

	boy.Y = KillPlaneY + 1
	assert.True(t, h.room.PlayerDied(boyID, "", h.now))
	assert.False(t, boy.Alive)
	death := h.room.PendingEvents()[0].(PlayerDeath)
	assert.Equal(t, ReasonClientRequest, death.Reason)

	assert.False(t, h.room.PlayerDied(boyID, "again", h.now))
}

func TestPlayerMeleeDamagesZombiesInArc(t *testing.T) {
	h := started(t)
	h.quiet()
	girl := h.room.Player(girlID)
	girl.X, girl.Z, girl.Rot = 0, 0, 0
	front := state.NewZombie(1, 0, girl.Y, 2, 50, h.now)
	behind := state.NewZombie(2, 0, girl.Y, -2, 50, h.now)
	h.room.zombies = []*state.Zombie{front, behind}

	h.room.playerStrike(girl, h.now)
	assert.Equal(t, 30.0, front.HP)
	assert.Equal(t, state.ZombieStun, front.State)
	assert.Equal(t, 50.0, behind.HP)

	h.room.playerStrike(girl, h.now.Add(100*time.Millisecond))
	assert.Equal(t, 30.0, front.HP)

	h.room.playerStrike(girl, h.now.Add(600*time.Millisecond))
	assert.Equal(t, 10.0, front.HP)
	h.room.playerStrike(girl, h.now.Add(1200*time.Millisecond))
	assert.False(t, front.Alive())
	assert.Len(t, h.logs.OfType(logcombat.EventZombieDefeated), 1)

	h.room.pruneZombies()
	assert.Equal(t, []*state.Zombie{behind}, h.room.Zombies())
}

func TestHeartPickupIsShared(t *testing.T) {
	h := started(t)
	h.quiet()
	boy := h.room.Player(boyID)
	heart := h.room.Hearts()[0]
	boy.X, boy.Z = heart.X+1, heart.Z

	h.room.collectHearts(boy, h.now)
	h.room.collectHearts(boy, h.now)

	assert.True(t, heart.Collected)
	assert.Equal(t, 1, h.room.HeartsCollected())
	assert.Equal(t, 1, boy.Hearts)
	assert.Equal(t, 1, h.room.Player(girlID).Hearts)
	require.Len(t, h.room.PendingEvents(), 1)
	assert.Equal(t, HeartCollected{HeartID: heart.ID, ByPlayerID: boyID, At: h.now}, h.room.PendingEvents()[0])
}

func TestCharacterActionsAreSanitized(t *testing.T) {
	h := started(t)

	assert.False(t, h.room.GirlAttack(boyID, "kick", h.now))
	assert.True(t, h.room.GirlAttack(girlID, "spin", h.now))
	assert.True(t, h.room.BoyAttack(boyID, "laser", h.now))
	assert.False(t, h.room.BoyDance(girlID, nil, h.now))
	assert.True(t, h.room.BoyDance(boyID, float(math.NaN()), h.now))

	girlAttack := h.out.ofType(boyID, proto.TypeGirlAttackEvent)
	require.Len(t, girlAttack, 1)
	assert.Equal(t, "punch", girlAttack[0].(*proto.GirlAttackEvent).Step)

	boyAttack := h.out.ofType(girlID, proto.TypeBoyAttackEvent)
	require.Len(t, boyAttack, 1)
	assert.Equal(t, "fist", boyAttack[0].(*proto.BoyAttackEvent).AttackType)

	dance := h.out.ofType(girlID, proto.TypeBoyDanceEvent)
	require.Len(t, dance, 1)
	assert.Equal(t, DefaultDanceLength, dance[0].(*proto.BoyDanceEvent).DurationMs)
}
