package ai

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabbivikas/mi-amore/internal/state"
	"github.com/sabbivikas/mi-amore/internal/world"
)

const groundLevel = 8.0

type fakeEnv struct {
	field      world.HeightField
	players    []*state.Player
	zombies    []*state.Zombie
	difficulty int

	attackStarts map[int]int
	hits         map[int]int
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{
		field:        world.HeightFunc(func(x, z float64) float64 { return groundLevel }),
		attackStarts: make(map[int]int),
		hits:         make(map[int]int),
	}
}

func (e *fakeEnv) Field() world.HeightField { return e.field }
func (e *fakeEnv) Bounds() world.Bounds     { return world.DefaultBounds() }
func (e *fakeEnv) Players() []*state.Player { return e.players }
func (e *fakeEnv) Zombies() []*state.Zombie { return e.zombies }
func (e *fakeEnv) Difficulty() int          { return e.difficulty }

func (e *fakeEnv) AttackStarted(z *state.Zombie, now time.Time) {
	e.attackStarts[z.ID]++
}
func (e *fakeEnv) ZombieHit(z *state.Zombie, target *state.Player, now time.Time) {
	e.hits[z.ID]++
}
func (e *fakeEnv) PlayerByID(id int) *state.Player {
	for _, p := range e.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (e *fakeEnv) addPlayer(id int, x, z float64) *state.Player {
	p := &state.Player{
		ID:    id,
		X:     x,
		Y:     groundLevel + world.PlayerStandHeight,
		Z:     z,
		HP:    state.PlayerMaxHP,
		Alive: true,
	}
	e.players = append(e.players, p)
	return p
}

func (e *fakeEnv) addZombie(id int, x, z float64, now time.Time) *state.Zombie {
	zombie := state.NewZombie(id, x, groundLevel+world.ZombieHalfHeight, z, 50, now)
	e.zombies = append(e.zombies, zombie)
	return zombie
}

func TestChooseTargetRespectsVisionCone(t *testing.T) {
	env := newFakeEnv()
	now := time.Unix(1000, 0)
	brain := NewBrain(DefaultTuning())
	zombie := env.addZombie(1, 0, 0, now)

	// Directly behind: outside the ±120° cone.
	env.addPlayer(1, 0, -5)
	assert.Nil(t, brain.ChooseTarget(zombie, env, now))

	// Ahead and nearer wins over a farther player.
	env.addPlayer(2, 0, 10)
	near := env.addPlayer(3, 1, 4)
	target := brain.ChooseTarget(zombie, env, now)
	require.NotNil(t, target)
	assert.Equal(t, near.ID, target.ID)
	assert.Equal(t, near.ID, zombie.TargetPlayerID)
	assert.Equal(t, now, zombie.LastKnownAt)
}

func TestChooseTargetRequiresLineOfSight(t *testing.T) {
	env := newFakeEnv()
	env.field = world.HeightFunc(func(x, z float64) float64 {
		if z > 2 && z < 4 {
			return 40
		}
		return groundLevel
	})
	now := time.Unix(1000, 0)
	brain := NewBrain(DefaultTuning())
	zombie := env.addZombie(1, 0, 0, now)
	env.addPlayer(1, 0, 8)

	assert.Nil(t, brain.ChooseTarget(zombie, env, now))
}

func TestChooseTargetIgnoresDistantAndDeadPlayers(t *testing.T) {
	env := newFakeEnv()
	now := time.Unix(1000, 0)
	brain := NewBrain(DefaultTuning())
	zombie := env.addZombie(1, 0, 0, now)
	env.addPlayer(1, 0, 25)
	dead := env.addPlayer(2, 0, 3)
	dead.Alive = false

	assert.Nil(t, brain.ChooseTarget(zombie, env, now))
}

func TestAttackLandsAtMostOncePerSwing(t *testing.T) {
	for _, hz := range []int{30, 60, 120} {
		env := newFakeEnv()
		start := time.Unix(1000, 0)
		brain := NewBrain(DefaultTuning())
		zombie := env.addZombie(1, 0, 0, start)
		env.addPlayer(1, 0, 1)

		step := time.Second / time.Duration(hz)
		now := start
		for i := 0; i < hz*6; i++ {
			now = now.Add(step)
			brain.Update(zombie, env, now, step.Seconds())
			require.LessOrEqual(t, env.hits[zombie.ID], env.attackStarts[zombie.ID], "hz=%d", hz)
		}

		require.Greater(t, env.attackStarts[zombie.ID], 1, "hz=%d", hz)
		assert.Equal(t, env.attackStarts[zombie.ID], env.hits[zombie.ID], "hz=%d", hz)
		// One swing per cooldown window over six seconds.
		assert.LessOrEqual(t, env.attackStarts[zombie.ID], 5, "hz=%d", hz)
	}
}

func TestAttackAgainstDeadTargetFailsSilently(t *testing.T) {
	env := newFakeEnv()
	start := time.Unix(1000, 0)
	brain := NewBrain(DefaultTuning())
	zombie := env.addZombie(1, 0, 0, start)
	player := env.addPlayer(1, 0, 1)

	brain.Update(zombie, env, start, 1.0/60)
	require.Equal(t, state.ZombieAttack, zombie.State)

	player.Alive = false
	now := start
	for i := 0; i < 70; i++ {
		now = now.Add(time.Second / 60)
		brain.Update(zombie, env, now, 1.0/60)
	}
	assert.Zero(t, env.hits[zombie.ID])
	assert.NotEqual(t, state.ZombieAttack, zombie.State)
}

func TestMemoryKeepsChasingLastKnownPosition(t *testing.T) {
	env := newFakeEnv()
	start := time.Unix(1000, 0)
	brain := NewBrain(DefaultTuning())
	zombie := env.addZombie(1, 0, 0, start)
	player := env.addPlayer(1, 0, 10)

	brain.Update(zombie, env, start, 1.0/60)
	require.Equal(t, state.ZombieChase, zombie.State)

	// The player vanishes behind the zombie; it keeps investigating.
	player.X, player.Z = 0, -17
	now := start.Add(time.Second)
	brain.Update(zombie, env, now, 1.0/60)
	assert.Equal(t, state.ZombieChase, zombie.State)
	assert.Equal(t, 10.0, zombie.LastKnownTarget.Z)

	now = start.Add(1600 * time.Millisecond)
	brain.Update(zombie, env, now, 1.0/60)
	assert.Equal(t, state.ZombieIdle, zombie.State)
	assert.Zero(t, zombie.TargetPlayerID)
}

func TestApplyDamageStunsAndRecovers(t *testing.T) {
	env := newFakeEnv()
	now := time.Unix(1000, 0)
	brain := NewBrain(DefaultTuning())
	zombie := env.addZombie(1, 0, 0, now)

	brain.ApplyDamage(zombie, 20, now, 0)
	assert.Equal(t, 30.0, zombie.HP)
	assert.Equal(t, state.ZombieStun, zombie.State)
	assert.InDelta(t, 3.3, zombie.VZ, 1e-9)
	assert.True(t, zombie.HitFlashUntil.After(now))

	brain.Update(zombie, env, now.Add(100*time.Millisecond), 0.1)
	assert.Equal(t, state.ZombieStun, zombie.State)

	brain.Update(zombie, env, now.Add(250*time.Millisecond), 0.1)
	assert.Equal(t, state.ZombieIdle, zombie.State)
}

func TestStunnedZombieDoesNotAttack(t *testing.T) {
	env := newFakeEnv()
	now := time.Unix(1000, 0)
	brain := NewBrain(DefaultTuning())
	zombie := env.addZombie(1, 0, 0, now)
	env.addPlayer(1, 0, 1)

	brain.ApplyDamage(zombie, 1, now, math.Pi)
	brain.Update(zombie, env, now.Add(10*time.Millisecond), 0.01)
	assert.Zero(t, env.attackStarts[zombie.ID])
}

func TestSeparationPushesZombiesApart(t *testing.T) {
	env := newFakeEnv()
	now := time.Unix(1000, 0)
	brain := NewBrain(DefaultTuning())
	a := env.addZombie(1, 0, 0, now)
	b := env.addZombie(2, 0.5, 0, now)

	for i := 0; i < 30; i++ {
		now = now.Add(time.Second / 60)
		brain.Update(a, env, now, 1.0/60)
		brain.Update(b, env, now, 1.0/60)
	}
	assert.Greater(t, math.Abs(b.X-a.X), 0.5)
}

func TestMoveSpeedRampsWithDifficulty(t *testing.T) {
	env := newFakeEnv()
	brain := NewBrain(DefaultTuning())
	base := brain.MoveSpeed(env)
	env.difficulty = 4
	mid := brain.MoveSpeed(env)
	env.difficulty = 40
	top := brain.MoveSpeed(env)

	assert.InDelta(t, 2.2, base, 1e-9)
	assert.Greater(t, mid, base)
	assert.InDelta(t, 3.2, top, 1e-9)

	env.addPlayer(1, 0, 0)
	env.addPlayer(2, 1, 0)
	assert.InDelta(t, 3.2*0.9, brain.MoveSpeed(env), 1e-9)
}

func TestZombiesStayGrounded(t *testing.T) {
	env := newFakeEnv()
	env.field = world.HeightFunc(func(x, z float64) float64 { return 8 + x*0.1 })
	now := time.Unix(1000, 0)
	brain := NewBrain(DefaultTuning())
	zombie := env.addZombie(1, 0, 0, now)
	env.addPlayer(1, 5, 10)

	for i := 0; i < 60; i++ {
		now = now.Add(time.Second / 60)
		brain.Update(zombie, env, now, 1.0/60)
		require.InDelta(t, env.field.Height(zombie.X, zombie.Z)+world.ZombieHalfHeight, zombie.Y, 1e-9)
	}
}
