// Package match owns one two-player room: lobby attach and detach, the match
// step (spawning, player physics, zombie AI, hearts, the valentine win
// sequence) and the per-recipient snapshots.
package match

import (
	"context"
	"math/rand"
	"time"

	"github.com/sabbivikas/mi-amore/internal/ai"
	"github.com/sabbivikas/mi-amore/internal/net/proto"
	"github.com/sabbivikas/mi-amore/internal/sim"
	"github.com/sabbivikas/mi-amore/internal/state"
	"github.com/sabbivikas/mi-amore/internal/world"
	"github.com/sabbivikas/mi-amore/logging"
)

// IDSource hands out process-wide entity ids.
type IDSource interface {
	NextZombieID() int
	NextHeartID() int
}

// Messenger delivers a message to one player. It must not block.
type Messenger interface {
	Send(playerID int, msg proto.ServerMessage)
}

// Outcome names how a match ended.
type Outcome string

const (
	OutcomeAccepted  Outcome = "accepted"
	OutcomeRejected  Outcome = "rejected"
	OutcomeAbandoned Outcome = "abandoned"
	// OutcomeFailed marks a match stopped by an internal fault.
	OutcomeFailed Outcome = "failed"
)

// Summary describes a finished match.
type Summary struct {
	Code            string
	WorldSeed       uint32
	StartedAt       time.Time
	EndedAt         time.Time
	Timer           time.Duration
	Outcome         Outcome
	Accepted        bool
	Votes           []proto.Vote
	HeartsCollected int
	HeartsTotal     int
	Difficulty      int
}

// Options configures a Room. Zero values fall back to production defaults.
type Options struct {
	Code        string
	Seed        uint32
	Field       world.HeightField
	IDs         IDSource
	Messenger   Messenger
	RNG         *rand.Rand
	Brain       *ai.Brain
	Publisher   logging.Publisher
	NetworkRate int
	// OnEnded runs once each time a started match ends.
	OnEnded func(Summary)
}

type sceneState struct {
	triggered bool
	active    bool
	startedAt time.Time
	duration  time.Duration
}

type proposalState struct {
	active     bool
	byPlayerID int
	prompt     string
	answered   bool
	accepted   bool
}

// Room is one isolated match instance. It is not safe for concurrent use;
// the host serializes every call.
type Room struct {
	code   string
	seed   uint32
	field  world.HeightField
	bounds world.Bounds
	ids    IDSource
	out    Messenger
	rng    *rand.Rand
	brain  *ai.Brain
	pub    logging.Publisher

	players []*state.Player
	zombies []*state.Zombie
	hearts  []*state.Heart

	started bool
	ended   bool

	timer       time.Duration
	difficulty  int
	nextSpawnAt time.Duration
	tick        uint64
	startedAt   time.Time

	heartsTotal     int
	heartsCollected int

	scene    sceneState
	proposal proposalState
	events   []Event
	cadence  *sim.Cadence

	onEnded  func(Summary)
	reported bool
}

// NewRoom constructs an empty lobby room.
func NewRoom(opts Options) *Room {
	field := opts.Field
	if field == nil {
		field = world.NewTerrain(opts.Seed)
	}
	rng := opts.RNG
	if rng == nil {
		rng = world.NewRNG(opts.Seed)
	}
	brain := opts.Brain
	if brain == nil {
		brain = ai.NewBrain(ai.DefaultTuning())
	}
	ids := opts.IDs
	if ids == nil {
		ids = &Counter{}
	}
	out := opts.Messenger
	if out == nil {
		out = discardMessenger{}
	}
	pub := opts.Publisher
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &Room{
		code:        opts.Code,
		seed:        opts.Seed,
		field:       field,
		bounds:      world.DefaultBounds(),
		ids:         ids,
		out:         out,
		rng:         rng,
		brain:       brain,
		pub:         logging.WithRoom(pub, opts.Code),
		nextSpawnAt: FirstSpawnAt,
		heartsTotal: HeartTarget,
		scene:       sceneState{duration: ValentineSceneTime},
		proposal:    proposalState{prompt: ProposalPrompt},
		cadence:     sim.NewCadence(opts.NetworkRate),
		onEnded:     opts.OnEnded,
	}
}

// Counter is a simple IDSource for rooms that do not share a host.
type Counter struct {
	zombie int
	heart  int
}

func (c *Counter) NextZombieID() int {
	c.zombie++
	return c.zombie
}

func (c *Counter) NextHeartID() int {
	c.heart++
	return c.heart
}

type discardMessenger struct{}

func (discardMessenger) Send(int, proto.ServerMessage) {}

// Code is the room's join code.
func (r *Room) Code() string { return r.code }

// Seed is the terrain seed sent to clients.
func (r *Room) Seed() uint32 { return r.seed }

// Started reports whether both players have joined and play has begun.
func (r *Room) Started() bool { return r.started }

// Ended reports whether the match reached win or game over.
func (r *Room) Ended() bool { return r.ended }

// Timer is the simulated time elapsed since the match started.
func (r *Room) Timer() time.Duration { return r.timer }

// HeartsCollected counts hearts picked up so far.
func (r *Room) HeartsCollected() int { return r.heartsCollected }

// HeartsTotal is the number of hearts needed to win.
func (r *Room) HeartsTotal() int { return r.heartsTotal }

// Hearts returns the live hearts. Callers must not retain the slice across steps.
func (r *Room) Hearts() []*state.Heart {
	return r.hearts
}

// Simulating reports whether Step advances the room.
func (r *Room) Simulating() bool {
	return r.started && !r.ended
}

// ProposalActive reports whether the win sequence has frozen combat.
func (r *Room) ProposalActive() bool {
	return r.proposal.active
}

// SceneTriggered reports whether the valentine scene has fired.
func (r *Room) SceneTriggered() bool {
	return r.scene.triggered
}

// PlayerCount is the number of attached players.
func (r *Room) PlayerCount() int {
	return len(r.players)
}

// Player returns the attached player with id, or nil.
func (r *Room) Player(id int) *state.Player {
	return r.PlayerByID(id)
}

// The methods below let the zombie brain observe and affect the room.

// Field is the terrain height field the room simulates on.
func (r *Room) Field() world.HeightField { return r.field }

// Bounds is the playable area.
func (r *Room) Bounds() world.Bounds { return r.bounds }

// Players returns the attached players in join order.
func (r *Room) Players() []*state.Player { return r.players }

// Zombies returns the live zombies.
func (r *Room) Zombies() []*state.Zombie { return r.zombies }

// Difficulty is the current escalation level.
func (r *Room) Difficulty() int { return r.difficulty }

// PlayerByID returns the attached player with id, or nil.
func (r *Room) PlayerByID(id int) *state.Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) AttackStarted(z *state.Zombie, now time.Time) {
	r.queue(ZombieAttackStart{
		ZombieID:  z.ID,
		StartedAt: now,
		Duration:  r.brain.Tuning().AttackAnim,
	})
}

func (r *Room) ZombieHit(z *state.Zombie, target *state.Player, now time.Time) {
	r.applyZombieHit(z, target, now)
}

var _ ai.Environment = (*Room)(nil)

func (r *Room) broadcast(msg proto.ServerMessage) {
	for _, p := range r.players {
		r.out.Send(p.ID, msg)
	}
}

func (r *Room) sendLobbyUpdate() {
	lobby := make([]proto.LobbyPlayer, 0, len(r.players))
	for _, p := range r.players {
		lobby = append(lobby, proto.LobbyPlayer{ID: p.ID, Character: string(p.Character)})
	}
	r.broadcast(&proto.RoomUpdate{
		Code:         r.code,
		Players:      lobby,
		ReadyToStart: len(r.players) == MaxPlayers,
	})
}

func (r *Room) ctx() context.Context {
	return context.Background()
}
