package match

import (
	"time"

	"github.com/sabbivikas/mi-amore/internal/errors"
	"github.com/sabbivikas/mi-amore/internal/net/proto"
	"github.com/sabbivikas/mi-amore/internal/state"
	"github.com/sabbivikas/mi-amore/internal/world"
	"github.com/sabbivikas/mi-amore/logging"
	"github.com/sabbivikas/mi-amore/logging/lifecycle"
)

const (
	msgRoomFull      = "Room is full (2 players max)."
	msgSameCharacter = "Pick the other character so one Boy + one Girl can play."
)

var (
	evenLobbySpawns = []world.Vec2{{X: 22, Z: 22}, {X: 26, Z: -18}, {X: 18, Z: -24}}
	oddLobbySpawns  = []world.Vec2{{X: -22, Z: -22}, {X: -26, Z: 18}, {X: -18, Z: 24}}
)

func lobbySpawns(playerID int) []world.Vec2 {
	if playerID%2 == 0 {
		return evenLobbySpawns
	}
	return oddLobbySpawns
}

// Attach adds a player to the room, announces the lobby and starts the match
// once both characters are present.
func (r *Room) Attach(playerID int, character state.Character, now time.Time) error {
	if len(r.players) >= MaxPlayers {
		return errors.FailedPrecondition(msgRoomFull)
	}
	for _, existing := range r.players {
		if existing.Character == character {
			return errors.AlreadyExists(msgSameCharacter)
		}
	}

	p := r.newPlayer(playerID, character)
	r.players = append(r.players, p)
	lifecycle.PlayerJoined(r.ctx(), r.pub, logging.PlayerRef(p.ID), lifecycle.PlayerJoinedPayload{
		Character: string(character),
		SpawnX:    p.X,
		SpawnZ:    p.Z,
	}, nil)

	r.out.Send(p.ID, &proto.RoomJoined{Code: r.code, PlayerID: p.ID, WorldSeed: r.seed})
	r.sendLobbyUpdate()
	if len(r.players) == MaxPlayers && !r.started {
		r.Start(now)
	}
	return nil
}

func (r *Room) newPlayer(id int, character state.Character) *state.Player {
	anchors := lobbySpawns(id)
	spawn := anchors[0]
	for _, candidate := range anchors {
		if world.IsValidGroundPoint(r.field, r.bounds, candidate.X, candidate.Z) {
			spawn = candidate
			break
		}
	}
	y := world.PlayerGroundY(r.field, spawn.X, spawn.Z) + safeSpawnHeight
	return &state.Player{
		ID:        id,
		Character: character,
		X:         spawn.X,
		Y:         y,
		Z:         spawn.Z,
		LastSafe:  world.Vec3{X: spawn.X, Y: y, Z: spawn.Z},
		HP:        state.PlayerMaxHP,
		Alive:     true,
	}
}

// Remove detaches a player. The room stops simulating; a running match is
// reported as abandoned. It returns the number of players left.
func (r *Room) Remove(playerID int, now time.Time) int {
	idx := -1
	for i, p := range r.players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return len(r.players)
	}
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	lifecycle.PlayerDisconnected(r.ctx(), r.pub, logging.PlayerRef(playerID), lifecycle.PlayerDisconnectedPayload{
		Reason: "disconnect",
	}, nil)

	if r.started && !r.ended {
		r.finish(OutcomeAbandoned, false, nil, now)
	}
	r.started = false
	r.ended = true
	r.scene.active = false
	r.events = r.events[:0]

	r.broadcast(&proto.PlayerLeft{Reason: leftReason})
	if len(r.players) > 0 {
		r.sendLobbyUpdate()
	}
	return len(r.players)
}

// Fail stops the room after an internal fault. Players stay attached and
// see an error; a new match starts only when the room is rejoined.
func (r *Room) Fail(now time.Time) {
	if r.started && !r.ended {
		r.finish(OutcomeFailed, false, nil, now)
	}
	r.started = false
	r.ended = true
	r.scene.active = false
	r.proposal.active = false
	r.events = r.events[:0]
	r.broadcast(&proto.Error{Message: failedMessage})
}

// Start resets the room into a fresh match with every attached player.
func (r *Room) Start(now time.Time) {
	r.started = true
	r.ended = false
	r.reported = false
	r.startedAt = now
	r.timer = 0
	r.difficulty = 0
	r.nextSpawnAt = FirstSpawnAt
	r.zombies = nil
	r.events = r.events[:0]
	r.heartsTotal = HeartTarget
	r.heartsCollected = 0
	r.proposal = proposalState{prompt: ProposalPrompt}
	r.scene = sceneState{duration: ValentineSceneTime}
	r.cadence.Reset()

	for _, p := range r.players {
		p.HP = state.PlayerMaxHP
		p.Hearts = 0
		p.Alive = true
		p.RespawnAt = time.Time{}
		p.DeathNoticeUntil = time.Time{}
		p.ProposalVote = state.VoteNone
		p.StopMotion()
		p.Y = world.PlayerGroundY(r.field, p.X, p.Z) + safeSpawnHeight
		p.Grounded = false
		p.Input.ClearMovement()
		p.LastSafe = p.Position()
	}

	r.spawnHearts()
	for i := 0; i < InitialZombies; i++ {
		r.spawnZombie(now, true)
	}

	lifecycle.MatchStarted(r.ctx(), r.pub, logging.RoomRef(r.code), lifecycle.MatchStartedPayload{
		WorldSeed: r.seed,
		Hearts:    len(r.hearts),
		Zombies:   len(r.zombies),
	})
	r.broadcast(&proto.MatchStarted{Code: r.code, WorldSeed: r.seed})
}
