package match

import (
	"math"
	"strings"
	"time"

	"github.com/sabbivikas/mi-amore/internal/net/proto"
	"github.com/sabbivikas/mi-amore/internal/world"
)

const sprintThreshold = 0.2

// Sentence reveals one letter of the valentine message per collected heart.
func Sentence(hearts int) string {
	n := max(0, min(hearts, len(Letters)))
	return strings.Join(strings.Split(Letters[:n], ""), " ")
}

// Snapshot builds the state message for one recipient. It returns nil when
// the player is not in the room.
func (r *Room) Snapshot(playerID int, now time.Time) *proto.State {
	self := r.PlayerByID(playerID)
	if self == nil {
		return nil
	}

	msg := &proto.State{
		RoomCode:        r.code,
		WorldSeed:       r.seed,
		TimerSec:        int64(r.timer / time.Second),
		DifficultyLevel: r.difficulty,
		Players:         make([]proto.PlayerState, 0, len(r.players)),
		Zombies:         make([]proto.ZombieState, 0, len(r.zombies)),
		Hearts:          make([]proto.HeartState, 0, len(r.hearts)),
		HeartsCollected: r.heartsCollected,
		TotalHearts:     r.heartsTotal,
		TargetHearts:    r.heartsTotal,
		ZombieCount:     len(r.zombies),
		DeathOverlay:    !self.Alive && now.Before(self.DeathNoticeUntil),
		Proposal: proto.ProposalState{
			Active:   r.proposal.active,
			Prompt:   r.proposal.prompt,
			Answered: r.proposal.answered,
			Accepted: r.proposal.accepted,
		},
		ValentineScene: proto.ValentineState{
			Triggered:  r.scene.triggered,
			Active:     r.scene.active,
			StartedAt:  unixMilli(r.scene.startedAt),
			DurationMs: r.scene.duration.Milliseconds(),
		},
	}
	if r.proposal.active || r.proposal.answered {
		by := r.proposal.byPlayerID
		msg.Proposal.ByPlayerID = &by
	}

	for _, p := range r.players {
		speed := math.Hypot(p.VX, p.VZ)
		msg.Players = append(msg.Players, proto.PlayerState{
			ID:          p.ID,
			Character:   string(p.Character),
			X:           p.X,
			Y:           p.Y,
			Z:           p.Z,
			Rot:         p.Rot,
			GroundY:     world.PlayerGroundY(r.field, p.X, p.Z),
			Grounded:    p.Grounded,
			VY:          p.VY,
			MoveSpeed:   speed,
			Sprinting:   p.Input.Sprint && speed > sprintThreshold,
			HP:          p.HP,
			Hearts:      r.heartsCollected,
			Alive:       p.Alive,
			IsAlive:     p.Alive,
			RespawnAt:   unixMilli(p.RespawnAt),
			Sentence:    Sentence(p.Hearts),
			DamageFlash: now.Before(p.DamageFlashUntil),
		})
		if p.ID != self.ID {
			d := math.Hypot(p.X-self.X, p.Z-self.Z)
			msg.OtherPlayerDistance = &d
		}
	}
	for _, z := range r.zombies {
		msg.Zombies = append(msg.Zombies, proto.ZombieState{
			ID:    z.ID,
			X:     z.X,
			Y:     z.Y,
			Z:     z.Z,
			Rot:   z.Rot,
			HP:    z.HP,
			Flash: now.Before(z.HitFlashUntil),
			State: string(z.State),
		})
	}
	for _, h := range r.hearts {
		if h.Collected {
			continue
		}
		msg.Hearts = append(msg.Hearts, proto.HeartState{ID: h.ID, X: h.X, Y: h.Y, Z: h.Z})
	}
	return msg
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
