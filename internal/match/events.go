package match

import (
	"time"

	"github.com/sabbivikas/mi-amore/internal/net/proto"
	"github.com/sabbivikas/mi-amore/internal/world"
)

// Event is a combat or lifecycle notification queued during a step and
// flushed to every member as one zombie_events message.
type Event interface {
	wire() proto.GameEvent
}

type ZombieAttackStart struct {
	ZombieID  int
	StartedAt time.Time
	Duration  time.Duration
}

type ZombieHit struct {
	ZombieID       int
	TargetPlayerID int
	Damage         float64
	At             time.Time
}

type PlayerDeath struct {
	PlayerID  int
	Reason    string
	RespawnAt time.Time
	At        time.Time
}

type PlayerRespawn struct {
	PlayerID int
	Position world.Vec3
	At       time.Time
}

type HeartCollected struct {
	HeartID    int
	ByPlayerID int
	At         time.Time
}

func (e ZombieAttackStart) wire() proto.GameEvent {
	return proto.AttackStartEvent{
		Type:       proto.EventAttackStart,
		ZombieID:   e.ZombieID,
		StartTime:  e.StartedAt.UnixMilli(),
		DurationMs: e.Duration.Milliseconds(),
	}
}

func (e ZombieHit) wire() proto.GameEvent {
	return proto.ZombieHitEvent{
		Type:           proto.EventZombieHit,
		ZombieID:       e.ZombieID,
		TargetPlayerID: e.TargetPlayerID,
		Damage:         e.Damage,
		At:             e.At.UnixMilli(),
	}
}

func (e PlayerDeath) wire() proto.GameEvent {
	return proto.PlayerDeathEvent{
		Type:      proto.EventPlayerDeath,
		PlayerID:  e.PlayerID,
		Reason:    e.Reason,
		RespawnAt: e.RespawnAt.UnixMilli(),
		At:        e.At.UnixMilli(),
	}
}

func (e PlayerRespawn) wire() proto.GameEvent {
	return proto.PlayerRespawnEvent{
		Type:     proto.EventPlayerRespawn,
		PlayerID: e.PlayerID,
		X:        e.Position.X,
		Y:        e.Position.Y,
		Z:        e.Position.Z,
		At:       e.At.UnixMilli(),
	}
}

func (e HeartCollected) wire() proto.GameEvent {
	return proto.HeartCollectedEvent{
		Type:       proto.EventHeartCollected,
		HeartID:    e.HeartID,
		ByPlayerID: e.ByPlayerID,
		At:         e.At.UnixMilli(),
	}
}

func (r *Room) queue(event Event) {
	r.events = append(r.events, event)
}

// PendingEvents returns the events queued since the last flush.
func (r *Room) PendingEvents() []Event {
	return append([]Event(nil), r.events...)
}

func (r *Room) flushEvents() {
	if len(r.events) == 0 {
		return
	}
	wire := make([]proto.GameEvent, 0, len(r.events))
	for _, event := range r.events {
		wire = append(wire, event.wire())
	}
	r.events = r.events[:0]
	r.broadcast(&proto.ZombieEvents{Events: wire})
}
