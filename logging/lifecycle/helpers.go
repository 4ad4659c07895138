package lifecycle

import (
	"context"

	"github.com/sabbivikas/mi-amore/logging"
)

const (
	EventRoomCreated        logging.EventType = "lifecycle.room_created"
	EventPlayerJoined       logging.EventType = "lifecycle.player_joined"
	EventPlayerDisconnected logging.EventType = "lifecycle.player_disconnected"
	EventMatchStarted       logging.EventType = "lifecycle.match_started"
	EventMatchEnded         logging.EventType = "lifecycle.match_ended"
	EventPlayerRespawned    logging.EventType = "lifecycle.player_respawned"
	// EventRoomFailed is emitted when a room step panics and the room is ended.
	EventRoomFailed logging.EventType = "lifecycle.room_failed"
)

type RoomCreatedPayload struct {
	WorldSeed uint32 `json:"worldSeed"`
}

type PlayerJoinedPayload struct {
	Character string  `json:"character"`
	SpawnX    float64 `json:"spawnX"`
	SpawnZ    float64 `json:"spawnZ"`
}

type PlayerDisconnectedPayload struct {
	Reason string `json:"reason"`
}

type MatchStartedPayload struct {
	WorldSeed uint32 `json:"worldSeed"`
	Hearts    int    `json:"hearts"`
	Zombies   int    `json:"zombies"`
}

type MatchEndedPayload struct {
	Outcome  string `json:"outcome"`
	Accepted bool   `json:"accepted"`
	TimerMs  int64  `json:"timerMs"`
}

type PlayerRespawnedPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type RoomFailedPayload struct {
	Error string `json:"error"`
}

func RoomCreated(ctx context.Context, pub logging.Publisher, room logging.EntityRef, payload RoomCreatedPayload) {
	publish(ctx, pub, 0, room, logging.SeverityInfo, EventRoomCreated, payload, nil)
}

func PlayerJoined(ctx context.Context, pub logging.Publisher, player logging.EntityRef, payload PlayerJoinedPayload, extra map[string]any) {
	publish(ctx, pub, 0, player, logging.SeverityInfo, EventPlayerJoined, payload, extra)
}

func PlayerDisconnected(ctx context.Context, pub logging.Publisher, player logging.EntityRef, payload PlayerDisconnectedPayload, extra map[string]any) {
	publish(ctx, pub, 0, player, logging.SeverityInfo, EventPlayerDisconnected, payload, extra)
}

func MatchStarted(ctx context.Context, pub logging.Publisher, room logging.EntityRef, payload MatchStartedPayload) {
	publish(ctx, pub, 0, room, logging.SeverityInfo, EventMatchStarted, payload, nil)
}

func MatchEnded(ctx context.Context, pub logging.Publisher, tick uint64, room logging.EntityRef, payload MatchEndedPayload, extra map[string]any) {
	publish(ctx, pub, tick, room, logging.SeverityInfo, EventMatchEnded, payload, extra)
}

func PlayerRespawned(ctx context.Context, pub logging.Publisher, tick uint64, player logging.EntityRef, payload PlayerRespawnedPayload) {
	publish(ctx, pub, tick, player, logging.SeverityInfo, EventPlayerRespawned, payload, nil)
}

func RoomFailed(ctx context.Context, pub logging.Publisher, tick uint64, room logging.EntityRef, payload RoomFailedPayload) {
	publish(ctx, pub, tick, room, logging.SeverityError, EventRoomFailed, payload, nil)
}

func publish(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, severity logging.Severity, eventType logging.EventType, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Severity: severity,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}
