package combat

import (
	"context"

	"github.com/sabbivikas/mi-amore/logging"
)

const (
	// EventZombieHit is emitted when a zombie swing connects with a player.
	EventZombieHit logging.EventType = "combat.zombie_hit"
	// EventPlayerDeath is emitted on every death trigger, including refreshes.
	EventPlayerDeath logging.EventType = "combat.player_death"
	// EventZombieDefeated is emitted when a player strike empties a zombie.
	EventZombieDefeated logging.EventType = "combat.zombie_defeated"
)

type ZombieHitPayload struct {
	Damage       float64 `json:"damage"`
	TargetHealth float64 `json:"targetHealth"`
	Difficulty   int     `json:"difficulty"`
}

type PlayerDeathPayload struct {
	Reason    string `json:"reason"`
	Refreshed bool   `json:"refreshed,omitempty"`
	RespawnAt int64  `json:"respawnAt"`
}

type ZombieDefeatedPayload struct {
	Character string  `json:"character"`
	Damage    float64 `json:"damage"`
}

// ZombieHit publishes a zombie-on-player hit.
func ZombieHit(ctx context.Context, pub logging.Publisher, tick uint64, zombie, player logging.EntityRef, payload ZombieHitPayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{
		Type:     EventZombieHit,
		Tick:     tick,
		Actor:    zombie,
		Targets:  []logging.EntityRef{player},
		Severity: logging.SeverityInfo,
		Payload:  payload,
		Extra:    extra,
	})
}

// PlayerDeath publishes a death trigger for the player.
func PlayerDeath(ctx context.Context, pub logging.Publisher, tick uint64, player logging.EntityRef, payload PlayerDeathPayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{
		Type:     EventPlayerDeath,
		Tick:     tick,
		Actor:    player,
		Severity: logging.SeverityInfo,
		Payload:  payload,
		Extra:    extra,
	})
}

// ZombieDefeated publishes the strike that killed a zombie.
func ZombieDefeated(ctx context.Context, pub logging.Publisher, tick uint64, player, zombie logging.EntityRef, payload ZombieDefeatedPayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{
		Type:     EventZombieDefeated,
		Tick:     tick,
		Actor:    player,
		Targets:  []logging.EntityRef{zombie},
		Severity: logging.SeverityDebug,
		Payload:  payload,
		Extra:    extra,
	})
}

func publish(ctx context.Context, pub logging.Publisher, event logging.Event) {
	if pub == nil {
		return
	}
	event.Category = logging.CategoryCombat
	pub.Publish(ctx, event)
}
