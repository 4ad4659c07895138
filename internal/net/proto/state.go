package proto

// Game event kinds carried inside zombie_events.
const (
	EventAttackStart    = "attackStart"
	EventZombieHit      = "zombieHit"
	EventPlayerDeath    = "playerDeath"
	EventPlayerRespawn  = "playerRespawn"
	EventHeartCollected = "heartCollected"
)

// GameEvent is one entry of a zombie_events batch.
type GameEvent interface {
	EventKind() string
}

type AttackStartEvent struct {
	Type       string `json:"type"`
	ZombieID   int    `json:"zombieId"`
	StartTime  int64  `json:"startTime"`
	DurationMs int64  `json:"durationMs"`
}

type ZombieHitEvent struct {
	Type           string  `json:"type"`
	ZombieID       int     `json:"zombieId"`
	TargetPlayerID int     `json:"targetPlayerId"`
	Damage         float64 `json:"damage"`
	At             int64   `json:"at"`
}

type PlayerDeathEvent struct {
	Type      string `json:"type"`
	PlayerID  int    `json:"playerId"`
	Reason    string `json:"reason"`
	RespawnAt int64  `json:"respawnAt"`
	At        int64  `json:"at"`
}

type PlayerRespawnEvent struct {
	Type     string  `json:"type"`
	PlayerID int     `json:"playerId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	At       int64   `json:"at"`
}

type HeartCollectedEvent struct {
	Type       string `json:"type"`
	HeartID    int    `json:"heartId"`
	ByPlayerID int    `json:"byPlayerId"`
	At         int64  `json:"at"`
}

func (e AttackStartEvent) EventKind() string    { return e.Type }
func (e ZombieHitEvent) EventKind() string      { return e.Type }
func (e PlayerDeathEvent) EventKind() string    { return e.Type }
func (e PlayerRespawnEvent) EventKind() string  { return e.Type }
func (e HeartCollectedEvent) EventKind() string { return e.Type }

// State is the per-recipient room snapshot sent at the broadcast cadence.
type State struct {
	Header
	RoomCode            string         `json:"roomCode"`
	WorldSeed           uint32         `json:"worldSeed"`
	TimerSec            int64          `json:"timerSec"`
	DifficultyLevel     int            `json:"difficultyLevel"`
	Players             []PlayerState  `json:"players"`
	Zombies             []ZombieState  `json:"zombies"`
	Hearts              []HeartState   `json:"hearts"`
	HeartsCollected     int            `json:"heartsCollected"`
	TotalHearts         int            `json:"totalHearts"`
	TargetHearts        int            `json:"targetHearts"`
	ZombieCount         int            `json:"zombieCount"`
	OtherPlayerDistance *float64       `json:"otherPlayerDistance"`
	DeathOverlay        bool           `json:"deathOverlay"`
	Proposal            ProposalState  `json:"proposal"`
	ValentineScene      ValentineState `json:"valentineScene"`
}

type PlayerState struct {
	ID          int     `json:"id"`
	Character   string  `json:"character"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Z           float64 `json:"z"`
	Rot         float64 `json:"rot"`
	GroundY     float64 `json:"groundY"`
	Grounded    bool    `json:"grounded"`
	VY          float64 `json:"vy"`
	MoveSpeed   float64 `json:"moveSpeed"`
	Sprinting   bool    `json:"sprinting"`
	HP          float64 `json:"hp"`
	Hearts      int     `json:"hearts"`
	Alive       bool    `json:"alive"`
	IsAlive     bool    `json:"isAlive"`
	RespawnAt   int64   `json:"respawnAt"`
	Sentence    string  `json:"sentence"`
	DamageFlash bool    `json:"damageFlash"`
}

type ZombieState struct {
	ID    int     `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Rot   float64 `json:"rot"`
	HP    float64 `json:"hp"`
	Flash bool    `json:"flash"`
	State string  `json:"state"`
}

type HeartState struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
}

type ProposalState struct {
	Active     bool   `json:"active"`
	ByPlayerID *int   `json:"byPlayerId"`
	Prompt     string `json:"prompt"`
	Answered   bool   `json:"answered"`
	Accepted   bool   `json:"accepted"`
}

type ValentineState struct {
	Triggered  bool  `json:"triggered"`
	Active     bool  `json:"active"`
	StartedAt  int64 `json:"startedAt"`
	DurationMs int64 `json:"durationMs"`
}
