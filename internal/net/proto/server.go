package proto

// Server message type identifiers.
const (
	TypeWelcome         = "welcome"
	TypeRoomJoined      = "room_joined"
	TypeRoomUpdate      = "room_update"
	TypeMatchStarted    = "match_started"
	TypeError           = "error"
	TypeZombieEvents    = "zombie_events"
	TypeGirlAttackEvent = "girl_attack_event"
	TypeBoyAttackEvent  = "boy_attack_event"
	TypeBoyDanceEvent   = "boy_dance_event"
	TypeProposalStarted = "proposal_started"
	TypeValentineScene  = "valentine_scene"
	TypeMatchEnd        = "match_end"
	TypePlayerLeft      = "player_left"
	TypeState           = "state"
)

// Header carries the type tag every server message starts with.
type Header struct {
	Type string `json:"type"`
}

func (h *Header) stamp(t string) {
	h.Type = t
}

// ServerMessage is implemented by pointers to every outbound message.
type ServerMessage interface {
	MessageType() string
	stamp(string)
}

type Welcome struct {
	Header
	PlayerID int `json:"playerId"`
}

type RoomJoined struct {
	Header
	Code      string `json:"code"`
	PlayerID  int    `json:"playerId"`
	WorldSeed uint32 `json:"worldSeed"`
}

type LobbyPlayer struct {
	ID        int    `json:"id"`
	Character string `json:"character"`
}

type RoomUpdate struct {
	Header
	Code         string        `json:"code"`
	Players      []LobbyPlayer `json:"players"`
	ReadyToStart bool          `json:"readyToStart"`
}

type MatchStarted struct {
	Header
	Code      string `json:"code"`
	WorldSeed uint32 `json:"worldSeed"`
}

type Error struct {
	Header
	Message string `json:"message"`
}

type ZombieEvents struct {
	Header
	Events []GameEvent `json:"events"`
}

type GirlAttackEvent struct {
	Header
	PlayerID int    `json:"playerId"`
	Step     string `json:"step"`
	At       int64  `json:"at"`
}

type BoyAttackEvent struct {
	Header
	PlayerID   int    `json:"playerId"`
	AttackType string `json:"attackType"`
	At         int64  `json:"at"`
}

type BoyDanceEvent struct {
	Header
	PlayerID   int     `json:"playerId"`
	DurationMs float64 `json:"durationMs"`
	At         int64   `json:"at"`
}

type ProposalStarted struct {
	Header
	ByPlayerID int    `json:"byPlayerId"`
	Prompt     string `json:"prompt"`
}

type ValentineScene struct {
	Header
	StartedAt  int64  `json:"startedAt"`
	DurationMs int64  `json:"durationMs"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
}

type Vote struct {
	ID   int    `json:"id"`
	Vote string `json:"vote"`
}

type MatchEnd struct {
	Header
	Accepted bool   `json:"accepted"`
	Votes    []Vote `json:"votes"`
}

type PlayerLeft struct {
	Header
	Reason string `json:"reason"`
}

func (*Welcome) MessageType() string         { return TypeWelcome }
func (*RoomJoined) MessageType() string      { return TypeRoomJoined }
func (*RoomUpdate) MessageType() string      { return TypeRoomUpdate }
func (*MatchStarted) MessageType() string    { return TypeMatchStarted }
func (*Error) MessageType() string           { return TypeError }
func (*ZombieEvents) MessageType() string    { return TypeZombieEvents }
func (*GirlAttackEvent) MessageType() string { return TypeGirlAttackEvent }
func (*BoyAttackEvent) MessageType() string  { return TypeBoyAttackEvent }
func (*BoyDanceEvent) MessageType() string   { return TypeBoyDanceEvent }
func (*ProposalStarted) MessageType() string { return TypeProposalStarted }
func (*ValentineScene) MessageType() string  { return TypeValentineScene }
func (*MatchEnd) MessageType() string        { return TypeMatchEnd }
func (*PlayerLeft) MessageType() string      { return TypePlayerLeft }
func (*State) MessageType() string           { return TypeState }

// Encode stamps the type tag and serialises msg with codec.
func Encode(codec Codec, msg ServerMessage) ([]byte, error) {
	if codec == nil {
		codec = JSON
	}
	msg.stamp(msg.MessageType())
	return codec.Marshal(msg)
}
