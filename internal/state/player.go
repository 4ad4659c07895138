package state

import (
	"strings"
	"time"

	"github.com/sabbivikas/mi-amore/internal/world"
)

// PlayerMaxHP is the health every player spawns and respawns with.
const PlayerMaxHP = 100

// Character selects one of the two playable characters.
type Character string

const (
	CharacterBoy  Character = "boy"
	CharacterGirl Character = "girl"
)

// ParseCharacter maps a client-supplied name onto a character. Anything that
// is not "girl" plays the boy.
func ParseCharacter(raw string) Character {
	if strings.EqualFold(strings.TrimSpace(raw), string(CharacterGirl)) {
		return CharacterGirl
	}
	return CharacterBoy
}

// Input is the latest intent buffered from the client. The simulation reads it
// on the next step; clients never report positions.
type Input struct {
	Up     bool
	Down   bool
	Left   bool
	Right  bool
	Sprint bool
	Attack bool
	MoveX  float64
	MoveZ  float64
	Yaw    float64
	HasYaw bool
}

// ClearMovement drops held movement and attack intent.
func (in *Input) ClearMovement() {
	in.Up = false
	in.Down = false
	in.Left = false
	in.Right = false
	in.Sprint = false
	in.Attack = false
	in.MoveX = 0
	in.MoveZ = 0
}

// Vote is a player's answer to the proposal.
type Vote string

const (
	VoteNone Vote = ""
	VoteYes  Vote = "yes"
	VoteNo   Vote = "no"
)

// Player is a connected participant inside a room.
type Player struct {
	ID        int
	Character Character

	X, Y, Z    float64
	Rot        float64
	VX, VY, VZ float64
	Grounded   bool
	LastSafe   world.Vec3

	HP     float64
	Hearts int
	Alive  bool

	RespawnAt           time.Time
	DeathNoticeUntil    time.Time
	AttackCooldownUntil time.Time
	DamageFlashUntil    time.Time

	Input        Input
	ProposalVote Vote
}

// Position returns the player origin.
func (p *Player) Position() world.Vec3 {
	return world.Vec3{X: p.X, Y: p.Y, Z: p.Z}
}

// Ground returns the player's ground-plane position.
func (p *Player) Ground() world.Vec2 {
	return world.Vec2{X: p.X, Z: p.Z}
}

// SetHP stores hp clamped to [0, PlayerMaxHP].
func (p *Player) SetHP(hp float64) {
	p.HP = world.Clamp(hp, 0, PlayerMaxHP)
}

// StopMotion zeroes every velocity component.
func (p *Player) StopMotion() {
	p.VX = 0
	p.VY = 0
	p.VZ = 0
}
