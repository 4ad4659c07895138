package proto

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"
)

// Client message type identifiers.
const (
	TypeCreateRoom       = "create_room"
	TypeJoinRoom         = "join_room"
	TypeInput            = "input"
	TypeGirlAttack       = "girl_attack"
	TypeBoyAttack        = "boy_attack"
	TypeBoyDance         = "boy_dance"
	TypeProposalResponse = "proposal_response"
	TypePlayerDied       = "playerDied"
)

var (
	// ErrUnknownType marks a well-formed message with an unrecognised type.
	ErrUnknownType = errors.New("unknown client message type")
	// ErrMissingType marks a message without a type tag.
	ErrMissingType = errors.New("client message missing type")
)

// ClientMessage is the tagged union of everything a client may send.
type ClientMessage interface {
	ClientType() string
}

type CreateRoom struct {
	Character string `json:"character,omitempty" jsonschema:"enum=boy,enum=girl,description=Anything but girl plays the boy"`
}

type JoinRoom struct {
	Code      RoomCode `json:"code" jsonschema:"description=Room code matched case-insensitively; numbers are read as their decimal text"`
	Character string   `json:"character,omitempty" jsonschema:"enum=boy,enum=girl"`
}

// RoomCode is the code a client types to join a room. Older clients send
// all-digit codes as numbers, so numbers decode to their decimal text.
type RoomCode string

func (c *RoomCode) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*c = RoomCode(text)
		return nil
	}
	var number float64
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("room code must be a string or number: %w", err)
	}
	*c = RoomCode(formatNumber(number))
	return nil
}

func (c *RoomCode) DecodeMsgpack(dec *msgpack.Decoder) error {
	value, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return err
	}
	switch v := value.(type) {
	case nil:
		*c = ""
	case string:
		*c = RoomCode(v)
	case int64:
		*c = RoomCode(strconv.FormatInt(v, 10))
	case uint64:
		*c = RoomCode(strconv.FormatUint(v, 10))
	case float64:
		*c = RoomCode(formatNumber(v))
	default:
		return fmt.Errorf("room code must be a string or number, got %T", value)
	}
	return nil
}

// formatNumber renders a number without exponent or trailing zeros, so
// 12345.0 reads as "12345".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Input carries the client's latest intent. Non-finite or missing numbers
// read as zero.
type Input struct {
	Input InputState `json:"input"`
}

type InputState struct {
	Up     bool     `json:"up,omitempty"`
	Down   bool     `json:"down,omitempty"`
	Left   bool     `json:"left,omitempty"`
	Right  bool     `json:"right,omitempty"`
	Sprint bool     `json:"sprint,omitempty"`
	Attack bool     `json:"attack,omitempty"`
	MoveX  *float64 `json:"moveX,omitempty"`
	MoveZ  *float64 `json:"moveZ,omitempty"`
	Yaw    *float64 `json:"yaw,omitempty"`
}

type GirlAttack struct {
	Step string `json:"step,omitempty" jsonschema:"enum=punch,enum=kick"`
}

type BoyAttack struct {
	AttackType string `json:"attackType,omitempty" jsonschema:"enum=fist,enum=kick,enum=jump"`
}

type BoyDance struct {
	DurationMs *float64 `json:"durationMs,omitempty"`
}

type ProposalResponse struct {
	Accept bool `json:"accept"`
}

type PlayerDied struct {
	Reason string `json:"reason,omitempty"`
}

func (CreateRoom) ClientType() string       { return TypeCreateRoom }
func (JoinRoom) ClientType() string         { return TypeJoinRoom }
func (Input) ClientType() string            { return TypeInput }
func (GirlAttack) ClientType() string       { return TypeGirlAttack }
func (BoyAttack) ClientType() string        { return TypeBoyAttack }
func (BoyDance) ClientType() string         { return TypeBoyDance }
func (ProposalResponse) ClientType() string { return TypeProposalResponse }
func (PlayerDied) ClientType() string       { return TypePlayerDied }

type envelope struct {
	Type string `json:"type"`
}

type decoder func(codec Codec, payload []byte) (ClientMessage, error)

func decodeInto[T ClientMessage](codec Codec, payload []byte) (ClientMessage, error) {
	var msg T
	if err := codec.Unmarshal(payload, &msg); err != nil {
		return nil, err
	}
	return msg, nil
}

var clientDecoders = map[string]decoder{
	TypeCreateRoom:       decodeInto[CreateRoom],
	TypeJoinRoom:         decodeInto[JoinRoom],
	TypeInput:            decodeInto[Input],
	TypeGirlAttack:       decodeInto[GirlAttack],
	TypeBoyAttack:        decodeInto[BoyAttack],
	TypeBoyDance:         decodeInto[BoyDance],
	TypeProposalResponse: decodeInto[ProposalResponse],
	TypePlayerDied:       decodeInto[PlayerDied],
}

// ClientTypes lists every accepted client message type.
func ClientTypes() []string {
	return []string{
		TypeCreateRoom, TypeJoinRoom, TypeInput, TypeGirlAttack,
		TypeBoyAttack, TypeBoyDance, TypeProposalResponse, TypePlayerDied,
	}
}

// DecodeClientMessage reads the type tag and decodes the matching variant.
func DecodeClientMessage(codec Codec, payload []byte) (ClientMessage, error) {
	if codec == nil {
		codec = JSON
	}
	var env envelope
	if err := codec.Unmarshal(payload, &env); err != nil {
		return nil, err
	}
	if env.Type == "" {
		return nil, ErrMissingType
	}
	decode, ok := clientDecoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	return decode(codec, payload)
}

// Finite returns *v when it is present and finite, otherwise fallback.
func Finite(v *float64, fallback float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return fallback
	}
	return *v
}
