package proto

import "github.com/invopop/jsonschema"

// Schema describes every client and server message as JSON Schema
// definitions keyed by wire type.
func Schema() map[string]*jsonschema.Schema {
	reflector := jsonschema.Reflector{AllowAdditionalProperties: true, DoNotReference: true}
	messages := map[string]any{
		TypeCreateRoom:       &CreateRoom{},
		TypeJoinRoom:         &JoinRoom{},
		TypeInput:            &Input{},
		TypeGirlAttack:       &GirlAttack{},
		TypeBoyAttack:        &BoyAttack{},
		TypeBoyDance:         &BoyDance{},
		TypeProposalResponse: &ProposalResponse{},
		TypePlayerDied:       &PlayerDied{},

		TypeWelcome:         &Welcome{},
		TypeRoomJoined:      &RoomJoined{},
		TypeRoomUpdate:      &RoomUpdate{},
		TypeMatchStarted:    &MatchStarted{},
		TypeError:           &Error{},
		TypeZombieEvents:    &ZombieEvents{},
		TypeGirlAttackEvent: &GirlAttackEvent{},
		TypeBoyAttackEvent:  &BoyAttackEvent{},
		TypeBoyDanceEvent:   &BoyDanceEvent{},
		TypeProposalStarted: &ProposalStarted{},
		TypeValentineScene:  &ValentineScene{},
		TypeMatchEnd:        &MatchEnd{},
		TypePlayerLeft:      &PlayerLeft{},
		TypeState:           &State{},

		EventAttackStart:    &AttackStartEvent{},
		EventZombieHit:      &ZombieHitEvent{},
		EventPlayerDeath:    &PlayerDeathEvent{},
		EventPlayerRespawn:  &PlayerRespawnEvent{},
		EventHeartCollected: &HeartCollectedEvent{},
	}
	out := make(map[string]*jsonschema.Schema, len(messages))
	for name, msg := range messages {
		out[name] = reflector.Reflect(msg)
	}
	return out
}
