package match

import (
	"math"
	"time"

	"github.com/sabbivikas/mi-amore/internal/net/proto"
	"github.com/sabbivikas/mi-amore/internal/state"
	"github.com/sabbivikas/mi-amore/logging"
	"github.com/sabbivikas/mi-amore/logging/lifecycle"
)

// checkWin fires the valentine scene once both players stand together after
// every heart is collected.
func (r *Room) checkWin(now time.Time) {
	if len(r.players) != MaxPlayers || r.scene.triggered {
		return
	}
	if r.heartsCollected < r.heartsTotal {
		return
	}
	a, b := r.players[0], r.players[1]
	if math.Hypot(a.X-b.X, a.Z-b.Z) > MeetRadius {
		return
	}

	r.scene.triggered = true
	r.scene.active = true
	r.scene.startedAt = now

	boy := r.byCharacter(state.CharacterBoy)
	if boy == nil {
		boy = a
	}
	r.proposal.active = true
	r.proposal.byPlayerID = boy.ID

	r.broadcast(&proto.ValentineScene{
		StartedAt:  now.UnixMilli(),
		DurationMs: r.scene.duration.Milliseconds(),
		Line1:      sceneLine1,
		Line2:      sceneLine2,
	})
	r.broadcast(&proto.ProposalStarted{ByPlayerID: boy.ID, Prompt: r.proposal.prompt})
	r.broadcast(&proto.BoyDanceEvent{
		PlayerID:   boy.ID,
		DurationMs: float64(r.scene.duration.Milliseconds()),
		At:         now.UnixMilli(),
	})
	if girl := r.byCharacter(state.CharacterGirl); girl != nil {
		r.broadcast(&proto.GirlAttackEvent{PlayerID: girl.ID, Step: "kick", At: now.UnixMilli()})
	}
}

// sceneFinished ends the match with acceptance once the scene has played out.
func (r *Room) sceneFinished(now time.Time) bool {
	if !r.scene.active || now.Before(r.scene.startedAt.Add(r.scene.duration)) {
		return false
	}
	r.scene.active = false
	votes := make([]proto.Vote, 0, len(r.players))
	for _, p := range r.players {
		votes = append(votes, proto.Vote{ID: p.ID, Vote: string(state.VoteYes)})
	}
	r.proposal.answered = true
	r.proposal.accepted = true
	r.flushEvents()
	r.finish(OutcomeAccepted, true, votes, now)
	r.broadcast(&proto.MatchEnd{Accepted: true, Votes: votes})
	return true
}

// ProposalResponse records a vote. Once every player has voted the match
// ends, accepted only when all votes are yes.
func (r *Room) ProposalResponse(playerID int, accept bool, now time.Time) bool {
	if !r.proposal.active || r.ended {
		return false
	}
	p := r.PlayerByID(playerID)
	if p == nil {
		return false
	}
	p.ProposalVote = state.VoteNo
	if accept {
		p.ProposalVote = state.VoteYes
	}

	votes := make([]proto.Vote, 0, len(r.players))
	accepted := true
	for _, member := range r.players {
		if member.ProposalVote == state.VoteNone {
			return true
		}
		if member.ProposalVote != state.VoteYes {
			accepted = false
		}
		votes = append(votes, proto.Vote{ID: member.ID, Vote: string(member.ProposalVote)})
	}

	r.proposal.answered = true
	r.proposal.accepted = accepted
	r.scene.active = false
	outcome := OutcomeRejected
	if accepted {
		outcome = OutcomeAccepted
	}
	r.finish(outcome, accepted, votes, now)
	r.broadcast(&proto.MatchEnd{Accepted: accepted, Votes: votes})
	return true
}

// finish marks the room ended and reports the summary once per match.
func (r *Room) finish(outcome Outcome, accepted bool, votes []proto.Vote, now time.Time) {
	r.ended = true
	if r.reported {
		return
	}
	r.reported = true
	lifecycle.MatchEnded(r.ctx(), r.pub, r.tick, logging.RoomRef(r.code), lifecycle.MatchEndedPayload{
		Outcome:  string(outcome),
		Accepted: accepted,
		TimerMs:  r.timer.Milliseconds(),
	}, nil)
	if r.onEnded == nil {
		return
	}
	r.onEnded(Summary{
		Code:            r.code,
		WorldSeed:       r.seed,
		StartedAt:       r.startedAt,
		EndedAt:         now,
		Timer:           r.timer,
		Outcome:         outcome,
		Accepted:        accepted,
		Votes:           append([]proto.Vote(nil), votes...),
		HeartsCollected: r.heartsCollected,
		HeartsTotal:     r.heartsTotal,
		Difficulty:      r.difficulty,
	})
}

func (r *Room) byCharacter(c state.Character) *state.Player {
	for _, p := range r.players {
		if p.Character == c {
			return p
		}
	}
	return nil
}
