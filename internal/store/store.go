// Package store persists the outcome of finished matches.
package store

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mock/recorder.go -package=storemock -source=store.go

const (
	// DefaultRecentLimit is used when Recent is called without a positive limit.
	DefaultRecentLimit = 20
	// MaxRecentLimit caps a single Recent read.
	MaxRecentLimit = 200
)

// Vote is one player's answer to the proposal.
type Vote struct {
	PlayerID int    `json:"playerId"`
	Vote     string `json:"vote"`
}

// Result is the persisted record of one match.
type Result struct {
	MatchID         string        `json:"matchId"`
	RoomCode        string        `json:"roomCode"`
	WorldSeed       uint32        `json:"worldSeed"`
	StartedAt       time.Time     `json:"startedAt"`
	EndedAt         time.Time     `json:"endedAt"`
	Duration        time.Duration `json:"durationNs"`
	Accepted        bool          `json:"accepted"`
	Outcome         string        `json:"outcome"`
	Votes           []Vote        `json:"votes,omitempty"`
	HeartsCollected int           `json:"heartsCollected"`
	Difficulty      int           `json:"difficulty"`
}

// Recorder saves match results and lists the most recent ones, newest first.
type Recorder interface {
	Record(ctx context.Context, result Result) error
	Recent(ctx context.Context, limit int) ([]Result, error)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	return min(limit, MaxRecentLimit)
}
