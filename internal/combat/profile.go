package combat

import (
	"math"
	"time"

	"github.com/sabbivikas/mi-amore/internal/state"
)

// Profile captures the per-character movement and melee tuning.
type Profile struct {
	WalkSpeed float64
	RunSpeed  float64

	MeleeRange    float64
	MeleeArc      float64
	MeleeCooldown time.Duration
	MeleeDamage   float64
}

var (
	boyProfile = Profile{
		WalkSpeed:     2.2,
		RunSpeed:      3.5,
		MeleeRange:    1.7,
		MeleeArc:      100 * math.Pi / 180,
		MeleeCooldown: 250 * time.Millisecond,
		MeleeDamage:   24,
	}
	girlProfile = Profile{
		WalkSpeed:     4.5,
		RunSpeed:      7.2,
		MeleeRange:    3.2,
		MeleeArc:      math.Pi * 0.8,
		MeleeCooldown: 500 * time.Millisecond,
		MeleeDamage:   20,
	}
)

// ProfileFor returns the tuning for a character.
func ProfileFor(c state.Character) Profile {
	if c == state.CharacterGirl {
		return girlProfile
	}
	return boyProfile
}

// Speed picks the walk or run speed.
func (p Profile) Speed(sprint bool) float64 {
	if sprint {
		return p.RunSpeed
	}
	return p.WalkSpeed
}
