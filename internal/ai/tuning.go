package ai

import (
	"math"
	"time"
)

// Tuning holds the zombie behaviour constants.
type Tuning struct {
	VisionRadius float64
	// VisionHalfAngle is measured from the zombie's facing to either side.
	VisionHalfAngle float64
	EyeHeight       float64
	Memory          time.Duration

	AttackRange    float64
	AttackCooldown time.Duration
	AttackAnim     time.Duration
	// AttackHitFraction places the hit instant inside the animation.
	AttackHitFraction float64
	// AttackReachSlack widens the squared range used at the hit instant.
	AttackReachSlack float64

	WalkSpeed        float64
	ChaseSpeed       float64
	DifficultyRamp   float64
	CrowdedDistance  float64
	CrowdedSlowdown  float64
	MaxSpeedHeadroom float64
	ArriveRadius     float64
	MinArriveFactor  float64
	Accel            float64
	Damping          float64
	TurnSpeed        float64
	BlockedBounce    float64

	SeparationRadius   float64
	SeparationStrength float64

	IdleWobbleRate      float64
	IdleWobbleAmplitude float64

	StunDuration time.Duration
	HitFlash     time.Duration
	Knockback    float64
	BaseHP       float64
	HPPerLevel   float64
}

// DefaultTuning returns the production zombie tuning.
func DefaultTuning() Tuning {
	return Tuning{
		VisionRadius:    18,
		VisionHalfAngle: 2 * math.Pi / 3,
		EyeHeight:       0.8,
		Memory:          1500 * time.Millisecond,

		AttackRange:       1.6,
		AttackCooldown:    1200 * time.Millisecond,
		AttackAnim:        950 * time.Millisecond,
		AttackHitFraction: 0.35,
		AttackReachSlack:  1.3,

		WalkSpeed:        2.2,
		ChaseSpeed:       3.2,
		DifficultyRamp:   8,
		CrowdedDistance:  5,
		CrowdedSlowdown:  0.9,
		MaxSpeedHeadroom: 0.7,
		ArriveRadius:     3.2,
		MinArriveFactor:  0.25,
		Accel:            12,
		Damping:          7,
		TurnSpeed:        7,
		BlockedBounce:    -0.22,

		SeparationRadius:   1.25,
		SeparationStrength: 4,

		IdleWobbleRate:      0.002,
		IdleWobbleAmplitude: 0.02,

		StunDuration: 220 * time.Millisecond,
		HitFlash:     120 * time.Millisecond,
		Knockback:    3.3,
		BaseHP:       50,
		HPPerLevel:   10,
	}
}

// SpawnHP is the health of a zombie spawned at a difficulty level.
func (t Tuning) SpawnHP(difficulty int) float64 {
	return t.BaseHP + float64(difficulty)*t.HPPerLevel
}
