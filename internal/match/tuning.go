package match

import "time"

const (
	HeartTarget        = 10
	MeetRadius         = 2.5
	HeartPickupRadius  = 1.8
	heartHover         = 1.1
	ValentineSceneTime = 5200 * time.Millisecond
	Letters            = "WILLYOUBEMYVALENTINE"
	ProposalPrompt     = "Will you be my valentine?"
	sceneLine1         = "Will you be my Valentine?"
	sceneLine2         = "Yes!"
	leftReason         = "A player disconnected. Returning to lobby."
	failedMessage      = "This room stopped unexpectedly. Create a new room to keep playing."
	MaxPlayers         = 2

	InitialZombies    = 2
	FirstSpawnAt      = 3000 * time.Millisecond
	DifficultyStep    = 30 * time.Second
	BaseSpawnInterval = 7000 * time.Millisecond
	SpawnIntervalStep = 450 * time.Millisecond
	MinSpawnInterval  = 1800 * time.Millisecond
	BaseMaxZombies    = 4
	ZombiesPerLevel   = 2
	HardZombieCap     = 36
	zombieSpawnLift   = 0.05

	RespawnDelay       = 3000 * time.Millisecond
	KillPlaneY         = -20.0
	playerDiedSlack    = 2.0
	playerAccel        = 14.0
	playerFriction     = 10.0
	playerGravity      = 26.0
	playerBlockBounce  = -0.15
	groundEpsilon      = 0.04
	safeSpawnHeight    = 0.75
	respawnCandidates  = 18
	respawnMargin      = 8.0
	DefaultDanceLength = 5000.0
)

// ComputeDifficulty is the step-function difficulty for elapsed match time.
func ComputeDifficulty(timer time.Duration) int {
	if timer < 0 {
		return 0
	}
	return int(timer / DifficultyStep)
}

// ComputeSpawnInterval shrinks with difficulty down to MinSpawnInterval.
func ComputeSpawnInterval(difficulty int) time.Duration {
	interval := BaseSpawnInterval - time.Duration(difficulty)*SpawnIntervalStep
	return max(MinSpawnInterval, interval)
}

// ComputeMaxZombies grows with difficulty up to HardZombieCap.
func ComputeMaxZombies(difficulty int) int {
	return min(HardZombieCap, BaseMaxZombies+ZombiesPerLevel*difficulty)
}
