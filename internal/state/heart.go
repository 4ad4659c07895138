package state

// Heart is a collectible counted towards the valentine win condition.
type Heart struct {
	ID        int
	X, Y, Z   float64
	Collected bool
}
