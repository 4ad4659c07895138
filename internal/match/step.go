package match

import "time"

// Step advances a running match by dt of simulated time.
func (r *Room) Step(now time.Time, dt time.Duration) {
	if !r.Simulating() {
		return
	}
	r.tick++
	r.timer += dt
	r.difficulty = ComputeDifficulty(r.timer)

	if !r.proposal.active && !r.scene.active && r.timer >= r.nextSpawnAt {
		r.nextSpawnAt = r.timer + ComputeSpawnInterval(r.difficulty)
		r.spawnZombie(now, false)
	}

	seconds := dt.Seconds()
	r.updatePlayers(now, seconds)

	if !r.proposal.active {
		for _, z := range r.zombies {
			r.brain.Update(z, r, now, seconds)
		}
		r.pruneZombies()
	}

	r.checkWin(now)
	if r.sceneFinished(now) {
		return
	}
	r.flushEvents()
}

// MaybeBroadcast sends every member its own snapshot when the room has a
// match and the broadcast cadence is due.
func (r *Room) MaybeBroadcast(now time.Time) bool {
	if !r.started || !r.cadence.Due(now) {
		return false
	}
	for _, p := range r.players {
		if msg := r.Snapshot(p.ID, now); msg != nil {
			r.out.Send(p.ID, msg)
		}
	}
	return true
}
