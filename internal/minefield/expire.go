package minefield

import (
	"time"
)

// ExpireMines deactivates every live mine whose expiry timestamp has passed.
// Expired mines end disarmed, not exploded, so ExplodedAt stays nil. Returns
// the number of mines retired; intended as a periodic maintenance sweep.
func (e *Engine) ExpireMines(now time.Time) (int, error) {
	expired := 0
	for _, mine := range e.deps.Mines.LiveMines() {
		if mine.ExpiresAt == nil || mine.ExpiresAt.After(now) {
			continue
		}

		unlock := e.deps.Locks.Lock("mine", mine.ID)
		current, ok := e.deps.Mines.GetMine(mine.ID)
		if !ok || !current.IsActive {
			unlock()
			continue
		}
		current.IsActive = false
		current.IsArmed = false
		err := e.deps.Mines.UpdateMine(&current)
		unlock()
		if err != nil {
			return expired, err
		}
		expired++
		e.deps.Logger.Debug("mine expired", "mineId", current.ID, "channel", current.Channel)
	}

	if expired > 0 {
		e.deps.Logger.Info("expiry sweep retired mines", "count", expired)
	}
	return expired, nil
}
