// Package cooldown tracks per-contract alert suppression windows.
//
// State is process local and lives in memory only. A restart clears
// every active cooldown, which at worst re-alerts a contract once.
package cooldown

import (
	"sync"
	"time"
)

// Gate remembers when each contract last alerted and suppresses
// repeat alerts inside the configured window.
type Gate struct {
	mu        sync.Mutex
	duration  time.Duration
	lastAlert map[string]time.Time
}

// NewGate creates a gate with the given suppression window.
func NewGate(duration time.Duration) *Gate {
	return &Gate{
		duration:  duration,
		lastAlert: make(map[string]time.Time),
	}
}

// IsOnCooldown reports whether the contract alerted less than the
// window duration before now. Contracts that never alerted are not on
// cooldown.
func (g *Gate) IsOnCooldown(contract string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.lastAlert[contract]
	if !ok {
		return false
	}
	return now.Sub(last) < g.duration
}

// RecordAlert marks the contract as having alerted at now, restarting
// its window.
func (g *Gate) RecordAlert(contract string, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.lastAlert[contract] = now
}

// SweepExpired removes entries whose age reached the window duration
// and returns how many were removed. An entry exactly at the boundary
// is removed, matching IsOnCooldown treating it as expired.
func (g *Gate) SweepExpired(now time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for contract, last := range g.lastAlert {
		if now.Sub(last) >= g.duration {
			delete(g.lastAlert, contract)
			removed++
		}
	}
	return removed
}

// Active returns the number of tracked contracts, including any whose
// window has lapsed but which have not been swept yet.
func (g *Gate) Active() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.lastAlert)
}
