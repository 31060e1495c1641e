// Package alerting composes detection, cooldown gating and delivery
// into the periodic alert cycle.
package alerting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"token-radar/internal/cooldown"
	"token-radar/internal/domain"
	"token-radar/internal/notify"
	"token-radar/internal/observability"
	"token-radar/internal/trending"
)

// ErrCycleInProgress is returned when a cycle is started while the
// previous one is still running. The caller skips the tick.
var ErrCycleInProgress = errors.New("detection cycle already running")

// CycleStats summarizes one detection cycle.
type CycleStats struct {
	Trending   int // tokens past thresholds and veto, all chains
	Sent       int
	Suppressed int
	Expired    int // cooldown entries swept this cycle
}

// Pipeline runs one detect-gate-notify cycle at a time.
type Pipeline struct {
	engine   *trending.Engine
	gate     *cooldown.Gate
	notifier notify.Notifier

	mu      sync.Mutex
	running bool
}

// New creates an alert pipeline.
func New(engine *trending.Engine, gate *cooldown.Gate, notifier notify.Notifier) *Pipeline {
	return &Pipeline{
		engine:   engine,
		gate:     gate,
		notifier: notifier,
	}
}

// RunCycle runs one cycle evaluated at the current time.
func (p *Pipeline) RunCycle(ctx context.Context) (CycleStats, error) {
	return p.RunCycleAt(ctx, time.Now().UTC())
}

// RunCycleAt runs one cycle evaluated at the given time: detect
// trending tokens per chain, alert every token not on cooldown, then
// sweep expired cooldowns. A cooldown is recorded only after delivery
// succeeds, so failed alerts retry next cycle.
func (p *Pipeline) RunCycleAt(ctx context.Context, now time.Time) (CycleStats, error) {
	var stats CycleStats

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return stats, ErrCycleInProgress
	}
	p.running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	start := time.Now()

	byChain, err := p.engine.DetectByChainAt(ctx, now)
	if err != nil {
		observability.RecordDetectionCycle("error", time.Since(start).Seconds())
		return stats, fmt.Errorf("detect trending: %w", err)
	}

	for _, chain := range domain.Chains() {
		observability.SetTrendingTokens(string(chain), len(byChain[chain]))
		stats.Trending += len(byChain[chain])
	}

	for _, chain := range domain.Chains() {
		for _, token := range byChain[chain] {
			if ctx.Err() != nil {
				observability.RecordDetectionCycle("error", time.Since(start).Seconds())
				return stats, ctx.Err()
			}

			if p.gate.IsOnCooldown(token.Contract, now) {
				stats.Suppressed++
				observability.RecordAlertSuppressed()
				logrus.Debugf("Skipping %s, on cooldown", token.Contract)
				continue
			}

			if err := p.notifier.Notify(ctx, token); err != nil {
				observability.RecordAlertSendError()
				logrus.Errorf("Alert for %s failed: %v", token.Contract, err)
				continue
			}

			p.gate.RecordAlert(token.Contract, now)
			observability.RecordAlertSent(string(token.Chain))
			stats.Sent++
		}
	}

	stats.Expired = p.gate.SweepExpired(now)
	observability.SetActiveCooldowns(p.gate.Active())
	observability.RecordDetectionCycle("success", time.Since(start).Seconds())
	observability.SetLastSuccessfulCycle(now.Unix())

	logrus.Infof("Detection cycle done: %d sent, %d suppressed, %d cooldowns expired", stats.Sent, stats.Suppressed, stats.Expired)
	return stats, nil
}
