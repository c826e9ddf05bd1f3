package fne

import (
	"context"
	"time"

	"github.com/k9fne/fned/pkg/logger"
	"github.com/k9fne/fned/pkg/rules"
)

// runTickers drives the three periodic engines that are not tied to
// any one system's socket: the master-mode expiry sweep (spec.md
// §4.4), the rules-file reload (§4.6), and the ON/OFF rule timer
// tick (§4.6).
func (c *Core) runTickers(ctx context.Context) {
	pingInterval := time.Duration(c.cfg.Global.PingInterval) * time.Second
	if pingInterval <= 0 {
		pingInterval = 5 * time.Second
	}
	maxMissed := c.cfg.Global.MaxMissed
	if maxMissed <= 0 {
		maxMissed = 3
	}
	reloadInterval := time.Duration(c.cfg.Global.ReloadInterval) * time.Second
	if reloadInterval <= 0 {
		reloadInterval = 240 * time.Second
	}
	timerInterval := time.Duration(c.cfg.Global.RuleTimerInterval) * time.Second
	if timerInterval <= 0 {
		timerInterval = 60 * time.Second
	}

	sweepTicker := time.NewTicker(pingInterval)
	reloadTicker := time.NewTicker(reloadInterval)
	timerTicker := time.NewTicker(timerInterval)
	defer sweepTicker.Stop()
	defer reloadTicker.Stop()
	defer timerTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case now := <-sweepTicker.C:
			c.sweepMasterSystems(now, pingInterval, maxMissed)

		case now := <-timerTicker.C:
			c.router.Rules.TickTimers(now)

		case <-reloadTicker.C:
			c.reloadRules()
		}
	}
}

// sweepMasterSystems evicts expired peers on every master-mode
// system, publishing a disconnect event and metric for each (spec.md
// §4.4). pkg/heartbeat.Heartbeat.tickMaster only logs its evictions,
// so Core sweeps the registries directly here to also drive metrics,
// MQTT, and the reporting bus.
func (c *Core) sweepMasterSystems(now time.Time, pingInterval time.Duration, maxMissed int) {
	for name, sr := range c.systems {
		if sr.mode != "master" {
			continue
		}
		evicted := sr.sys.Registry.SweepExpired(now, pingInterval, maxMissed)
		for _, p := range evicted {
			sr.log.Warn("peer expired", logger.PeerID(p.ID))
			c.metrics.PeerDisconnected()
			if c.mqttPub != nil {
				c.mqttPub.PublishPeerDisconnect(mqttPeerDisconnectEvent(name, p.ID, "expired"))
			}
		}
	}
}

// reloadRules re-reads the rules file, rebuilds the engine's Set, and
// republishes every system's ACL tables from it (spec.md §4.6).
func (c *Core) reloadRules() {
	if c.cfg.Global.RulesFile == "" {
		return
	}
	list, err := rules.LoadFile(c.cfg.Global.RulesFile)
	if err != nil {
		c.log.Warn("rules reload failed, keeping current rule set", logger.Error(err))
		return
	}
	set := c.router.Rules.Reload(list, time.Now())
	c.metrics.RuleReload()
	c.applyACLToSystems(set)
}
