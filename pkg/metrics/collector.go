// Package metrics exposes the FNE core's internal counters as real
// Prometheus collectors (SPEC_FULL.md §4.13), registered into a
// dedicated registry rather than the global default one so a process
// embedding multiple systems never collides on metric names.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector wraps the Prometheus metrics the FNE core updates as it
// routes frames, tracks peers, and reloads rules.
type Collector struct {
	registry *prometheus.Registry

	peersConnected    prometheus.Gauge
	streamsActive     prometheus.Gauge
	framesRoutedTotal *prometheus.CounterVec
	aclRejectedTotal  *prometheus.CounterVec
	ruleReloadsTotal  prometheus.Counter
}

// NewCollector creates and registers the FNE metrics into reg. If reg
// is nil, a fresh registry is created and returned via Registry().
func NewCollector(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: reg,
		peersConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fne_peers_connected",
			Help: "Number of peers currently in the CONNECTED state.",
		}),
		streamsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fne_streams_active",
			Help: "Number of voice streams currently in progress.",
		}),
		framesRoutedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fne_frames_routed_total",
			Help: "Total number of voice frames routed to at least one peer.",
		}, []string{"system", "slot"}),
		aclRejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fne_acl_rejections_total",
			Help: "Total number of frames rejected by the ACL engine, by reason.",
		}, []string{"reason"}),
		ruleReloadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fne_rule_reloads_total",
			Help: "Total number of rule-table reloads performed.",
		}),
	}

	reg.MustRegister(
		c.peersConnected,
		c.streamsActive,
		c.framesRoutedTotal,
		c.aclRejectedTotal,
		c.ruleReloadsTotal,
	)

	return c
}

// Registry returns the registry the collector's metrics were
// registered into.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// PeerConnected records a peer entering CONNECTED.
func (c *Collector) PeerConnected() {
	c.peersConnected.Inc()
}

// PeerDisconnected records a peer leaving CONNECTED (eviction or close).
func (c *Collector) PeerDisconnected() {
	c.peersConnected.Dec()
}

// StreamStarted records a new voice stream beginning.
func (c *Collector) StreamStarted() {
	c.streamsActive.Inc()
}

// StreamEnded records a voice stream ending (terminator or timeout).
func (c *Collector) StreamEnded() {
	c.streamsActive.Dec()
}

// FrameRouted records one frame successfully fanned out for system/slot.
func (c *Collector) FrameRouted(system string, slot int) {
	c.framesRoutedTotal.WithLabelValues(system, strconv.Itoa(slot)).Inc()
}

// ACLRejected records one frame rejected by the ACL engine for reason.
func (c *Collector) ACLRejected(reason string) {
	c.aclRejectedTotal.WithLabelValues(reason).Inc()
}

// RuleReload records a rule-table reload.
func (c *Collector) RuleReload() {
	c.ruleReloadsTotal.Inc()
}
