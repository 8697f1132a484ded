package connector

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports pool statistics of every handle in a Registry.
type Collector struct {
	registry *Registry

	open      *prometheus.Desc
	inUse     *prometheus.Desc
	idle      *prometheus.Desc
	waitCount *prometheus.Desc
	waitSecs  *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

func NewCollector(r *Registry) *Collector {
	labels := []string{"alias", "dialect"}
	return &Collector{
		registry:  r,
		open:      prometheus.NewDesc("sqlkit_connections_open", "Open connections in the pool.", labels, nil),
		inUse:     prometheus.NewDesc("sqlkit_connections_in_use", "Connections currently in use.", labels, nil),
		idle:      prometheus.NewDesc("sqlkit_connections_idle", "Idle connections.", labels, nil),
		waitCount: prometheus.NewDesc("sqlkit_connections_wait_total", "Connections waited for.", labels, nil),
		waitSecs:  prometheus.NewDesc("sqlkit_connections_wait_seconds_total", "Time spent waiting for a connection.", labels, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.open
	ch <- c.inUse
	ch <- c.idle
	ch <- c.waitCount
	ch <- c.waitSecs
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, alias := range c.registry.Aliases() {
		h, ok := c.registry.Get(alias)
		if !ok {
			continue
		}
		s := h.Stats()
		name := h.Dialect().Name()
		ch <- prometheus.MustNewConstMetric(c.open, prometheus.GaugeValue, float64(s.OpenConnections), alias, name)
		ch <- prometheus.MustNewConstMetric(c.inUse, prometheus.GaugeValue, float64(s.InUse), alias, name)
		ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.Idle), alias, name)
		ch <- prometheus.MustNewConstMetric(c.waitCount, prometheus.CounterValue, float64(s.WaitCount), alias, name)
		ch <- prometheus.MustNewConstMetric(c.waitSecs, prometheus.CounterValue, s.WaitDuration.Seconds(), alias, name)
	}
}
