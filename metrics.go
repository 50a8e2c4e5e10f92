package stormbus

import "github.com/prometheus/client_golang/prometheus"

// Collector exposes Bus statistics as Prometheus metrics.
// Register it with a prometheus.Registerer:
//
//	prometheus.MustRegister(stormbus.NewCollector(bus, ""))
type Collector struct {
	bus *Bus

	published *prometheus.Desc
	executed  *prometheus.Desc
	delivered *prometheus.Desc
	errors    *prometheus.Desc
	panics    *prometheus.Desc
	stopped   *prometheus.Desc
	removed   *prometheus.Desc
	active    *prometheus.Desc
	types     *prometheus.Desc
}

// NewCollector creates a collector reading from bus. An empty namespace
// defaults to "stormbus".
func NewCollector(bus *Bus, namespace string) *Collector {
	if namespace == "" {
		namespace = "stormbus"
	}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, nil)
	}
	return &Collector{
		bus:       bus,
		published: desc("events_published_total", "Broadcast calls that were delivered."),
		executed:  desc("listeners_executed_total", "Listener executions."),
		delivered: desc("events_delivered_total", "Listener executions that completed without failure."),
		errors:    desc("listener_errors_total", "Listeners that returned errors."),
		panics:    desc("listener_panics_total", "Listeners that panicked."),
		stopped:   desc("listeners_stopped_total", "Successful executions that returned Stop."),
		removed:   desc("handles_removed_total", "Handles unlinked from registries."),
		active:    desc("active_handles", "Current non-terminal handles."),
		types:     desc("event_types", "Event types with a registry."),
	}
}

// Describe implements the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.published
	ch <- c.executed
	ch <- c.delivered
	ch <- c.errors
	ch <- c.panics
	ch <- c.stopped
	ch <- c.removed
	ch <- c.active
	ch <- c.types
}

// Collect implements the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.bus.Stats()
	ch <- prometheus.MustNewConstMetric(c.published, prometheus.CounterValue, float64(s.EventsPublished))
	ch <- prometheus.MustNewConstMetric(c.executed, prometheus.CounterValue, float64(s.ListenersExecuted))
	ch <- prometheus.MustNewConstMetric(c.delivered, prometheus.CounterValue, float64(s.EventsDelivered))
	ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(s.ListenerErrors))
	ch <- prometheus.MustNewConstMetric(c.panics, prometheus.CounterValue, float64(s.ListenerPanics))
	ch <- prometheus.MustNewConstMetric(c.stopped, prometheus.CounterValue, float64(s.ListenersStopped))
	ch <- prometheus.MustNewConstMetric(c.removed, prometheus.CounterValue, float64(s.HandlesRemoved))
	ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, float64(s.ActiveHandles))
	ch <- prometheus.MustNewConstMetric(c.types, prometheus.GaugeValue, float64(s.EventTypes))
}
