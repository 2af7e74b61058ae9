// Package promstat exports the statistics of a lossy channel as Prometheus
// metrics.
package promstat

import (
	"github.com/creachadair/lossy"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is the metric namespace used by collectors in this package.
const Namespace = "lossy"

// A Source reports statistics about a channel. A *lossy.Receiver is a Source.
type Source interface {
	Stats() lossy.Stats
}

// Collector is a [prometheus.Collector] that reports the statistics of a
// single channel each time it is scraped.
type Collector struct {
	src Source

	sent, delivered, dropped  *prometheus.Desc
	buffered, capacity, sends *prometheus.Desc
}

// New constructs a collector for src. Every metric carries a "channel" label
// with the given name, plus any constant labels in extra.
func New(name string, src Source, extra prometheus.Labels) *Collector {
	labels := prometheus.Labels{"channel": name}
	for k, v := range extra {
		labels[k] = v
	}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(Namespace, "", name), help, nil, labels)
	}
	return &Collector{
		src:       src,
		sent:      desc("sent_total", "Total number of values admitted to the channel."),
		delivered: desc("delivered_total", "Total number of values delivered to the receiver."),
		dropped:   desc("dropped_total", "Total number of values discarded to make room for newer ones."),
		buffered:  desc("buffered", "Number of values currently buffered."),
		capacity:  desc("capacity", "Capacity of the channel buffer."),
		sends:     desc("senders", "Number of open sender handles."),
	}
}

// Describe implements part of the [prometheus.Collector] interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{c.sent, c.delivered, c.dropped, c.buffered, c.capacity, c.sends} {
		ch <- d
	}
}

// Collect implements part of the [prometheus.Collector] interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.sent, prometheus.CounterValue, float64(s.Sent))
	ch <- prometheus.MustNewConstMetric(c.delivered, prometheus.CounterValue, float64(s.Delivered))
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(s.Dropped))
	ch <- prometheus.MustNewConstMetric(c.buffered, prometheus.GaugeValue, float64(s.Len))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(s.Cap))
	ch <- prometheus.MustNewConstMetric(c.sends, prometheus.GaugeValue, float64(s.Senders))
}
